// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command flagcore-eval loads a flag configuration and a subject's
// attributes, evaluates a single flag, and prints the resolved value. It
// exists to demonstrate pkg/flagcore end-to-end; it is not part of the
// evaluation core itself.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/flagcore/go-flagcore/pkg/flagcore"
	"github.com/flagcore/go-flagcore/pkg/flagcore/assignment"
	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
	"github.com/flagcore/go-flagcore/pkg/log"
	"github.com/joho/godotenv"
)

func main() {
	var configFile, subjectKey, attrsFile, flagKey, typeName, defaultStr, envFile string
	flag.StringVar(&configFile, "config", "", "Path to a flag configuration JSON document")
	flag.StringVar(&subjectKey, "subject", "", "Subject key to evaluate")
	flag.StringVar(&attrsFile, "attrs", "", "Path to a JSON object of subject attributes")
	flag.StringVar(&flagKey, "flag", "", "Flag key to evaluate")
	flag.StringVar(&typeName, "type", "bool", "One of bool|int|numeric|string|json")
	flag.StringVar(&defaultStr, "default", "", "Default value if the flag does not resolve")
	flag.StringVar(&envFile, "env", "./.env", "Optional .env file, loaded after flag parsing")
	flag.Parse()

	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envFile, err)
	}

	logger := log.New(log.WithLevel(log.LevelWarn))

	if configFile == "" || flagKey == "" {
		logger.Crit("both -config and -flag are required")
		os.Exit(2)
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		logger.Critf("reading config file: %v", err)
		os.Exit(1)
	}

	cfg, err := model.ParseConfiguration(raw)
	if err != nil {
		logger.Critf("parsing configuration: %v", err)
		os.Exit(1)
	}

	subject := model.Subject{Key: subjectKey}
	if attrsFile != "" {
		attrsRaw, err := os.ReadFile(attrsFile)
		if err != nil {
			logger.Critf("reading attrs file: %v", err)
			os.Exit(1)
		}
		subject.Attributes, err = decodeAttributes(attrsRaw)
		if err != nil {
			logger.Critf("parsing attrs file: %v", err)
			os.Exit(1)
		}
	}

	var events []string
	client := flagcore.NewClient(
		flagcore.WithObfuscated(cfg.Obfuscated),
		flagcore.WithLogger(logger),
		flagcore.WithAssignmentSink(assignmentPrinter(&events)),
	)
	client.SetConfiguration(cfg)

	printResult(client, flagKey, subject, typeName, defaultStr)

	for _, e := range events {
		fmt.Fprintln(os.Stderr, e)
	}
}

func decodeAttributes(raw []byte) (map[string]value.Value, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	attrs := make(map[string]value.Value, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case string:
			attrs[k] = value.String(t)
		case float64:
			attrs[k] = value.Numeric(t)
		case bool:
			attrs[k] = value.Bool(t)
		case nil:
			attrs[k] = value.Null()
		default:
			b, _ := json.Marshal(t)
			attrs[k] = value.String(string(b))
		}
	}
	return attrs, nil
}

func printResult(client *flagcore.Client, flagKey string, subject model.Subject, typeName, defaultStr string) {
	switch typeName {
	case "bool":
		def := defaultStr == "true"
		fmt.Println(client.BoolValue(flagKey, subject, def))
	case "int":
		var def int64
		fmt.Sscanf(defaultStr, "%d", &def)
		fmt.Println(client.IntValue(flagKey, subject, def))
	case "numeric":
		var def float64
		fmt.Sscanf(defaultStr, "%g", &def)
		fmt.Println(client.NumericValue(flagKey, subject, def))
	case "string":
		fmt.Println(client.StringValue(flagKey, subject, defaultStr))
	case "json":
		fmt.Println(client.JSONStringValue(flagKey, subject, defaultStr))
	default:
		fmt.Fprintf(os.Stderr, "unknown -type %q\n", typeName)
		os.Exit(2)
	}
}

func assignmentPrinter(events *[]string) assignmentSink {
	return assignmentSink{events: events}
}

// assignmentSink adapts assignment events into JSON lines appended to
// events, printed after the resolved value so stdout stays script-friendly
// (SPEC_FULL.md §6: print the value, then the event to stderr if logged).
type assignmentSink struct {
	events *[]string
}

var _ assignment.Sink = assignmentSink{}

func (s assignmentSink) LogAssignment(e assignment.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	*s.events = append(*s.events, string(b))
}
