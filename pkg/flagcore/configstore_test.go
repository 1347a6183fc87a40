// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package flagcore

import (
	"testing"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
)

func TestConfigStoreLoadNilBeforeSwap(t *testing.T) {
	s := NewConfigStore(nil)
	if s.Load() != nil {
		t.Fatal("expected a nil Configuration before the first Swap")
	}
}

func TestConfigStoreSwapReturnsPrevious(t *testing.T) {
	s := NewConfigStore(nil)
	first := &model.Configuration{Format: model.FormatServer}
	if prev := s.Swap(first); prev != nil {
		t.Fatal("expected a nil previous value on the first Swap")
	}
	if s.Load() != first {
		t.Fatal("expected Load to return the just-swapped Configuration")
	}

	second := &model.Configuration{Format: model.FormatClient}
	if prev := s.Swap(second); prev != first {
		t.Fatal("expected Swap to return the previous Configuration")
	}
	if s.Load() != second {
		t.Fatal("expected Load to return the newly-swapped Configuration")
	}
}
