// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"testing"

	"github.com/siliconlabs/cpc-nvm3/errcode"
)

func TestAllocate_StartsAtOne(t *testing.T) {
	r := New[string]()
	h, err := r.Allocate("first")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if h != 1 {
		t.Fatalf("first handle = %d, want 1", h)
	}
	h2, err := r.Allocate("second")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if h2 != 2 {
		t.Fatalf("second handle = %d, want 2", h2)
	}
}

func TestLookup_Miss(t *testing.T) {
	r := New[string]()
	_, err := r.Lookup(42)
	if errcode.Of(err) != errcode.NotInitialized {
		t.Fatalf("code = %v, want NotInitialized", errcode.Of(err))
	}
}

func TestLookup_Hit(t *testing.T) {
	r := New[int]()
	h, err := r.Allocate(7)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	v, err := r.Lookup(h)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != 7 {
		t.Fatalf("Lookup = %d, want 7", v)
	}
}

func TestRemove(t *testing.T) {
	r := New[int]()
	h, _ := r.Allocate(1)
	r.Remove(h)
	if _, err := r.Lookup(h); errcode.Of(err) != errcode.NotInitialized {
		t.Fatalf("expected removed handle to be NotInitialized, got %v", err)
	}
	// Removing an already-removed handle is a no-op.
	r.Remove(h)
}

func TestAllocate_IndependentHandlesAcrossInstances(t *testing.T) {
	r := New[string]()
	h1, _ := r.Allocate("a")
	h2, _ := r.Allocate("b")
	v1, _ := r.Lookup(h1)
	v2, _ := r.Lookup(h2)
	if v1 != "a" || v2 != "b" {
		t.Fatalf("got v1=%q v2=%q, want a/b", v1, v2)
	}
}
