// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cpcnvm3log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	if err := Init("[test]", DebugLevel, path, false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Infof("hello %s", "world")

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(contents), "[test] hello world") {
		t.Fatalf("log file content = %q, want it to contain prefix and message", contents)
	}
	if !strings.Contains(string(contents), "INFO") {
		t.Fatalf("log file content = %q, want it to contain level", contents)
	}
}

func TestLine_NoPrefix(t *testing.T) {
	if got := line("", "x=%d", 3); got != "x=3" {
		t.Fatalf("line = %q, want %q", got, "x=3")
	}
}

func TestLine_WithPrefix(t *testing.T) {
	if got := line("[p]", "x=%d", 3); got != "[p] x=3" {
		t.Fatalf("line = %q, want %q", got, "[p] x=3")
	}
}

func TestLevel_ZapLevel(t *testing.T) {
	if ErrorLevel.zapLevel().String() != "error" {
		t.Fatalf("ErrorLevel.zapLevel() = %v", ErrorLevel.zapLevel())
	}
	if DebugLevel.zapLevel() != TraceLevel.zapLevel() {
		t.Fatal("trace collapses into debug since zap has no trace level")
	}
}
