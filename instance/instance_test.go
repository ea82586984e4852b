// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package instance

import (
	"errors"
	"testing"

	"github.com/siliconlabs/cpc-nvm3/errcode"
	"github.com/siliconlabs/cpc-nvm3/link"
	"github.com/siliconlabs/cpc-nvm3/link/linktest"
)

func mockOpener(h *linktest.Handle) link.Opener {
	return func(instanceName string, enableTraces bool, onReset link.ResetCallback) (link.Handle, error) {
		return h, nil
	}
}

func openedInstance(t *testing.T) (*Instance, *linktest.Handle) {
	t.Helper()
	h := linktest.NewHandle()
	in := New(0, mockOpener(h))
	if err := in.Open("mock", false); err != nil {
		t.Fatalf("open: %v", err)
	}
	return in, h
}

func TestOpen_Success(t *testing.T) {
	in, h := openedInstance(t)
	if !in.IsOpen() {
		t.Fatal("expected instance to be open")
	}
	size, err := in.MaxWriteSize()
	if err != nil {
		t.Fatalf("MaxWriteSize: %v", err)
	}
	if size != linktest.MaxWriteCapability {
		t.Fatalf("MaxWriteSize = %d, want %d", size, linktest.MaxWriteCapability)
	}
	if got := in.txn; got != 2 {
		t.Fatalf("txn after open = %d, want 2", got)
	}
	_ = h
}

func TestOpen_MajorVersionMismatch(t *testing.T) {
	h := linktest.NewHandle()
	// Override the pre-seeded version frame with a mismatching major version.
	in := New(0, func(string, bool, link.ResetCallback) (link.Handle, error) { return h, nil })
	// Drain then re-seed via a fresh endpoint: simplest is to open a handle
	// whose OpenEndpoint seeds major=2, incompatible with ProtocolMajor=1.
	customHandle := &versionOverrideHandle{Handle: h, major: 2}
	in.opener = func(string, bool, link.ResetCallback) (link.Handle, error) { return customHandle, nil }

	err := in.Open("mock", false)
	if err == nil {
		t.Fatal("expected error on major version mismatch")
	}
	if errcode.Of(err) != errcode.InvalidVersion {
		t.Fatalf("code = %v, want InvalidVersion", errcode.Of(err))
	}
	if in.IsOpen() {
		t.Fatal("instance should be torn down after failed open")
	}
}

// versionOverrideHandle re-seeds the endpoint with a custom major version so
// TestOpen_MajorVersionMismatch can exercise the version check without
// duplicating linktest's open-handshake logic.
type versionOverrideHandle struct {
	*linktest.Handle
	major byte
}

func (h *versionOverrideHandle) OpenEndpoint(service link.ServiceID, txWindow uint8) (link.Endpoint, error) {
	ep, err := h.Handle.OpenEndpoint(service, txWindow)
	if err != nil {
		return nil, err
	}
	e := ep.(*linktest.Endpoint)
	// Replace the pre-seeded VersionIs frame (first queued) by draining and
	// re-queuing with the overridden major version.
	_, _ = e.Read() // drop the default VersionIs(1,0,0)
	e.QueueRX(linktest.VersionFrame(0, 1, h.major, 0, 0))
	e.QueueRX(linktest.MaxWriteSizeFrame(0, 2, linktest.MaxWriteCapability))
	return e, nil
}

func TestOpen_Twice_NotClosed(t *testing.T) {
	in, _ := openedInstance(t)
	err := in.Open("mock", false)
	if errcode.Of(err) != errcode.NotClosed {
		t.Fatalf("code = %v, want NotClosed", errcode.Of(err))
	}
}

func TestClose_ThenReopen(t *testing.T) {
	in, _ := openedInstance(t)
	if err := in.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if in.IsOpen() {
		t.Fatal("expected instance closed")
	}
	if err := in.Close(); errcode.Of(err) != errcode.NotOpen {
		t.Fatalf("second close code = %v, want NotOpen", errcode.Of(err))
	}
	if err := in.Open("mock", false); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}

func TestTxnWrap(t *testing.T) {
	in, _ := openedInstance(t)
	in.txn = 0xFF
	if got := in.nextTxn(); got != 0x00 {
		t.Fatalf("nextTxn after 0xFF = %d, want 0", got)
	}
	if got := in.nextTxn(); got != 0x01 {
		t.Fatalf("nextTxn after wrap = %d, want 1", got)
	}
}

func TestReconnect_NotOpenWithoutHandle(t *testing.T) {
	in := New(0, mockOpener(linktest.NewHandle()))
	err := in.reconnect()
	if errcode.Of(err) != errcode.NotOpen {
		t.Fatalf("code = %v, want NotOpen", errcode.Of(err))
	}
}

func TestReconnect_RestartFailsTwice(t *testing.T) {
	in, h := openedInstance(t)
	h.RestartErr = errors.New("boom")
	in.endpoint = nil
	err := in.reconnect()
	if errcode.Of(err) != errcode.EndpointError {
		t.Fatalf("code = %v, want EndpointError", errcode.Of(err))
	}
	if h.Restarts() != 2 {
		t.Fatalf("restarts = %d, want 2 (one retry)", h.Restarts())
	}
}

func TestReconnect_RestartFailsOnceThenSucceeds(t *testing.T) {
	in, h := openedInstance(t)
	in.endpoint = nil
	flaky := &flakyRestartHandle{Handle: h, failFirst: true}
	in.handle = flaky
	if err := in.reconnect(); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if flaky.calls != 2 {
		t.Fatalf("restart calls = %d, want 2", flaky.calls)
	}
	if !in.IsOpen() {
		t.Fatal("expected endpoint reopened")
	}
}

type flakyRestartHandle struct {
	*linktest.Handle
	failFirst bool
	calls     int
}

func (h *flakyRestartHandle) Restart() error {
	h.calls++
	if h.failFirst && h.calls == 1 {
		return errors.New("transient")
	}
	return nil
}
