// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package link

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"code.hybscloud.com/iox"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

var _ net.Error = fakeTimeoutErr{}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Disposition
	}{
		{"wouldblock", iox.ErrWouldBlock, DispositionWouldBlock},
		{"timeout", fakeTimeoutErr{}, DispositionWouldBlock},
		{"reset", syscall.ECONNRESET, DispositionReconnect},
		{"pipe", syscall.EPIPE, DispositionReconnect},
		{"interrupted", syscall.EINTR, DispositionReconnect},
		{"closedpipe", io.ErrClosedPipe, DispositionReconnect},
		{"netclosed", net.ErrClosed, DispositionReconnect},
		{"other", os.ErrPermission, DispositionFatal},
		{"wrapped reset", errors.New("read: " + syscall.ECONNRESET.Error()), DispositionFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassify_WrappedSyscallErrno(t *testing.T) {
	wrapped := &net.OpError{Op: "read", Err: syscall.ECONNRESET}
	if got := Classify(wrapped); got != DispositionReconnect {
		t.Fatalf("Classify(wrapped ECONNRESET) = %v, want DispositionReconnect", got)
	}
}
