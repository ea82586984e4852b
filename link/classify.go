// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package link

import (
	"errors"
	"io"
	"net"
	"syscall"

	"code.hybscloud.com/iox"
)

// Classify categorizes an error returned by Endpoint.Read or Endpoint.Write:
// a timeout is WouldBlock; ECONNRESET, EPIPE, EINTR, io.ErrClosedPipe and
// net.ErrClosed are reconnect-eligible; everything else is fatal at this
// layer.
//
// The WouldBlock case reuses code.hybscloud.com/iox's sentinel for
// nonblocking reads.
func Classify(err error) Disposition {
	if err == nil {
		return DispositionFatal
	}
	if errors.Is(err, iox.ErrWouldBlock) {
		return DispositionWouldBlock
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return DispositionWouldBlock
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) {
		return DispositionReconnect
	}
	return DispositionFatal
}
