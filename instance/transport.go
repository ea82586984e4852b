// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package instance

import (
	"time"

	"github.com/siliconlabs/cpc-nvm3/cpcnvm3log"
	"github.com/siliconlabs/cpc-nvm3/errcode"
	"github.com/siliconlabs/cpc-nvm3/link"
)

// reconnect closes the endpoint (if still open), gives the link two
// restart attempts, then reopens the NVM3 endpoint. Negotiated caps are
// left untouched — spec §4.3 states they are assumed stable across a
// reconnect.
func (in *Instance) reconnect() error {
	cpcnvm3log.Infof("Attempting to reconnect link")

	if in.endpoint != nil {
		cpcnvm3log.Debugf("Closing endpoint in reconnection attempt")
		_ = in.endpoint.Close()
		in.endpoint = nil
	}

	if in.handle == nil {
		return errcode.New(errcode.NotOpen, "can't reconnect a closed instance")
	}

	cpcnvm3log.Debugf("Restarting link")
	if err := in.handle.Restart(); err != nil {
		if err2 := in.handle.Restart(); err2 != nil {
			return errcode.New(errcode.EndpointError, "link restart failed twice: %v", err2)
		}
	}

	cpcnvm3log.Debugf("Opening endpoint in reconnection attempt")
	ep, err := in.handle.OpenEndpoint(link.NVM3Service, link.TxWindow)
	if err != nil {
		return errcode.New(errcode.EndpointError, "failed to reopen NVM3 endpoint: %v", err)
	}
	in.endpoint = ep
	cpcnvm3log.Debugf("Successfully reconnected")
	return nil
}

// handleLinkError classifies a link-layer error and, for reconnect-eligible
// faults, performs the reconnect before surfacing TryAgain. It never
// retries the caller's in-flight command itself (spec §5's "not retried
// internally" rule).
func (in *Instance) handleLinkError(err error) error {
	switch link.Classify(err) {
	case link.DispositionReconnect:
		cpcnvm3log.Debugf("link error %v, attempting to reconnect", err)
		if rerr := in.reconnect(); rerr != nil {
			return rerr
		}
		return errcode.New(errcode.TryAgain, "reconnected to link, try again")
	case link.DispositionWouldBlock:
		return errcode.New(errcode.TryAgain, "link communication timed out, try again")
	default:
		return errcode.New(errcode.EndpointError, "link encountered an unexpected error: %v", err)
	}
}

// write sends one frame, reconnecting first if the endpoint was previously
// torn down but the link handle is still present.
func (in *Instance) write(frame []byte) error {
	if in.endpoint == nil {
		if in.handle == nil {
			return errcode.New(errcode.NotOpen, "write failed: instance is not open")
		}
		if err := in.reconnect(); err != nil {
			return err
		}
	}
	if err := in.endpoint.Write(frame); err != nil {
		return in.handleLinkError(err)
	}
	return nil
}

// read receives one frame, reconnecting first under the same condition as
// write.
func (in *Instance) read() ([]byte, error) {
	if in.endpoint == nil {
		if in.handle == nil {
			return nil, errcode.New(errcode.NotOpen, "read failed: instance is not open")
		}
		if err := in.reconnect(); err != nil {
			return nil, err
		}
	}
	frame, err := in.endpoint.Read()
	if err != nil {
		return nil, in.handleLinkError(err)
	}
	return frame, nil
}

// SetReadTimeout overrides the endpoint's read timeout (cpc_nvm3_set_timeout).
func (in *Instance) SetReadTimeout(d time.Duration) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.endpoint == nil {
		return errcode.New(errcode.NotOpen, "instance is not open")
	}
	return in.endpoint.SetReadTimeout(d)
}

// ReadTimeout reads back the current read timeout from the open endpoint.
func (in *Instance) ReadTimeout() (time.Duration, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}
	return in.endpoint.ReadTimeout()
}
