// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package linktest provides a scripted, in-process link.Handle/link.Endpoint
// pair for exercising the instance engine without a real link daemon. It
// reproduces the canned open sequence of the original reference mock: the
// moment an endpoint is opened, a VersionIs and a PropValueIs(MaxWriteSize)
// frame are queued so that instance.Open's handshake succeeds immediately.
package linktest

import (
	"sync"

	"github.com/siliconlabs/cpc-nvm3/link"
)

// MaxWriteCapability is the maximum write size the mock's opened endpoint
// reports, matching the reference mock's fixed 256-byte capability.
const MaxWriteCapability = 256

// Handle is a scripted link.Handle. Restart and Deinit succeed unless
// RestartErr/DeinitErr is set, letting tests exercise the reconnect and
// teardown failure paths.
type Handle struct {
	mu sync.Mutex

	RestartErr error
	DeinitErr  error

	restarts int
	endpoint *Endpoint
}

var _ link.Handle = (*Handle)(nil)

// NewHandle returns a scripted Handle with no endpoint opened yet.
func NewHandle() *Handle {
	return &Handle{}
}

// OpenEndpoint returns a fresh scripted Endpoint pre-seeded with the
// VersionIs and PropValueIs(MaxWriteSize) frames every NVM3 open handshake
// expects, at unique_id 0 with transaction ids 1 and 2.
func (h *Handle) OpenEndpoint(service link.ServiceID, txWindow uint8) (link.Endpoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ep := NewEndpoint()
	ep.QueueRX(VersionFrame(0, 1, 1, 0, 0))
	ep.QueueRX(MaxWriteSizeFrame(0, 2, MaxWriteCapability))
	h.endpoint = ep
	return ep, nil
}

// Restart increments the restart counter and returns RestartErr, matching
// the instance engine's "restart, then give it one more try" reconnect
// policy (spec §4.3).
func (h *Handle) Restart() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restarts++
	return h.RestartErr
}

// Restarts reports how many times Restart has been called.
func (h *Handle) Restarts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restarts
}

func (h *Handle) Deinit() error {
	return h.DeinitErr
}

// LastEndpoint returns the most recently opened scripted endpoint, or nil.
func (h *Handle) LastEndpoint() *Endpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.endpoint
}
