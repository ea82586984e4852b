// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package link defines the contract the instance engine consumes from the
// underlying datagram endpoint library (spec §4.2): a Handle opens Endpoints
// on a service id, and an Endpoint reads and writes whole frames with a
// configurable read timeout. Concrete endpoints preserve message boundaries
// the way a SeqPacket/Datagram transport does — no additional
// length-prefixing belongs at this layer, since the wire package's own
// 8-byte header already self-describes body length.
package link

import (
	"errors"
	"time"
)

// ServiceID identifies the destination service on the remote multiplexed
// over a single link (CPC daemon terms: an endpoint id).
type ServiceID uint8

// NVM3Service is the service id the host opens for the NVM3 storage service.
const NVM3Service ServiceID = 8

// TxWindow is the flow-control window requested when opening the NVM3
// endpoint. The protocol allows exactly one outstanding command per
// instance, so a window of 1 is always sufficient (spec §4.3, §9).
const TxWindow = 1

// ResetCallback is invoked by the link implementation when the remote
// signals a reset. NetHandle stores it without ever invoking it, and the
// linktest mock does not receive it; it exists so Opener's contract matches
// the underlying library's init(instance_name, enable_traces,
// reset_callback) signature.
type ResetCallback func()

// Handle is a connection to the link daemon from which service endpoints are
// opened. It corresponds to libcpc's cpc_handle.
type Handle interface {
	OpenEndpoint(service ServiceID, txWindow uint8) (Endpoint, error)
	// Restart attempts to reinitialize the link after a fault. The instance
	// engine gives this two attempts before giving up (spec §4.3).
	Restart() error
	Deinit() error
}

// Endpoint is a single opened service connection over the link. It
// corresponds to libcpc's cpc_endpoint.
type Endpoint interface {
	Write(frame []byte) error
	// Read blocks until a frame arrives or the configured read timeout
	// expires, in which case it returns an error classified as
	// DispositionWouldBlock by Classify.
	Read() ([]byte, error)
	Close() error
	MaxWriteSize() (int, error)
	SetReadTimeout(d time.Duration) error
	ReadTimeout() (time.Duration, error)
}

// Opener opens a new Handle, mirroring the underlying endpoint library's
// init(instance_name, enable_traces, reset_callback) contract.
type Opener func(instanceName string, enableTraces bool, onReset ResetCallback) (Handle, error)

// Disposition classifies a link-layer error for the instance engine.
type Disposition int

const (
	// DispositionFatal is a link error not eligible for reconnect; surfaced
	// to the caller as CPC_ENDPOINT_ERROR.
	DispositionFatal Disposition = iota
	// DispositionWouldBlock means the read timed out; surfaced as TRY_AGAIN
	// without a reconnect attempt.
	DispositionWouldBlock
	// DispositionReconnect means the link fault is reconnect-eligible
	// (connection reset, broken pipe, interrupted); the engine closes,
	// restarts and reopens, then surfaces TRY_AGAIN.
	DispositionReconnect
)

// ErrNotOpen is returned by an Endpoint obtained from a Handle that has no
// open endpoint (e.g. after Close, before a reconnect completes).
var ErrNotOpen = errors.New("link: endpoint not open")
