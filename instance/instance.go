// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package instance implements the per-handle NVM3 protocol engine: opening
// and reconnecting the link, fragmenting writes and reassembling reads, and
// mapping wire-level status codes onto the public error code space (spec
// §4.3, §5).
package instance

import (
	"sync"
	"time"

	"github.com/siliconlabs/cpc-nvm3/cpcnvm3log"
	"github.com/siliconlabs/cpc-nvm3/errcode"
	"github.com/siliconlabs/cpc-nvm3/link"
	"github.com/siliconlabs/cpc-nvm3/wire"
)

// ProtocolMajor, ProtocolMinor and ProtocolPatch are the host's own NVM3
// wire protocol version, sent on open and compared to the remote's.
const (
	ProtocolMajor byte = 1
	ProtocolMinor byte = 0
	ProtocolPatch byte = 0
)

// readTimeoutDefault is the initial per-read deadline set on every opened
// endpoint, matching the reference implementation's fixed 5-second timeout.
const readTimeoutDefault = 5 * time.Second

// Instance is the per-handle protocol engine. One Instance serializes all
// operations for a single handle behind its own lock (spec §4.4).
type Instance struct {
	mu sync.Mutex

	uniqueID uint32
	txn      byte

	opener       link.Opener
	instanceName string
	enableTraces bool

	handle   link.Handle
	endpoint link.Endpoint

	maxWriteFragmentSize uint16
	maxWriteSize         uint16
	maxObjectSize        uint16
	haveMaxObjectSize    bool
}

// New returns an unopened Instance bound to uniqueID (normally the host
// process id) and the given link.Opener.
func New(uniqueID uint32, opener link.Opener) *Instance {
	return &Instance{uniqueID: uniqueID, opener: opener}
}

func (in *Instance) nextTxn() byte {
	in.txn++
	return in.txn
}

// IsOpen reports whether the instance currently has an open endpoint.
func (in *Instance) IsOpen() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.endpoint != nil
}

// Open performs the full open handshake: init the link, open the NVM3
// endpoint, compute the maximum write fragment size from the link's
// capability, set the read timeout, query the remote's protocol version
// (failing with InvalidVersion on a major mismatch), then query
// MaxWriteSize. Every open restarts the transaction counter, so the
// handshake always uses transaction ids 1 and 2. Any failure along the way
// tears everything back down (spec §4.3's "open" sequence).
func (in *Instance) Open(instanceName string, enableTraces bool) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.handle != nil || in.endpoint != nil {
		return errcode.New(errcode.NotClosed, "instance already open")
	}

	cpcnvm3log.Infof("Opening [CPC NVM3 v%d.%d.%d]", ProtocolMajor, ProtocolMinor, ProtocolPatch)

	in.instanceName = instanceName
	in.enableTraces = enableTraces
	in.txn = 0

	if err := in.open(); err != nil {
		in.teardownLocked()
		return err
	}
	return nil
}

func (in *Instance) open() error {
	h, err := in.opener(in.instanceName, in.enableTraces, func() {
		cpcnvm3log.Debugf("link reset received")
	})
	if err != nil {
		return errcode.New(errcode.EndpointError, "failed to init link: %v", err)
	}
	in.handle = h

	ep, err := h.OpenEndpoint(link.NVM3Service, link.TxWindow)
	if err != nil {
		return errcode.New(errcode.EndpointError, "failed to open NVM3 endpoint: %v", err)
	}
	in.endpoint = ep

	maxWrite, err := ep.MaxWriteSize()
	if err != nil {
		return errcode.New(errcode.EndpointError, "failed to query link max write size: %v", err)
	}
	if maxWrite <= wire.WriteOverhead {
		return errcode.New(errcode.EndpointError, "link max write size %d too small for protocol overhead", maxWrite)
	}
	in.maxWriteFragmentSize = uint16(maxWrite - wire.WriteOverhead)
	cpcnvm3log.Debugf("Maximum fragment size is %d bytes", in.maxWriteFragmentSize)

	if err := ep.SetReadTimeout(readTimeoutDefault); err != nil {
		return errcode.New(errcode.EndpointError, "failed to set read timeout: %v", err)
	}

	version, err := in.requestVersion()
	if err != nil {
		return err
	}
	cpcnvm3log.Infof("[CPC Secondary NVM3 API v%d.%d.%d]", version.Major, version.Minor, version.Patch)
	if version.Major != ProtocolMajor {
		return errcode.New(errcode.InvalidVersion, "secondary major version %d does not match host %d", version.Major, ProtocolMajor)
	}

	maxWriteSize, err := in.requestPropValue(wire.PropertyMaxWriteSize)
	if err != nil {
		return err
	}
	in.maxWriteSize = maxWriteSize
	cpcnvm3log.Debugf("Maximum write size is %d bytes", maxWriteSize)

	cpcnvm3log.Infof("Successfully opened NVM3 instance")
	return nil
}

func (in *Instance) teardownLocked() {
	if in.endpoint != nil {
		_ = in.endpoint.Close()
	}
	if in.handle != nil {
		_ = in.handle.Deinit()
	}
	in.endpoint = nil
	in.handle = nil
	in.maxWriteFragmentSize = 0
	in.maxWriteSize = 0
	in.haveMaxObjectSize = false
	in.maxObjectSize = 0
}

// Close closes the endpoint and deinits the link, matching spec §4.3's
// two-step close/deinit teardown.
func (in *Instance) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return errcode.New(errcode.NotOpen, "instance is not open")
	}
	if err := in.endpoint.Close(); err != nil {
		return errcode.New(errcode.EndpointError, "failed to close endpoint: %v", err)
	}
	if in.handle != nil {
		if err := in.handle.Deinit(); err != nil {
			return errcode.New(errcode.EndpointError, "failed to deinit link: %v", err)
		}
	}
	in.endpoint = nil
	in.handle = nil
	return nil
}

// MaxWriteSize returns the negotiated maximum single-object write size.
func (in *Instance) MaxWriteSize() (uint16, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}
	return in.maxWriteSize, nil
}

// MaxObjectSize returns the negotiated maximum object size, querying it
// from the remote on first use and caching the result for the life of the
// open instance.
func (in *Instance) MaxObjectSize() (uint16, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}
	if in.haveMaxObjectSize {
		return in.maxObjectSize, nil
	}
	v, err := in.requestPropValue(wire.PropertyMaxObjectSize)
	if err != nil {
		return 0, err
	}
	in.maxObjectSize = v
	in.haveMaxObjectSize = true
	return v, nil
}
