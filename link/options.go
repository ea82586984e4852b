// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package link

import "time"

// Options configures a NetHandle/NetEndpoint pair. Single source of truth —
// the NVM3 link always rides a SOCK_SEQPACKET transport, which preserves
// datagram boundaries natively, so there is no framing-protocol knob here,
// only the knobs the endpoint itself needs.
type Options struct {
	// ReadTimeout is the initial per-read deadline, mirrored onto every
	// opened Endpoint. Zero means block indefinitely.
	ReadTimeout time.Duration

	// DialTimeout bounds connecting to the link daemon's socket.
	DialTimeout time.Duration

	// MaxFrameSize bounds a single read buffer.
	MaxFrameSize int
}

var defaultOptions = Options{
	ReadTimeout:  5 * time.Second,
	DialTimeout:  2 * time.Second,
	MaxFrameSize: 4096,
}

// Option configures Options.
type Option func(*Options)

// WithReadTimeout overrides the initial read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReadTimeout = d }
}

// WithDialTimeout overrides the socket dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

// WithMaxFrameSize overrides the maximum single-frame read buffer size.
func WithMaxFrameSize(n int) Option {
	return func(o *Options) { o.MaxFrameSize = n }
}
