// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package link

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// NetHandle is a Handle backed by SOCK_SEQPACKET Unix domain sockets to the
// link daemon. It dials nothing at construction; each OpenEndpoint call
// dials its own connection and hands out a NetEndpoint over it.
// unixpacket preserves datagram boundaries end to end, so
// no length-prefix framing is layered on top of the wire package's own
// header.
type NetHandle struct {
	addr string
	opts Options

	mu      sync.Mutex
	onReset ResetCallback
}

var _ Handle = (*NetHandle)(nil)

// DialNet returns a NetHandle for the link daemon socket at addr; no
// connection is made until OpenEndpoint.
func DialNet(addr string, onReset ResetCallback, opts ...Option) (*NetHandle, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &NetHandle{addr: addr, opts: o, onReset: onReset}, nil
}

// OpenEndpoint dials a fresh unixpacket connection for the given service.
// NVM3's wire header carries no service id of its own, so the service is
// selected out of band by the socket path "<addr>.svc<service>".
func (h *NetHandle) OpenEndpoint(service ServiceID, txWindow uint8) (Endpoint, error) {
	path := fmt.Sprintf("%s.svc%d", h.addr, service)
	conn, err := net.DialTimeout("unixpacket", path, h.opts.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("link: dial %s: %w", path, err)
	}
	ep := &NetEndpoint{
		conn:    conn,
		timeout: h.opts.ReadTimeout,
		bufSize: h.opts.MaxFrameSize,
	}
	if h.opts.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	}
	return ep, nil
}

// Restart is a no-op for NetHandle: the underlying socket requires no
// re-initialization step distinct from redialing a fresh endpoint, unlike
// the reference daemon client library's cpc_restart(). It exists to satisfy
// Handle and to give mocks a hook to simulate restart failure.
func (h *NetHandle) Restart() error {
	return nil
}

// Deinit is a no-op: NetHandle owns no persistent resource outside the
// endpoints it opens.
func (h *NetHandle) Deinit() error {
	return nil
}

// NetEndpoint is an Endpoint backed by a single unixpacket net.Conn. Each
// Read/Write carries one whole datagram in or out, so no length-prefix
// header is added beyond the wire package's own frame header.
type NetEndpoint struct {
	conn    net.Conn
	timeout time.Duration
	bufSize int
	closed  atomic.Bool
}

var _ Endpoint = (*NetEndpoint)(nil)

func (e *NetEndpoint) Write(frame []byte) error {
	if e.closed.Load() {
		return ErrNotOpen
	}
	_, err := e.conn.Write(frame)
	return err
}

func (e *NetEndpoint) Read() ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrNotOpen
	}
	if e.timeout > 0 {
		if err := e.conn.SetReadDeadline(time.Now().Add(e.timeout)); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, e.bufSize)
	n, err := e.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (e *NetEndpoint) Close() error {
	e.closed.Store(true)
	return e.conn.Close()
}

func (e *NetEndpoint) MaxWriteSize() (int, error) {
	if e.closed.Load() {
		return 0, ErrNotOpen
	}
	return e.bufSize, nil
}

func (e *NetEndpoint) SetReadTimeout(d time.Duration) error {
	if e.closed.Load() {
		return ErrNotOpen
	}
	e.timeout = d
	if d <= 0 {
		return e.conn.SetReadDeadline(time.Time{})
	}
	return e.conn.SetReadDeadline(time.Now().Add(d))
}

func (e *NetEndpoint) ReadTimeout() (time.Duration, error) {
	if e.closed.Load() {
		return 0, ErrNotOpen
	}
	return e.timeout, nil
}
