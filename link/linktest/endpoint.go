// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linktest

import (
	"encoding/binary"
	"sync"
	"time"

	"code.hybscloud.com/iox"

	"github.com/siliconlabs/cpc-nvm3/link"
)

// rxItem is either a queued response frame or a scripted error to return
// from Read, the way the reference mock's test_data_fifo_rx queue and its
// empty-queue Errno(-1) case are two branches of one pop.
type rxItem struct {
	frame []byte
	err   error
}

// Endpoint is a scripted link.Endpoint. Reads pop a FIFO queue of canned
// frames (push with QueueRX); once the queue is empty, Read returns
// iox.ErrWouldBlock, the direct analogue of the reference mock's
// Errno(-1)-on-empty-queue behavior, translated into this module's
// nonblocking vocabulary (link.Classify maps it to DispositionWouldBlock).
type Endpoint struct {
	mu       sync.Mutex
	rx       []rxItem
	tx       [][]byte
	closed   bool
	timeout  time.Duration
	maxWrite int
}

var _ link.Endpoint = (*Endpoint)(nil)

// NewEndpoint returns an Endpoint with no queued responses.
func NewEndpoint() *Endpoint {
	return &Endpoint{maxWrite: MaxWriteCapability}
}

// QueueRX appends a canned response frame to the read queue.
func (e *Endpoint) QueueRX(frame []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rx = append(e.rx, rxItem{frame: frame})
}

// QueueRXError appends a scripted error to be returned by the next Read,
// e.g. syscall.ECONNRESET to exercise the reconnect path.
func (e *Endpoint) QueueRXError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rx = append(e.rx, rxItem{err: err})
}

// Write records the frame for later inspection via Written; like the
// reference mock, it never fails.
func (e *Endpoint) Write(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := append([]byte(nil), frame...)
	e.tx = append(e.tx, cp)
	return nil
}

// Written returns every frame handed to Write, in order.
func (e *Endpoint) Written() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.tx))
	copy(out, e.tx)
	return out
}

// Read pops the front of the RX queue, or returns iox.ErrWouldBlock if it
// is empty.
func (e *Endpoint) Read() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.rx) == 0 {
		return nil, iox.ErrWouldBlock
	}
	item := e.rx[0]
	e.rx = e.rx[1:]
	if item.err != nil {
		return nil, item.err
	}
	return item.frame, nil
}

func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (e *Endpoint) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Endpoint) MaxWriteSize() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxWrite, nil
}

func (e *Endpoint) SetReadTimeout(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
	return nil
}

func (e *Endpoint) ReadTimeout() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeout, nil
}

// VersionFrame builds the literal VersionIs frame the reference mock
// preloads on endpoint open: cmd=0x01, len=3, the given unique_id and
// transaction id, followed by major/minor/patch.
func VersionFrame(uniqueID uint32, txn byte, major, minor, patch byte) []byte {
	b := make([]byte, 0, 11)
	b = append(b, 0x01, 0x03, 0x00)
	var uid [4]byte
	binary.LittleEndian.PutUint32(uid[:], uniqueID)
	b = append(b, uid[:]...)
	b = append(b, txn, major, minor, patch)
	return b
}

// MaxWriteSizeFrame builds the literal PropValueIs frame the reference mock
// preloads on endpoint open: cmd=0x05, len=3, prop=MaxWriteSize(0x02), and
// the given value as a little-endian u16.
func MaxWriteSizeFrame(uniqueID uint32, txn byte, value uint16) []byte {
	b := make([]byte, 0, 11)
	b = append(b, 0x05, 0x03, 0x00)
	var uid [4]byte
	binary.LittleEndian.PutUint32(uid[:], uniqueID)
	b = append(b, uid[:]...)
	b = append(b, txn, 0x02)
	var val [2]byte
	binary.LittleEndian.PutUint16(val[:], value)
	b = append(b, val[:]...)
	return b
}
