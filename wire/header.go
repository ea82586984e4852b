// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed, packed, little-endian frame header: cmd(1) +
// length(2) + unique_id(4) + transaction_id(1).
const HeaderSize = 8

var (
	ErrShortFrame  = errors.New("wire: frame shorter than header")
	ErrWrongCmd    = errors.New("wire: unexpected response command")
	ErrWrongUID    = errors.New("wire: unexpected unique id")
	ErrWrongTxn    = errors.New("wire: unexpected transaction id")
	ErrBadLength   = errors.New("wire: body length does not match header")
	ErrTruncated   = errors.New("wire: body shorter than declared length")
	ErrUnknownProp = errors.New("wire: unknown property type in response")
)

// Header is the frame header shared by every request and response.
type Header struct {
	Cmd           byte
	Length        uint16
	UniqueID      uint32
	TransactionID byte
}

// NewHeader builds a header for an outgoing command.
func NewHeader(cmd HostCmd, bodyLen int, uniqueID uint32, transactionID byte) Header {
	return Header{
		Cmd:           byte(cmd),
		Length:        uint16(bodyLen),
		UniqueID:      uniqueID,
		TransactionID: transactionID,
	}
}

// Marshal appends the packed little-endian header to dst.
func (h Header) Marshal(dst []byte) []byte {
	var b [HeaderSize]byte
	b[0] = h.Cmd
	binary.LittleEndian.PutUint16(b[1:3], h.Length)
	binary.LittleEndian.PutUint32(b[3:7], h.UniqueID)
	b[7] = h.TransactionID
	return append(dst, b[:]...)
}

// ParseHeader reads the fixed header from the front of a frame.
func ParseHeader(frame []byte) (Header, error) {
	if len(frame) < HeaderSize {
		return Header{}, ErrShortFrame
	}
	return Header{
		Cmd:           frame[0],
		Length:        binary.LittleEndian.Uint16(frame[1:3]),
		UniqueID:      binary.LittleEndian.Uint32(frame[3:7]),
		TransactionID: frame[7],
	}, nil
}

// Expectation is the (cmd, unique_id, transaction_id) triple a command
// object expects to see echoed by a matching response.
type Expectation struct {
	Cmd      RemoteCmd
	UniqueID uint32
	Txn      byte
}

// Mismatch classifies how a received frame fails to match an Expectation.
// Opcode, unique-id and transaction-id mismatches mean "not our frame" and
// are retried by the caller; a length mismatch is a protocol failure.
type Mismatch int

const (
	MismatchNone Mismatch = iota
	MismatchNotOurs
	MismatchBadLength
)

// ValidateHeader checks a response header against the expectation of the
// outstanding command and the frame's actual length, per spec §4.1's
// deserialization rule: (i) opcode, (iii) unique_id, (iv) transaction_id
// mismatches are "not ours" (dropped, retried); (ii) a length mismatch is a
// protocol failure surfaced to the caller.
func ValidateHeader(h Header, want Expectation, frameLen int) (Mismatch, error) {
	if h.Cmd != byte(want.Cmd) {
		return MismatchNotOurs, fmt.Errorf("%w: expected %s got %s", ErrWrongCmd, want.Cmd, RemoteCmd(h.Cmd))
	}
	if h.UniqueID != want.UniqueID {
		return MismatchNotOurs, fmt.Errorf("%w: expected %d got %d", ErrWrongUID, want.UniqueID, h.UniqueID)
	}
	if h.TransactionID != want.Txn {
		return MismatchNotOurs, fmt.Errorf("%w: expected %d got %d", ErrWrongTxn, want.Txn, h.TransactionID)
	}
	expectedBodyLen := frameLen - HeaderSize
	if int(h.Length) != expectedBodyLen {
		return MismatchBadLength, fmt.Errorf("%w: expected %d got %d", ErrBadLength, expectedBodyLen, h.Length)
	}
	return MismatchNone, nil
}
