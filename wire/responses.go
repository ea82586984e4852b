// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
)

// classify checks a response header against the set of opcodes a command
// will accept and, if the opcode matches one of them, against the
// outstanding command's (unique_id, transaction_id). It returns the matched
// opcode plus the §4.1 validation outcome (see ValidateHeader).
func classify(h Header, frameLen int, uid uint32, txn byte, allowed ...RemoteCmd) (RemoteCmd, Mismatch, error) {
	got := RemoteCmd(h.Cmd)
	matched := false
	for _, c := range allowed {
		if c == got {
			matched = true
			break
		}
	}
	if !matched {
		return got, MismatchNotOurs, fmt.Errorf("%w: got %s", ErrWrongCmd, got)
	}
	mm, err := ValidateHeader(h, Expectation{Cmd: got, UniqueID: uid, Txn: txn}, frameLen)
	return got, mm, err
}

// VersionIs is the body of a VersionIs response.
type VersionIs struct {
	Major byte
	Minor byte
	Patch byte
}

// ParseVersionIs validates and decodes a VersionIs response.
func ParseVersionIs(frame []byte, uid uint32, txn byte) (VersionIs, Mismatch, error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return VersionIs{}, MismatchNotOurs, err
	}
	_, mm, err := classify(h, len(frame), uid, txn, CmdVersionIs)
	if mm != MismatchNone {
		return VersionIs{}, mm, err
	}
	body := frame[HeaderSize:]
	if len(body) != 3 {
		return VersionIs{}, MismatchBadLength, fmt.Errorf("%w: VersionIs body", ErrTruncated)
	}
	return VersionIs{Major: body[0], Minor: body[1], Patch: body[2]}, MismatchNone, nil
}

// PropValueIs is the body of a PropValueIs response.
type PropValueIs struct {
	Property PropertyType
	Value    uint16
}

// ParsePropValueIs validates and decodes a response to PropValueGet, which is
// either a PropValueIs or a StatusIs.
func ParsePropValueIs(frame []byte, uid uint32, txn byte) (propValue *PropValueIs, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdPropValueIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) != 3 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: PropValueIs body", ErrTruncated)
	}
	prop := PropertyType(body[0])
	if prop != PropertyMaxObjectSize && prop != PropertyMaxWriteSize {
		return nil, nil, MismatchNone, ErrUnknownProp
	}
	value := binary.LittleEndian.Uint16(body[1:3])
	return &PropValueIs{Property: prop, Value: value}, nil, MismatchNone, nil
}

func parseStatusBody(body []byte) (Status, error) {
	if len(body) != 5 {
		return Status{}, fmt.Errorf("%w: StatusIs body", ErrTruncated)
	}
	responseType := StatusResponseType(body[0])
	code := binary.LittleEndian.Uint32(body[1:5])
	switch responseType {
	case StatusResponseSlStatus:
		return Status{Kind: StatusKindSlStatus, SlStatus: slStatusFromWire(code)}, nil
	case StatusResponseECode:
		return Status{Kind: StatusKindECode, ECode: eCodeFromWire(code)}, nil
	default:
		return Status{Kind: StatusKindUnknown}, nil
	}
}

// ParseStatusIs validates and decodes a bare StatusIs response.
func ParseStatusIs(frame []byte, uid uint32, txn byte) (Status, Mismatch, error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return Status{}, MismatchNotOurs, err
	}
	_, mm, err := classify(h, len(frame), uid, txn, CmdStatusIs)
	if mm != MismatchNone {
		return Status{}, mm, err
	}
	st, perr := parseStatusBody(frame[HeaderSize:])
	return st, MismatchNone, perr
}

// ReadDataIs is the body of a ReadDataIs response fragment.
type ReadDataIs struct {
	LastFrag bool
	Data     []byte
}

// ParseReadData validates and decodes a response to ReadData, which is
// either a ReadDataIs fragment or a StatusIs.
func ParseReadData(frame []byte, uid uint32, txn byte) (data *ReadDataIs, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdReadDataIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) < 1 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: ReadDataIs body", ErrTruncated)
	}
	out := &ReadDataIs{LastFrag: body[0] != 0, Data: append([]byte(nil), body[1:]...)}
	return out, nil, MismatchNone, nil
}

// EnumerateObjectsIs is the body of an EnumerateObjectsIs response fragment.
type EnumerateObjectsIs struct {
	LastFrag bool
	Data     []byte // raw key bytes; caller reassembles across fragments
}

// ParseEnumerateObjects validates and decodes a response to
// EnumerateObjects, which is either an EnumerateObjectsIs fragment or a
// StatusIs.
func ParseEnumerateObjects(frame []byte, uid uint32, txn byte) (data *EnumerateObjectsIs, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdEnumerateObjectsIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) < 1 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: EnumerateObjectsIs body", ErrTruncated)
	}
	out := &EnumerateObjectsIs{LastFrag: body[0] != 0, Data: append([]byte(nil), body[1:]...)}
	return out, nil, MismatchNone, nil
}

// DecodeKeys decodes a whole multiple of 4 raw bytes into little-endian u32
// object keys, per spec §4.3's enumerate reassembly rule.
func DecodeKeys(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("wire: enumerate payload length %d is not a multiple of 4", len(data))
	}
	keys := make([]uint32, len(data)/4)
	for i := range keys {
		keys[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return keys, nil
}

// ObjectInfoIs is the body of an ObjectInfoIs response.
type ObjectInfoIs struct {
	Type ObjectType
	Size uint16
}

// ParseObjectInfo validates and decodes a response to GetObjectInfo, which
// is either an ObjectInfoIs or a StatusIs.
func ParseObjectInfo(frame []byte, uid uint32, txn byte) (info *ObjectInfoIs, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdObjectInfoIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) != 3 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: ObjectInfoIs body", ErrTruncated)
	}
	return &ObjectInfoIs{Type: ObjectTypeFromWire(body[0]), Size: binary.LittleEndian.Uint16(body[1:3])}, nil, MismatchNone, nil
}

// ParseCounter validates and decodes a response to ReadCounter or
// IncrementCounter, which is either a CounterIs or a StatusIs.
func ParseCounter(frame []byte, uid uint32, txn byte) (value *uint32, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdCounterIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) != 4 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: CounterIs body", ErrTruncated)
	}
	v := binary.LittleEndian.Uint32(body)
	return &v, nil, MismatchNone, nil
}

// ParseObjectCount validates and decodes a response to GetObjectCount, which
// is either an ObjectCountIs or a StatusIs.
func ParseObjectCount(frame []byte, uid uint32, txn byte) (count *uint16, status *Status, mm Mismatch, err error) {
	h, err := ParseHeader(frame)
	if err != nil {
		return nil, nil, MismatchNotOurs, err
	}
	matched, mm, err := classify(h, len(frame), uid, txn, CmdObjectCountIs, CmdStatusIs)
	if mm != MismatchNone {
		return nil, nil, mm, err
	}
	body := frame[HeaderSize:]
	if matched == CmdStatusIs {
		st, perr := parseStatusBody(body)
		return nil, &st, MismatchNone, perr
	}
	if len(body) != 2 {
		return nil, nil, MismatchBadLength, fmt.Errorf("%w: ObjectCountIs body", ErrTruncated)
	}
	v := binary.LittleEndian.Uint16(body)
	return &v, nil, MismatchNone, nil
}

// ParseWriteStatus validates and decodes the StatusIs response to WriteData,
// WriteCounter or DeleteObject.
func ParseWriteStatus(frame []byte, uid uint32, txn byte) (Status, Mismatch, error) {
	return ParseStatusIs(frame, uid, txn)
}
