// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader(CmdWriteData, 5, 0xDEADBEEF, 0x42)
	frame := h.Marshal(nil)
	if len(frame) != HeaderSize {
		t.Fatalf("marshaled header length = %d, want %d", len(frame), HeaderSize)
	}
	got, err := ParseHeader(frame)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got != h {
		t.Fatalf("ParseHeader = %+v, want %+v", got, h)
	}
}

func TestParseHeader_ShortFrame(t *testing.T) {
	if _, err := ParseHeader([]byte{1, 2, 3}); err != ErrShortFrame {
		t.Fatalf("err = %v, want ErrShortFrame", err)
	}
}

func TestValidateHeader(t *testing.T) {
	want := Expectation{Cmd: CmdVersionIs, UniqueID: 1, Txn: 3}

	ok := Header{Cmd: byte(CmdVersionIs), Length: 2, UniqueID: 1, TransactionID: 3}
	if mm, err := ValidateHeader(ok, want, HeaderSize+2); mm != MismatchNone || err != nil {
		t.Fatalf("expected match, got mm=%v err=%v", mm, err)
	}

	wrongUID := Header{Cmd: byte(CmdVersionIs), Length: 2, UniqueID: 2, TransactionID: 3}
	if mm, _ := ValidateHeader(wrongUID, want, HeaderSize+2); mm != MismatchNotOurs {
		t.Fatalf("wrong uid: mm = %v, want MismatchNotOurs", mm)
	}

	badLen := Header{Cmd: byte(CmdVersionIs), Length: 99, UniqueID: 1, TransactionID: 3}
	if mm, _ := ValidateHeader(badLen, want, HeaderSize+2); mm != MismatchBadLength {
		t.Fatalf("bad length: mm = %v, want MismatchBadLength", mm)
	}
}

func TestBuildParseGetVersion(t *testing.T) {
	frame := BuildGetVersion(7, 1)
	h, err := ParseHeader(frame)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Cmd != byte(CmdGetVersion) || h.Length != 0 || h.UniqueID != 7 || h.TransactionID != 1 {
		t.Fatalf("header = %+v", h)
	}

	resp := append(Header{Cmd: byte(CmdVersionIs), Length: 3, UniqueID: 7, TransactionID: 1}.Marshal(nil), 1, 2, 3)
	v, mm, err := ParseVersionIs(resp, 7, 1)
	if err != nil || mm != MismatchNone {
		t.Fatalf("ParseVersionIs: mm=%v err=%v", mm, err)
	}
	if v != (VersionIs{Major: 1, Minor: 2, Patch: 3}) {
		t.Fatalf("version = %+v", v)
	}
}

func TestBuildParsePropValueGet(t *testing.T) {
	resp := append(Header{Cmd: byte(CmdPropValueIs), Length: 3, UniqueID: 0, TransactionID: 5}.Marshal(nil), byte(PropertyMaxWriteSize), 0x00, 0x01)
	pv, status, mm, err := ParsePropValueIs(resp, 0, 5)
	if err != nil || mm != MismatchNone || status != nil {
		t.Fatalf("ParsePropValueIs: mm=%v err=%v status=%v", mm, err, status)
	}
	if pv.Value != 256 {
		t.Fatalf("value = %d, want 256", pv.Value)
	}
}

func TestWriteData_FragmentLayout(t *testing.T) {
	data := []byte{1, 2, 3}
	frame := BuildWriteData(9, 2, 1234, 10, true, data)
	h, err := ParseHeader(frame)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if int(h.Length) != 4+2+1+len(data) {
		t.Fatalf("declared length = %d", h.Length)
	}
	body := frame[HeaderSize:]
	if !bytes.Equal(body[7:], data) {
		t.Fatalf("payload = %v, want %v", body[7:], data)
	}
	if body[6] != 1 {
		t.Fatalf("last_frag byte = %d, want 1", body[6])
	}
}

func TestDecodeKeys(t *testing.T) {
	raw := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	keys, err := DecodeKeys(raw)
	if err != nil {
		t.Fatalf("DecodeKeys: %v", err)
	}
	if len(keys) != 2 || keys[0] != 1 || keys[1] != 2 {
		t.Fatalf("keys = %v", keys)
	}
	if _, err := DecodeKeys([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for non-multiple-of-4 length")
	}
}

func TestStatusBody_SlStatusAndECode(t *testing.T) {
	slOk := append(Header{Cmd: byte(CmdStatusIs), Length: 5, UniqueID: 0, TransactionID: 1}.Marshal(nil), byte(StatusResponseSlStatus), 0, 0, 0, 0)
	st, mm, err := ParseStatusIs(slOk, 0, 1)
	if err != nil || mm != MismatchNone {
		t.Fatalf("ParseStatusIs: mm=%v err=%v", mm, err)
	}
	if !st.IsOk() {
		t.Fatalf("status = %+v, want Ok", st)
	}

	ecode := append(Header{Cmd: byte(CmdStatusIs), Length: 5, UniqueID: 0, TransactionID: 1}.Marshal(nil), byte(StatusResponseECode), 0x0A, 0xE0, 0x00, 0xF0)
	st2, _, err := ParseStatusIs(ecode, 0, 1)
	if err != nil {
		t.Fatalf("ParseStatusIs: %v", err)
	}
	if st2.Kind != StatusKindECode || st2.ECode != ECodeKeyInvalid {
		t.Fatalf("status = %+v, want ECodeKeyInvalid", st2)
	}
}

func TestObjectTypeFromWire(t *testing.T) {
	if ObjectTypeFromWire(0) != ObjectTypeData {
		t.Fatal("0 should decode to ObjectTypeData")
	}
	if ObjectTypeFromWire(1) != ObjectTypeCounter {
		t.Fatal("1 should decode to ObjectTypeCounter")
	}
	if ObjectTypeFromWire(99) != ObjectTypeUnknown {
		t.Fatal("99 should decode to ObjectTypeUnknown")
	}
}
