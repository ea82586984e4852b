// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package instance

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/siliconlabs/cpc-nvm3/errcode"
)

// hexFrame decodes a space-separated hex byte string into a frame, matching
// the literal-frame notation used by the testable scenarios.
func hexFrame(t *testing.T, s string) []byte {
	t.Helper()
	out, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex frame %q: %v", s, err)
	}
	return out
}

// S1 — Successful tiny write.
func TestWriteData_S1_Success(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 03 00 00 00 00 00"))

	if err := in.WriteData(1234, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
}

// S2 — Write rejected, invalid key.
func TestWriteData_S2_InvalidKey(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 03 01 0A E0 00 F0"))

	err := in.WriteData(1234, []byte{0x01, 0x02})
	if errcode.Of(err) != errcode.InvalidObjectKey {
		t.Fatalf("code = %v, want InvalidObjectKey", errcode.Of(err))
	}
}

// S3 — Write receives unknown ecode.
func TestWriteData_S3_UnknownECode(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 03 01 01 00 00 00"))

	err := in.WriteData(1234, []byte{0x01, 0x02})
	if errcode.Of(err) != errcode.UnknownError {
		t.Fatalf("code = %v, want UnknownError", errcode.Of(err))
	}
}

// S4 — Read single fragment.
func TestReadData_S4_SingleFragment(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	ep.QueueRX(hexFrame(t, "09 0B 00 00 00 00 00 03 01 01 02 03 04 05 06 07 08 09 0A"))

	data, err := in.ReadData(1234, 10)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}
	if !bytes.Equal(data, want) {
		t.Fatalf("data = % X, want % X", data, want)
	}
}

// S5 — Read fails with sl_status=Fail.
func TestReadData_S5_SlStatusFail(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 03 00 01 00 00 00"))

	_, err := in.ReadData(1234, 10)
	if errcode.Of(err) != errcode.Failure {
		t.Fatalf("code = %v, want Failure", errcode.Of(err))
	}
}

// S6 — Transaction-id wrap: the response must echo the wrapped txn to be
// accepted.
func TestWriteData_S6_TxnWrap(t *testing.T) {
	in, h := openedInstance(t)
	in.txn = 0xFF
	ep := h.LastEndpoint()
	// The next outgoing frame carries txn=0x00; queue a matching StatusIs.
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 00 00 00 00 00 00"))

	if err := in.WriteData(1234, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	sent := ep.Written()
	if len(sent) == 0 {
		t.Fatal("expected a frame to have been written")
	}
	last := sent[len(sent)-1]
	if last[7] != 0x00 {
		t.Fatalf("transaction id in sent frame = %d, want 0", last[7])
	}
}

// Mismatched opcode/uid/txn frames are dropped and retried (invariant 4).
func TestAwaitStatus_DropsMismatchedFrames(t *testing.T) {
	in, h := openedInstance(t)
	ep := h.LastEndpoint()
	// Wrong transaction id, should be dropped.
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 99 00 00 00 00 00"))
	// Correct response for txn=3.
	ep.QueueRX(hexFrame(t, "02 05 00 00 00 00 00 03 00 00 00 00 00"))

	if err := in.WriteData(1234, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
}

func TestWriteData_RejectsOversizePayload(t *testing.T) {
	in, _ := openedInstance(t)
	oversized := make([]byte, 70000)
	err := in.WriteData(1, oversized)
	if errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("code = %v, want InvalidArg", errcode.Of(err))
	}
}
