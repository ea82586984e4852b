// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/binary"

// BuildGetVersion serializes a GetVersion request (empty body).
func BuildGetVersion(uniqueID uint32, txn byte) []byte {
	h := NewHeader(CmdGetVersion, 0, uniqueID, txn)
	return h.Marshal(nil)
}

// BuildPropValueGet serializes a PropValueGet request.
func BuildPropValueGet(uniqueID uint32, txn byte, prop PropertyType) []byte {
	h := NewHeader(CmdPropValueGet, 1, uniqueID, txn)
	b := h.Marshal(nil)
	return append(b, byte(prop))
}

// WriteOverhead is the frame header plus the fixed portion of the WriteData
// body (object_key + offset + last_frag) that callers must subtract from a
// transport's maximum frame size to get the maximum fragment payload, per
// spec §4.3.
const WriteOverhead = HeaderSize + 4 + 2 + 1

// BuildWriteData serializes one WriteData fragment.
func BuildWriteData(uniqueID uint32, txn byte, key uint32, offset uint16, lastFrag bool, data []byte) []byte {
	bodyLen := 4 + 2 + 1 + len(data)
	h := NewHeader(CmdWriteData, bodyLen, uniqueID, txn)
	b := h.Marshal(make([]byte, 0, HeaderSize+bodyLen))
	var fixed [7]byte
	binary.LittleEndian.PutUint32(fixed[0:4], key)
	binary.LittleEndian.PutUint16(fixed[4:6], offset)
	if lastFrag {
		fixed[6] = 1
	}
	b = append(b, fixed[:]...)
	return append(b, data...)
}

// BuildReadData serializes a ReadData request.
func BuildReadData(uniqueID uint32, txn byte, key uint32, maxReadSize uint16) []byte {
	h := NewHeader(CmdReadData, 6, uniqueID, txn)
	b := h.Marshal(make([]byte, 0, HeaderSize+6))
	var body [6]byte
	binary.LittleEndian.PutUint32(body[0:4], key)
	binary.LittleEndian.PutUint16(body[4:6], maxReadSize)
	return append(b, body[:]...)
}

// BuildEnumerateObjects serializes an EnumerateObjects request.
func BuildEnumerateObjects(uniqueID uint32, txn byte, maxObjects uint16) []byte {
	h := NewHeader(CmdEnumerateObjects, 2, uniqueID, txn)
	b := h.Marshal(make([]byte, 0, HeaderSize+2))
	var body [2]byte
	binary.LittleEndian.PutUint16(body[:], maxObjects)
	return append(b, body[:]...)
}

// BuildGetObjectCount serializes a GetObjectCount request (empty body).
func BuildGetObjectCount(uniqueID uint32, txn byte) []byte {
	h := NewHeader(CmdGetObjectCount, 0, uniqueID, txn)
	return h.Marshal(nil)
}

// BuildGetObjectInfo serializes a GetObjectInfo request.
func BuildGetObjectInfo(uniqueID uint32, txn byte, key uint32) []byte {
	return buildKeyOnly(CmdGetObjectInfo, uniqueID, txn, key)
}

// BuildReadCounter serializes a ReadCounter request.
func BuildReadCounter(uniqueID uint32, txn byte, key uint32) []byte {
	return buildKeyOnly(CmdReadCounter, uniqueID, txn, key)
}

// BuildIncrementCounter serializes an IncrementCounter request.
func BuildIncrementCounter(uniqueID uint32, txn byte, key uint32) []byte {
	return buildKeyOnly(CmdIncrementCounter, uniqueID, txn, key)
}

// BuildDeleteObject serializes a DeleteObject request.
func BuildDeleteObject(uniqueID uint32, txn byte, key uint32) []byte {
	return buildKeyOnly(CmdDeleteObject, uniqueID, txn, key)
}

func buildKeyOnly(cmd HostCmd, uniqueID uint32, txn byte, key uint32) []byte {
	h := NewHeader(cmd, 4, uniqueID, txn)
	b := h.Marshal(make([]byte, 0, HeaderSize+4))
	var body [4]byte
	binary.LittleEndian.PutUint32(body[:], key)
	return append(b, body[:]...)
}

// BuildWriteCounter serializes a WriteCounter request.
func BuildWriteCounter(uniqueID uint32, txn byte, key uint32, value uint32) []byte {
	h := NewHeader(CmdWriteCounter, 8, uniqueID, txn)
	b := h.Marshal(make([]byte, 0, HeaderSize+8))
	var body [8]byte
	binary.LittleEndian.PutUint32(body[0:4], key)
	binary.LittleEndian.PutUint32(body[4:8], value)
	return append(b, body[:]...)
}
