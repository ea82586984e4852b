// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the CPC NVM3 frame codec: the fixed 8-byte header,
// the host/remote opcode sets, the status taxonomy carried by StatusIs
// bodies, and the per-opcode request/response (de)serializers.
//
// All multi-byte integers are little-endian and packed (no padding), matching
// the #[repr(C, packed)] layout of the reference implementation's Header<T>
// and per-command structs.
package wire

// HostCmd identifies a request frame issued by the host.
type HostCmd byte

const (
	CmdGetVersion       HostCmd = 0x00
	CmdPropValueGet     HostCmd = 0x04
	CmdWriteData        HostCmd = 0x06
	CmdReadData         HostCmd = 0x08
	CmdGetObjectInfo    HostCmd = 0x0A
	CmdReadCounter      HostCmd = 0x0C
	CmdWriteCounter     HostCmd = 0x0E
	CmdIncrementCounter HostCmd = 0x0F
	CmdDeleteObject     HostCmd = 0x10
	CmdEnumerateObjects HostCmd = 0x11
	CmdGetObjectCount   HostCmd = 0x13
)

func (c HostCmd) String() string {
	switch c {
	case CmdGetVersion:
		return "GetVersion"
	case CmdPropValueGet:
		return "PropValueGet"
	case CmdWriteData:
		return "WriteData"
	case CmdReadData:
		return "ReadData"
	case CmdGetObjectInfo:
		return "GetObjectInfo"
	case CmdReadCounter:
		return "ReadCounter"
	case CmdWriteCounter:
		return "WriteCounter"
	case CmdIncrementCounter:
		return "IncrementCounter"
	case CmdDeleteObject:
		return "DeleteObject"
	case CmdEnumerateObjects:
		return "EnumerateObjects"
	case CmdGetObjectCount:
		return "GetObjectCount"
	default:
		return "HostCmd(?)"
	}
}

// RemoteCmd identifies a response frame issued by the remote.
type RemoteCmd byte

const (
	CmdVersionIs          RemoteCmd = 0x01
	CmdStatusIs           RemoteCmd = 0x02
	CmdPropValueIs        RemoteCmd = 0x05
	CmdReadDataIs         RemoteCmd = 0x09
	CmdObjectInfoIs       RemoteCmd = 0x0B
	CmdCounterIs          RemoteCmd = 0x0D
	CmdEnumerateObjectsIs RemoteCmd = 0x12
	CmdObjectCountIs      RemoteCmd = 0x14
)

func (c RemoteCmd) String() string {
	switch c {
	case CmdVersionIs:
		return "VersionIs"
	case CmdStatusIs:
		return "StatusIs"
	case CmdPropValueIs:
		return "PropValueIs"
	case CmdReadDataIs:
		return "ReadDataIs"
	case CmdObjectInfoIs:
		return "ObjectInfoIs"
	case CmdCounterIs:
		return "CounterIs"
	case CmdEnumerateObjectsIs:
		return "EnumerateObjectsIs"
	case CmdObjectCountIs:
		return "ObjectCountIs"
	default:
		return "RemoteCmd(?)"
	}
}

// PropertyType selects the remote property queried by PropValueGet.
type PropertyType byte

const (
	PropertyMaxObjectSize PropertyType = 0x01
	PropertyMaxWriteSize  PropertyType = 0x02
)

// ObjectType classifies an object reported by GetObjectInfo.
type ObjectType byte

const (
	ObjectTypeData ObjectType = iota
	ObjectTypeCounter
	ObjectTypeUnknown
)

func ObjectTypeFromWire(b byte) ObjectType {
	switch b {
	case 0:
		return ObjectTypeData
	case 1:
		return ObjectTypeCounter
	default:
		return ObjectTypeUnknown
	}
}

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeData:
		return "DATA"
	case ObjectTypeCounter:
		return "COUNTER"
	default:
		return "UNKNOWN"
	}
}
