// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package instance

import (
	"github.com/siliconlabs/cpc-nvm3/cpcnvm3log"
	"github.com/siliconlabs/cpc-nvm3/errcode"
	"github.com/siliconlabs/cpc-nvm3/wire"
)

func (in *Instance) requestVersion() (wire.VersionIs, error) {
	txn := in.nextTxn()
	if err := in.write(wire.BuildGetVersion(in.uniqueID, txn)); err != nil {
		return wire.VersionIs{}, err
	}
	for {
		frame, err := in.read()
		if err != nil {
			return wire.VersionIs{}, err
		}
		v, mm, perr := wire.ParseVersionIs(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return wire.VersionIs{}, errcode.New(errcode.Failure, "%v", perr)
		}
		return v, nil
	}
}

func (in *Instance) requestPropValue(prop wire.PropertyType) (uint16, error) {
	txn := in.nextTxn()
	if err := in.write(wire.BuildPropValueGet(in.uniqueID, txn, prop)); err != nil {
		return 0, err
	}
	for {
		frame, err := in.read()
		if err != nil {
			return 0, err
		}
		pv, status, mm, perr := wire.ParsePropValueIs(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return 0, errcode.New(errcode.Failure, "%v", perr)
		}
		if status != nil {
			return 0, errcode.New(errcode.Failure, "property get failed: %s", status)
		}
		return pv.Value, nil
	}
}

// WriteData fragments data across WriteData requests up to the negotiated
// maximum fragment size, mapping each fragment's StatusIs response per
// spec §4.3.
func (in *Instance) WriteData(key uint32, data []byte) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return errcode.New(errcode.NotOpen, "instance is not open")
	}
	if len(data) > int(in.maxWriteSize) {
		return errcode.New(errcode.InvalidArg, "write of %d bytes exceeds maximum write size %d", len(data), in.maxWriteSize)
	}

	fragSize := int(in.maxWriteFragmentSize)
	if fragSize <= 0 {
		return errcode.New(errcode.Failure, "invalid negotiated fragment size")
	}

	offset := 0
	for {
		last := len(data)-offset <= fragSize
		end := offset + fragSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]

		txn := in.nextTxn()
		frame := wire.BuildWriteData(in.uniqueID, txn, key, uint16(offset), last, chunk)
		if err := in.write(frame); err != nil {
			return err
		}
		status, err := in.awaitStatus(txn)
		if err != nil {
			return err
		}
		if err := mapWriteStatus(status); err != nil {
			return err
		}
		cpcnvm3log.Debugf("Received write complete acknowledgement")
		if last {
			return nil
		}
		offset = end
	}
}

func (in *Instance) awaitStatus(txn byte) (wire.Status, error) {
	for {
		frame, err := in.read()
		if err != nil {
			return wire.Status{}, err
		}
		status, mm, perr := wire.ParseWriteStatus(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return wire.Status{}, errcode.New(errcode.Failure, "%v", perr)
		}
		return status, nil
	}
}

func mapWriteStatus(status wire.Status) error {
	switch status.Kind {
	case wire.StatusKindSlStatus:
		switch status.SlStatus {
		case wire.SlStatusOk:
			return nil
		case wire.SlStatusFail:
			return errcode.New(errcode.Failure, "writing to NVM3 instance failed")
		case wire.SlStatusBusy:
			return errcode.New(errcode.TryAgain, "NVM3 is busy with another write operation, try again")
		default:
			return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
		}
	case wire.StatusKindECode:
		if status.ECode == wire.ECodeKeyInvalid {
			return errcode.New(errcode.InvalidObjectKey, "%s", status.ECode)
		}
		return errcode.New(errcode.UnknownError, "%s", status.ECode)
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}

// ReadData requests up to maxReadSize bytes for key and reassembles
// fragments until the remote sets last_frag, per spec §4.3's read
// reassembly rule.
func (in *Instance) ReadData(key uint32, maxReadSize uint16) ([]byte, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return nil, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildReadData(in.uniqueID, txn, key, maxReadSize)); err != nil {
		return nil, err
	}

	var data []byte
	for {
		segment, status, err := in.awaitReadDataFragment(txn)
		if err != nil {
			return nil, err
		}
		if status != nil {
			return nil, mapReadStatus(*status)
		}
		data = append(data, segment.Data...)
		if segment.LastFrag {
			break
		}
		cpcnvm3log.Debugf("Received %d bytes, another fragment is available", len(segment.Data))
	}

	if len(data) > int(maxReadSize) {
		return nil, errcode.New(errcode.BufferTooSmall, "read failed, provided buffer is too small")
	}
	return data, nil
}

func (in *Instance) awaitReadDataFragment(txn byte) (*wire.ReadDataIs, *wire.Status, error) {
	for {
		frame, err := in.read()
		if err != nil {
			return nil, nil, err
		}
		data, status, mm, perr := wire.ParseReadData(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return nil, nil, errcode.New(errcode.Failure, "%v", perr)
		}
		return data, status, nil
	}
}

func mapReadStatus(status wire.Status) error {
	switch status.Kind {
	case wire.StatusKindSlStatus:
		switch status.SlStatus {
		case wire.SlStatusBusy:
			return errcode.New(errcode.TryAgain, "NVM3 is busy with another operation, try again")
		default:
			return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
		}
	case wire.StatusKindECode:
		switch status.ECode {
		case wire.ECodeKeyNotFound:
			return errcode.New(errcode.InvalidObjectKey, "%s", status.ECode)
		case wire.ECodeReadDataSize, wire.ECodeSizeTooSmall:
			return errcode.New(errcode.BufferTooSmall, "%s", status.ECode)
		default:
			return errcode.New(errcode.Failure, "read failed with status code: %s", status.ECode)
		}
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}

// EnumerateObjects requests up to maxObjects keys and reassembles the raw
// key bytes across fragments, then decodes them as little-endian u32s
// (spec §4.3's enumerate reassembly rule: capacity check, then
// multiple-of-4 check, then decode).
func (in *Instance) EnumerateObjects(maxObjects uint16) ([]uint32, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return nil, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildEnumerateObjects(in.uniqueID, txn, maxObjects)); err != nil {
		return nil, err
	}

	var data []byte
	for {
		segment, status, err := in.awaitEnumerateFragment(txn)
		if err != nil {
			return nil, err
		}
		if status != nil {
			return nil, mapEnumerateStatus(*status)
		}
		data = append(data, segment.Data...)
		if segment.LastFrag {
			break
		}
		cpcnvm3log.Debugf("Received %d bytes, fetching object list again", len(segment.Data))
	}

	if len(data) > int(maxObjects)*4 {
		return nil, errcode.New(errcode.BufferTooSmall, "list_objects failed, provided buffer is too small")
	}
	keys, err := wire.DecodeKeys(data)
	if err != nil {
		return nil, errcode.New(errcode.Failure, "%v", err)
	}
	return keys, nil
}

func (in *Instance) awaitEnumerateFragment(txn byte) (*wire.EnumerateObjectsIs, *wire.Status, error) {
	for {
		frame, err := in.read()
		if err != nil {
			return nil, nil, err
		}
		data, status, mm, perr := wire.ParseEnumerateObjects(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return nil, nil, errcode.New(errcode.Failure, "%v", perr)
		}
		return data, status, nil
	}
}

func mapEnumerateStatus(status wire.Status) error {
	switch status.Kind {
	case wire.StatusKindSlStatus:
		switch status.SlStatus {
		case wire.SlStatusBusy:
			return errcode.New(errcode.TryAgain, "NVM3 is busy with another operation, try again")
		default:
			return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
		}
	case wire.StatusKindECode:
		return errcode.New(errcode.Failure, "list_objects failed with status code: %s", status.ECode)
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}

// GetObjectCount requests the number of objects currently stored.
func (in *Instance) GetObjectCount() (uint16, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildGetObjectCount(in.uniqueID, txn)); err != nil {
		return 0, err
	}
	for {
		frame, err := in.read()
		if err != nil {
			return 0, err
		}
		count, status, mm, perr := wire.ParseObjectCount(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return 0, errcode.New(errcode.Failure, "%v", perr)
		}
		if status != nil {
			return 0, mapKeyLookupStatus(*status, "get object count")
		}
		return *count, nil
	}
}

// mapKeyLookupStatus maps a StatusIs response shared by GetObjectCount,
// GetObjectInfo and the read-counter family: SlStatus Busy maps to TryAgain
// and any other SlStatus is unexpected (FAILURE), KeyNotFound/KeyInvalid map
// to InvalidObjectKey, other ECodes are FAILURE, and an unrecognized status
// kind is UnknownError.
func mapKeyLookupStatus(status wire.Status, op string) error {
	switch status.Kind {
	case wire.StatusKindSlStatus:
		if status.SlStatus == wire.SlStatusBusy {
			return errcode.New(errcode.TryAgain, "NVM3 is busy with another operation, try again")
		}
		return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
	case wire.StatusKindECode:
		if status.ECode == wire.ECodeKeyNotFound || status.ECode == wire.ECodeKeyInvalid {
			return errcode.New(errcode.InvalidObjectKey, "%s", status.ECode)
		}
		return errcode.New(errcode.Failure, "%s failed with status code: %s", op, status.ECode)
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}

// GetObjectInfo requests the type and size of the object stored under key.
func (in *Instance) GetObjectInfo(key uint32) (wire.ObjectType, uint16, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return 0, 0, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildGetObjectInfo(in.uniqueID, txn, key)); err != nil {
		return 0, 0, err
	}
	for {
		frame, err := in.read()
		if err != nil {
			return 0, 0, err
		}
		info, status, mm, perr := wire.ParseObjectInfo(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return 0, 0, errcode.New(errcode.Failure, "%v", perr)
		}
		if status != nil {
			return 0, 0, mapKeyLookupStatus(*status, "get object info")
		}
		return info.Type, info.Size, nil
	}
}

// WriteCounter sets the value of a counter object.
func (in *Instance) WriteCounter(key uint32, value uint32) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildWriteCounter(in.uniqueID, txn, key, value)); err != nil {
		return err
	}
	status, err := in.awaitStatus(txn)
	if err != nil {
		return err
	}
	switch status.Kind {
	case wire.StatusKindSlStatus:
		switch status.SlStatus {
		case wire.SlStatusOk:
			cpcnvm3log.Debugf("Received write counter acknowledgement")
			return nil
		case wire.SlStatusFail:
			return errcode.New(errcode.Failure, "writing counter to NVM3 instance failed")
		default:
			return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
		}
	case wire.StatusKindECode:
		if status.ECode == wire.ECodeKeyInvalid {
			return errcode.New(errcode.InvalidObjectKey, "%s", status.ECode)
		}
		return errcode.New(errcode.UnknownError, "%s", status.ECode)
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}

func (in *Instance) readCounterLike(txn byte) (uint32, error) {
	for {
		frame, err := in.read()
		if err != nil {
			return 0, err
		}
		value, status, mm, perr := wire.ParseCounter(frame, in.uniqueID, txn)
		if mm == wire.MismatchNotOurs {
			continue
		}
		if perr != nil {
			return 0, errcode.New(errcode.Failure, "%v", perr)
		}
		if status != nil {
			return 0, mapKeyLookupStatus(*status, "read counter")
		}
		return *value, nil
	}
}

// ReadCounter requests the current value of a counter object.
func (in *Instance) ReadCounter(key uint32) (uint32, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildReadCounter(in.uniqueID, txn, key)); err != nil {
		return 0, err
	}
	return in.readCounterLike(txn)
}

// IncrementCounter increments a counter object and returns its new value.
func (in *Instance) IncrementCounter(key uint32) (uint32, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return 0, errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildIncrementCounter(in.uniqueID, txn, key)); err != nil {
		return 0, err
	}
	return in.readCounterLike(txn)
}

// DeleteObject removes the object stored under key.
func (in *Instance) DeleteObject(key uint32) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.endpoint == nil {
		return errcode.New(errcode.NotOpen, "instance is not open")
	}

	txn := in.nextTxn()
	if err := in.write(wire.BuildDeleteObject(in.uniqueID, txn, key)); err != nil {
		return err
	}
	status, err := in.awaitStatus(txn)
	if err != nil {
		return err
	}
	switch status.Kind {
	case wire.StatusKindSlStatus:
		switch status.SlStatus {
		case wire.SlStatusOk:
			cpcnvm3log.Debugf("Received delete object acknowledgement")
			return nil
		case wire.SlStatusFail:
			return errcode.New(errcode.Failure, "deletion of NVM3 object failed")
		default:
			return errcode.New(errcode.Failure, "received an unexpected sl_status code %s", status.SlStatus)
		}
	case wire.StatusKindECode:
		if status.ECode == wire.ECodeKeyInvalid || status.ECode == wire.ECodeKeyNotFound {
			return errcode.New(errcode.InvalidObjectKey, "%s", status.ECode)
		}
		return errcode.New(errcode.UnknownError, "%s", status.ECode)
	default:
		return errcode.New(errcode.UnknownError, "unknown response type received")
	}
}
