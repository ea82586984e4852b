// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cpcnvm3 is the public API of the NVM3 host client: open a handle
// against a running link daemon, read and write data and counter objects,
// enumerate and inspect them, and close the handle again. Every operation
// returns a Code from the stable error code space so the package can sit
// behind a C ABI the way the reference implementation's extern "C" wrapper
// functions do.
package cpcnvm3

import (
	"os"

	"github.com/siliconlabs/cpc-nvm3/cpcnvm3log"
	"github.com/siliconlabs/cpc-nvm3/errcode"
	"github.com/siliconlabs/cpc-nvm3/instance"
	"github.com/siliconlabs/cpc-nvm3/link"
	"github.com/siliconlabs/cpc-nvm3/registry"
	"github.com/siliconlabs/cpc-nvm3/wire"
)

// Handle identifies an initialized NVM3 instance.
type Handle = registry.Handle

// ObjectKey is the 32-bit key identifying a data or counter object.
type ObjectKey = uint32

// Code is the stable, C-ABI-style negative-int result of every public
// operation; Success (0) means the call completed without error.
type Code = errcode.Code

const (
	Success            = errcode.Success
	Failure            = errcode.Failure
	NotInitialized     = errcode.NotInitialized
	NotOpen            = errcode.NotOpen
	NotClosed          = errcode.NotClosed
	UnknownError       = errcode.UnknownError
	InvalidArg         = errcode.InvalidArg
	InvalidVersion     = errcode.InvalidVersion
	InvalidObjectKey   = errcode.InvalidObjectKey
	TryAgain           = errcode.TryAgain
	CpcEndpointError   = errcode.EndpointError
	BufferTooSmall     = errcode.BufferTooSmall
)

// ObjectType classifies an object reported by GetObjectInfo.
type ObjectType = wire.ObjectType

const (
	ObjectTypeData    = wire.ObjectTypeData
	ObjectTypeCounter = wire.ObjectTypeCounter
	ObjectTypeUnknown = wire.ObjectTypeUnknown
)

// LogLevel selects the verbosity passed to InitLogger.
type LogLevel = cpcnvm3log.Level

const (
	LogOff   = cpcnvm3log.Off
	LogError = cpcnvm3log.ErrorLevel
	LogWarn  = cpcnvm3log.WarnLevel
	LogInfo  = cpcnvm3log.InfoLevel
	LogDebug = cpcnvm3log.DebugLevel
	LogTrace = cpcnvm3log.TraceLevel
)

var instances = registry.New[*instance.Instance]()

// defaultOpener is overridden in tests to inject a scripted link.Opener
// without touching process-global state more than necessary.
var defaultOpener link.Opener = func(instanceName string, enableTraces bool, onReset link.ResetCallback) (link.Handle, error) {
	return link.DialNet(instanceName, onReset)
}

// InitLogger configures the package-level logger. Calling it more than
// once is a no-op, matching the reference implementation's guarded
// one-shot initialization.
func InitLogger(prefix string, level LogLevel, filePath string, appendFile bool) Code {
	if err := cpcnvm3log.Init(prefix, level, filePath, appendFile); err != nil {
		return errcode.Failure
	}
	return errcode.Success
}

// Init allocates a new, unopened instance and returns its handle plus
// Success, or a zero handle and the failure code.
func Init() (Handle, Code) {
	in := instance.New(uint32(os.Getpid()), defaultOpener)
	h, err := instances.Allocate(in)
	if err != nil {
		return 0, errcode.Of(err)
	}
	cpcnvm3log.Debugf("cpc_nvm3_init was successful, assigned handle %d", h)
	return h, errcode.Success
}

// Deinit releases the instance registered under h. The instance must
// already be closed.
func Deinit(h Handle) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	if in.IsOpen() {
		return errcode.NotClosed
	}
	instances.Remove(h)
	return errcode.Success
}

// Open connects handle h to the NVM3 endpoint of the link daemon
// identified by instanceName, performing the version and capability
// handshake described in spec §4.3.
func Open(h Handle, instanceName string, enableTraces bool) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	if err := in.Open(instanceName, enableTraces); err != nil {
		return errcode.Of(err)
	}
	cpcnvm3log.Debugf("cpc_nvm3_open was successful, on handle %d", h)
	return errcode.Success
}

// Close tears down the link connection for h. The instance remains
// registered and may be reopened.
func Close(h Handle) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	return errcode.Of(in.Close())
}

// WriteData writes data to the object stored under key, fragmenting it as
// necessary.
func WriteData(h Handle, key ObjectKey, data []byte) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	return errcode.Of(in.WriteData(key, data))
}

// ReadData reads up to maxSize bytes from the object stored under key.
func ReadData(h Handle, key ObjectKey, maxSize uint16) ([]byte, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return nil, errcode.Of(err)
	}
	data, err := in.ReadData(key, maxSize)
	if err != nil {
		return nil, errcode.Of(err)
	}
	return data, errcode.Success
}

// WriteCounter sets the value of the counter object stored under key.
func WriteCounter(h Handle, key ObjectKey, value uint32) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	return errcode.Of(in.WriteCounter(key, value))
}

// ReadCounter returns the current value of the counter object stored under
// key.
func ReadCounter(h Handle, key ObjectKey) (uint32, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	v, err := in.ReadCounter(key)
	if err != nil {
		return 0, errcode.Of(err)
	}
	return v, errcode.Success
}

// IncrementCounter increments the counter object stored under key and
// returns its new value.
func IncrementCounter(h Handle, key ObjectKey) (uint32, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	v, err := in.IncrementCounter(key)
	if err != nil {
		return 0, errcode.Of(err)
	}
	return v, errcode.Success
}

// GetObjectCount returns the number of objects currently stored.
func GetObjectCount(h Handle) (uint16, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	n, err := in.GetObjectCount()
	if err != nil {
		return 0, errcode.Of(err)
	}
	return n, errcode.Success
}

// ListObjects enumerates up to len(keysOut) object keys into keysOut and
// returns how many were written.
func ListObjects(h Handle, keysOut []ObjectKey) (int, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	keys, err := in.EnumerateObjects(uint16(len(keysOut)))
	if err != nil {
		return 0, errcode.Of(err)
	}
	n := copy(keysOut, keys)
	return n, errcode.Success
}

// GetObjectInfo returns the type and size of the object stored under key.
func GetObjectInfo(h Handle, key ObjectKey) (ObjectType, uint16, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, 0, errcode.Of(err)
	}
	typ, size, err := in.GetObjectInfo(key)
	if err != nil {
		return 0, 0, errcode.Of(err)
	}
	return typ, size, errcode.Success
}

// DeleteObject removes the object stored under key.
func DeleteObject(h Handle, key ObjectKey) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	return errcode.Of(in.DeleteObject(key))
}

// GetMaximumWriteSize returns the negotiated maximum single-object write
// size for h.
func GetMaximumWriteSize(h Handle) (uint16, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	size, err := in.MaxWriteSize()
	if err != nil {
		return 0, errcode.Of(err)
	}
	return size, errcode.Success
}

// GetMaximumObjectSize returns the negotiated maximum object size for h
// (supplemented from original_source/'s MaxObjectSize property, not
// exposed by the distilled command set).
func GetMaximumObjectSize(h Handle) (uint16, Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, errcode.Of(err)
	}
	size, err := in.MaxObjectSize()
	if err != nil {
		return 0, errcode.Of(err)
	}
	return size, errcode.Success
}

// SetCpcTimeout overrides the read timeout on h's endpoint.
func SetCpcTimeout(h Handle, seconds, microseconds int) Code {
	in, err := instances.Lookup(h)
	if err != nil {
		return errcode.Of(err)
	}
	d := durationFromSecondsMicros(seconds, microseconds)
	return errcode.Of(in.SetReadTimeout(d))
}

// GetCpcTimeout returns the currently configured read timeout on h's
// endpoint, split into seconds and microseconds the way the reference
// implementation's cpc_timeval_t reports it.
func GetCpcTimeout(h Handle) (seconds int, microseconds int, code Code) {
	in, err := instances.Lookup(h)
	if err != nil {
		return 0, 0, errcode.Of(err)
	}
	d, err := in.ReadTimeout()
	if err != nil {
		return 0, 0, errcode.Of(err)
	}
	seconds, microseconds = secondsMicrosFromDuration(d)
	return seconds, microseconds, errcode.Success
}
