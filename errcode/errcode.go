// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package errcode defines the stable, C-ABI-style negative-int error code
// space shared by the instance engine and the public cpcnvm3 package, and
// the internal Error type that carries a code plus a human message through
// the engine before being flattened to a bare Code at the public boundary.
package errcode

import (
	"errors"
	"fmt"
)

// Code is the stable, C-ABI-style negative-int error code returned by every
// public operation.
type Code int

const (
	// Success is the zero value returned by every public operation that
	// completed without error, matching the C ABI convention the reference
	// implementation's extern "C" wrappers use (0 = success).
	Success Code = 0

	Failure          Code = -1
	NotInitialized   Code = -2
	NotOpen          Code = -3
	NotClosed        Code = -4
	UnknownError     Code = -5
	InvalidArg       Code = -6
	InvalidVersion   Code = -7
	InvalidObjectKey Code = -8
	TryAgain         Code = -9
	EndpointError    Code = -10
	BufferTooSmall   Code = -11
)

func (c Code) String() string {
	switch c {
	case Success:
		return "OK"
	case Failure:
		return "FAILURE"
	case NotInitialized:
		return "NOT_INITIALIZED"
	case NotOpen:
		return "NOT_OPEN"
	case NotClosed:
		return "NOT_CLOSED"
	case UnknownError:
		return "UNKNOWN_ERROR"
	case InvalidArg:
		return "INVALID_ARG"
	case InvalidVersion:
		return "INVALID_VERSION"
	case InvalidObjectKey:
		return "INVALID_OBJECT_KEY"
	case TryAgain:
		return "TRY_AGAIN"
	case EndpointError:
		return "CPC_ENDPOINT_ERROR"
	case BufferTooSmall:
		return "BUFFER_TOO_SMALL"
	default:
		return "UNKNOWN_CODE"
	}
}

// Error is the internal error type carried through the engine; it converts
// to a bare Code only at the public function boundary.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Of extracts the Code from any error, defaulting to Failure for errors
// that did not originate as an *Error.
func Of(err error) Code {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Failure
}
