// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

// Code is a raw engine diagnostic in HRESULT layout.
type Code uint32

const (
	CodeOK            Code = 0x00000000
	CodeFail          Code = 0x80004005
	CodeInvalidArg    Code = 0x80070057
	CodeFileNotFound  Code = 0x80070002
	CodePathNotFound  Code = 0x80070003
	CodeAccessDenied  Code = 0x80070005
	CodeNotDOSDisk    Code = 0x8007001A
	CodeBadNetPath    Code = 0x80070035
	CodeNetworkFailed Code = 0x800704CF

	CodeUnsupportedByteStream Code = 0xC00D36C4
	CodeInvalidFormat         Code = 0xC00D36B4
	CodeClosed                Code = 0xC00D36B2
	CodeNotSeekable           Code = 0xC00D36EE
)

// String renders the code the way the engine prints it.
func (c Code) String() string { return fmt.Sprintf("0x%X", uint32(c)) }

// NotFound reports whether the code means the resource could not be reached.
func (c Code) NotFound() bool {
	switch c {
	case CodeFileNotFound, CodePathNotFound, CodeAccessDenied, CodeNotDOSDisk, CodeBadNetPath:
		return true
	}
	return false
}

// Unsupported reports whether the engine rejected the resource's content.
func (c Code) Unsupported() bool {
	return c == CodeUnsupportedByteStream || c == CodeInvalidFormat
}

// Error is returned by engine calls.
type Error struct {
	Op   string
	ID   string
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Op, e.ID, msg, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, msg, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the raw code from err. ok is false when err carries none.
func CodeOf(err error) (code Code, ok bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}
