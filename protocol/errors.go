package protocol

import "errors"

var (
	ErrShortPayload   = errors.New("payload shorter than frame size")
	ErrInvalidChannel = errors.New("invalid channel (valid range: 0-125)")
	ErrInvalidUnitID  = errors.New("invalid unit ID (valid range: 1-7, or AUTO)")
	ErrUnknownUnitID  = errors.New("unknown unit ID name")
)
