package transport

import "errors"

var (
	ErrAlreadyStarted = errors.New("receiver already started")
)
