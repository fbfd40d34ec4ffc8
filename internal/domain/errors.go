package domain

import "errors"

var (
	ErrStatusNotFound     = errors.New("bridge status not found")
	ErrServerAddressUnset = errors.New("server address is required")
)
