package model

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAddressNotFound = errors.New("address not found")
)
