package store

import "errors"

var (
	ErrNotFound      = errors.New("store: not found")
	ErrInvalidRecord = errors.New("store: invalid record")
	ErrImmutable     = errors.New("store: immutable record mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
