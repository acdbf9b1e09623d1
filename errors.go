// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"errors"
	"fmt"
)

var (
	// ErrIO indicates that a file could not be opened, created, read or written.
	ErrIO = errors.New("i/o error")
	// ErrFormatMismatch indicates that a container's tag differs from the expected tag.
	ErrFormatMismatch = errors.New("format mismatch")
	// ErrCorruptStream indicates that a container's header or payload is malformed,
	// for example when the payload runs out before every symbol has been decoded.
	ErrCorruptStream = errors.New("corrupt stream")
	// ErrTagTooLong indicates a tag longer than [MaxTagLen], which no container can hold.
	ErrTagTooLong = errors.New("tag too long")
)

// ioError marks err as an I/O failure while keeping err itself unwrappable.
func ioError(err error) error {
	if err == nil || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptStream, fmt.Sprintf(format, args...))
}
