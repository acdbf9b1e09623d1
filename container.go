// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Container layout, all integers little-endian:
//
//	uint16  tag length
//	[]byte  tag
//	uint64  number of bytes in the original data
//	uint16  number of table entries, at most 256
//	entries, each a uint8 byte value followed by its uint64 count
//	packed codes, most significant bit first, final byte zero-padded

// MaxTagLen is the length of the longest tag a container can hold.
const MaxTagLen = math.MaxUint16

// A header is everything in a container before the packed codes.
type header struct {
	tag   string
	n     uint64 // original length, in bytes
	table Table
}

type wireSymbol struct {
	Byte  uint8
	Count uint64
}

// size returns the encoded length of h in bytes.
func (h header) size() int64 {
	return 2 + int64(len(h.tag)) + 8 + 2 + int64(len(h.table))*9
}

func writeHeader(w io.Writer, h header) error {
	if len(h.tag) > MaxTagLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTagTooLong, len(h.tag), MaxTagLen)
	}
	if len(h.table) > 256 {
		return fmt.Errorf("table too large: %d entries", len(h.table))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(h.tag))); err != nil {
		return ioError(err)
	}
	if _, err := io.WriteString(w, h.tag); err != nil {
		return ioError(err)
	}
	if err := binary.Write(w, binary.LittleEndian, h.n); err != nil {
		return ioError(err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(h.table))); err != nil {
		return ioError(err)
	}
	entries := make([]wireSymbol, len(h.table))
	for i, s := range h.table {
		entries[i] = wireSymbol{Byte: s.Byte, Count: s.Count}
	}
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return ioError(err)
	}
	return nil
}

// readHeader reads a header from r and checks that its tag is wantTag.
// The tag is checked before anything after it is read.
func readHeader(r io.Reader, wantTag string) (header, error) {
	var h header
	var tagLen uint16
	if err := binary.Read(r, binary.LittleEndian, &tagLen); err != nil {
		return h, headerError("tag length", err)
	}
	tag := make([]byte, tagLen)
	if _, err := io.ReadFull(r, tag); err != nil {
		return h, headerError("tag", err)
	}
	h.tag = string(tag)
	if h.tag != wantTag {
		return h, fmt.Errorf("%w: container has tag %q, want %q", ErrFormatMismatch, h.tag, wantTag)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.n); err != nil {
		return h, headerError("length", err)
	}
	var size uint16
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return h, headerError("table size", err)
	}
	if size > 256 {
		return h, corruptf("table has %d entries", size)
	}
	entries := make([]wireSymbol, size)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return h, headerError("table", err)
	}
	h.table = make(Table, size)
	for i, e := range entries {
		h.table[i] = Symbol{Byte: e.Byte, Count: e.Count}
	}
	return h, nil
}

// headerError classifies an error from reading the header field named what.
// Running out of input is corruption; anything else is an I/O failure.
func headerError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return corruptf("reading %s: truncated header", what)
	}
	return ioError(fmt.Errorf("reading %s: %w", what, err))
}

// code returns the Code for h's table after checking that the table is
// consistent with the original length. If tc is non-nil it is consulted first.
func (h header) code(tc *TableCache) (*Code, error) {
	c, err := tc.code(h.table)
	if err != nil {
		return nil, corruptf("%v", err)
	}
	if got := h.table.Len(); got != h.n {
		return nil, corruptf("table counts sum to %d, want %d", got, h.n)
	}
	return c, nil
}
