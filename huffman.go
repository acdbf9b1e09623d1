// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package huffzip compresses files with a static Huffman code.
//
// A compressed file, or container, holds a caller-chosen tag, the length of
// the original data, the frequency of every byte value in the order the
// values first appeared, and the packed codes. The codes themselves are not
// stored: the decoder rebuilds them from the frequency table, so tree
// construction is deterministic down to its tie-breaks.
package huffzip

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// A Symbol is a byte value and the number of times it occurs.
type Symbol struct {
	Byte  byte
	Count uint64
}

// A Table is a frequency table: one Symbol per distinct byte value, in the
// order the values first occurred.
// The order matters. Tables with the same symbols in a different order can
// produce different codes.
type Table []Symbol

// Len returns the sum of the counts in t.
func (t Table) Len() uint64 {
	var n uint64
	for _, s := range t {
		n += s.Count
	}
	return n
}

// A bitcode is a code of len bits, stored in the low-order bits of val.
type bitcode struct {
	val uint64
	len uint8
}

// String renders c as a string of '0' and '1' characters.
func (c bitcode) String() string {
	if c.len == 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", int(c.len), c.val)
}

// A CodeBuilder computes a frequency table from the bytes written to it.
type CodeBuilder struct {
	index [256]int // position in table plus one; zero if not seen
	table Table
	n     uint64
}

// NewCodeBuilder returns an empty CodeBuilder.
func NewCodeBuilder() *CodeBuilder {
	return &CodeBuilder{}
}

// Write counts the bytes of data. It never fails.
func (cb *CodeBuilder) Write(data []byte) (int, error) {
	for _, b := range data {
		if i := cb.index[b]; i > 0 {
			cb.table[i-1].Count++
		} else {
			cb.table = append(cb.table, Symbol{Byte: b, Count: 1})
			cb.index[b] = len(cb.table)
		}
	}
	cb.n += uint64(len(data))
	return len(data), nil
}

// Table returns a copy of the frequency table built so far.
func (cb *CodeBuilder) Table() Table {
	return append(Table(nil), cb.table...)
}

// Len returns the number of bytes written so far.
func (cb *CodeBuilder) Len() uint64 { return cb.n }

// Code returns the [Code] for the bytes written so far.
func (cb *CodeBuilder) Code() (*Code, error) {
	return NewCode(cb.table)
}

// A Code is a mapping from byte values to prefix-free bit sequences.
type Code struct {
	table  Table
	codes  [256]bitcode // indexed by byte; len 0 if absent
	decode map[bitcode]byte
	maxLen uint8
}

// NewCode constructs the Huffman [Code] for t.
// The table must be non-empty, list each byte at most once, and have no
// zero counts.
func NewCode(t Table) (*Code, error) {
	if len(t) == 0 {
		return nil, errors.New("huffzip.NewCode: empty table")
	}
	var (
		seen  [256]bool
		total uint64
	)
	for _, s := range t {
		if seen[s.Byte] {
			return nil, fmt.Errorf("huffzip.NewCode: byte 0x%02x appears twice", s.Byte)
		}
		seen[s.Byte] = true
		if s.Count == 0 {
			return nil, fmt.Errorf("huffzip.NewCode: byte 0x%02x has zero count", s.Byte)
		}
		if total+s.Count < total {
			return nil, errors.New("huffzip.NewCode: total count overflows")
		}
		total += s.Count
	}
	c := &Code{
		table:  append(Table(nil), t...),
		decode: make(map[bitcode]byte, len(t)),
	}
	if err := assignCodes(buildTree(c.table), bitcode{}, &c.codes); err != nil {
		return nil, fmt.Errorf("huffzip.NewCode: %w", err)
	}
	for _, s := range c.table {
		bc := c.codes[s.Byte]
		c.decode[bc] = s.Byte
		c.maxLen = max(c.maxLen, bc.len)
	}
	return c, nil
}

// Table returns a copy of the frequency table c was built from.
func (c *Code) Table() Table {
	return append(Table(nil), c.table...)
}

// Bits returns the code for b as a string of '0' and '1' characters,
// or the empty string if b is not in the code.
func (c *Code) Bits(b byte) string {
	return c.codes[b].String()
}

// AvgLen returns the average number of bits per symbol when encoding the
// data the table was built from.
func (c *Code) AvgLen() float64 {
	total := float64(c.table.Len())
	var avg float64
	for _, s := range c.table {
		avg += float64(s.Count) / total * float64(c.codes[s.Byte].len)
	}
	return avg
}

// String formats c as one "byte:count:bits" entry per symbol, in table order.
func (c *Code) String() string {
	var sb strings.Builder
	for i, s := range c.table {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%q:%d:%s", s.Byte, s.Count, c.Bits(s.Byte))
	}
	return sb.String()
}

// An Encoder writes the codes for bytes to an [io.Writer].
// Call [Encoder.Close] to flush the final, zero-padded byte.
type Encoder struct {
	c   *Code
	bw  *bitWriter
	err error
}

// NewEncoder returns an Encoder that writes to w.
func (c *Code) NewEncoder(w io.Writer) *Encoder {
	return &Encoder{c: c, bw: newBitWriter(w)}
}

// Write encodes data. It is an error if data contains a byte that is not in the Code.
// Write errors from the underlying writer may not be reported until Close.
// When they are reported by Write, all of data has been consumed.
func (e *Encoder) Write(data []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	for i, b := range data {
		bc := e.c.codes[b]
		if bc.len == 0 {
			e.err = fmt.Errorf("huffzip: byte 0x%02x is not in the code", b)
			return i, e.err
		}
		e.bw.writeCode(bc)
	}
	if err := e.bw.Err(); err != nil {
		e.err = ioError(err)
		return len(data), e.err
	}
	return len(data), nil
}

// Close flushes any pending bits. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if err := e.bw.Close(); err != nil {
		e.err = ioError(err)
	}
	return e.err
}

// Bytes returns the number of packed bytes the Encoder has produced
// or will produce on Close.
func (e *Encoder) Bytes() int64 { return e.bw.bytesWritten() }

// A Decoder reads a fixed number of bytes from a packed bitstream.
type Decoder struct {
	c         *Code
	br        *bitReader
	remaining uint64
	err       error
}

// NewDecoder returns a Decoder that decodes n bytes from r.
// Bits after the n'th symbol are padding and are never read as symbols.
func (c *Code) NewDecoder(r io.Reader, n uint64) *Decoder {
	return &Decoder{c: c, br: newBitReader(r), remaining: n}
}

// Read decodes up to len(p) bytes into p. It returns [io.EOF] once all the
// bytes have been decoded, and an error wrapping [ErrCorruptStream] if the
// stream ends early or holds a bit sequence that is not in the code.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := 0
	for n < len(p) && d.remaining > 0 {
		b, err := d.next()
		if err != nil {
			d.err = err
			return n, err
		}
		p[n] = b
		n++
		d.remaining--
	}
	if d.remaining == 0 {
		d.err = io.EOF
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n, nil
}

// next decodes a single symbol, accumulating bits until they match a code.
func (d *Decoder) next() (byte, error) {
	var cand bitcode
	for {
		bit, err := d.br.readBit()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, corruptf("payload ended with %d symbols left", d.remaining)
			}
			return 0, ioError(err)
		}
		cand.val = cand.val<<1 | bit
		cand.len++
		if b, ok := d.c.decode[cand]; ok {
			return b, nil
		}
		if cand.len >= d.c.maxLen {
			return 0, corruptf("bits %s match no code", cand)
		}
	}
}
