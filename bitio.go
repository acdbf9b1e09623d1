// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"errors"
	"io"

	"github.com/icza/bitio"
)

// A bitWriter writes codes to an [io.Writer], most significant bit first.
// Write errors are stored and reported by [bitWriter.Close]
// or [bitWriter.Err].
// If the bitWriter is closed on a non-byte boundary, the last byte
// is zero-padded on the low (right) side.
type bitWriter struct {
	err   error
	w     *bitio.Writer
	nbits int64 // number of bits written so far, excluding padding
}

func newBitWriter(w io.Writer) *bitWriter {
	return &bitWriter{w: bitio.NewWriter(w)}
}

// writeCode appends the c.len bits of c.
func (w *bitWriter) writeCode(c bitcode) {
	if w.err != nil {
		return
	}
	if c.len == 0 {
		w.err = errors.New("huffzip: writing empty code")
		return
	}
	w.err = w.w.WriteBits(c.val, c.len)
	w.nbits += int64(c.len)
}

// Close flushes the final partial byte. It does not close the underlying writer.
func (w *bitWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Close()
	return w.err
}

func (w *bitWriter) Err() error {
	return w.err
}

// bytesWritten is the number of bytes the writer produces once closed.
func (w *bitWriter) bytesWritten() int64 {
	return (w.nbits + 7) / 8
}

// A bitReader reads single bits from an [io.Reader], most significant bit first.
// Once the reader is exhausted every call returns [io.EOF].
type bitReader struct {
	err error
	r   *bitio.Reader
}

func newBitReader(r io.Reader) *bitReader {
	return &bitReader{r: bitio.NewReader(r)}
}

// readBit returns the next bit as 0 or 1.
func (r *bitReader) readBit() (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadBool()
	if err != nil {
		r.err = err
		return 0, err
	}
	if b {
		return 1, nil
	}
	return 0, nil
}
