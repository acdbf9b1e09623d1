// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jba/huffzip/internal/derrors"
	"github.com/jba/huffzip/internal/log"
)

// Options configures a [Codec].
type Options struct {
	// InputPath is the file read by Compress and Decompress.
	InputPath string
	// OutputPath is the file written by Compress and Decompress.
	// It is created or truncated.
	OutputPath string
	// Tag is written into every container by Compress, and must match the
	// container's tag on Decompress. It is a format check, not a signature.
	// A tag longer than MaxTagLen makes Compress fail with [ErrTagTooLong]
	// before the output file is created.
	Tag string
	// Verbose makes Compress report its Stats to Report.
	Verbose bool
	// Report receives the verbose report. If nil, os.Stdout is used.
	Report io.Writer
	// Tables, if non-nil, caches the Codes that Decompress builds.
	Tables *TableCache
}

// A Codec compresses or decompresses one file into another.
type Codec struct {
	opts Options
}

// New returns a Codec configured by o.
func (o Options) New() *Codec {
	if o.Report == nil {
		o.Report = os.Stdout
	}
	return &Codec{opts: o}
}

// Stats describes a compression.
type Stats struct {
	InputLen   int64   // bytes of original data
	OutputLen  int64   // bytes of container, header included
	Symbols    int     // distinct byte values
	AvgCodeLen float64 // average bits per input byte
}

// Ratio returns the space saved, as a percentage of the input length.
// It is negative when the container is larger than the input,
// and zero for empty input.
func (s Stats) Ratio() float64 {
	if s.InputLen == 0 {
		return 0
	}
	return 100 * (1 - float64(s.OutputLen)/float64(s.InputLen))
}

func (s Stats) String() string {
	return fmt.Sprintf("Input data length: %d bytes\nOutput data length: %d bytes\nCompressed value: %.2f%%\nAverage code length: %.4f bits / character\n",
		s.InputLen, s.OutputLen, s.Ratio(), s.AvgCodeLen)
}

// Compress reads the input file and writes a container for it to the output file.
// Failing to open, create, read or write a file is an error wrapping [ErrIO].
// A tag that is too long is reported before any file is touched.
// On error the output file may be left partially written.
func (c *Codec) Compress() (err error) {
	defer derrors.Wrap(&err, "Compress(%q, %q)", c.opts.InputPath, c.opts.OutputPath)

	if len(c.opts.Tag) > MaxTagLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTagTooLong, len(c.opts.Tag), MaxTagLen)
	}
	data, err := os.ReadFile(c.opts.InputPath)
	if err != nil {
		return ioError(err)
	}
	f, err := os.Create(c.opts.OutputPath)
	if err != nil {
		return ioError(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = ioError(cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	st, err := Encode(bw, data, c.opts.Tag)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return ioError(err)
	}
	log.Debugf("huffzip: compressed %s: %d -> %d bytes, %d symbols",
		c.opts.InputPath, st.InputLen, st.OutputLen, st.Symbols)
	if c.opts.Verbose {
		if _, err := io.WriteString(c.opts.Report, st.String()); err != nil {
			return ioError(err)
		}
	}
	return nil
}

// Decompress reads a container from the input file and writes the original
// data to the output file.
// The errors it returns wrap [ErrIO] for file failures, [ErrFormatMismatch]
// if the container's tag is not the Codec's tag, and [ErrCorruptStream] for
// malformed containers. The output file is created only after the whole
// container has been decoded, so a failed Decompress writes no output.
func (c *Codec) Decompress() (err error) {
	defer derrors.Wrap(&err, "Decompress(%q, %q)", c.opts.InputPath, c.opts.OutputPath)

	f, err := os.Open(c.opts.InputPath)
	if err != nil {
		return ioError(err)
	}
	defer f.Close()
	data, err := decode(bufio.NewReader(f), c.opts.Tag, c.opts.Tables)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.opts.OutputPath, data, 0o644); err != nil {
		return ioError(err)
	}
	log.Debugf("huffzip: decompressed %s: %d bytes", c.opts.InputPath, len(data))
	return nil
}

// Encode writes a container holding data, labeled with tag, to w.
// Empty data produces a container with an empty table and no payload.
func Encode(w io.Writer, data []byte, tag string) (_ Stats, err error) {
	defer derrors.Wrap(&err, "huffzip.Encode")

	cb := NewCodeBuilder()
	cb.Write(data)
	h := header{tag: tag, n: cb.Len(), table: cb.Table()}
	st := Stats{
		InputLen:  int64(len(data)),
		OutputLen: h.size(),
		Symbols:   len(h.table),
	}
	if err := writeHeader(w, h); err != nil {
		return Stats{}, err
	}
	if len(data) == 0 {
		return st, nil
	}
	code, err := cb.Code()
	if err != nil {
		return Stats{}, err
	}
	enc := code.NewEncoder(w)
	if _, err := enc.Write(data); err != nil {
		return Stats{}, err
	}
	if err := enc.Close(); err != nil {
		return Stats{}, err
	}
	st.OutputLen += enc.Bytes()
	st.AvgCodeLen = code.AvgLen()
	return st, nil
}

// Decode reads a container from r and returns the data it holds.
// The container's tag must be tag.
func Decode(r io.Reader, tag string) ([]byte, error) {
	return decode(r, tag, nil)
}

func decode(r io.Reader, tag string, tc *TableCache) (_ []byte, err error) {
	defer derrors.Wrap(&err, "huffzip.Decode")

	h, err := readHeader(r, tag)
	if err != nil {
		return nil, err
	}
	if h.n == 0 {
		if len(h.table) != 0 {
			return nil, corruptf("empty data with %d-entry table", len(h.table))
		}
		return []byte{}, nil
	}
	code, err := h.code(tc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, code.NewDecoder(r, h.n)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
