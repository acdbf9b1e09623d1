// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testTag = "HF11"

func TestCodecRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	inputs := map[string][]byte{
		"empty":       {},
		"one byte":    []byte("x"),
		"repeated":    bytes.Repeat([]byte{'q'}, 1000),
		"AAAAB":       []byte("AAAAB"),
		"delimiters":  []byte("a: b: c:: d  e\n"),
		"all bytes":   all,
		"binary zero": make([]byte, 100),
	}
	for n := 1; n <= 100000; n *= 10 {
		inputs["random "+strconv.Itoa(n)] = randomBytes(n)
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, data)
			if !bytes.Equal(got, data) {
				t.Errorf("got %d bytes, want %d; first difference at %d",
					len(got), len(data), firstDiff(got, data))
			}
		})
	}
}

func TestEncodeAAAAB(t *testing.T) {
	var buf bytes.Buffer
	st, err := Encode(&buf, []byte("AAAAB"), testTag)
	if err != nil {
		t.Fatal(err)
	}
	h := header{tag: testTag, n: 5, table: Table{{'A', 4}, {'B', 1}}}
	var want bytes.Buffer
	if err := writeHeader(&want, h); err != nil {
		t.Fatal(err)
	}
	want.WriteByte(0xf0) // 1111 0, padded
	if diff := cmp.Diff(want.Bytes(), buf.Bytes()); diff != "" {
		t.Errorf("container mismatch (-want, +got):\n%s", diff)
	}
	wantStats := Stats{
		InputLen:   5,
		OutputLen:  h.size() + 1,
		Symbols:    2,
		AvgCodeLen: 1,
	}
	if diff := cmp.Diff(wantStats, st); diff != "" {
		t.Errorf("stats mismatch (-want, +got):\n%s", diff)
	}

	got, err := Decode(&buf, testTag)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "AAAAB" {
		t.Errorf("got %q, want %q", got, "AAAAB")
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	st, err := Encode(&buf, nil, testTag)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := int64(buf.Len()), (header{tag: testTag}).size(); got != want {
		t.Errorf("container is %d bytes, want %d", got, want)
	}
	if st.Ratio() != 0 || st.AvgCodeLen != 0 || st.Symbols != 0 {
		t.Errorf("got %+v, want zero ratio, code length and symbols", st)
	}
	got, err := Decode(&buf, testTag)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %q, want empty", got)
	}
}

func TestDecodeEmptyWithTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHeader(&buf, header{tag: testTag, n: 0, table: Table{{'a', 1}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf, testTag); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("got %v, want ErrCorruptStream", err)
	}
}

func TestDecompressTagMismatch(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("hello, world"))
	packed := filepath.Join(dir, "in.huf")
	out := filepath.Join(dir, "out")
	if err := (Options{InputPath: in, OutputPath: packed, Tag: "X"}).New().Compress(); err != nil {
		t.Fatal(err)
	}
	err := Options{InputPath: packed, OutputPath: out, Tag: "Y"}.New().Decompress()
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("got %v, want ErrFormatMismatch", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output file exists after failed Decompress (Stat error %v)", err)
	}
}

func TestDecompressTruncatedPayload(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("the rain in spain falls mainly on the plain"))
	packed := filepath.Join(dir, "in.huf")
	out := filepath.Join(dir, "out")
	if err := (Options{InputPath: in, OutputPath: packed, Tag: testTag}).New().Compress(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(packed)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(packed, data[:len(data)-1], 0o644); err != nil {
		t.Fatal(err)
	}
	err = Options{InputPath: packed, OutputPath: out, Tag: testTag}.New().Decompress()
	if !errors.Is(err, ErrCorruptStream) {
		t.Fatalf("got %v, want ErrCorruptStream", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output file exists after failed Decompress (Stat error %v)", err)
	}
}

func TestMissingInput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	out := filepath.Join(dir, "out")
	for name, op := range map[string]func(*Codec) error{
		"Compress":   (*Codec).Compress,
		"Decompress": (*Codec).Decompress,
	} {
		err := op(Options{InputPath: missing, OutputPath: out, Tag: testTag}.New())
		if !errors.Is(err, ErrIO) {
			t.Errorf("%s: got %v, want ErrIO", name, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s: got %v, want it to wrap fs.ErrNotExist", name, err)
		}
	}
}

func TestCompressBadOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("abc"))
	err := Options{InputPath: in, OutputPath: filepath.Join(dir, "no", "such", "dir"), Tag: testTag}.New().Compress()
	if !errors.Is(err, ErrIO) {
		t.Errorf("got %v, want ErrIO", err)
	}
}

func TestCompressTagTooLong(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("abc"))
	out := filepath.Join(dir, "out")
	err := Options{InputPath: in, OutputPath: out, Tag: strings.Repeat("x", MaxTagLen+1)}.New().Compress()
	if !errors.Is(err, ErrTagTooLong) {
		t.Fatalf("got %v, want ErrTagTooLong", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output file exists after failed Compress (Stat error %v)", err)
	}

	// The longest tag still fits.
	if err := (Options{InputPath: in, OutputPath: out, Tag: strings.Repeat("x", MaxTagLen)}).New().Compress(); err != nil {
		t.Fatal(err)
	}
}

func TestCompressVerbose(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("AAAAB"))
	var report bytes.Buffer
	err := Options{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "out"),
		Tag:        testTag,
		Verbose:    true,
		Report:     &report,
	}.New().Compress()
	if err != nil {
		t.Fatal(err)
	}
	got := report.String()
	for _, want := range []string{
		"Input data length: 5 bytes",
		"Output data length: 35 bytes",
		"Compressed value: -600.00%",
		"Average code length: 1.0000 bits / character",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report %q does not contain %q", got, want)
		}
	}
}

func TestCompressQuiet(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in", []byte("AAAAB"))
	var report bytes.Buffer
	err := Options{InputPath: in, OutputPath: filepath.Join(dir, "out"), Tag: testTag, Report: &report}.New().Compress()
	if err != nil {
		t.Fatal(err)
	}
	if report.Len() != 0 {
		t.Errorf("got report %q without Verbose", report.String())
	}
}

func TestStatsRatio(t *testing.T) {
	for _, test := range []struct {
		st   Stats
		want float64
	}{
		{Stats{}, 0},
		{Stats{InputLen: 100, OutputLen: 25}, 75},
		{Stats{InputLen: 10, OutputLen: 20}, -100},
	} {
		if got := test.st.Ratio(); got != test.want {
			t.Errorf("%+v: got %g, want %g", test.st, got, test.want)
		}
	}
}

func TestAverageCodeLength(t *testing.T) {
	// abracadabra: a=0 r=10 c=1100 d=1101 b=111, so 23 bits for 11 symbols.
	var buf bytes.Buffer
	st, err := Encode(&buf, []byte("abracadabra"), testTag)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := st.AvgCodeLen, 23.0/11; math.Abs(got-want) > 1e-9 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", data)
	packed := filepath.Join(dir, "compressed")
	out := filepath.Join(dir, "out.txt")
	if err := (Options{InputPath: in, OutputPath: packed, Tag: testTag}).New().Compress(); err != nil {
		t.Fatal(err)
	}
	if err := (Options{InputPath: packed, OutputPath: out, Tag: testTag}).New().Decompress(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func firstDiff(a, b []byte) int {
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return min(len(a), len(b))
}
