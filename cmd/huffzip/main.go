// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Huffzip compresses and decompresses files with a static Huffman code.
//
// Usage:
//
//	huffzip [flags] FILE...
//
// Each FILE is compressed to FILE.huf, or with -d, each FILE.huf is
// decompressed to FILE. The flags are:
//
//	-d
//	    Decompress instead of compress.
//	-tag=HF11
//	    Tag to write into containers, or to require when decompressing.
//	-v
//	    Print compression statistics.
//	-o=FILE
//	    Output file. Only valid with a single input.
//	-suffix=.huf
//	    Suffix added to compressed files.
//	-cache=16
//	    Number of decoding tables to reuse across inputs.
//	-log=LEVEL
//	    Minimum log level: debug, info, warning, error or fatal.
//	-config=FILE
//	    YAML file of defaults for tag, verbose, suffix, cache_size and log_level.
//	    Flags given on the command line override it.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jba/huffzip"
	"github.com/jba/huffzip/internal/derrors"
	"github.com/jba/huffzip/internal/log"
	"gopkg.in/yaml.v3"
)

// config holds the settings that may come from a config file.
type config struct {
	Tag       string `yaml:"tag"`
	Verbose   bool   `yaml:"verbose"`
	Suffix    string `yaml:"suffix"`
	CacheSize int    `yaml:"cache_size"`
	LogLevel  string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Tag:       "HF11",
		Suffix:    ".huf",
		CacheSize: 16,
	}
}

var (
	decompress = flag.Bool("d", false, "decompress instead of compress")
	output     = flag.String("o", "", "output file; only valid with a single input")
	configFile = flag.String("config", "", "YAML file of default settings")
	tag        = flag.String("tag", defaultConfig().Tag, "container tag to write or require")
	verbose    = flag.Bool("v", false, "print compression statistics")
	suffix     = flag.String("suffix", defaultConfig().Suffix, "suffix of compressed files")
	cacheSize  = flag.Int("cache", defaultConfig().CacheSize, "number of decoding tables to reuse across inputs")
	logLevel   = flag.String("log", "", "minimum log level: debug, info, warning, error or fatal")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = readConfig(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg = applyFlags(cfg, config{
		Tag:       *tag,
		Verbose:   *verbose,
		Suffix:    *suffix,
		CacheSize: *cacheSize,
		LogLevel:  *logLevel,
	}, set)
	log.SetLevel(cfg.LogLevel)

	if err := run(os.Stdout, cfg, *decompress, *output, flag.Args()); err != nil {
		log.Fatalf("huffzip: %v", err)
	}
}

// readConfig reads a YAML config file. Settings it omits keep their defaults.
func readConfig(filename string) (_ config, err error) {
	defer derrors.Wrap(&err, "readConfig(%q)", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return config{}, err
	}
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, err
	}
	if cfg.Suffix == "" {
		return config{}, errors.New("suffix must not be empty")
	}
	return cfg, nil
}

// applyFlags returns cfg with each setting named in set replaced by its
// value in flags. Flags given on the command line override the config file.
func applyFlags(cfg, flags config, set map[string]bool) config {
	if set["tag"] {
		cfg.Tag = flags.Tag
	}
	if set["v"] {
		cfg.Verbose = flags.Verbose
	}
	if set["suffix"] {
		cfg.Suffix = flags.Suffix
	}
	if set["cache"] {
		cfg.CacheSize = flags.CacheSize
	}
	if set["log"] {
		cfg.LogLevel = flags.LogLevel
	}
	return cfg
}

// run compresses or decompresses each file, stopping at the first error.
// Verbose reports are written to w.
func run(w io.Writer, cfg config, decompress bool, output string, files []string) (err error) {
	if output != "" && len(files) > 1 {
		return errors.New("-o requires a single input file")
	}
	var tables *huffzip.TableCache
	if decompress && cfg.CacheSize > 0 {
		tables, err = huffzip.NewTableCache(cfg.CacheSize)
		if err != nil {
			return err
		}
	}
	for _, in := range files {
		out := output
		if out == "" {
			out = outputPath(in, cfg.Suffix, decompress)
		}
		c := huffzip.Options{
			InputPath:  in,
			OutputPath: out,
			Tag:        cfg.Tag,
			Verbose:    cfg.Verbose,
			Report:     w,
			Tables:     tables,
		}.New()
		if decompress {
			err = c.Decompress()
		} else {
			err = c.Compress()
		}
		if err != nil {
			return err
		}
		if cfg.Verbose {
			log.Infof("%s -> %s", in, out)
		} else {
			log.Debugf("%s -> %s", in, out)
		}
	}
	if tables != nil {
		hits, misses := tables.Stats()
		log.Debugf("table cache: %d hits, %d misses", hits, misses)
	}
	return nil
}

// outputPath derives the output file name for in.
func outputPath(in, suffix string, decompress bool) string {
	if !decompress {
		return in + suffix
	}
	if base, ok := strings.CutSuffix(in, suffix); ok && base != "" {
		return base
	}
	return in + ".out"
}
