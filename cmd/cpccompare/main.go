// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command cpccompare measures how small the cpc codec makes a sketch's
// bitstream relative to feeding the same bytes through general-purpose
// byte-oriented compressors.
//
// Example usage:
//	$ go build -o cpccompare .
//	$ ./cpccompare -lgks 8,12,16 -fills 0.1,1,4 -baselines flate,xz,zstd
package main

import (
	"bytes"
	"flag"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"

	"github.com/dsnet/golib/strconv"

	"github.com/dsnet/cpc/cpc"
	"github.com/dsnet/cpc/internal/cpctest"
)

const (
	defaultLgKs      = "8,12,16"
	defaultFills     = "0.1,1,4,16"
	defaultBaselines = "flate,xz,zstd"
)

// baselines maps a flag name to a function that compresses buf and returns
// the size of the compressed form in bytes. Each is a general-purpose
// byte-oriented codec with no notion of the sketch's pair/window structure,
// so cpc's structural advantage should show up as a ratio bigger than 1.
var baselines = map[string]func(buf []byte) int{
	"flate": func(buf []byte) int {
		var out bytes.Buffer
		zw, _ := flate.NewWriter(&out, flate.BestCompression)
		zw.Write(buf)
		zw.Close()
		return out.Len()
	},
	"xz": func(buf []byte) int {
		var out bytes.Buffer
		zw, err := lzma.NewWriter(&out)
		if err != nil {
			return len(buf)
		}
		zw.Write(buf)
		zw.Close()
		return out.Len()
	},
	"zstd": func(buf []byte) int {
		var out bytes.Buffer
		zw, _ := zstd.NewWriter(&out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		zw.Write(buf)
		zw.Close()
		return out.Len()
	},
}

func main() {
	f0 := flag.String("lgks", defaultLgKs, "List of lgK sketch sizes to compare")
	f1 := flag.String("fills", defaultFills, "List of numCoupons/k fill ratios to compare")
	f2 := flag.String("baselines", defaultBaselines, "List of general-purpose codecs to compare against")
	flag.Parse()

	var sep = regexp.MustCompile("[,:]")

	var lgKs []int
	for _, s := range sep.Split(*f0, -1) {
		v, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			panic("invalid lgK: " + s)
		}
		lgKs = append(lgKs, int(v))
	}

	var fills []float64
	for _, s := range sep.Split(*f1, -1) {
		v, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			panic("invalid fill: " + s)
		}
		fills = append(fills, float64(v))
	}

	var names []string
	for _, s := range sep.Split(*f2, -1) {
		if _, ok := baselines[s]; !ok {
			panic("invalid baseline: " + s)
		}
		names = append(names, s)
	}
	sort.Strings(names)

	ts := time.Now()
	runComparisons(lgKs, fills, names)
	fmt.Printf("RUNTIME: %v\n", time.Since(ts))
}

type result struct {
	label    string
	rawBytes int
	cpcBytes int
	baseline map[string]int
}

func runComparisons(lgKs []int, fills []float64, baselineNames []string) {
	r := cpctest.NewRand(42)
	var rows []result

	for _, lgK := range lgKs {
		k := 1 << uint(lgK)
		for _, fill := range fills {
			numCoupons := uint64(fill * float64(k))
			s := syntheticSketch(r, lgK, numCoupons)
			flavor := cpc.DetermineFlavor(lgK, s.WindowOffset, s.NumCoupons)

			cs, err := cpc.Compress(s, flavor)
			if err != nil {
				fmt.Printf("lgK=%d fill=%.2f: compress error: %v\n", lgK, fill, err)
				continue
			}
			cpcBytes := 4 * (cs.CwLength + cs.CsvLength)

			raw := serializeRaw(s)
			row := result{
				label:    fmt.Sprintf("lgK=%d:fill=%.2f:%s", lgK, fill, flavor),
				rawBytes: len(raw),
				cpcBytes: cpcBytes,
				baseline: make(map[string]int),
			}
			for _, name := range baselineNames {
				row.baseline[name] = baselines[name](raw)
			}
			rows = append(rows, row)
		}
	}
	printRows(rows, baselineNames)
}

// syntheticSketch builds a plausible uncompressed sketch for benchmarking.
// Below the sparse threshold it has no window at all; above it, the table
// is confined to the column range DetermineFlavor's chosen driver expects
// (Hybrid splits at column 8 of a window pinned at offset 0; Pinned and
// Sliding both get a window at offset 8, so columns [16,64) stay clear of
// it regardless of which of the two DetermineFlavor ultimately picks).
func syntheticSketch(r *cpctest.Rand, lgK int, numCoupons uint64) *cpc.Sketch {
	k := 1 << uint(lgK)
	n := int(numCoupons)
	if n > k*64 {
		n = k * 64
	}

	s := &cpc.Sketch{LgK: lgK, NumCoupons: numCoupons}
	switch {
	case numCoupons == 0:
		s.Table = []cpc.Pair{}
	case numCoupons <= uint64(k)/32: // Sparse
		s.Table = cpctest.RandomTable(r, k, n, 0, 64)
	case numCoupons <= uint64(k)/2: // Hybrid: window pinned at offset 0
		s.SlidingWindow = cpctest.RandomWindow(r, k)
		s.Table = cpctest.RandomTable(r, k, n, 8, 64)
	default: // Pinned or Sliding, whichever DetermineFlavor's 4c<3k test picks
		s.WindowOffset = 8
		s.SlidingWindow = cpctest.RandomWindow(r, k)
		s.Table = cpctest.RandomTable(r, k, n, 16, 64)
	}
	return s
}

// serializeRaw packs the sketch into a flat byte buffer in the natural
// in-memory layout, giving the baseline codecs the same information cpc
// sees but without any of its structural knowledge.
func serializeRaw(s *cpc.Sketch) []byte {
	var buf bytes.Buffer
	buf.Write(s.SlidingWindow)
	for _, p := range s.Table {
		buf.WriteByte(byte(p.Row()))
		buf.WriteByte(byte(p.Row() >> 8))
		buf.WriteByte(byte(p.Col()))
	}
	return buf.Bytes()
}

func printRows(rows []result, baselineNames []string) {
	cells := make([][]string, 1+len(rows))
	cells[0] = append([]string{"benchmark", "cpc ratio"}, baselineNamesWithSuffix(baselineNames)...)
	for i, row := range rows {
		cells[i+1] = make([]string, len(cells[0]))
		cells[i+1][0] = row.label
		cells[i+1][1] = fmt.Sprintf("%.2fx", ratio(row.rawBytes, row.cpcBytes))
		for j, name := range baselineNames {
			cells[i+1][2+j] = fmt.Sprintf("%.2fx", ratio(row.rawBytes, row.baseline[name]))
		}
	}

	maxLens := make([]int, len(cells[0]))
	for _, row := range cells {
		for i, s := range row {
			if maxLens[i] < len(s) {
				maxLens[i] = len(s)
			}
		}
	}
	for _, row := range cells {
		for i, s := range row {
			pad := maxLens[i] - len(s)
			if i == 0 {
				fmt.Print(s, strings.Repeat(" ", pad), "  ")
			} else {
				fmt.Print(strings.Repeat(" ", pad), s, "  ")
			}
		}
		fmt.Println()
	}
}

func baselineNamesWithSuffix(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + " ratio"
	}
	return out
}

func ratio(raw, compressed int) float64 {
	if compressed == 0 {
		return 0
	}
	return float64(raw) / float64(compressed)
}
