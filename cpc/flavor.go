// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

// Compress converts an uncompressed sketch into its compressed form for the
// given flavor. The flavor is derived by the caller (see DetermineFlavor for
// a convenience implementation); this package never infers it from its own
// output. Compress returns ErrFlavor for any flavor outside the five known
// values.
func Compress(s *Sketch, flavor Flavor) (cs *CompressedSketch, err error) {
	defer errRecover(&err)

	driver, ok := flavorDrivers[flavor]
	if !ok {
		return nil, ErrFlavor
	}
	return driver.compress(s), nil
}

// Decompress converts a compressed sketch back into its uncompressed form.
// It is the exact inverse of Compress for the same flavor (invariant I1).
// Decompress returns ErrFlavor for any flavor outside the five known values,
// and ErrCorrupt if the compressed data would require reading past its
// declared length.
func Decompress(cs *CompressedSketch, flavor Flavor) (s *Sketch, err error) {
	defer errRecover(&err)

	driver, ok := flavorDrivers[flavor]
	if !ok {
		return nil, ErrFlavor
	}
	return driver.decompress(cs), nil
}

// flavorDriver dispatches compress/decompress for one flavor. This plays
// the role the teacher fills with a switch on an enum; here it is a map of
// function pairs instead, since there is no inheritance hierarchy to
// translate and a dispatch table keeps each flavor's logic self-contained.
type flavorDriver struct {
	compress   func(s *Sketch) *CompressedSketch
	decompress func(cs *CompressedSketch) *Sketch
}

var flavorDrivers = map[Flavor]flavorDriver{
	FlavorEmpty:   {compressEmpty, decompressEmpty},
	FlavorSparse:  {compressSparse, decompressSparse},
	FlavorHybrid:  {compressHybrid, decompressHybrid},
	FlavorPinned:  {compressPinned, decompressPinned},
	FlavorSliding: {compressSliding, decompressSliding},
}

func kOf(lgK int) int { return 1 << uint(lgK) }

// --- Empty -------------------------------------------------------------

func compressEmpty(s *Sketch) *CompressedSketch {
	return &CompressedSketch{LgK: s.LgK, NumCoupons: s.NumCoupons, WindowOffset: s.WindowOffset}
}

func decompressEmpty(cs *CompressedSketch) *Sketch {
	return &Sketch{LgK: cs.LgK, NumCoupons: cs.NumCoupons, WindowOffset: cs.WindowOffset, Table: []Pair{}}
}

// --- Sparse --------------------------------------------------------------

func compressSparse(s *Sketch) *CompressedSketch {
	k := kOf(s.LgK)
	pairs := append([]Pair(nil), s.Table...)
	sortPairs(pairs)

	numBaseBits := golombChooseNumberOfBaseBits(uint64(k+len(pairs)), uint64(len(pairs)))
	buf := make([]uint32, 0, safeLengthForCompressedPairBuf(k, len(pairs), numBaseBits))
	bw := newBitWriter(buf)
	encodePairs(&bw, pairs, numBaseBits)
	words := bw.Flush()

	return &CompressedSketch{
		LgK: s.LgK, NumCoupons: s.NumCoupons, WindowOffset: s.WindowOffset,
		CompressedSurprisingValues:    words,
		CsvLength:                     len(words),
		NumCompressedSurprisingValues: len(pairs),
	}
}

func decompressSparse(cs *CompressedSketch) *Sketch {
	k := kOf(cs.LgK)
	numPairs := cs.NumCompressedSurprisingValues
	numBaseBits := golombChooseNumberOfBaseBits(uint64(k+numPairs), uint64(numPairs))
	br := newBitReader(cs.CompressedSurprisingValues[:cs.CsvLength])
	pairs := decodePairs(&br, numPairs, numBaseBits)

	return &Sketch{LgK: cs.LgK, NumCoupons: cs.NumCoupons, WindowOffset: cs.WindowOffset, Table: pairs}
}

// --- Hybrid ---------------------------------------------------------------

func compressHybrid(s *Sketch) *CompressedSketch {
	k := kOf(s.LgK)
	tablePairs := append([]Pair(nil), s.Table...)
	sortPairs(tablePairs)

	var windowPairs []Pair
	for row, b := range s.SlidingWindow {
		for c := 0; c < 8; c++ {
			if b&(1<<uint(c)) != 0 {
				windowPairs = append(windowPairs, NewPair(row, c))
			}
		}
	}

	merged := mergeSortedPairs(windowPairs, tablePairs)
	numBaseBits := golombChooseNumberOfBaseBits(uint64(k+len(merged)), uint64(len(merged)))
	buf := make([]uint32, 0, safeLengthForCompressedPairBuf(k, len(merged), numBaseBits))
	bw := newBitWriter(buf)
	encodePairs(&bw, merged, numBaseBits)
	words := bw.Flush()

	return &CompressedSketch{
		LgK: s.LgK, NumCoupons: s.NumCoupons, WindowOffset: 0,
		CompressedSurprisingValues:    words,
		CsvLength:                     len(words),
		NumCompressedSurprisingValues: len(merged),
	}
}

func decompressHybrid(cs *CompressedSketch) *Sketch {
	k := kOf(cs.LgK)
	numPairs := cs.NumCompressedSurprisingValues
	numBaseBits := golombChooseNumberOfBaseBits(uint64(k+numPairs), uint64(numPairs))
	br := newBitReader(cs.CompressedSurprisingValues[:cs.CsvLength])
	pairs := decodePairs(&br, numPairs, numBaseBits)

	window := make([]byte, k)
	table := []Pair{}
	for _, p := range pairs {
		if p.Col() < 8 {
			window[p.Row()] |= 1 << uint(p.Col())
		} else {
			table = append(table, p)
		}
	}
	return &Sketch{LgK: cs.LgK, NumCoupons: cs.NumCoupons, WindowOffset: 0, SlidingWindow: window, Table: table}
}

// --- Pinned -----------------------------------------------------------

func compressPinned(s *Sketch) *CompressedSketch {
	k := kOf(s.LgK)
	phase := determinePseudoPhase(s.LgK, s.NumCoupons)

	wbuf := make([]uint32, 0, safeLengthForCompressedWindowBuf(k))
	wbw := newBitWriter(wbuf)
	encodeBytes(&wbw, s.SlidingWindow, phase)
	wwords := wbw.Flush()

	cs := &CompressedSketch{
		LgK: s.LgK, NumCoupons: s.NumCoupons, WindowOffset: s.WindowOffset,
		CompressedWindow: wwords, CwLength: len(wwords),
	}

	if len(s.Table) > 0 {
		pairs := make([]Pair, len(s.Table))
		for i, p := range s.Table {
			pairs[i] = NewPair(p.Row(), p.Col()-8)
		}
		sortPairs(pairs)

		numBaseBits := golombChooseNumberOfBaseBits(uint64(k+len(pairs)), uint64(len(pairs)))
		pbuf := make([]uint32, 0, safeLengthForCompressedPairBuf(k, len(pairs), numBaseBits))
		pbw := newBitWriter(pbuf)
		encodePairs(&pbw, pairs, numBaseBits)
		pwords := pbw.Flush()

		cs.CompressedSurprisingValues = pwords
		cs.CsvLength = len(pwords)
		cs.NumCompressedSurprisingValues = len(pairs)
	}
	return cs
}

func decompressPinned(cs *CompressedSketch) *Sketch {
	k := kOf(cs.LgK)
	phase := determinePseudoPhase(cs.LgK, cs.NumCoupons)

	window := make([]byte, k)
	wbr := newBitReader(cs.CompressedWindow[:cs.CwLength])
	decodeBytes(&wbr, window, phase)

	table := []Pair{}
	if cs.NumCompressedSurprisingValues > 0 {
		numPairs := cs.NumCompressedSurprisingValues
		numBaseBits := golombChooseNumberOfBaseBits(uint64(k+numPairs), uint64(numPairs))
		pbr := newBitReader(cs.CompressedSurprisingValues[:cs.CsvLength])
		pairs := decodePairs(&pbr, numPairs, numBaseBits)
		for _, p := range pairs {
			table = append(table, NewPair(p.Row(), p.Col()+8))
		}
	}
	return &Sketch{LgK: cs.LgK, NumCoupons: cs.NumCoupons, WindowOffset: cs.WindowOffset, SlidingWindow: window, Table: table}
}

// --- Sliding ----------------------------------------------------------

func compressSliding(s *Sketch) *CompressedSketch {
	k := kOf(s.LgK)
	phase := determinePseudoPhase(s.LgK, s.NumCoupons)

	wbuf := make([]uint32, 0, safeLengthForCompressedWindowBuf(k))
	wbw := newBitWriter(wbuf)
	encodeBytes(&wbw, s.SlidingWindow, phase)
	wwords := wbw.Flush()

	cs := &CompressedSketch{
		LgK: s.LgK, NumCoupons: s.NumCoupons, WindowOffset: s.WindowOffset,
		CompressedWindow: wwords, CwLength: len(wwords),
	}

	if len(s.Table) > 0 {
		perm := &columnPermEncode[phase]
		pairs := make([]Pair, len(s.Table))
		for i, p := range s.Table {
			cPrime := (p.Col() + 56 - s.WindowOffset) & 63
			cPrime = int(perm[cPrime])
			pairs[i] = NewPair(p.Row(), cPrime)
		}
		sortPairs(pairs) // sort happens after the column transform

		numBaseBits := golombChooseNumberOfBaseBits(uint64(k+len(pairs)), uint64(len(pairs)))
		pbuf := make([]uint32, 0, safeLengthForCompressedPairBuf(k, len(pairs), numBaseBits))
		pbw := newBitWriter(pbuf)
		encodePairs(&pbw, pairs, numBaseBits)
		pwords := pbw.Flush()

		cs.CompressedSurprisingValues = pwords
		cs.CsvLength = len(pwords)
		cs.NumCompressedSurprisingValues = len(pairs)
	}
	return cs
}

func decompressSliding(cs *CompressedSketch) *Sketch {
	k := kOf(cs.LgK)
	phase := determinePseudoPhase(cs.LgK, cs.NumCoupons)

	window := make([]byte, k)
	wbr := newBitReader(cs.CompressedWindow[:cs.CwLength])
	decodeBytes(&wbr, window, phase)

	table := []Pair{}
	if cs.NumCompressedSurprisingValues > 0 {
		perm := &columnPermDecode[phase]
		numPairs := cs.NumCompressedSurprisingValues
		numBaseBits := golombChooseNumberOfBaseBits(uint64(k+numPairs), uint64(numPairs))
		pbr := newBitReader(cs.CompressedSurprisingValues[:cs.CsvLength])
		pairs := decodePairs(&pbr, numPairs, numBaseBits)
		for _, p := range pairs {
			c := int(perm[p.Col()])
			c = (c + cs.WindowOffset + 8) & 63
			table = append(table, NewPair(p.Row(), c))
		}
	}
	return &Sketch{LgK: cs.LgK, NumCoupons: cs.NumCoupons, WindowOffset: cs.WindowOffset, SlidingWindow: window, Table: table}
}

// mergeSortedPairs merges two ascending-sorted pair slices (a two-pointer
// merge; HYBRID's window pairs all have col<8 and its table pairs all have
// col>=8, so within equal rows the window pair always precedes the table
// pair and a plain numeric compare suffices).
func mergeSortedPairs(a, b []Pair) []Pair {
	out := make([]Pair, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
