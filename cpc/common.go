// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package cpc implements the compression codec for a CPC (Compressed
// Probabilistic Counting) cardinality sketch: an entropy coder that
// converts an in-memory sketch into a compact bitstream and back, without
// loss. The sketch's update path, its cardinality estimator, pair-table
// hashing, merging, and any on-disk framing are all external collaborators;
// this package only transforms the two compressible parts of the sketch
// state — the sliding window and the surprising-value table — to and from
// 32-bit word arrays.
package cpc

import "runtime"

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "cpc: " + string(e) }

var (
	// ErrCorrupt indicates that a compressed sketch is invalid: a decode
	// operation would read past the number of compressed words the caller
	// claims are present.
	ErrCorrupt error = Error("compressed stream is corrupted")

	// ErrFlavor indicates that a flavor discriminator did not match any of
	// the five known flavors.
	ErrFlavor error = Error("unknown sketch flavor")
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// Flavor names the five coding strategies a CPC sketch can be in, derived
// by the caller from (numCoupons, windowOffset, k). The codec never infers
// flavor from its own outputs; the caller must store the discriminator
// out-of-band alongside lgK, numCoupons, windowOffset, and the two lengths.
type Flavor int

const (
	// FlavorEmpty sketches have no coupons at all: numCoupons == 0.
	FlavorEmpty Flavor = iota
	// FlavorSparse sketches have no window; all coupons live in the
	// surprising-value table.
	FlavorSparse
	// FlavorHybrid sketches have a window at offset 0; the window covers
	// columns [0,8) and the table covers columns [8,64).
	FlavorHybrid
	// FlavorPinned sketches have a window at some offset with the table
	// columns pinned to [8,64) regardless of the window's position.
	FlavorPinned
	// FlavorSliding sketches have a window that slides with windowOffset in
	// [1,56]; table columns are taken relative to the window via a
	// phase-selected permutation.
	FlavorSliding
)

func (f Flavor) String() string {
	switch f {
	case FlavorEmpty:
		return "Empty"
	case FlavorSparse:
		return "Sparse"
	case FlavorHybrid:
		return "Hybrid"
	case FlavorPinned:
		return "Pinned"
	case FlavorSliding:
		return "Sliding"
	default:
		return "Invalid"
	}
}

// DetermineFlavor derives the coding flavor from the scalar fields a caller
// would otherwise need to branch on itself. It is a pure convenience
// function: the codec's Compress/Decompress entry points take a Flavor
// directly and never call this themselves, so a caller with its own flavor
// bookkeeping may ignore it entirely.
func DetermineFlavor(lgK, windowOffset int, numCoupons uint64) Flavor {
	k := uint64(1) << uint(lgK)
	c := numCoupons
	switch {
	case c == 0:
		return FlavorEmpty
	case c <= k/32: // sparse until window is worth maintaining
		return FlavorSparse
	case windowOffset == 0:
		return FlavorHybrid
	case 4*c < 3*k: // same threshold as determinePseudoPhase's first midrange test
		return FlavorPinned
	default:
		return FlavorSliding
	}
}

// Pair is a single (row, col) coupon: row in [0,k), col in [0,64).
type Pair uint32

// NewPair packs a row/column into its wire representation: (row<<6)|col.
func NewPair(row, col int) Pair { return Pair(row<<6 | col) }

// Row returns the row component of the pair.
func (p Pair) Row() int { return int(p >> 6) }

// Col returns the column component of the pair.
func (p Pair) Col() int { return int(p & 63) }

// Sketch is the uncompressed, in-memory view of a CPC sketch's compressible
// state, as exposed by the external sketch collaborator (§6 of the
// compression spec). SlidingWindow is nil when the flavor carries no
// window; Table is empty (never nil) when there are no surprising values.
type Sketch struct {
	LgK           int
	NumCoupons    uint64
	WindowOffset  int
	SlidingWindow []byte // len == k, or nil
	Table         []Pair // multiset of (row,col) pairs, no duplicates
}

// CompressedSketch is the compact, word-oriented output of Compress and the
// input to Decompress. CompressedWindow/CompressedSurprisingValues are nil
// when the corresponding source field was absent; the caller is responsible
// for storing LgK, NumCoupons, WindowOffset, a flavor discriminator, and the
// two lengths out-of-band — this package does not define a self-describing
// wire format.
type CompressedSketch struct {
	LgK          int
	NumCoupons   uint64
	WindowOffset int

	CompressedWindow []uint32
	CwLength         int

	CompressedSurprisingValues    []uint32
	CsvLength                     int
	NumCompressedSurprisingValues int
}
