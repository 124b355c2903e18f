// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dsnet/cpc/internal/cpctest"
)

func sketchesEqual(t *testing.T, got, want *Sketch) {
	t.Helper()
	gotSet := map[Pair]bool{}
	for _, p := range got.Table {
		gotSet[p] = true
	}
	wantSet := map[Pair]bool{}
	for _, p := range want.Table {
		wantSet[p] = true
	}
	if diff := cmp.Diff(wantSet, gotSet); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if got.LgK != want.LgK || got.NumCoupons != want.NumCoupons || got.WindowOffset != want.WindowOffset {
		t.Errorf("scalar mismatch: got %+v, want %+v", struct {
			LgK, WindowOffset int
			NumCoupons        uint64
		}{got.LgK, got.WindowOffset, got.NumCoupons}, struct {
			LgK, WindowOffset int
			NumCoupons        uint64
		}{want.LgK, want.WindowOffset, want.NumCoupons})
	}
	if (got.SlidingWindow == nil) != (want.SlidingWindow == nil) {
		t.Errorf("window presence mismatch: got nil=%v, want nil=%v", got.SlidingWindow == nil, want.SlidingWindow == nil)
	} else if got.SlidingWindow != nil {
		if diff := cmp.Diff(want.SlidingWindow, got.SlidingWindow); diff != "" {
			t.Errorf("window mismatch (-want +got):\n%s", diff)
		}
	}
}

// Scenario 1: Empty.
func TestScenarioEmpty(t *testing.T) {
	s := &Sketch{LgK: 10, NumCoupons: 0, Table: []Pair{}}
	cs, err := Compress(s, FlavorEmpty)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if cs.CompressedWindow != nil || cs.CompressedSurprisingValues != nil {
		t.Errorf("Empty flavor must produce no bitstream, got %+v", cs)
	}

	out, err := Decompress(cs, FlavorEmpty)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(out.Table) != 0 || out.NumCoupons != 0 {
		t.Errorf("Empty round trip: got %+v", out)
	}
}

// Scenario 2: Sparse, single pair.
func TestScenarioSparse(t *testing.T) {
	s := &Sketch{LgK: 10, NumCoupons: 1, Table: []Pair{NewPair(5, 3)}}
	cs, err := Compress(s, FlavorSparse)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out, err := Decompress(cs, FlavorSparse)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(out.Table) != 1 || out.Table[0] != NewPair(5, 3) {
		t.Errorf("Sparse round trip: got table %v, want [(5,3)]", out.Table)
	}
}

// Scenario 3: Hybrid, 64 rows with bit 0 set, table empty.
func TestScenarioHybrid(t *testing.T) {
	const lgK = 8
	k := 1 << lgK
	window := make([]byte, k)
	for row := 0; row < 64; row++ {
		window[row] = 0x01
	}
	s := &Sketch{LgK: lgK, NumCoupons: 64, WindowOffset: 0, SlidingWindow: window, Table: []Pair{}}

	cs, err := Compress(s, FlavorHybrid)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if cs.NumCompressedSurprisingValues != 64 {
		t.Errorf("Hybrid: got %d coded pairs, want 64", cs.NumCompressedSurprisingValues)
	}

	out, err := Decompress(cs, FlavorHybrid)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(out.Table) != 0 {
		t.Errorf("Hybrid: table should end empty, got %v", out.Table)
	}
	sketchesEqual(t, out, s)
}

// Scenario 4: Pinned, dense window + 30 table pairs in [8,64).
func TestScenarioPinned(t *testing.T) {
	const lgK = 12
	k := 1 << lgK
	r := cpctest.NewRand(4)
	window := cpctest.RandomWindow(r, k)
	// A window byte holds exactly the eight columns [offset,offset+8), so
	// masking with 0xFF keeps every random bit.
	for i := range window {
		window[i] &= 0xFF
	}
	table := cpctest.RandomTable(r, k, 30, 8, 64)

	s := &Sketch{LgK: lgK, NumCoupons: 100, WindowOffset: 0, SlidingWindow: window, Table: table}
	cs, err := Compress(s, FlavorPinned)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out, err := Decompress(cs, FlavorPinned)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	sketchesEqual(t, out, s)
}

// Scenario 5: Sliding, random window + random 500-pair table, cols in [15,64).
func TestScenarioSliding(t *testing.T) {
	const lgK = 12
	const numCoupons = 3000
	k := 1 << lgK
	r := cpctest.NewRand(5)
	window := cpctest.RandomWindow(r, k)
	table := cpctest.RandomTable(r, k, 500, 15, 64)

	s := &Sketch{LgK: lgK, NumCoupons: numCoupons, WindowOffset: 7, SlidingWindow: window, Table: table}

	wantPhase := determinePseudoPhase(lgK, numCoupons)
	if kk := uint64(1) << lgK; 1000*uint64(numCoupons) >= 2375*kk {
		t.Fatalf("test assumption broken: numCoupons should be in the midrange regime")
	}
	_ = wantPhase

	cs, err := Compress(s, FlavorSliding)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out, err := Decompress(cs, FlavorSliding)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	sketchesEqual(t, out, s)
}

// TestRoundTripAllFlavors checks property P1 across many random sketches.
func TestRoundTripAllFlavors(t *testing.T) {
	r := cpctest.NewRand(6)
	lgKs := []int{4, 6, 8, 10, 12}

	for _, lgK := range lgKs {
		k := 1 << lgK

		// Empty
		{
			s := &Sketch{LgK: lgK, Table: []Pair{}}
			roundTrip(t, s, FlavorEmpty)
		}
		// Sparse
		for _, n := range []int{0, 1, 5, 50} {
			table := cpctest.RandomTable(r, k, min(n, k*64), 0, 64)
			s := &Sketch{LgK: lgK, NumCoupons: uint64(len(table)), Table: table}
			roundTrip(t, s, FlavorSparse)
		}
		// Hybrid
		for trial := 0; trial < 3; trial++ {
			window := make([]byte, k)
			tablePairs := cpctest.RandomTable(r, k, k/4, 8, 64)
			var windowPairs []Pair
			for row := 0; row < k; row++ {
				if r.Intn(4) == 0 {
					col := r.Intn(8)
					window[row] |= 1 << uint(col)
					windowPairs = append(windowPairs, NewPair(row, col))
				}
			}
			s := &Sketch{
				LgK: lgK, NumCoupons: uint64(len(tablePairs) + len(windowPairs)),
				WindowOffset: 0, SlidingWindow: window, Table: tablePairs,
			}
			roundTrip(t, s, FlavorHybrid)
		}
		// Pinned
		for _, offset := range []int{0, 20, 56} {
			window := cpctest.RandomWindow(r, k)
			table := cpctest.RandomTable(r, k, k/8, 8, 64)
			s := &Sketch{LgK: lgK, NumCoupons: uint64(len(table)) + 10, WindowOffset: offset, SlidingWindow: window, Table: table}
			roundTrip(t, s, FlavorPinned)
		}
		// Sliding
		for _, offset := range []int{1, 8, 33, 56} {
			window := cpctest.RandomWindow(r, k)
			// Table columns lie outside the window's [offset,offset+8): draw
			// them from [0,56) and move them past the window.
			table := cpctest.RandomTable(r, k, k/8, 0, 56)
			for i, p := range table {
				table[i] = NewPair(p.Row(), (p.Col()+offset+8)&63)
			}
			s := &Sketch{LgK: lgK, NumCoupons: uint64(len(table)) + 10, WindowOffset: offset, SlidingWindow: window, Table: table}
			roundTrip(t, s, FlavorSliding)
		}
	}
}

func roundTrip(t *testing.T, s *Sketch, flavor Flavor) {
	t.Helper()
	cs, err := Compress(s, flavor)
	if err != nil {
		t.Fatalf("flavor %v: Compress: %v", flavor, err)
	}
	out, err := Decompress(cs, flavor)
	if err != nil {
		t.Fatalf("flavor %v: Decompress: %v", flavor, err)
	}
	sketchesEqual(t, out, s)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// TestUnknownFlavor checks the one recoverable error the codec surfaces.
func TestUnknownFlavor(t *testing.T) {
	s := &Sketch{LgK: 10, Table: []Pair{}}
	if _, err := Compress(s, Flavor(99)); err != ErrFlavor {
		t.Errorf("Compress with unknown flavor: got %v, want ErrFlavor", err)
	}
	if _, err := Decompress(&CompressedSketch{LgK: 10}, Flavor(99)); err != ErrFlavor {
		t.Errorf("Decompress with unknown flavor: got %v, want ErrFlavor", err)
	}
}

// TestSlidingPermutationInverse checks property P7 for the Sliding
// transform: applying the encode then decode permutation returns the
// original column for every column in [0,56) and every phase.
func TestSlidingPermutationInverse(t *testing.T) {
	for phase := 0; phase < numPhases; phase++ {
		enc := &columnPermEncode[phase]
		dec := &columnPermDecode[phase]
		for c := 0; c < 56; c++ {
			cp := enc[c]
			if got := dec[cp]; int(got) != c {
				t.Errorf("phase %d: dec[enc[%d]] = %d, want %d", phase, c, got, c)
			}
		}
	}
}

// TestPinnedColumnShiftInverse checks property P7 for the Pinned transform:
// subtracting then adding 8 is an exact inverse modulo 64 for columns in
// [8,64).
func TestPinnedColumnShiftInverse(t *testing.T) {
	for col := 8; col < 64; col++ {
		shifted := col - 8
		if shifted < 0 || shifted >= 56 {
			t.Fatalf("col %d: shifted value %d out of [0,56)", col, shifted)
		}
		if restored := shifted + 8; restored != col {
			t.Errorf("col %d: restored %d", col, restored)
		}
	}
}
