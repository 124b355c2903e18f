// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpctest

import "github.com/dsnet/cpc/cpc"

// RandomWindow returns k pseudo-random window bytes.
func RandomWindow(r *Rand, k int) []byte {
	return r.Bytes(k)
}

// RandomTable returns numPairs distinct (row,col) pairs with row in [0,k)
// and col in [colLo,colHi), sorted ascending.
func RandomTable(r *Rand, k, numPairs, colLo, colHi int) []cpc.Pair {
	seen := make(map[cpc.Pair]bool, numPairs)
	out := make([]cpc.Pair, 0, numPairs)
	colRange := colHi - colLo
	for len(out) < numPairs {
		row := r.Intn(k)
		col := colLo + r.Intn(colRange)
		p := cpc.NewPair(row, col)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sortPairsForTest(out)
	return out
}

func sortPairsForTest(pairs []cpc.Pair) {
	for i := 1; i < len(pairs); i++ {
		v := pairs[i]
		j := i - 1
		for j >= 0 && pairs[j] > v {
			pairs[j+1] = pairs[j]
			j--
		}
		pairs[j+1] = v
	}
}
