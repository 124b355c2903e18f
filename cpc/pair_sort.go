// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

import "sort"

// insertionSortThreshold is the cutover point below which plain insertion
// sort beats a general-purpose sort: pair arrays extracted from a hash
// table are typically small or already near-sorted, the case insertion
// sort handles best. Above the threshold — notably Sliding's post-
// permutation array (flavor.go), which spec.md's design note calls out as
// no longer near-sorted since the column transform changes the total
// order — fall back to sort.Slice so a table of size up to k*64 doesn't
// pay insertion sort's O(n^2) worst case.
const insertionSortThreshold = 64

// sortPairs sorts pairs ascending by their wire order (row, then column),
// which is exactly numeric ascending order since a pair packs as
// (row<<6)|col.
func sortPairs(pairs []Pair) {
	if len(pairs) > insertionSortThreshold {
		sort.Slice(pairs, func(i, j int) bool { return pairs[i] < pairs[j] })
		return
	}
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
