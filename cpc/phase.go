// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

const numPhases = 22

// determinePseudoPhase maps (lgK, numCoupons) to one of 22 pseudo-phases
// selecting the byte-Huffman tables (and, for Sliding, the column
// permutation) to use. The six midrange sub-thresholds and the overall
// 1000c<2375k midrange/steady-state boundary are hand-tuned constants
// carried over verbatim from the reference implementation.
func determinePseudoPhase(lgK int, numCoupons uint64) int {
	c := numCoupons
	k := uint64(1) << uint(lgK)

	if 1000*c < 2375*k {
		switch {
		case 4*c < 3*k:
			return 16
		case 10*c < 11*k:
			return 17
		case 100*c < 132*k:
			return 18
		case 3*c < 5*k:
			return 19
		case 1000*c < 1965*k:
			return 20
		case 1000*c < 2275*k:
			return 21
		default:
			return 6
		}
	}

	// Steady state: requires lgK >= 4, a precondition enforced at the
	// sketch boundary, not here (see spec Open Questions).
	return int((c >> uint(lgK-4)) & 15)
}
