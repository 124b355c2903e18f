// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

// golombChooseNumberOfBaseBits returns the largest b >= 0 such that
// numPairs * 2^b <= numItems. numItems is k+numPairs per spec section 4.4:
// this matches the expected geometric mean of the row delta so the unary
// part of the Golomb-Rice code averages about one bit.
func golombChooseNumberOfBaseBits(numItems uint64, numPairs uint64) int {
	if numPairs == 0 {
		return 0
	}
	b := 0
	for (numPairs << uint(b+1)) <= numItems {
		b++
	}
	return b
}

// safeLengthForCompressedPairBuf returns a word count that is always
// sufficient to hold a pair-coded sequence of numPairs pairs over a universe
// of size k with Golomb parameter numBaseBits.
func safeLengthForCompressedPairBuf(k, numPairs, numBaseBits int) int {
	xbits := 12 * numPairs
	ybits := numPairs*(1+numBaseBits) + (k >> uint(numBaseBits))
	pad := pairPad(numBaseBits)
	return (xbits + ybits + pad + 31) / 32
}

func pairPad(numBaseBits int) int {
	if numBaseBits >= 10 {
		return 0
	}
	return 10 - numBaseBits
}

// encodePairs writes a strictly ascending (by row, then by column within a
// row) sequence of pairs using delta coding: the column delta via the
// length-limited unary LLU65 table, and the row delta via Golomb-Rice with
// modulus 2^numBaseBits, per spec section 4.4. The caller flushes bw once
// all coding for this flavor is done.
func encodePairs(bw *bitWriter, pairs []Pair, numBaseBits int) {
	predictedRow, predictedCol := 0, 0
	for _, pr := range pairs {
		row, col := pr.Row(), pr.Col()
		if row != predictedRow {
			predictedCol = 0
		}
		yDelta := row - predictedRow
		xDelta := col - predictedCol
		predictedRow, predictedCol = row, col+1

		entry := llu65Encode[xDelta]
		bw.Write(uint32(entry)&0xFFF, uint(entry>>12))

		hi := yDelta >> uint(numBaseBits)
		lo := yDelta & (1<<uint(numBaseBits) - 1)
		bw.WriteUnary(hi)
		if numBaseBits > 0 {
			bw.Write(uint32(lo), uint(numBaseBits))
		}
	}
	bw.Write(0, uint(pairPad(numBaseBits)))
}

// decodePairs reads numPairs pairs coded by encodePairs.
func decodePairs(br *bitReader, numPairs int, numBaseBits int) []Pair {
	out := make([]Pair, numPairs)
	predictedRow, predictedCol := 0, 0
	for i := 0; i < numPairs; i++ {
		peek := br.Peek(12)
		entry := llu65Decode[peek]
		xLen := uint(entry >> 8)
		xDelta := int(uint8(entry))
		br.Consume(xLen)

		hi := br.ReadUnary()
		lo := 0
		if numBaseBits > 0 {
			lo = int(br.ReadBits(uint(numBaseBits)))
		}
		yDelta := hi<<uint(numBaseBits) | lo

		if yDelta > 0 {
			predictedCol = 0
		}
		row := predictedRow + yDelta
		col := predictedCol + xDelta
		out[i] = NewPair(row, col)
		predictedRow, predictedCol = row, col+1
	}
	return out
}
