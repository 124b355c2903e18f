// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

import (
	"container/heap"
)

// This file builds the length-limited canonical Huffman tables the byte
// codec (component 3) and the column-delta codec (component 4) need from a
// per-symbol frequency profile. The profiles themselves (tables.go)
// are the "trained" constants; the construction below is the standard
// Huffman-tree-plus-length-limiting algorithm, run once at package init,
// rather than 22 opaque hand-transcribed tables — see DESIGN.md for the
// rationale.

type huffHeapNode struct {
	freq     uint64
	sym      int // -1 for internal nodes
	depth    int
	children [2]*huffHeapNode
}

type huffHeap []*huffHeapNode

func (h huffHeap) Len() int { return len(h) }
func (h huffHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].sym < h[j].sym // deterministic tie-break
}
func (h huffHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x interface{}) { *h = append(*h, x.(*huffHeapNode)) }
func (h *huffHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// huffmanLengths computes unrestricted minimum-redundancy code lengths for
// the given per-symbol frequencies. Every symbol gets a length of at least
// 1, including symbols with zero frequency, so the resulting table always
// covers the full alphabet.
func huffmanLengths(freq []uint64) []int {
	n := len(freq)
	lens := make([]int, n)
	if n == 1 {
		lens[0] = 1
		return lens
	}

	h := make(huffHeap, n)
	for i, f := range freq {
		if f == 0 {
			f = 1 // every symbol must remain representable
		}
		h[i] = &huffHeapNode{freq: f, sym: i}
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffHeapNode)
		b := heap.Pop(&h).(*huffHeapNode)
		parent := &huffHeapNode{freq: a.freq + b.freq, sym: -1, children: [2]*huffHeapNode{a, b}}
		heap.Push(&h, parent)
	}
	root := h[0]

	var walk func(node *huffHeapNode, depth int)
	walk = func(node *huffHeapNode, depth int) {
		if node.sym >= 0 {
			if depth == 0 {
				depth = 1 // single-symbol alphabet edge case
			}
			lens[node.sym] = depth
			return
		}
		walk(node.children[0], depth+1)
		walk(node.children[1], depth+1)
	}
	walk(root, 0)
	return lens
}

// limitLengths adjusts an unrestricted length assignment so that no code
// exceeds maxLen bits, using the classic bit-count redistribution technique:
// clamp the per-length counts down to maxLen and then repeatedly trade a
// pair of codes at the deepest level for one code one level shallower and
// two codes one level deeper, which keeps the Kraft sum exactly 1 while
// lowering the maximum depth. Symbols are then reassigned length-by-length,
// most frequent symbols first, so that higher-frequency symbols keep the
// shorter codes.
func limitLengths(freq []uint64, lens []int, maxLen int) []int {
	maxRaw := 0
	for _, l := range lens {
		if l > maxRaw {
			maxRaw = l
		}
	}
	if maxRaw <= maxLen {
		return lens
	}

	count := make([]int, maxRaw+1) // count[i] = number of symbols at length i
	for _, l := range lens {
		count[l]++
	}

	for bitsLen := maxRaw; bitsLen > maxLen; bitsLen-- {
		for count[bitsLen] > 0 {
			j := bitsLen - 2
			for count[j] == 0 {
				j--
			}
			count[bitsLen] -= 2
			count[bitsLen-1]++
			count[j+1] += 2
			count[j]--
		}
	}

	// Reassign lengths to symbols: most frequent symbols get the shortest
	// remaining length bucket.
	order := make([]int, len(freq))
	for i := range order {
		order[i] = i
	}
	sortByFreqDesc(order, freq)

	out := make([]int, len(freq))
	idx := 0
	for l := 1; l <= maxLen; l++ {
		for c := 0; c < count[l]; c++ {
			out[order[idx]] = l
			idx++
		}
	}
	return out
}

// sortByFreqDesc sorts idx (a permutation of [0,len(freq))) so that the
// highest-frequency symbols come first, breaking ties by symbol index for
// determinism. Simple insertion sort: alphabets here are at most 256 wide.
func sortByFreqDesc(idx []int, freq []uint64) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0; j-- {
			a, b := idx[j-1], idx[j]
			fa, fb := freq[a], freq[b]
			if fa == 0 {
				fa = 1
			}
			if fb == 0 {
				fb = 1
			}
			if fa > fb || (fa == fb && a < b) {
				break
			}
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}

// canonicalCodesLSB assigns canonical Huffman codes to symbols given their
// final lengths, then bit-reverses each code within its length so it packs
// correctly into the codec's LSB-first bitstream (the same trick the
// teacher's DEFLATE codec uses to turn MSB-first canonical codes into an
// LSB-first stream, via reverseUint32N).
func canonicalCodesLSB(lens []int) []uint32 {
	n := len(lens)
	type symLen struct {
		sym int
		len int
	}
	syms := make([]symLen, n)
	for i, l := range lens {
		syms[i] = symLen{sym: i, len: l}
	}
	// Stable sort by (len, sym) ascending; insertion sort, alphabets are small.
	for i := 1; i < len(syms); i++ {
		for j := i; j > 0; j-- {
			if syms[j-1].len < syms[j].len || (syms[j-1].len == syms[j].len && syms[j-1].sym <= syms[j].sym) {
				break
			}
			syms[j-1], syms[j] = syms[j], syms[j-1]
		}
	}

	codes := make([]uint32, n)
	var code uint32
	prevLen := 0
	for _, s := range syms {
		code <<= uint(s.len - prevLen)
		prevLen = s.len
		codes[s.sym] = reverseBitsN(code, uint(s.len))
		code++
	}
	return codes
}

// buildByteHuffman constructs the (256->16bit) encode table and the
// (4096->16bit) decode table for one pseudo-phase from a byte-value
// frequency profile, per spec section 4.3.
func buildByteHuffman(freq [256]uint64) (enc [256]uint16, dec [4096]uint16) {
	const maxLen = 12
	raw := huffmanLengths(freq[:])
	lens := limitLengths(freq[:], raw, maxLen)
	codes := canonicalCodesLSB(lens)

	for sym := 0; sym < 256; sym++ {
		l := lens[sym]
		c := codes[sym]
		enc[sym] = uint16(l<<12) | uint16(c)

		step := uint32(1) << uint(l)
		for hi := uint32(0); ; hi += step {
			idx := c | hi
			if idx >= 4096 {
				break
			}
			dec[idx] = uint16(l<<8) | uint16(sym)
		}
	}
	return enc, dec
}

// buildLLU65 constructs the length-limited-unary encode/decode pair for the
// 65-symbol column-delta alphabet (xDelta in [0,64]), per spec section 4.4.
func buildLLU65(freq [65]uint64) (enc [65]uint16, dec [4096]uint16) {
	const maxLen = 12
	raw := huffmanLengths(freq[:])
	lens := limitLengths(freq[:], raw, maxLen)
	codes := canonicalCodesLSB(lens)

	for sym := 0; sym < 65; sym++ {
		l := lens[sym]
		c := codes[sym]
		enc[sym] = uint16(l<<12) | uint16(c)

		step := uint32(1) << uint(l)
		for hi := uint32(0); ; hi += step {
			idx := c | hi
			if idx >= 4096 {
				break
			}
			dec[idx] = uint16(l<<8) | uint16(sym)
		}
	}
	return enc, dec
}
