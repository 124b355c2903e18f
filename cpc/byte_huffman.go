// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cpc

// bytePad is the number of zero bits appended after a Huffman-coded byte
// stream, guaranteeing the decoder's 12-bit peek never reads past the last
// valid word (spec invariant I4).
const bytePad = 11

// safeLengthForCompressedWindowBuf returns a word count that is always
// sufficient to hold a byte-Huffman-encoded window of k bytes, regardless
// of phase.
func safeLengthForCompressedWindowBuf(k int) int {
	return (12*k + bytePad + 31) / 32
}

// encodeBytes Huffman-codes data using the phase's encode table, appending
// it to bw. The caller flushes bw once all coding for this flavor is done.
func encodeBytes(bw *bitWriter, data []byte, phase int) {
	enc := &encodingTables[phase]
	for _, b := range data {
		entry := enc[b]
		length := uint(entry >> 12)
		value := uint32(entry) & 0xFFF
		bw.Write(value, length)
	}
	bw.Write(0, bytePad)
}

// decodeBytes reads exactly len(out) Huffman-coded bytes from br using the
// phase's decode table.
func decodeBytes(br *bitReader, out []byte, phase int) {
	dec := &decodingTables[phase]
	for i := range out {
		peek := br.Peek(12)
		entry := dec[peek]
		length := uint(entry >> 8)
		out[i] = byte(entry)
		br.Consume(length)
	}
}
