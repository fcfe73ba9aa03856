// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package zcz

// counterRun is a maximal run of consecutive Deoxys-BC-128-384 counters
// that share the high 56 counter bits BatchContext384.Arm commits to,
// capped at eight entries since that's all EncryptBatch8/DecryptBatch8
// process per call.
type counterRun struct {
	start uint64
	count int
}

// splitCounterRuns partitions the n consecutive counters starting at
// first into runs no longer than eight that never cross a 256-counter
// boundary — a batch can't span one, since BatchContext384.Arm fixes the
// high 56 bits for every block in the batch.
func splitCounterRuns(first uint64, n int) []counterRun {
	var runs []counterRun
	for n > 0 {
		toBoundary := int(256 - first%256)
		length := n
		if toBoundary < length {
			length = toBoundary
		}
		if length > 8 {
			length = 8
		}
		runs = append(runs, counterRun{start: first, count: length})
		first += uint64(length)
		n -= length
	}
	return runs
}
