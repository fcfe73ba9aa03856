// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package gf128

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestTimesFourIsDoubleTwice(t *testing.T) {
	t.Parallel()

	var v [16]byte
	for i := range v {
		v[i] = byte(i*31 + 7)
	}

	qt.Assert(t, qt.DeepEquals(TimesFour(v), Double(Double(v))))
}

func TestDoubleNonZeroProducesNonZero(t *testing.T) {
	t.Parallel()

	v := [16]byte{15: 1}
	doubled := Double(v)
	qt.Assert(t, qt.Not(qt.DeepEquals(doubled, [16]byte{})))
}

func TestBatchDoubleMatchesSerial(t *testing.T) {
	t.Parallel()

	h := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	var x [8][16]byte
	for i := range x {
		for j := range x[i] {
			x[i][j] = byte(i*16 + j)
		}
	}

	acc := h
	for i := 0; i < 8; i++ {
		acc = Double(acc)
		acc = Xor(acc, x[i])
	}

	qt.Assert(t, qt.DeepEquals(BatchDouble8(h, &x), acc))
}

func TestBatchTimesFourMatchesSerial(t *testing.T) {
	t.Parallel()

	h := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	var x [8][16]byte
	for i := range x {
		for j := range x[i] {
			x[i][j] = byte(i*16 + j + 1)
		}
	}

	acc := h
	for i := 0; i < 8; i++ {
		acc = TimesFour(acc)
		acc = Xor(acc, x[i])
	}

	qt.Assert(t, qt.DeepEquals(BatchTimesFour8(h, &x), acc))
}

func TestXorSelfInverse(t *testing.T) {
	t.Parallel()

	a := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	var b [16]byte
	for i := range b {
		b[i] = byte(255 - i)
	}

	qt.Assert(t, qt.DeepEquals(Xor(Xor(a, b), b), a))
}
