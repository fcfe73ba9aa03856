// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package aesround

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestMixColumnsRoundTrip(t *testing.T) {
	t.Parallel()

	state := Block{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	mixed := MixColumns(state)
	qt.Assert(t, qt.Not(qt.DeepEquals(mixed, state)))
	qt.Assert(t, qt.DeepEquals(InvMixColumns(mixed), state))
}

func TestSubBytesInverse(t *testing.T) {
	t.Parallel()

	for i := 0; i < 256; i++ {
		qt.Assert(t, qt.Equals(invSBox[sbox[byte(i)]], byte(i)))
	}
}

func TestShiftRowsInverse(t *testing.T) {
	t.Parallel()

	var state Block
	for i := range state {
		state[i] = byte(i)
	}
	qt.Assert(t, qt.DeepEquals(invShiftRows(shiftRows(state)), state))
}

// TestEncDecRoundTrip checks that a full bracketed multi-round chain —
// the shape internal/deoxysbc builds around EncRound/DecRound — round
// trips: InvMixColumns after the last encrypt round, then DecRound
// against InvMixColumns-adjusted subkeys for every round but the last,
// then a closing MixColumns.
func TestEncDecRoundTrip(t *testing.T) {
	t.Parallel()

	var plaintext Block
	for i := range plaintext {
		plaintext[i] = byte(i * 7)
	}

	subkeys := make([]Block, 5)
	for i := range subkeys {
		for j := range subkeys[i] {
			subkeys[i][j] = byte(i*16 + j)
		}
	}

	state := xorForTest(plaintext, subkeys[0])
	for i := 1; i < len(subkeys); i++ {
		state = EncRound(state, subkeys[i])
	}
	ciphertext := state

	decKeys := make([]Block, len(subkeys))
	for i := 0; i < len(subkeys)-1; i++ {
		decKeys[i] = InvMixColumns(subkeys[i])
	}
	decKeys[len(subkeys)-1] = subkeys[len(subkeys)-1]

	state = xorForTest(ciphertext, decKeys[len(decKeys)-1])
	state = InvMixColumns(state)
	for i := len(decKeys) - 2; i >= 0; i-- {
		state = DecRound(state, decKeys[i])
	}
	recovered := MixColumns(state)

	qt.Assert(t, qt.DeepEquals(recovered, plaintext))
}

func xorForTest(a, b Block) Block {
	var out Block
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func TestHasHardwareAESDoesNotPanic(t *testing.T) {
	t.Parallel()
	_ = HasHardwareAES()
}
