// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package aesround implements the bare AES round function — SubBytes,
// ShiftRows, MixColumns, AddRoundKey, and their inverses — as standalone
// operations over a 16-byte state. MixColumns has no data-dependent
// branches, but SubBytes is a lookup in a 256-byte table indexed by the
// state bytes, so memory access depends on the data and the round
// function is not constant-time against cache-timing observation.
// Deoxys-BC reuses this
// round function under its own (non-AES) tweakey schedule, so the
// primitive has to be exposed independently of any fixed AES key
// schedule; crypto/aes does not do that, which is why this package exists
// (see DESIGN.md).
package aesround

import "golang.org/x/sys/cpu"

// Block is a 16-byte AES/Deoxys-BC state.
type Block = [16]byte

// HasHardwareAES reports whether the host exposes an AES instruction set
// (AES-NI on amd64, the ARMv8 Cryptography Extensions on arm64). Deoxys-BC
// cannot use crypto/aes's hardware path directly — it needs the bare round
// function under its own key schedule — but callers doing high-throughput
// batched encryption can use this to decide whether amortizing schedule
// work across a wider batch is worth it on this host.
func HasHardwareAES() bool {
	return cpu.X86.HasAES || cpu.ARM64.HasAES
}

// gmul multiplies two bytes in GF(2^8) modulo the AES polynomial
// x^8+x^4+x^3+x+1, used only by MixColumns/InvMixColumns. It uses masks
// instead of branches on the bits of either operand.
func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		p ^= a & -(b & 1)
		a = (a << 1) ^ (0x1b & -(a >> 7))
		b >>= 1
	}
	return p
}

func subBytes(s Block) Block {
	for i := range s {
		s[i] = sbox[s[i]]
	}
	return s
}

func invSubBytes(s Block) Block {
	for i := range s {
		s[i] = invSBox[s[i]]
	}
	return s
}

// shiftRows treats the 16 bytes as a column-major 4x4 matrix, as FIPS-197
// requires: s[col*4+row].
func shiftRows(s Block) Block {
	var out Block
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = s[((col+row)%4)*4+row]
		}
	}
	return out
}

func invShiftRows(s Block) Block {
	var out Block
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[((col+row)%4)*4+row] = s[col*4+row]
		}
	}
	return out
}

// MixColumns applies the AES MixColumns transform to each column.
func MixColumns(s Block) Block {
	var out Block
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := s[c*4], s[c*4+1], s[c*4+2], s[c*4+3]
		out[c*4] = gmul(a0, 2) ^ gmul(a1, 3) ^ a2 ^ a3
		out[c*4+1] = a0 ^ gmul(a1, 2) ^ gmul(a2, 3) ^ a3
		out[c*4+2] = a0 ^ a1 ^ gmul(a2, 2) ^ gmul(a3, 3)
		out[c*4+3] = gmul(a0, 3) ^ a1 ^ a2 ^ gmul(a3, 2)
	}
	return out
}

// InvMixColumns applies the inverse AES MixColumns transform.
func InvMixColumns(s Block) Block {
	var out Block
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := s[c*4], s[c*4+1], s[c*4+2], s[c*4+3]
		out[c*4] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		out[c*4+1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		out[c*4+2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		out[c*4+3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
	return out
}

func addRoundKey(s, subkey Block) Block {
	for i := range s {
		s[i] ^= subkey[i]
	}
	return s
}

// EncRound computes MC(SR(SB(state))) ^ subkey, the standard AES round.
// Deoxys-BC applies this same function for every round, including the
// final one — it never switches to the MixColumns-omitting "last round".
func EncRound(state, subkey Block) Block {
	return addRoundKey(MixColumns(shiftRows(subBytes(state))), subkey)
}

// DecRound computes InvMC(InvSB(InvSR(state))) ^ subkey. Chained against
// a matching encryption schedule where subkey[i] = InvMixColumns(rk[i])
// for every round but the last, this is the exact functional inverse of
// EncRound, bracketed by a caller-applied InvMixColumns on the way in and
// a MixColumns on the way out (see internal/deoxysbc).
func DecRound(state, subkey Block) Block {
	return addRoundKey(InvMixColumns(invSubBytes(invShiftRows(state))), subkey)
}
