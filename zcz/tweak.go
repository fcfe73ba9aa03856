// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package zcz

import (
	"encoding/binary"

	"github.com/AeonDave/zcz/internal/deoxysbc"
)

// Block is a single 16-byte Deoxys-BC block.
type Block = deoxysbc.Block

// buildTweak assembles the 32-byte Deoxys-BC-128-384 tweak ZCZ drives
// every primitive call with: TK1 is the caller-supplied 16-byte "tweak
// block" (itself another message block, tying the primitive call to its
// neighbors), TK2 packs the 1-byte domain in its first byte and an
// 8-byte little-endian counter in its last eight, with the seven bytes in
// between left at zero.
func buildTweak(domain byte, counter uint64, tweakBlock Block) (tk1, tk2 Block) {
	tk1 = tweakBlock
	tk2[0] = domain
	binary.LittleEndian.PutUint64(tk2[8:16], counter)
	return tk1, tk2
}

// primitiveEncrypt is every ZCZ layer's atomic operation: a single
// Deoxys-BC-128-384 block encryption under a domain-and-counter-derived
// tweak.
func primitiveEncrypt(key Block, domain byte, counter uint64, tweakBlock, plaintext Block) Block {
	tk1, tk2 := buildTweak(domain, counter, tweakBlock)
	return deoxysbc.NewContext384(key, tk1, tk2).Encrypt(plaintext)
}

// primitiveDecrypt inverts primitiveEncrypt.
func primitiveDecrypt(key Block, domain byte, counter uint64, tweakBlock, ciphertext Block) Block {
	tk1, tk2 := buildTweak(domain, counter, tweakBlock)
	return deoxysbc.NewContext384(key, tk1, tk2).Decrypt(ciphertext)
}

func xorBlock(a, b Block) Block {
	var out Block
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func blockAt(buf []byte, off int) Block {
	var b Block
	copy(b[:], buf[off:off+numBytesInBlock])
	return b
}

func putBlock(buf []byte, off int, b Block) {
	copy(buf[off:off+numBytesInBlock], b[:])
}

func putUint64LE(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf[:8], v)
}
