// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package deoxysbc implements Deoxys-BC, the tweakable block cipher that
// underlies ZCZ. Deoxys-BC reuses the AES round function (see
// internal/aesround) under a tweakey schedule of its own: the 128-bit key
// and the tweak are both folded into a sequence of "tweakey words" that
// evolve round by round through a byte permutation H and, for the wider
// variants, a linear-feedback byte map (LFSR2 or LFSR3).
//
// Three variants are implemented: Deoxys-BC-128-128 (key only, no tweak),
// Deoxys-BC-128-256 (one 16-byte tweak), and Deoxys-BC-128-384 (a 32-byte
// tweak split into TK1 and TK2). ZCZ is built entirely on the 384-bit
// variant; the narrower two exist for interoperability with the reference
// test vectors.
package deoxysbc

import "github.com/AeonDave/zcz/internal/aesround"

// Block is a 16-byte Deoxys-BC state, key, or tweak word.
type Block = aesround.Block

// Number of AES-style rounds for each tweakey size. Each variant has
// NumRounds+1 round keys (round 0 is plain whitening).
const (
	NumRounds128 = 12
	NumRounds256 = 14
	NumRounds384 = 16
)

// hPermutation is the byte permutation H applied to a tweakey word once
// per round.
var hPermutation = [16]byte{7, 0, 13, 10, 11, 4, 1, 14, 15, 8, 5, 2, 3, 12, 9, 6}

// rcon holds the 17 round constants, one per round key (indices 0..16
// cover every variant's round count).
var rcon = [17]byte{
	0x2f, 0x5e, 0xbc, 0x63, 0xc6, 0x97, 0x35, 0x6a,
	0xd4, 0xb3, 0x7d, 0xfa, 0xef, 0xc5, 0x91, 0x39,
	0x72,
}

func xorBlock(a, b Block) Block {
	var out Block
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func permuteTweak(x Block) Block {
	var out Block
	for i, m := range hPermutation {
		out[i] = x[m]
	}
	return out
}

// lfsr2Byte is the rank-2 linear feedback map applied to one byte of a
// tweakey word evolving under a 2-bit-per-key-class schedule.
func lfsr2Byte(in byte) byte {
	return ((in << 1) & 0xfe) | (((in >> 7) ^ (in >> 5)) & 0x01)
}

// lfsr3Byte is the rank-3 linear feedback map.
func lfsr3Byte(in byte) byte {
	return ((in >> 1) & 0x7f) | (((in << 7) ^ (in << 1)) & 0x80)
}

func lfsr2(x Block) Block {
	var out Block
	for i, b := range x {
		out[i] = lfsr2Byte(b)
	}
	return out
}

func lfsr3(x Block) Block {
	var out Block
	for i, b := range x {
		out[i] = lfsr3Byte(b)
	}
	return out
}

func roundConstant(i int) Block {
	r := rcon[i]
	return Block{1, 2, 4, 8, r, r, r, r, 0, 0, 0, 0, 0, 0, 0, 0}
}

func addRoundConstants(subkeys []Block) {
	for i := range subkeys {
		subkeys[i] = xorBlock(subkeys[i], roundConstant(i))
	}
}

// deriveDecryptionKeys computes the round keys decrypt needs: InvMixColumns
// applied to every round key except the last (round 0 included — round 0's
// key is consumed by a round in the decrypt direction too, since decrypt
// brackets the round loop with its own MixColumns/InvMixColumns calls; see
// Context384.Decrypt).
func deriveDecryptionKeys(roundKeys []Block) []Block {
	dk := make([]Block, len(roundKeys))
	copy(dk, roundKeys)
	for i := 0; i < len(dk)-1; i++ {
		dk[i] = aesround.InvMixColumns(dk[i])
	}
	return dk
}

// ---------------------------------------------------------------------
// Deoxys-BC-128-128 (key only)
// ---------------------------------------------------------------------

// Context128 holds the expanded tweakey schedule for Deoxys-BC-128-128.
type Context128 struct {
	roundKeys [NumRounds128 + 1]Block
	decKeys   [NumRounds128 + 1]Block
}

// NewContext128 expands a 128-bit key into a Deoxys-BC-128-128 schedule.
func NewContext128(key Block) *Context128 {
	var subkeys [NumRounds128 + 1]Block
	subkeys[0] = key
	for i := 0; i < NumRounds128; i++ {
		subkeys[i+1] = permuteTweak(subkeys[i])
	}
	addRoundConstants(subkeys[:])

	ctx := &Context128{roundKeys: subkeys}
	copy(ctx.decKeys[:], deriveDecryptionKeys(subkeys[:]))
	return ctx
}

// Encrypt runs the full 12-round Deoxys-BC-128-128 permutation.
func (c *Context128) Encrypt(plaintext Block) Block {
	state := xorBlock(plaintext, c.roundKeys[0])
	for i := 1; i <= NumRounds128; i++ {
		state = aesround.EncRound(state, c.roundKeys[i])
	}
	return state
}

// Decrypt inverts Encrypt.
func (c *Context128) Decrypt(ciphertext Block) Block {
	state := xorBlock(ciphertext, c.roundKeys[NumRounds128])
	state = aesround.InvMixColumns(state)
	for i := NumRounds128 - 1; i >= 0; i-- {
		state = aesround.DecRound(state, c.decKeys[i])
	}
	return aesround.MixColumns(state)
}

// ---------------------------------------------------------------------
// Deoxys-BC-128-256 (key + one 16-byte tweak)
// ---------------------------------------------------------------------

// Context256 holds the expanded tweakey schedule for Deoxys-BC-128-256.
type Context256 struct {
	roundKeys [NumRounds256 + 1]Block
	decKeys   [NumRounds256 + 1]Block
}

// NewContext256 expands a 128-bit key and a 16-byte tweak.
func NewContext256(key, tweak Block) *Context256 {
	var subkeys [NumRounds256 + 1]Block
	subkeys[0] = key
	for i := 0; i < NumRounds256; i++ {
		subkeys[i+1] = permuteTweak(lfsr2(subkeys[i]))
	}
	addRoundConstants(subkeys[:])

	subtweak := tweak
	for i := 0; i <= NumRounds256; i++ {
		subkeys[i] = xorBlock(subkeys[i], subtweak)
		subtweak = permuteTweak(subtweak)
	}

	ctx := &Context256{roundKeys: subkeys}
	copy(ctx.decKeys[:], deriveDecryptionKeys(subkeys[:]))
	return ctx
}

// Encrypt runs the full 14-round Deoxys-BC-128-256 permutation.
func (c *Context256) Encrypt(plaintext Block) Block {
	state := xorBlock(plaintext, c.roundKeys[0])
	for i := 1; i <= NumRounds256; i++ {
		state = aesround.EncRound(state, c.roundKeys[i])
	}
	return state
}

// Decrypt inverts Encrypt.
func (c *Context256) Decrypt(ciphertext Block) Block {
	state := xorBlock(ciphertext, c.roundKeys[NumRounds256])
	state = aesround.InvMixColumns(state)
	for i := NumRounds256 - 1; i >= 0; i-- {
		state = aesround.DecRound(state, c.decKeys[i])
	}
	return aesround.MixColumns(state)
}

// ---------------------------------------------------------------------
// Deoxys-BC-128-384 (key + TK1 + TK2)
// ---------------------------------------------------------------------

// Context384 holds the expanded tweakey schedule for Deoxys-BC-128-384,
// the variant ZCZ runs exclusively.
type Context384 struct {
	roundKeys [NumRounds384 + 1]Block
	decKeys   [NumRounds384 + 1]Block
}

// NewContext384 expands a 128-bit key and a 32-byte tweak (TK1 || TK2).
func NewContext384(key Block, tk1, tk2 Block) *Context384 {
	var subkeys [NumRounds384 + 1]Block
	subkeys[0] = key
	for i := 0; i < NumRounds384; i++ {
		subkeys[i+1] = permuteTweak(lfsr3(subkeys[i]))
	}
	addRoundConstants(subkeys[:])

	subkeys[0] = xorBlock(xorBlock(subkeys[0], tk1), tk2)
	for i := 1; i <= NumRounds384; i++ {
		tk1 = permuteTweak(tk1)
		tk2 = lfsr2(permuteTweak(tk2))
		subkeys[i] = xorBlock(xorBlock(subkeys[i], tk1), tk2)
	}

	ctx := &Context384{roundKeys: subkeys}
	copy(ctx.decKeys[:], deriveDecryptionKeys(subkeys[:]))
	return ctx
}

// Encrypt runs the full 16-round Deoxys-BC-128-384 permutation. Every
// round, including the last, applies the complete AES round function —
// Deoxys-BC never switches to the MixColumns-omitting last round.
func (c *Context384) Encrypt(plaintext Block) Block {
	state := xorBlock(plaintext, c.roundKeys[0])
	for i := 1; i <= NumRounds384; i++ {
		state = aesround.EncRound(state, c.roundKeys[i])
	}
	return state
}

// Decrypt inverts Encrypt. The round loop runs DecRound against
// InvMixColumns-adjusted keys, bracketed by an explicit InvMixColumns on
// the way in and MixColumns on the way out — the same shape the
// reference implementation uses, derived directly from inverting Encrypt
// round by round.
func (c *Context384) Decrypt(ciphertext Block) Block {
	state := xorBlock(ciphertext, c.roundKeys[NumRounds384])
	state = aesround.InvMixColumns(state)
	for i := NumRounds384 - 1; i >= 0; i-- {
		state = aesround.DecRound(state, c.decKeys[i])
	}
	return aesround.MixColumns(state)
}

// ---------------------------------------------------------------------
// Batched counter-mode schedule
// ---------------------------------------------------------------------

// KeyOnlySchedule384 expands just the 128-bit secret key through the TK3
// (rank-3) orbit, producing the round keys with no tweak folded in. This
// is the part of a Context384's schedule that stays fixed across every
// tweak sharing the same key, split out so it can be computed once and
// reused across many tweaks.
func KeyOnlySchedule384(key Block) [NumRounds384 + 1]Block {
	var subkeys [NumRounds384 + 1]Block
	subkeys[0] = key
	for i := 0; i < NumRounds384; i++ {
		subkeys[i+1] = permuteTweak(lfsr3(subkeys[i]))
	}
	addRoundConstants(subkeys[:])
	return subkeys
}

// TweakOrbit384 expands a TK1/TK2 pair through their respective orbits —
// TK1 by repeated permutation, TK2 by permutation followed by LFSR2 — and
// XORs the two sequences together round by round. This is the part of a
// Context384's schedule that varies per tweak; Encrypt/Decrypt's subkey
// at round i is KeyOnlySchedule384(key)[i] ^ TweakOrbit384(tk1, tk2)[i].
func TweakOrbit384(tk1, tk2 Block) [NumRounds384 + 1]Block {
	var out [NumRounds384 + 1]Block
	out[0] = xorBlock(tk1, tk2)
	for i := 1; i <= NumRounds384; i++ {
		tk1 = permuteTweak(tk1)
		tk2 = lfsr2(permuteTweak(tk2))
		out[i] = xorBlock(tk1, tk2)
	}
	return out
}

// BatchContext384 amortizes the key schedule and the high-order-counter
// LFSR2 orbit across up to eight blocks that share a key, a tweak domain,
// and the high 56 bits of a 64-bit counter — the hot path for ZCZ's
// middle layer, which drives Deoxys-BC with a counter that increments by
// one per di-block inside a chunk. Arm precomputes everything but the
// per-block TK1 and the counter's low byte; EncryptBatch8/DecryptBatch8
// then only have to run TweakOrbit384 against an all-but-one-byte-zero
// seed per block.
type BatchContext384 struct {
	roundKeys      [NumRounds384 + 1]Block
	decKeys        [NumRounds384 + 1]Block
	combinedRound  [NumRounds384 + 1]Block
	combinedDec    [NumRounds384 + 1]Block
	armedDomain    byte
	armedCounterHi uint64
}

// NewBatchContext384 expands the key-only schedule. Call Arm before the
// first EncryptBatch8/DecryptBatch8 for a given domain and counter base.
func NewBatchContext384(key Block) *BatchContext384 {
	b := &BatchContext384{roundKeys: KeyOnlySchedule384(key)}
	copy(b.decKeys[:], deriveDecryptionKeys(b.roundKeys[:]))
	return b
}

// Arm commits this batch context to a tweak domain and the high 56 bits
// of a counter (counterBase's low byte is ignored and treated as zero).
// Every EncryptBatch8/DecryptBatch8 call afterwards must supply per-block
// counters whose high 56 bits equal counterBase.
func (b *BatchContext384) Arm(domain byte, counterBase uint64) {
	counterBase &^= 0xff
	seed := Block{0: domain}
	for i := 8; i < 16; i++ {
		seed[i] = byte(counterBase >> uint((i-8)*8))
	}
	baseCounters := TweakOrbit384(Block{}, seed)

	for i := range b.combinedRound {
		b.combinedRound[i] = xorBlock(b.roundKeys[i], baseCounters[i])
	}
	for i := 0; i < NumRounds384; i++ {
		b.combinedDec[i] = xorBlock(b.decKeys[i], aesround.InvMixColumns(baseCounters[i]))
	}
	b.combinedDec[NumRounds384] = xorBlock(b.decKeys[NumRounds384], baseCounters[NumRounds384])

	b.armedDomain = domain
	b.armedCounterHi = counterBase
}

// lowOrbit computes the per-block TK1/low-counter-byte contribution that
// Arm's base counters don't cover.
func lowOrbit(tk1 Block, counter uint64) [NumRounds384 + 1]Block {
	seed := Block{8: byte(counter)}
	return TweakOrbit384(tk1, seed)
}

// EncryptBatch8 encrypts eight blocks whose counters share the high 56
// bits committed by the most recent Arm call. It is bit-for-bit
// equivalent to calling a freshly-keyed Context384 on each block
// individually.
func (b *BatchContext384) EncryptBatch8(tk1s *[8]Block, counters *[8]uint64, plaintexts *[8]Block) [8]Block {
	var out [8]Block
	for n := 0; n < 8; n++ {
		orbit := lowOrbit(tk1s[n], counters[n])
		state := xorBlock(plaintexts[n], xorBlock(b.combinedRound[0], orbit[0]))
		for i := 1; i <= NumRounds384; i++ {
			state = aesround.EncRound(state, xorBlock(b.combinedRound[i], orbit[i]))
		}
		out[n] = state
	}
	return out
}

// DecryptBatch8 is the EncryptBatch8 analogue for decryption.
func (b *BatchContext384) DecryptBatch8(tk1s *[8]Block, counters *[8]uint64, ciphertexts *[8]Block) [8]Block {
	var out [8]Block
	for n := 0; n < 8; n++ {
		orbit := lowOrbit(tk1s[n], counters[n])

		finalKey := xorBlock(b.combinedRound[NumRounds384], orbit[NumRounds384])
		state := xorBlock(ciphertexts[n], finalKey)
		state = aesround.InvMixColumns(state)

		for i := NumRounds384 - 1; i >= 0; i-- {
			dk := xorBlock(b.combinedDec[i], aesround.InvMixColumns(orbit[i]))
			state = aesround.DecRound(state, dk)
		}
		out[n] = aesround.MixColumns(state)
	}
	return out
}
