// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package zcz

import (
	"bytes"
	"testing"

	"github.com/go-quicktest/qt"
)

func testKey() Block {
	var k Block
	for i := range k {
		k[i] = byte(i*19 + 5)
	}
	return k
}

func newTestContext() *Context {
	c := NewContext()
	c.Keysetup(testKey())
	return c
}

func fillMessage(n int, seed byte) []byte {
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(int(seed) + i*7)
	}
	return msg
}

func TestBasicEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	for _, numDiBlocks := range []int{1, 2, 3, 128, 129, 256} {
		n := numDiBlocks * numBytesInDiBlock
		if n > basicMaxNumMessageBytes {
			continue
		}
		msg := fillMessage(n, byte(numDiBlocks))

		ctx := newTestContext()
		ct, err := ctx.BasicEncrypt(msg)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.HasLen(ct, len(msg)))
		qt.Assert(t, qt.Not(qt.DeepEquals(ct, msg)))

		ctx2 := newTestContext()
		pt, err := ctx2.BasicDecrypt(ct)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.DeepEquals(pt, msg))
	}
}

func TestEncryptDecryptRoundTripArbitraryLengths(t *testing.T) {
	t.Parallel()

	lengths := []int{
		32, 33, 40, 63, 64, 65, 100, 101, 127, 128,
		numDiBlocksInChunk * numBytesInDiBlock,
		numDiBlocksInChunk*numBytesInDiBlock + 17,
		basicMaxNumMessageBytes,
		basicMaxNumMessageBytes + 1,
		basicMaxNumMessageBytes + 32,
		basicMaxNumMessageBytes + 33,
	}

	for _, n := range lengths {
		msg := fillMessage(n, byte(n))

		ctx := newTestContext()
		ct, err := ctx.Encrypt(msg)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.HasLen(ct, n))
		if n > 0 {
			qt.Assert(t, qt.Not(qt.DeepEquals(ct, msg)))
		}

		ctx2 := newTestContext()
		pt, err := ctx2.Decrypt(ct)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.DeepEquals(pt, msg))
	}
}

// TestScenarioDRoundTrip64Bytes is scenario D: a 2-di-block message round
// trips through the basic engine.
func TestScenarioDRoundTrip64Bytes(t *testing.T) {
	t.Parallel()

	msg := fillMessage(64, 0xd0)
	ctx := newTestContext()
	ct, err := ctx.BasicEncrypt(msg)
	qt.Assert(t, qt.IsNil(err))

	ctx2 := newTestContext()
	pt, err := ctx2.BasicDecrypt(ct)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(pt, msg))
}

// TestScenarioERoundTrip101Bytes is scenario E: 3 di-blocks plus a 5-byte
// tail round trip through the general, partial-length-aware path.
func TestScenarioERoundTrip101Bytes(t *testing.T) {
	t.Parallel()

	msg := fillMessage(101, 0xe5)
	ctx := newTestContext()
	ct, err := ctx.Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(ct, 101))

	ctx2 := newTestContext()
	pt, err := ctx2.Decrypt(ct)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(pt, msg))
}

// TestScenarioFBasicBoundary is scenario F: a message exactly at the
// basic engine's capacity round trips via BasicEncrypt/BasicDecrypt, and
// one byte past it round trips via Encrypt/Decrypt's general,
// partial-length-aware path.
func TestScenarioFBasicBoundary(t *testing.T) {
	t.Parallel()

	atBoundary := fillMessage(basicMaxNumMessageBytes, 0xf0)
	ctx := newTestContext()
	ct, err := ctx.BasicEncrypt(atBoundary)
	qt.Assert(t, qt.IsNil(err))
	ctx2 := newTestContext()
	pt, err := ctx2.BasicDecrypt(ct)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(pt, atBoundary))

	pastBoundary := fillMessage(basicMaxNumMessageBytes+1, 0xf1)
	ctx3 := newTestContext()
	ct2, err := ctx3.Encrypt(pastBoundary)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(ct2, basicMaxNumMessageBytes+1))
	ctx4 := newTestContext()
	pt2, err := ctx4.Decrypt(ct2)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(pt2, pastBoundary))
}

func TestEncryptRejectsTooShortInput(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	_, err := ctx.Encrypt(make([]byte, minNumMessageBytes-1))
	qt.Assert(t, qt.ErrorIs(err, ErrInputTooShort))
}

func TestBasicEncryptRejectsOversizedInput(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	_, err := ctx.BasicEncrypt(make([]byte, basicMaxNumMessageBytes+numBytesInDiBlock))
	qt.Assert(t, qt.ErrorIs(err, ErrInputTooLongForBasic))
}

func TestBasicEncryptRejectsMisalignedInput(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	_, err := ctx.BasicEncrypt(make([]byte, numBytesInDiBlock+1))
	qt.Assert(t, qt.ErrorIs(err, ErrBasicLengthNotDiBlockMultiple))
}

func TestEncryptIsDeterministic(t *testing.T) {
	t.Parallel()

	msg := fillMessage(97, 0x42)
	ct1, err := newTestContext().Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))
	ct2, err := newTestContext().Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(ct1, ct2))
}

func TestEncryptAvalanche(t *testing.T) {
	t.Parallel()

	msg := fillMessage(96, 0x11)
	ct1, err := newTestContext().Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))

	flipped := bytes.Clone(msg)
	flipped[0] ^= 0x01
	ct2, err := newTestContext().Encrypt(flipped)
	qt.Assert(t, qt.IsNil(err))

	diffBytes := 0
	for i := range ct1 {
		if ct1[i] != ct2[i] {
			diffBytes++
		}
	}
	// A single flipped input bit should cascade through every di-block's
	// worth of ciphertext, not stay confined to one block.
	qt.Assert(t, qt.IsTrue(diffBytes > len(ct1)/2))
}

func TestDifferentKeysProduceDifferentCiphertexts(t *testing.T) {
	t.Parallel()

	msg := fillMessage(64, 7)

	ctx1 := NewContext()
	ctx1.Keysetup(testKey())
	ct1, err := ctx1.Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))

	otherKey := testKey()
	otherKey[0] ^= 0xff
	ctx2 := NewContext()
	ctx2.Keysetup(otherKey)
	ct2, err := ctx2.Encrypt(msg)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Not(qt.DeepEquals(ct1, ct2)))
}
