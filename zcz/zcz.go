// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package zcz implements ZCZ (Zero-pad, Cipher-then-mask, Zigzag-layer),
// a length-preserving wide-block cipher built from Deoxys-BC-128-384. A
// ZCZ evaluation processes a message as a sequence of 32-byte di-blocks
// through three layers — top, middle, bottom — each tying its output to
// the others through a running GF(2^128) checksum, so that changing any
// single input bit scrambles the entire output. Inputs that aren't a
// whole number of di-blocks are handled by a three-stage hash-and-XOR
// glue layered on top of the di-block engine (see partial.go).
package zcz

import (
	"github.com/AeonDave/zcz/internal/deoxysbc"
	"github.com/AeonDave/zcz/internal/gf128"
)

// Context holds a ZCZ key together with the scratch blocks its layer
// functions pass to each other within a single encrypt/decrypt call:
// s and t carry the "last di-block" top-layer result into the middle
// layer, and x_l/x_r/y_l/y_r are the finalized running checksums. A
// Context is not safe for concurrent use — mirroring the reference's
// single-threaded zcz_ctx_t, the scratch fields are overwritten on every
// call.
type Context struct {
	key Block

	s, t   Block
	xL, xR Block
	yL, yR Block
}

// NewContext creates a Context with no key set; call Keysetup before
// using it.
func NewContext() *Context {
	return &Context{}
}

// Keysetup installs the 128-bit key a Context encrypts and decrypts
// under.
func (c *Context) Keysetup(key Block) {
	c.key = key
}

func gfDoubleBlock(b Block) Block    { return gf128.Double(b) }
func gfTimesFourBlock(b Block) Block { return gf128.TimesFour(b) }

func ceilDiv(numerator, denominator int) int {
	return (numerator + denominator - 1) / denominator
}

// ---------------------------------------------------------------------
// Length classification
// ---------------------------------------------------------------------

func isTooShort(numBytes int) bool {
	return numBytes < minNumMessageBytes
}

func isLengthOKForBasic(numBytes int) bool {
	return !isTooShort(numBytes) &&
		numBytes <= basicMaxNumMessageBytes &&
		numBytes%numBytesInDiBlock == 0
}

func numFullDiBlocks(numBytes int) int {
	return numBytes / numBytesInDiBlock
}

// ---------------------------------------------------------------------
// Encryption component functions
// ---------------------------------------------------------------------

func (c *Context) encryptTopLayer(state, plaintext []byte, numDiBlocks int) {
	var xL, xR Block

	for i := 0; i < numDiBlocks-1; i++ {
		off := i * numBytesInDiBlock
		leftIn := blockAt(plaintext, off)
		rightIn := blockAt(plaintext, off+numBytesInBlock)

		leftOut := primitiveEncrypt(c.key, domainTop, uint64(i+1), rightIn, leftIn)
		putBlock(state, off, leftOut)
		putBlock(state, off+numBytesInBlock, rightIn)

		xL = xorBlock(gfDoubleBlock(xL), leftOut)
		xR = xorBlock(xorBlock(gfTimesFourBlock(xR), leftOut), rightIn)
	}

	c.xL = primitiveEncrypt(c.key, domainXL, uint64(numDiBlocks), xR, xL)
	c.xR = primitiveEncrypt(c.key, domainXR, uint64(numDiBlocks), xL, xR)
}

func (c *Context) encryptMiddleLayer(state []byte, numDiBlocks int) {
	numWithoutFinal := numDiBlocks
	if numDiBlocks > 0 {
		numWithoutFinal--
	}
	numChunks := ceilDiv(numWithoutFinal, numDiBlocksInChunk)

	var yL, yR Block
	off := 0

	batch := deoxysbc.NewBatchContext384(c.key)

	for i := 0; i < numChunks; i++ {
		var chunkTweak Block
		putUint64LE(chunkTweak[numBytesInBlock-8:], uint64(i+1))
		sI := primitiveEncrypt(c.key, domainS, 0, chunkTweak, c.s)

		numInChunk := numDiBlocksInChunk
		if i+1 == numChunks {
			numInChunk = numWithoutFinal % numDiBlocksInChunk
			if numInChunk == 0 {
				numInChunk = numDiBlocksInChunk
			}
		}

		chunkOffset := uint64(i * numDiBlocksInChunk)
		for _, run := range splitCounterRuns(chunkOffset+1, numInChunk) {
			zs := c.centerBatch(batch, run, sI)

			for n := 0; n < run.count; n++ {
				zij := zs[n]
				leftOut := xorBlock(blockAt(state, off), zij)
				rightOut := xorBlock(xorBlock(blockAt(state, off+numBytesInBlock), zij), sI)
				putBlock(state, off, leftOut)
				putBlock(state, off+numBytesInBlock, rightOut)

				yR = xorBlock(gfDoubleBlock(yR), rightOut)
				yL = xorBlock(xorBlock(gfTimesFourBlock(yL), rightOut), leftOut)

				off += numBytesInDiBlock
			}
		}
	}

	c.yL = primitiveEncrypt(c.key, domainYL, uint64(numDiBlocks), yR, yL)
	c.yR = primitiveEncrypt(c.key, domainYR, uint64(numDiBlocks), yL, yR)
}

// centerBatch computes the domainCenter cipher outputs for a run of up to
// eight consecutive counters sharing a tweak block and plaintext, via
// BatchContext384 instead of one Context384 per counter. This is ZCZ's
// middle layer — the counter-incrementing hot path BatchContext384 exists
// for — and it must produce exactly what primitiveEncrypt(c.key,
// domainCenter, counter, c.t, sI) would for each counter in the run.
func (c *Context) centerBatch(batch *deoxysbc.BatchContext384, run counterRun, sI Block) [8]Block {
	var tk1s [8]Block
	var counters [8]uint64
	var plaintexts [8]Block
	for n := 0; n < 8; n++ {
		tk1s[n] = c.t
		plaintexts[n] = sI
		if n < run.count {
			counters[n] = run.start + uint64(n)
		} else {
			counters[n] = run.start
		}
	}
	batch.Arm(domainCenter, run.start)
	return batch.EncryptBatch8(&tk1s, &counters, &plaintexts)
}

func (c *Context) encryptBottomLayer(state, ciphertext []byte, numDiBlocks int) {
	for i := 0; i < numDiBlocks-1; i++ {
		off := i * numBytesInDiBlock
		leftIn := blockAt(state, off)
		rightIn := blockAt(state, off+numBytesInBlock)

		rightOut := primitiveEncrypt(c.key, domainBot, uint64(i+1), leftIn, rightIn)
		putBlock(ciphertext, off, leftIn)
		putBlock(ciphertext, off+numBytesInBlock, rightOut)
	}
}

func (c *Context) encryptLastDiBlockTop(finalFullDiBlock []byte, numDiBlocks int) {
	leftOut := xorBlock(blockAt(finalFullDiBlock, 0), c.xL)
	rightOut := xorBlock(blockAt(finalFullDiBlock, numBytesInBlock), c.xR)

	c.s = primitiveEncrypt(c.key, domainTopLast, uint64(numDiBlocks), rightOut, leftOut)
	c.t = primitiveEncrypt(c.key, domainSLast, uint64(numDiBlocks), c.s, rightOut)
}

func (c *Context) encryptLastDiBlockBottom(ciphertext []byte, numDiBlocks int) {
	leftOut := primitiveEncrypt(c.key, domainCenterLast, uint64(numDiBlocks), c.t, c.s)
	rightOut := primitiveEncrypt(c.key, domainBotLast, uint64(numDiBlocks), leftOut, c.t)

	off := (numDiBlocks - 1) * numBytesInDiBlock
	putBlock(ciphertext, off, xorBlock(leftOut, c.yL))
	putBlock(ciphertext, off+numBytesInBlock, xorBlock(rightOut, c.yR))
}

// ---------------------------------------------------------------------
// Decryption component functions
// ---------------------------------------------------------------------

func (c *Context) decryptTopLayer(state, plaintext []byte, numDiBlocks int) {
	for i := 0; i < numDiBlocks-1; i++ {
		off := i * numBytesInDiBlock
		leftIn := blockAt(state, off)
		rightIn := blockAt(state, off+numBytesInBlock)

		leftOut := primitiveDecrypt(c.key, domainTop, uint64(i+1), rightIn, leftIn)
		putBlock(plaintext, off, leftOut)
		putBlock(plaintext, off+numBytesInBlock, rightIn)
	}
}

func (c *Context) decryptMiddleLayer(state []byte, numDiBlocks int) {
	numWithoutFinal := numDiBlocks
	if numDiBlocks > 0 {
		numWithoutFinal--
	}
	numChunks := ceilDiv(numWithoutFinal, numDiBlocksInChunk)

	var xL, xR Block
	off := 0

	batch := deoxysbc.NewBatchContext384(c.key)

	for i := 0; i < numChunks; i++ {
		var chunkTweak Block
		putUint64LE(chunkTweak[numBytesInBlock-8:], uint64(i+1))
		sI := primitiveEncrypt(c.key, domainS, 0, chunkTweak, c.s)

		numInChunk := numDiBlocksInChunk
		if i+1 == numChunks {
			numInChunk = numWithoutFinal % numDiBlocksInChunk
			if numInChunk == 0 {
				numInChunk = numDiBlocksInChunk
			}
		}

		chunkOffset := uint64(i * numDiBlocksInChunk)
		for _, run := range splitCounterRuns(chunkOffset+1, numInChunk) {
			zs := c.centerBatch(batch, run, sI)

			for n := 0; n < run.count; n++ {
				zij := zs[n]
				leftOut := xorBlock(blockAt(state, off), zij)
				rightOut := xorBlock(xorBlock(blockAt(state, off+numBytesInBlock), zij), sI)
				putBlock(state, off, leftOut)
				putBlock(state, off+numBytesInBlock, rightOut)

				xL = xorBlock(gfDoubleBlock(xL), leftOut)
				xR = xorBlock(xorBlock(gfTimesFourBlock(xR), leftOut), rightOut)

				off += numBytesInDiBlock
			}
		}
	}

	c.xL = primitiveEncrypt(c.key, domainXL, uint64(numDiBlocks), xR, xL)
	c.xR = primitiveEncrypt(c.key, domainXR, uint64(numDiBlocks), xL, xR)
}

func (c *Context) decryptBottomLayer(state, ciphertext []byte, numDiBlocks int) {
	var yL, yR Block

	for i := 0; i < numDiBlocks-1; i++ {
		off := i * numBytesInDiBlock
		leftIn := blockAt(ciphertext, off)
		rightIn := blockAt(ciphertext, off+numBytesInBlock)

		rightOut := primitiveDecrypt(c.key, domainBot, uint64(i+1), leftIn, rightIn)
		putBlock(state, off, leftIn)
		putBlock(state, off+numBytesInBlock, rightOut)

		yR = xorBlock(gfDoubleBlock(yR), rightOut)
		yL = xorBlock(xorBlock(gfTimesFourBlock(yL), rightOut), leftIn)
	}

	c.yL = primitiveEncrypt(c.key, domainYL, uint64(numDiBlocks), yR, yL)
	c.yR = primitiveEncrypt(c.key, domainYR, uint64(numDiBlocks), yL, yR)
}

func (c *Context) decryptLastDiBlockTop(plaintext []byte, numDiBlocks int) {
	rightOut := primitiveDecrypt(c.key, domainSLast, uint64(numDiBlocks), c.s, c.t)
	leftOut := primitiveDecrypt(c.key, domainTopLast, uint64(numDiBlocks), rightOut, c.s)

	off := (numDiBlocks - 1) * numBytesInDiBlock
	putBlock(plaintext, off, xorBlock(leftOut, c.xL))
	putBlock(plaintext, off+numBytesInBlock, xorBlock(rightOut, c.xR))
}

func (c *Context) decryptLastDiBlockBottom(finalFullDiBlock []byte, numDiBlocks int) {
	leftOut := xorBlock(blockAt(finalFullDiBlock, 0), c.yL)
	rightOut := xorBlock(blockAt(finalFullDiBlock, numBytesInBlock), c.yR)

	c.t = primitiveDecrypt(c.key, domainBotLast, uint64(numDiBlocks), leftOut, rightOut)
	c.s = primitiveDecrypt(c.key, domainCenterLast, uint64(numDiBlocks), c.t, leftOut)
}

// ---------------------------------------------------------------------
// Basic engine: exactly N di-blocks, no partial-length handling
// ---------------------------------------------------------------------

func (c *Context) basicEncrypt(plaintext, finalFullDiBlock []byte, ciphertext []byte) {
	numDiBlocks := numFullDiBlocks(len(plaintext))
	state := make([]byte, len(plaintext))

	c.encryptTopLayer(state, plaintext, numDiBlocks)
	c.encryptLastDiBlockTop(finalFullDiBlock, numDiBlocks)
	c.encryptMiddleLayer(state, numDiBlocks)
	c.encryptBottomLayer(state, ciphertext, numDiBlocks)
	c.encryptLastDiBlockBottom(ciphertext, numDiBlocks)
}

func (c *Context) basicDecrypt(ciphertext, finalFullDiBlock []byte, plaintext []byte) {
	numDiBlocks := numFullDiBlocks(len(ciphertext))
	state := make([]byte, len(ciphertext))

	c.decryptBottomLayer(state, ciphertext, numDiBlocks)
	c.decryptLastDiBlockBottom(finalFullDiBlock, numDiBlocks)
	c.decryptMiddleLayer(state, numDiBlocks)
	c.decryptTopLayer(state, plaintext, numDiBlocks)
	c.decryptLastDiBlockTop(plaintext, numDiBlocks)
}

// ---------------------------------------------------------------------
// Public API
// ---------------------------------------------------------------------

// BasicEncrypt encrypts a message whose length is a positive multiple of
// 32 bytes, up to basicMaxNumMessageBytes, using the ZCZ di-block engine
// with no partial-length handling. Use Encrypt for arbitrary lengths.
func (c *Context) BasicEncrypt(plaintext []byte) ([]byte, error) {
	if err := checkBasicLength(len(plaintext)); err != nil {
		return nil, err
	}
	ciphertext := make([]byte, len(plaintext))
	finalOff := len(plaintext) - numBytesInDiBlock
	c.basicEncrypt(plaintext, plaintext[finalOff:], ciphertext)
	return ciphertext, nil
}

// BasicDecrypt inverts BasicEncrypt.
func (c *Context) BasicDecrypt(ciphertext []byte) ([]byte, error) {
	if err := checkBasicLength(len(ciphertext)); err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	finalOff := len(ciphertext) - numBytesInDiBlock
	c.basicDecrypt(ciphertext, ciphertext[finalOff:], plaintext)
	return plaintext, nil
}

func checkBasicLength(numBytes int) error {
	if isTooShort(numBytes) {
		return ErrInputTooShort
	}
	if numBytes > basicMaxNumMessageBytes {
		return ErrInputTooLongForBasic
	}
	if numBytes%numBytesInDiBlock != 0 {
		return ErrBasicLengthNotDiBlockMultiple
	}
	return nil
}

// Encrypt applies ZCZ to a message of any length that is at least 32
// bytes: messages that are a multiple of 32 bytes up to
// basicMaxNumMessageBytes go through the basic engine directly; longer
// di-block-aligned messages and messages of any other length go through
// the chunked, partial-length-aware engine (see partial.go). The output
// is exactly as long as the input.
func (c *Context) Encrypt(plaintext []byte) ([]byte, error) {
	if isTooShort(len(plaintext)) {
		return nil, ErrInputTooShort
	}
	if isLengthOKForBasic(len(plaintext)) {
		return c.BasicEncrypt(plaintext)
	}

	ciphertext := make([]byte, len(plaintext))
	c.internalEncrypt(plaintext, ciphertext)
	return ciphertext, nil
}

// Decrypt inverts Encrypt.
func (c *Context) Decrypt(ciphertext []byte) ([]byte, error) {
	if isTooShort(len(ciphertext)) {
		return nil, ErrInputTooShort
	}
	if isLengthOKForBasic(len(ciphertext)) {
		return c.BasicDecrypt(ciphertext)
	}

	plaintext := make([]byte, len(ciphertext))
	c.internalDecrypt(ciphertext, plaintext)
	return plaintext, nil
}
