// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package zcz

// This file implements ZCZ's handling of messages whose length isn't a
// whole number of 32-byte di-blocks (and of di-block-aligned messages
// too long for the single-chunk basic engine). The last, partial
// di-block is padded to a full di-block with a 0x80 marker byte and
// zeroes, then woven into the di-block engine's checksum chain through a
// three-stage hash-and-XOR "glue": before the di-block engine runs, a hash
// of the padded partial block is folded into the last full di-block;
// afterwards, a hash of that di-block's input and output masks the padded
// partial block, and a hash of the masked partial block is folded into
// the last full ciphertext di-block. Decryption runs the same three
// hashes in reverse order.

// padMessage stamps the canonical ISO/IEC 9797-1 method 2 padding —
// 0x80 followed by zeroes — into buf starting right after its first
// numSourceBytes bytes. buf must be exactly numBytesInDiBlock long.
func padMessage(buf []byte, numSourceBytes int) {
	buf[numSourceBytes] = 0x80
	for i := numSourceBytes + 1; i < len(buf); i++ {
		buf[i] = 0
	}
}

// hash is the two-output primitive the partial-length glue is built
// from: it Deoxys-BC-encrypts the same 16-byte half u twice, tweaked by
// the other half v and by two adjacent counters under the PARTIAL
// domain, producing a 32-byte pseudorandom mask from a 32-byte input.
func (c *Context) hash(input []byte, counter uint64) []byte {
	u := blockAt(input, 0)
	v := blockAt(input, numBytesInBlock)

	output := make([]byte, numBytesInDiBlock)
	putBlock(output, 0, primitiveEncrypt(c.key, domainPartial, counter, v, u))
	putBlock(output, numBytesInBlock, primitiveEncrypt(c.key, domainPartial, counter+1, v, u))
	return output
}

func xorDiBlock(inOut, b []byte) {
	for i := 0; i < numBytesInDiBlock; i++ {
		inOut[i] ^= b[i]
	}
}

func (c *Context) encryptPartialTopLayer(finalFullDiBlock, hashInput []byte) []byte {
	hashOutput := c.hash(hashInput, counterPartialTop)
	xorDiBlock(finalFullDiBlock, hashOutput)
	return hashOutput
}

func (c *Context) encryptPartialMiddleLayer(hashInput []byte) []byte {
	return c.hash(hashInput, counterPartialCenter)
}

func (c *Context) encryptPartialBottomLayer(finalFullDiBlock, hashInput []byte) []byte {
	hashOutput := c.hash(hashInput, counterPartialBottom)
	xorDiBlock(finalFullDiBlock, hashOutput)
	return hashOutput
}

// internalEncrypt is the general ZCZ encryption engine: it handles any
// length that is at least one di-block, whether or not it is di-block
// aligned, by running the basic di-block engine over every full di-block
// but the last and gluing the final (possibly partial) di-block on with
// the hash-and-XOR layers above.
func (c *Context) internalEncrypt(plaintext, ciphertext []byte) {
	numFull := numFullDiBlocks(len(plaintext))
	numFullBytes := numFull * numBytesInDiBlock
	numRemaining := len(plaintext) % numBytesInDiBlock
	startOfLastFull := numFullBytes - numBytesInDiBlock

	paddedFinal := make([]byte, numBytesInDiBlock)
	copy(paddedFinal, plaintext[numFullBytes:])
	padMessage(paddedFinal, numRemaining)

	finalFullDiBlock := make([]byte, numBytesInDiBlock)
	copy(finalFullDiBlock, plaintext[startOfLastFull:startOfLastFull+numBytesInDiBlock])

	c.encryptPartialTopLayer(finalFullDiBlock, paddedFinal)

	// finalFullDiBlock now holds M_l ^ H[E,0]; stash it before the copy
	// after basicEncrypt overwrites the local copy with the engine's last
	// ciphertext di-block.
	topHashCarry := make([]byte, numBytesInDiBlock)
	copy(topHashCarry, finalFullDiBlock)

	c.basicEncrypt(plaintext[:numFullBytes], finalFullDiBlock, ciphertext[:numFullBytes])

	copy(finalFullDiBlock, ciphertext[startOfLastFull:startOfLastFull+numBytesInDiBlock])
	xorDiBlock(topHashCarry, finalFullDiBlock)

	middleHashOutput := c.encryptPartialMiddleLayer(topHashCarry)
	xorDiBlock(paddedFinal, middleHashOutput)
	padMessage(paddedFinal, numRemaining)

	c.encryptPartialBottomLayer(finalFullDiBlock, paddedFinal)

	copy(ciphertext[startOfLastFull:startOfLastFull+numBytesInDiBlock], finalFullDiBlock)
	copy(ciphertext[numFullBytes:], paddedFinal[:numRemaining])
}

// internalDecrypt inverts internalEncrypt.
func (c *Context) internalDecrypt(ciphertext, plaintext []byte) {
	numFull := numFullDiBlocks(len(ciphertext))
	numFullBytes := numFull * numBytesInDiBlock
	numRemaining := len(ciphertext) % numBytesInDiBlock
	startOfLastFull := numFullBytes - numBytesInDiBlock

	paddedFinal := make([]byte, numBytesInDiBlock)
	copy(paddedFinal, ciphertext[numFullBytes:])
	padMessage(paddedFinal, numRemaining)

	finalFullDiBlock := make([]byte, numBytesInDiBlock)
	copy(finalFullDiBlock, ciphertext[startOfLastFull:startOfLastFull+numBytesInDiBlock])

	c.encryptPartialBottomLayer(finalFullDiBlock, paddedFinal)

	bottomHashCarry := make([]byte, numBytesInDiBlock)
	copy(bottomHashCarry, finalFullDiBlock)

	c.basicDecrypt(ciphertext[:numFullBytes], finalFullDiBlock, plaintext[:numFullBytes])

	copy(finalFullDiBlock, plaintext[startOfLastFull:startOfLastFull+numBytesInDiBlock])
	xorDiBlock(bottomHashCarry, finalFullDiBlock)

	middleHashOutput := c.encryptPartialMiddleLayer(bottomHashCarry)
	xorDiBlock(paddedFinal, middleHashOutput)
	padMessage(paddedFinal, numRemaining)

	c.encryptPartialTopLayer(finalFullDiBlock, paddedFinal)

	copy(plaintext[startOfLastFull:startOfLastFull+numBytesInDiBlock], finalFullDiBlock)
	copy(plaintext[numFullBytes:], paddedFinal[:numRemaining])
}
