// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package zcz

import "fmt"

// ErrInputTooShort is returned when a message is shorter than one
// di-block (32 bytes) — ZCZ has no defined behavior below that length.
var ErrInputTooShort = fmt.Errorf("zcz: input shorter than %d bytes", minNumMessageBytes)

// ErrInputTooLongForBasic is returned by BasicEncrypt/BasicDecrypt when
// the input exceeds the single-chunk engine's capacity; callers that hit
// this should use Encrypt/Decrypt instead, which chunk internally.
var ErrInputTooLongForBasic = fmt.Errorf("zcz: input longer than %d bytes for basic mode", basicMaxNumMessageBytes)

// ErrBasicLengthNotDiBlockMultiple is returned by BasicEncrypt/
// BasicDecrypt when the input length isn't a whole number of 32-byte
// di-blocks; the basic engine has no partial-length handling.
var ErrBasicLengthNotDiBlockMultiple = fmt.Errorf("zcz: basic mode requires a length that is a multiple of %d bytes", numBytesInDiBlock)

// ErrMismatchedBufferLength describes a destination buffer whose length
// doesn't match the source, which ZCZ's length-preserving transform
// requires. No function in this package returns it: Encrypt, Decrypt,
// BasicEncrypt and BasicDecrypt allocate their own output buffers.
var ErrMismatchedBufferLength = fmt.Errorf("zcz: destination buffer length must match source")
