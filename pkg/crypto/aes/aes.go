// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keytool.
//
// go-keytool is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package aes is the symmetric cipher engine: AES key and IV generation and
// encryption in ECB, CBC and GCM modes with PKCS#7 or no padding.
//
// Every call validates the cipher spec, key length, IV length, AAD usage and
// data length before the key is handed to crypto/aes.
package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = aes.BlockSize

	// CBCIVSize is the CBC initialization vector size.
	CBCIVSize = aes.BlockSize

	// GCMNonceSize is the GCM nonce size.
	GCMNonceSize = 12

	// GCMTagSize is the GCM authentication tag size.
	GCMTagSize = 16
)

// GenerateKey returns a random AES key of sizeBits bits.
func GenerateKey(sizeBits int) ([]byte, error) {
	if err := validateKeySize(sizeBits); err != nil {
		return nil, err
	}
	return rand.Bytes(sizeBits / 8)
}

// GenerateIV returns a random IV of the length required by mode. ECB takes no
// IV and is rejected.
func GenerateIV(mode types.CipherMode) ([]byte, error) {
	size, err := IVSize(mode)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s does not use an IV", types.ErrInvalidInputLength, mode)
	}
	return rand.Bytes(size)
}

// IVSize returns the IV length required by mode.
func IVSize(mode types.CipherMode) (int, error) {
	switch mode {
	case types.ModeECB:
		return 0, nil
	case types.ModeCBC:
		return CBCIVSize, nil
	case types.ModeGCM:
		return GCMNonceSize, nil
	case "":
		return 0, fmt.Errorf("%w: cipher mode is required", types.ErrMalformedInput)
	default:
		return 0, fmt.Errorf("%w: cipher mode %q", types.ErrUnsupportedAlgorithm, mode)
	}
}

func validateKeySize(sizeBits int) error {
	for _, s := range types.AESKeySizes() {
		if s == sizeBits {
			return nil
		}
	}
	return fmt.Errorf("%w: AES key size %d bits", types.ErrInvalidInputLength, sizeBits)
}

// ValidateSpec checks that spec names a supported key size, mode and padding
// combination.
func ValidateSpec(spec types.CipherSpec) error {
	if err := validateKeySize(spec.KeySizeBits); err != nil {
		return err
	}
	if _, err := IVSize(spec.Mode); err != nil {
		return err
	}
	switch spec.Padding {
	case types.PaddingPKCS7:
		if spec.Mode == types.ModeGCM {
			return fmt.Errorf("%w: GCM does not use block padding", types.ErrMalformedInput)
		}
	case types.PaddingNone:
	case "":
		if spec.Mode != types.ModeGCM {
			return fmt.Errorf("%w: padding is required for %s", types.ErrMalformedInput, spec.Mode)
		}
	default:
		return fmt.Errorf("%w: padding %q", types.ErrUnsupportedAlgorithm, spec.Padding)
	}
	return nil
}

func validate(spec types.CipherSpec, key, iv, aad []byte) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	if len(key) != spec.KeySizeBits/8 {
		return fmt.Errorf("%w: key is %d bytes, %s requires %d",
			types.ErrInvalidInputLength, len(key), spec, spec.KeySizeBits/8)
	}
	ivSize, _ := IVSize(spec.Mode)
	if len(iv) != ivSize {
		return fmt.Errorf("%w: IV is %d bytes, %s requires %d",
			types.ErrInvalidInputLength, len(iv), spec.Mode, ivSize)
	}
	if len(aad) > 0 && spec.Mode != types.ModeGCM {
		return fmt.Errorf("%w: associated data is only used by GCM", types.ErrMalformedInput)
	}
	return nil
}

// Encrypt encrypts plaintext under spec. For GCM the 16-byte tag is appended
// to the ciphertext.
func Encrypt(spec types.CipherSpec, key, iv, aad, plaintext []byte) ([]byte, error) {
	if err := validate(spec, key, iv, aad); err != nil {
		return nil, err
	}

	var data []byte
	switch spec.Mode {
	case types.ModeGCM:
		data = plaintext
	default:
		padded, err := pad(spec.Padding, plaintext)
		if err != nil {
			return nil, err
		}
		data = padded
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInputLength, err)
	}

	switch spec.Mode {
	case types.ModeECB:
		out := make([]byte, len(data))
		ecbCrypt(block, out, data, true)
		return out, nil
	case types.ModeCBC:
		out := make([]byte, len(data))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
		return out, nil
	default:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return gcm.Seal(nil, iv, data, aad), nil
	}
}

// Decrypt reverses Encrypt. GCM fails closed with types.ErrAuthenticationFailed
// and never returns plaintext when the tag does not verify.
func Decrypt(spec types.CipherSpec, key, iv, aad, ciphertext []byte) ([]byte, error) {
	if err := validate(spec, key, iv, aad); err != nil {
		return nil, err
	}

	switch spec.Mode {
	case types.ModeGCM:
		if len(ciphertext) < GCMTagSize {
			return nil, fmt.Errorf("%w: GCM ciphertext is shorter than the tag", types.ErrInvalidInputLength)
		}
	default:
		if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
			if len(ciphertext) == 0 && spec.Padding == types.PaddingNone {
				return []byte{}, nil
			}
			return nil, fmt.Errorf("%w: ciphertext is %d bytes, not a positive multiple of %d",
				types.ErrInvalidInputLength, len(ciphertext), BlockSize)
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInputLength, err)
	}

	out := make([]byte, len(ciphertext))
	switch spec.Mode {
	case types.ModeECB:
		ecbCrypt(block, out, ciphertext, false)
	case types.ModeCBC:
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	default:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		plaintext, err := gcm.Open(nil, iv, ciphertext, aad)
		if err != nil {
			return nil, types.ErrAuthenticationFailed
		}
		return plaintext, nil
	}

	plaintext, err := unpad(spec.Padding, out)
	if err != nil {
		clear(out)
		return nil, err
	}
	return plaintext, nil
}

// ecbCrypt processes each block independently. The standard library does not
// ship an ECB mode.
func ecbCrypt(block cipher.Block, dst, src []byte, encrypt bool) {
	for i := 0; i < len(src); i += BlockSize {
		if encrypt {
			block.Encrypt(dst[i:i+BlockSize], src[i:i+BlockSize])
		} else {
			block.Decrypt(dst[i:i+BlockSize], src[i:i+BlockSize])
		}
	}
}

func pad(padding types.Padding, data []byte) ([]byte, error) {
	switch padding {
	case types.PaddingNone:
		if len(data)%BlockSize != 0 {
			return nil, fmt.Errorf("%w: %d bytes is not a multiple of the block size without padding",
				types.ErrInvalidInputLength, len(data))
		}
		return append([]byte(nil), data...), nil
	default:
		n := BlockSize - len(data)%BlockSize
		out := make([]byte, len(data)+n)
		copy(out, data)
		for i := len(data); i < len(out); i++ {
			out[i] = byte(n)
		}
		return out, nil
	}
}

func unpad(padding types.Padding, data []byte) ([]byte, error) {
	if padding == types.PaddingNone {
		return data, nil
	}

	n := int(data[len(data)-1])
	valid := subtle.ConstantTimeLessOrEq(1, n) & subtle.ConstantTimeLessOrEq(n, BlockSize)
	tail := data[len(data)-BlockSize:]
	for i := 0; i < BlockSize; i++ {
		inPad := subtle.ConstantTimeLessOrEq(BlockSize-i, n)
		match := subtle.ConstantTimeByteEq(tail[i], byte(n))
		valid &= subtle.ConstantTimeSelect(inPad, match, 1)
	}
	if valid != 1 {
		return nil, fmt.Errorf("%w: invalid PKCS#7 padding", types.ErrMalformedInput)
	}
	return data[:len(data)-n], nil
}
