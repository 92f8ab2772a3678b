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

package types

// Each function returns a fresh slice so callers may modify the result.

// RSAKeySizes returns the supported RSA modulus sizes in bits.
func RSAKeySizes() []int {
	return []int{2048, 3072, 4096}
}

// Curves returns the supported short Weierstrass curves in parse order.
func Curves() []EllipticCurve {
	return []EllipticCurve{CurveP256, CurveP384, CurveP521, CurveSecp256k1, CurveSM2}
}

// EdwardsCurves returns the supported Edwards curves.
func EdwardsCurves() []EllipticCurve {
	return []EllipticCurve{CurveCurve25519}
}

// Digests returns the supported digests.
func Digests() []Digest {
	return []Digest{
		DigestSHA1, DigestSHA256, DigestSHA384, DigestSHA512,
		DigestSHA3_256, DigestSHA3_384, DigestSHA3_512,
	}
}

// KDFs returns the supported key derivation functions.
func KDFs() []KDF {
	return []KDF{KDFPBKDF2, KDFScrypt, KDFHKDF, KDFConcat}
}

// CipherModes returns the supported AES modes.
func CipherModes() []CipherMode {
	return []CipherMode{ModeECB, ModeCBC, ModeGCM}
}

// Paddings returns the supported block paddings.
func Paddings() []Padding {
	return []Padding{PaddingPKCS7, PaddingNone}
}

// AESKeySizes returns the supported AES key sizes in bits.
func AESKeySizes() []int {
	return []int{128, 256}
}

// RSAPaddings returns the supported RSA encryption paddings.
func RSAPaddings() []RSAPadding {
	return []RSAPadding{RSAPaddingPKCS1v15, RSAPaddingOAEP}
}

// EciesAlgorithms returns the supported ECIES AEAD algorithms.
func EciesAlgorithms() []EciesAlgorithm {
	return []EciesAlgorithm{EciesAES128GCM, EciesAES256GCM}
}

// TextEncodings returns the supported text encodings.
func TextEncodings() []TextEncoding {
	return []TextEncoding{TextUTF8, TextBase64, TextHex}
}
