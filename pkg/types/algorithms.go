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

import (
	"fmt"
	"strings"
)

// =============================================================================
// Text Encodings
// =============================================================================

// TextEncoding describes how a byte sequence is rendered as text.
type TextEncoding string

const (
	// TextUTF8 renders bytes as UTF-8 text (identity transform).
	TextUTF8 TextEncoding = "utf8"

	// TextBase64 renders bytes as standard padded base64.
	TextBase64 TextEncoding = "base64"

	// TextHex renders bytes as lower-case hexadecimal.
	TextHex TextEncoding = "hex"
)

// String returns the string representation.
func (e TextEncoding) String() string {
	return string(e)
}

// ParseTextEncoding parses a case-insensitive text encoding name.
func ParseTextEncoding(s string) (TextEncoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "utf8", "text":
		return TextUTF8, nil
	case "base64", "b64":
		return TextBase64, nil
	case "hex":
		return TextHex, nil
	case "":
		return "", fmt.Errorf("%w: text encoding is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unknown text encoding %q", ErrMalformedInput, s)
	}
}

// =============================================================================
// Key Containers
// =============================================================================

// PkcsFamily identifies the ASN.1 container wrapping key material.
type PkcsFamily string

const (
	// PKCS1 holds RSA-only key structures.
	PKCS1 PkcsFamily = "pkcs1"

	// PKCS8 is algorithm-agnostic. Public keys in this family are SubjectPublicKeyInfo.
	PKCS8 PkcsFamily = "pkcs8"

	// SEC1 holds elliptic curve private keys. SEC1 public keys are raw curve points.
	SEC1 PkcsFamily = "sec1"
)

// String returns the string representation.
func (p PkcsFamily) String() string {
	return string(p)
}

// ParsePkcsFamily parses a case-insensitive PKCS family name.
func ParsePkcsFamily(s string) (PkcsFamily, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "#", "")) {
	case "pkcs1":
		return PKCS1, nil
	case "pkcs8", "spki":
		return PKCS8, nil
	case "sec1":
		return SEC1, nil
	case "":
		return "", fmt.Errorf("%w: pkcs family is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unknown pkcs family %q", ErrUnsupportedContainer, s)
	}
}

// KeyEncoding is orthogonal to PkcsFamily: PEM armor or raw DER.
type KeyEncoding string

const (
	// PEM is base64-armored text with header and footer lines.
	PEM KeyEncoding = "pem"

	// DER is the binary ASN.1 encoding.
	DER KeyEncoding = "der"
)

// String returns the string representation.
func (e KeyEncoding) String() string {
	return string(e)
}

// ParseKeyEncoding parses a case-insensitive key encoding name.
func ParseKeyEncoding(s string) (KeyEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pem":
		return PEM, nil
	case "der":
		return DER, nil
	case "":
		return "", fmt.Errorf("%w: key encoding is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unknown key encoding %q", ErrUnsupportedContainer, s)
	}
}

// =============================================================================
// Algorithm Families
// =============================================================================

// AlgorithmKind is the tag of an AlgorithmFamily.
type AlgorithmKind string

const (
	// KindRSA selects RSA keys.
	KindRSA AlgorithmKind = "rsa"

	// KindEllipticCurve selects short Weierstrass curve keys.
	KindEllipticCurve AlgorithmKind = "ecc"

	// KindEdwardsCurve selects Edwards curve keys.
	KindEdwardsCurve AlgorithmKind = "edwards"
)

// String returns the string representation.
func (k AlgorithmKind) String() string {
	return string(k)
}

// ParseAlgorithmKind parses a case-insensitive algorithm kind.
func ParseAlgorithmKind(s string) (AlgorithmKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rsa":
		return KindRSA, nil
	case "ecc", "ec", "ecdsa":
		return KindEllipticCurve, nil
	case "edwards", "eddsa", "okp":
		return KindEdwardsCurve, nil
	case "":
		return "", fmt.Errorf("%w: algorithm is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrUnsupportedAlgorithm, s)
	}
}

// EllipticCurve represents named curve identifiers.
type EllipticCurve string

const (
	// CurveP256 is NIST P-256 (secp256r1, prime256v1).
	CurveP256 EllipticCurve = "P-256"

	// CurveP384 is NIST P-384 (secp384r1).
	CurveP384 EllipticCurve = "P-384"

	// CurveP521 is NIST P-521 (secp521r1).
	CurveP521 EllipticCurve = "P-521"

	// CurveSecp256k1 is the Koblitz curve used by Bitcoin and Ethereum.
	CurveSecp256k1 EllipticCurve = "secp256k1"

	// CurveSM2 is the Chinese national standard curve sm2p256v1.
	CurveSM2 EllipticCurve = "SM2"

	// CurveCurve25519 is the Edwards/Montgomery curve behind Ed25519 and X25519.
	CurveCurve25519 EllipticCurve = "Curve25519"
)

// String returns the string representation.
func (c EllipticCurve) String() string {
	return string(c)
}

// Equals performs case-insensitive comparison for protocol compatibility.
func (c EllipticCurve) Equals(s string) bool {
	return strings.EqualFold(string(c), s)
}

// ParseCurve parses a curve name, accepting the common aliases.
func ParseCurve(s string) (EllipticCurve, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "p-256", "p256", "secp256r1", "prime256v1", "nistp256":
		return CurveP256, nil
	case "p-384", "p384", "secp384r1", "nistp384":
		return CurveP384, nil
	case "p-521", "p521", "secp521r1", "nistp521":
		return CurveP521, nil
	case "secp256k1", "k-256", "p-256k":
		return CurveSecp256k1, nil
	case "sm2", "sm2p256v1":
		return CurveSM2, nil
	case "curve25519", "ed25519", "x25519":
		return CurveCurve25519, nil
	case "":
		return "", fmt.Errorf("%w: curve name is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unknown curve %q", ErrUnsupportedAlgorithm, s)
	}
}

// AlgorithmFamily is a tagged union over RSA(bits), EllipticCurve(curve) and
// EdwardsCurve(curve). Only the field matching Kind is meaningful.
type AlgorithmFamily struct {
	Kind    AlgorithmKind `json:"kind"`
	RSABits int           `json:"rsa_bits,omitempty"`
	Curve   EllipticCurve `json:"curve,omitempty"`
}

// RSA returns the RSA family with the given modulus size.
func RSA(bits int) AlgorithmFamily {
	return AlgorithmFamily{Kind: KindRSA, RSABits: bits}
}

// EC returns the elliptic curve family on the named curve.
func EC(curve EllipticCurve) AlgorithmFamily {
	return AlgorithmFamily{Kind: KindEllipticCurve, Curve: curve}
}

// Edwards returns the Edwards curve family on the named curve.
func Edwards(curve EllipticCurve) AlgorithmFamily {
	return AlgorithmFamily{Kind: KindEdwardsCurve, Curve: curve}
}

// IsRSA reports whether the family is RSA.
func (f AlgorithmFamily) IsRSA() bool { return f.Kind == KindRSA }

// IsEC reports whether the family is a short Weierstrass curve.
func (f AlgorithmFamily) IsEC() bool { return f.Kind == KindEllipticCurve }

// IsEdwards reports whether the family is an Edwards curve.
func (f AlgorithmFamily) IsEdwards() bool { return f.Kind == KindEdwardsCurve }

// String returns a human readable name, for example "RSA-2048" or "EC P-256".
func (f AlgorithmFamily) String() string {
	switch f.Kind {
	case KindRSA:
		return fmt.Sprintf("RSA-%d", f.RSABits)
	case KindEllipticCurve:
		return "EC " + f.Curve.String()
	case KindEdwardsCurve:
		return "Edwards " + f.Curve.String()
	default:
		return "unknown"
	}
}

// Validate checks that the family carries a supported parameter. A missing
// parameter is ErrMalformedInput; a parameter outside the supported set is
// ErrUnsupportedAlgorithm.
func (f AlgorithmFamily) Validate() error {
	switch f.Kind {
	case KindRSA:
		if f.RSABits == 0 {
			return fmt.Errorf("%w: RSA key size is required", ErrMalformedInput)
		}
		for _, bits := range RSAKeySizes() {
			if bits == f.RSABits {
				return nil
			}
		}
		return fmt.Errorf("%w: RSA key size %d", ErrUnsupportedAlgorithm, f.RSABits)
	case KindEllipticCurve:
		if f.Curve == "" {
			return fmt.Errorf("%w: curve name is required", ErrMalformedInput)
		}
		for _, c := range Curves() {
			if c == f.Curve {
				return nil
			}
		}
		return fmt.Errorf("%w: elliptic curve %q", ErrUnsupportedAlgorithm, f.Curve)
	case KindEdwardsCurve:
		if f.Curve == "" {
			return fmt.Errorf("%w: curve name is required", ErrMalformedInput)
		}
		if f.Curve != CurveCurve25519 {
			return fmt.Errorf("%w: edwards curve %q", ErrUnsupportedAlgorithm, f.Curve)
		}
		return nil
	case "":
		return fmt.Errorf("%w: algorithm family is required", ErrMalformedInput)
	default:
		return fmt.Errorf("%w: algorithm family %q", ErrUnsupportedAlgorithm, f.Kind)
	}
}

// =============================================================================
// Symmetric Ciphers
// =============================================================================

// CipherMode is an AES block cipher mode.
type CipherMode string

const (
	// ModeECB encrypts each block independently and takes no IV.
	ModeECB CipherMode = "ECB"

	// ModeCBC chains blocks and takes a 16-byte IV.
	ModeCBC CipherMode = "CBC"

	// ModeGCM is the AEAD mode and takes a 12-byte IV.
	ModeGCM CipherMode = "GCM"
)

// String returns the string representation.
func (m CipherMode) String() string {
	return string(m)
}

// ParseCipherMode parses a case-insensitive mode name.
func ParseCipherMode(s string) (CipherMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ECB":
		return ModeECB, nil
	case "CBC":
		return ModeCBC, nil
	case "GCM":
		return ModeGCM, nil
	case "":
		return "", fmt.Errorf("%w: cipher mode is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: cipher mode %q", ErrUnsupportedAlgorithm, s)
	}
}

// Padding is the block padding scheme for ECB and CBC.
type Padding string

const (
	// PaddingPKCS7 pads per RFC 5652 section 6.3.
	PaddingPKCS7 Padding = "PKCS7"

	// PaddingNone requires block-aligned input.
	PaddingNone Padding = "None"
)

// String returns the string representation.
func (p Padding) String() string {
	return string(p)
}

// ParsePadding parses a case-insensitive padding name.
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pkcs7", "pkcs7padding", "pkcs5":
		return PaddingPKCS7, nil
	case "none", "nopadding", "no":
		return PaddingNone, nil
	case "":
		return "", fmt.Errorf("%w: padding is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: padding %q", ErrUnsupportedAlgorithm, s)
	}
}

// =============================================================================
// Key Derivation
// =============================================================================

// KDF names a key derivation function.
type KDF string

const (
	// KDFPBKDF2 is PBKDF2 with an HMAC over the configured digest (RFC 8018).
	KDFPBKDF2 KDF = "PBKDF2"

	// KDFScrypt is scrypt (RFC 7914). The digest is not used.
	KDFScrypt KDF = "Scrypt"

	// KDFHKDF is HKDF extract-and-expand (RFC 5869).
	KDFHKDF KDF = "HKDF"

	// KDFConcat is the NIST SP 800-56A single-step concatenation KDF.
	KDFConcat KDF = "ConcatKDF"
)

// String returns the string representation.
func (k KDF) String() string {
	return string(k)
}

// ParseKDF parses a case-insensitive KDF name.
func ParseKDF(s string) (KDF, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "pbkdf2":
		return KDFPBKDF2, nil
	case "scrypt":
		return KDFScrypt, nil
	case "hkdf":
		return KDFHKDF, nil
	case "concatkdf", "concat":
		return KDFConcat, nil
	case "":
		return "", fmt.Errorf("%w: kdf is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: kdf %q", ErrUnsupportedAlgorithm, s)
	}
}

// Digest names a hash function.
type Digest string

const (
	DigestSHA1     Digest = "SHA-1"
	DigestSHA256   Digest = "SHA-256"
	DigestSHA384   Digest = "SHA-384"
	DigestSHA512   Digest = "SHA-512"
	DigestSHA3_256 Digest = "SHA3-256"
	DigestSHA3_384 Digest = "SHA3-384"
	DigestSHA3_512 Digest = "SHA3-512"
)

// String returns the string representation.
func (d Digest) String() string {
	return string(d)
}

// ParseDigest parses a digest name such as "sha256", "SHA-256" or "sha3-512".
func ParseDigest(s string) (Digest, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s))) {
	case "sha1":
		return DigestSHA1, nil
	case "sha256":
		return DigestSHA256, nil
	case "sha384":
		return DigestSHA384, nil
	case "sha512":
		return DigestSHA512, nil
	case "sha3256":
		return DigestSHA3_256, nil
	case "sha3384":
		return DigestSHA3_384, nil
	case "sha3512":
		return DigestSHA3_512, nil
	case "":
		return "", fmt.Errorf("%w: digest is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: digest %q", ErrUnsupportedAlgorithm, s)
	}
}

// EciesAlgorithm is the AEAD used by the ECIES orchestrator.
type EciesAlgorithm string

const (
	EciesAES128GCM EciesAlgorithm = "AES-128-GCM"
	EciesAES256GCM EciesAlgorithm = "AES-256-GCM"
)

// String returns the string representation.
func (a EciesAlgorithm) String() string {
	return string(a)
}

// KeySizeBits returns the AES key size for the algorithm, or 0 if unknown.
func (a EciesAlgorithm) KeySizeBits() int {
	switch a {
	case EciesAES128GCM:
		return 128
	case EciesAES256GCM:
		return 256
	default:
		return 0
	}
}

// ParseEciesAlgorithm parses an ECIES encryption algorithm name.
func ParseEciesAlgorithm(s string) (EciesAlgorithm, error) {
	switch strings.ToUpper(strings.NewReplacer("_", "-", " ", "").Replace(strings.TrimSpace(s))) {
	case "AES-128-GCM", "AES128GCM", "A128GCM":
		return EciesAES128GCM, nil
	case "AES-256-GCM", "AES256GCM", "A256GCM", "AES-GCM":
		return EciesAES256GCM, nil
	case "":
		return "", fmt.Errorf("%w: encryption algorithm is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: encryption algorithm %q", ErrUnsupportedAlgorithm, s)
	}
}

// RSAPadding is the RSA encryption padding scheme.
type RSAPadding string

const (
	RSAPaddingPKCS1v15 RSAPadding = "pkcs1-v1_5"
	RSAPaddingOAEP     RSAPadding = "oaep"
)

// String returns the string representation.
func (p RSAPadding) String() string {
	return string(p)
}

// ParseRSAPadding parses an RSA padding name.
func ParseRSAPadding(s string) (RSAPadding, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "", ".", "").Replace(strings.TrimSpace(s))) {
	case "pkcs1v15", "pkcs1", "pkcs1v1_5":
		return RSAPaddingPKCS1v15, nil
	case "oaep":
		return RSAPaddingOAEP, nil
	case "":
		return "", fmt.Errorf("%w: RSA padding is required", ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: RSA padding %q", ErrUnsupportedAlgorithm, s)
	}
}

// Direction selects encryption or decryption.
type Direction string

const (
	Encrypt Direction = "encrypt"
	Decrypt Direction = "decrypt"
)

// ParseDirection parses "encrypt" or "decrypt".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encrypt", "enc":
		return Encrypt, nil
	case "decrypt", "dec":
		return Decrypt, nil
	default:
		return "", fmt.Errorf("%w: direction %q", ErrMalformedInput, s)
	}
}
