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

// Package ecies provides the Elliptic Curve Integrated Encryption Scheme
// (ECIES) over every supported curve family.
//
// ECIES combines:
//  1. Ephemeral-static key agreement (ECDH, or X25519 for Edwards keys)
//  2. A configurable KDF (PBKDF2, Scrypt, HKDF or ConcatKDF)
//  3. AES-GCM authenticated encryption
//
// The KDF output is split into the AES key followed by the 12-byte GCM
// nonce. The encryption format is:
//
//	[len(ephemeral_public_key) || ephemeral_public_key || ciphertext || tag]
//
// Where:
//   - len(ephemeral_public_key): 1 byte
//   - ephemeral_public_key: uncompressed SEC1 point, or a 32-byte X25519 key
//   - tag: 16 bytes (GCM authentication tag)
//
// Each call runs as an Operation that moves through KeyParsed,
// SharedSecretDerived, SymmetricKeyDerived and Ciphered to Done. A failure in
// any step moves it to Failed and no output is returned.
//
// Example usage:
//
//	params := types.EciesParameters{
//		KDF:           types.KDFHKDF,
//		Digest:        types.DigestSHA256,
//		EncryptionAlg: types.EciesAES256GCM,
//	}
//	ciphertext, _ := ecies.Encrypt(recipientPublicPEM, params, []byte("Secret message"))
//	plaintext, _ := ecies.Decrypt(recipientPrivatePEM, params, ciphertext)
package ecies

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/aes"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/ecdh"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const (
	// GCM nonce size (96 bits / 12 bytes is standard)
	nonceSize = aes.GCMNonceSize

	// GCM tag size (128 bits / 16 bytes)
	tagSize = aes.GCMTagSize

	// maxEphemeralKeySize is the largest ephemeral key the length prefix holds
	maxEphemeralKeySize = 255
)

// State is the position of an Operation in the ECIES pipeline.
type State int

// States in pipeline order. An Operation advances one state per completed
// step and never moves backwards.
const (
	// StatePending means no step has run yet.
	StatePending State = iota
	// StateKeyParsed means the recipient key was parsed and classified.
	StateKeyParsed
	// StateSharedSecretDerived means key agreement produced the shared secret.
	StateSharedSecretDerived
	// StateSymmetricKeyDerived means the KDF produced the content key.
	StateSymmetricKeyDerived
	// StateCiphered means the AEAD sealed or opened the payload.
	StateCiphered
	// StateDone means the output was assembled and returned.
	StateDone
	// StateFailed means a step returned an error; FailedIn names which.
	StateFailed
)

var stateNames = [...]string{
	StatePending:             "Pending",
	StateKeyParsed:           "KeyParsed",
	StateSharedSecretDerived: "SharedSecretDerived",
	StateSymmetricKeyDerived: "SymmetricKeyDerived",
	StateCiphered:            "Ciphered",
	StateDone:                "Done",
	StateFailed:              "Failed",
}

// String returns the state name, for example "SharedSecretDerived".
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ErrOperationUsed is returned when an Operation is run twice.
var ErrOperationUsed = errors.New("ecies: operation already run")

// Operation is a single ECIES encryption or decryption. It is not safe for
// concurrent use and runs once.
type Operation struct {
	direction types.Direction
	params    types.EciesParameters

	state    State
	err      error
	failedIn State

	// agreement is the family the key agreement runs on. Edwards keys agree
	// over X25519.
	agreement types.AlgorithmFamily

	recipientPublic  []byte
	recipientPrivate []byte
	ephemeralPublic  []byte
	sharedSecret     []byte
	symmetricKey     []byte
	nonce            []byte
	output           []byte
}

// NewOperation prepares an ECIES operation.
func NewOperation(direction types.Direction, params types.EciesParameters) *Operation {
	return &Operation{direction: direction, params: params}
}

// State returns the current state.
func (op *Operation) State() State {
	return op.state
}

// Err returns the failure reason once the operation is Failed.
func (op *Operation) Err() error {
	return op.err
}

// FailedIn returns the state whose step failed.
func (op *Operation) FailedIn() State {
	return op.failedIn
}

// Run executes every step against key and input and returns the output only
// when the operation reaches Done.
func (op *Operation) Run(key, input []byte) ([]byte, error) {
	if op.state != StatePending {
		return nil, ErrOperationUsed
	}

	steps := []struct {
		next State
		run  func() error
	}{
		{StateKeyParsed, func() error { return op.parseKey(key) }},
		{StateSharedSecretDerived, func() error { return op.agree(input) }},
		{StateSymmetricKeyDerived, op.deriveKey},
		{StateCiphered, func() error { return op.cipher(input) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, op.fail(step.next, err)
		}
		op.state = step.next
	}

	op.state = StateDone
	op.wipe()
	out := op.output
	op.output = nil
	return out, nil
}

func (op *Operation) fail(in State, err error) error {
	op.failedIn = in
	op.state = StateFailed
	op.err = err
	op.wipe()
	clear(op.output)
	op.output = nil
	return err
}

func (op *Operation) wipe() {
	clear(op.recipientPrivate)
	clear(op.sharedSecret)
	clear(op.symmetricKey)
	clear(op.nonce)
	op.recipientPrivate, op.sharedSecret, op.symmetricKey, op.nonce = nil, nil, nil, nil
}

func (op *Operation) validateParams() error {
	switch op.direction {
	case types.Encrypt, types.Decrypt:
	case "":
		return fmt.Errorf("%w: direction is required", types.ErrMalformedInput)
	default:
		return fmt.Errorf("%w: direction %q", types.ErrMalformedInput, op.direction)
	}
	switch {
	case op.params.EncryptionAlg == "":
		return fmt.Errorf("%w: encryption algorithm is required", types.ErrMalformedInput)
	case op.params.EncryptionAlg.KeySizeBits() == 0:
		return fmt.Errorf("%w: ECIES encryption algorithm %q", types.ErrUnsupportedAlgorithm, op.params.EncryptionAlg)
	}
	if _, err := kdf.New(op.params.KDF); err != nil {
		return err
	}
	return nil
}

// parseKey resolves the recipient key. Encryption accepts a public or a
// private key; decryption requires the private key.
func (op *Operation) parseKey(data []byte) error {
	if err := op.validateParams(); err != nil {
		return err
	}

	key, err := op.detect(data)
	if err != nil {
		return err
	}
	defer key.Zero()

	if !key.Family.IsEC() && !key.Family.IsEdwards() {
		return fmt.Errorf("%w: ECIES with a %s key", types.ErrUnsupportedAlgorithm, key.Family)
	}
	if op.params.Curve != "" && op.params.Curve != key.Family.Curve {
		return fmt.Errorf("%w: key is on %s, parameters name %s", types.ErrMalformedKey, key.Family.Curve, op.params.Curve)
	}
	if op.direction == types.Decrypt && !key.Private {
		return fmt.Errorf("%w: decryption requires a private key", types.ErrMalformedKey)
	}

	op.agreement = key.Family
	if key.Family.IsEdwards() {
		return op.parseEdwards(key)
	}

	if op.direction == types.Encrypt {
		op.recipientPublic, err = key.Point()
		return err
	}
	op.recipientPrivate, err = key.Scalar()
	return err
}

func (op *Operation) parseEdwards(key *asymmetric.Key) error {
	var err error
	if op.direction == types.Encrypt {
		op.recipientPublic, err = x25519.FromEd25519PublicKey(key.EdwardsPublicKey())
		return err
	}
	seed := key.Seed()
	defer clear(seed)
	op.recipientPrivate, err = x25519.FromEd25519PrivateKey(seed)
	return err
}

// detect identifies the key. A SEC1 private key without curve parameters is
// accepted only when the parameters name the curve.
func (op *Operation) detect(data []byte) (*asymmetric.Key, error) {
	key, _, err := asymmetric.Detect(data)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, types.ErrMalformedKey) {
		return nil, err
	}

	der := data
	if encoding.IsPEM(data) {
		if der, err = encoding.DecodePEMLabel(data, "EC PRIVATE KEY"); err != nil {
			return nil, err
		}
	}
	sec1, perr := encoding.ParseECPrivateKey(der)
	if perr != nil || sec1.NamedCurve != nil {
		return nil, err
	}
	if op.params.Curve == "" {
		return nil, fmt.Errorf("%w: curve is required for keys that do not name one", types.ErrMalformedInput)
	}
	return asymmetric.DecodeDER(der, types.SEC1, true, types.EC(op.params.Curve))
}

func (op *Operation) agree(input []byte) error {
	if op.direction == types.Encrypt {
		private, public, err := ecdh.GenerateEphemeral(op.agreement)
		if err != nil {
			return err
		}
		defer clear(private)
		if len(public) > maxEphemeralKeySize {
			return fmt.Errorf("%w: ephemeral key is %d bytes", types.ErrUnsupportedAlgorithm, len(public))
		}
		op.ephemeralPublic = public
		op.sharedSecret, err = ecdh.DeriveSharedSecret(op.agreement, private, op.recipientPublic)
		return err
	}

	public, _, err := splitCiphertext(input)
	if err != nil {
		return err
	}
	if _, err := ecdh.ParsePublicKey(op.agreement, public); err != nil {
		return err
	}
	op.ephemeralPublic = public
	op.sharedSecret, err = ecdh.DeriveSharedSecret(op.agreement, op.recipientPrivate, public)
	return err
}

func (op *Operation) deriveKey() error {
	keyLen := op.params.EncryptionAlg.KeySizeBits() / 8

	params := &kdf.KDFParams{
		Algorithm:   op.params.KDF,
		Salt:        op.params.Salt,
		Info:        op.params.Info,
		Iterations:  op.params.Iterations,
		N:           op.params.ScryptN,
		R:           op.params.ScryptR,
		P:           op.params.ScryptP,
		AlgorithmID: []byte(op.params.EncryptionAlg),
		KeyLength:   keyLen + nonceSize,
		Digest:      op.params.Digest,
	}
	if params.Iterations == 0 {
		params.Iterations = kdf.DefaultPBKDF2Iterations
	}
	if params.N == 0 {
		params.N = kdf.DefaultScryptN
	}
	if params.R == 0 {
		params.R = kdf.DefaultScryptR
	}
	if params.P == 0 {
		params.P = kdf.DefaultScryptP
	}

	out, err := kdf.Derive(op.sharedSecret, params)
	if err != nil {
		return err
	}
	op.symmetricKey = out[:keyLen]
	op.nonce = out[keyLen:]
	return nil
}

func (op *Operation) cipher(input []byte) error {
	spec := types.CipherSpec{
		KeySizeBits: op.params.EncryptionAlg.KeySizeBits(),
		Mode:        types.ModeGCM,
		Padding:     types.PaddingNone,
	}

	if op.direction == types.Encrypt {
		ciphertext, err := aes.Encrypt(spec, op.symmetricKey, op.nonce, nil, input)
		if err != nil {
			return err
		}
		out := make([]byte, 0, 1+len(op.ephemeralPublic)+len(ciphertext))
		out = append(out, byte(len(op.ephemeralPublic)))
		out = append(out, op.ephemeralPublic...)
		op.output = append(out, ciphertext...)
		return nil
	}

	_, body, err := splitCiphertext(input)
	if err != nil {
		return err
	}
	op.output, err = aes.Decrypt(spec, op.symmetricKey, op.nonce, nil, body)
	return err
}

// splitCiphertext separates the ephemeral public key from the AES-GCM body.
func splitCiphertext(input []byte) (ephemeral, body []byte, err error) {
	if len(input) < 1 {
		return nil, nil, fmt.Errorf("%w: ciphertext is empty", types.ErrInvalidInputLength)
	}
	n := int(input[0])
	if n == 0 || len(input) < 1+n+tagSize {
		return nil, nil, fmt.Errorf("%w: ciphertext too short: got %d bytes, need at least %d",
			types.ErrInvalidInputLength, len(input), 1+n+tagSize)
	}
	return input[1 : 1+n], input[1+n:], nil
}

// Encrypt encrypts plaintext to the recipient key, public or private, in any
// supported container.
func Encrypt(key []byte, params types.EciesParameters, plaintext []byte) ([]byte, error) {
	return NewOperation(types.Encrypt, params).Run(key, plaintext)
}

// Decrypt decrypts ECIES ciphertext with the recipient's private key.
func Decrypt(key []byte, params types.EciesParameters, ciphertext []byte) ([]byte, error) {
	return NewOperation(types.Decrypt, params).Run(key, ciphertext)
}

// Run dispatches on direction.
func Run(direction types.Direction, key []byte, params types.EciesParameters, input []byte) ([]byte, error) {
	return NewOperation(direction, params).Run(key, input)
}
