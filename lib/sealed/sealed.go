// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/gitter/lib/secret"
)

// ErrEmptyPlaintext is returned when sealing or opening produces no
// bytes. An empty session token is never valid.
var ErrEmptyPlaintext = errors.New("sealed: empty plaintext")

// Keypair holds an age x25519 keypair. The caller must call Close
// when the keypair is no longer needed.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... identity string.
	PrivateKey *secret.Buffer

	// PublicKey is the age1... recipient string. Safe to publish.
	PublicKey string
}

// Close zeroes and releases the private key. Idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating keypair: %w", err)
	}

	// The identity's own string stays on the heap until GC; the
	// buffer is the copy we hand out.
	privateKey, err := secret.NewFromString(identity.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting private key: %w", err)
	}
	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Seal encrypts plaintext to one or more age recipients and returns
// standard base64 ciphertext.
func Seal(plaintext []byte, recipientKeys []string) (string, error) {
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("sealed: at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("sealed: parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("sealed: writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("sealed: finalizing: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Open decrypts base64 ciphertext produced by [Seal] using the
// identities in identityFile. The identity buffer is borrowed and not
// closed. The caller must Close the returned buffer.
func Open(ciphertext string, identityFile *secret.Buffer) (*secret.Buffer, error) {
	identities, err := ParseIdentities(identityFile)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("sealed: decoding base64: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), identities...)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting plaintext: %w", err)
	}
	return buffer, nil
}

// ParsePublicKey reports whether publicKey is a valid age x25519
// recipient.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("sealed: invalid public key: %w", err)
	}
	return nil
}

// ParseIdentities parses an identity file: a bare AGE-SECRET-KEY-1
// line or the multi-line age-keygen format.
func ParseIdentities(identityFile *secret.Buffer) ([]age.Identity, error) {
	if identityFile == nil || identityFile.Len() == 0 {
		return nil, fmt.Errorf("sealed: identity is empty")
	}
	identities, err := age.ParseIdentities(bytes.NewReader(identityFile.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("sealed: invalid identity: %w", err)
	}
	return identities, nil
}
