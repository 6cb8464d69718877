// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/gitter/lib/secret"
)

func generate(t *testing.T) *Keypair {
	t.Helper()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

func TestGenerateKeypair(t *testing.T) {
	keypair := generate(t)

	if !strings.HasPrefix(keypair.PrivateKey.String(), "AGE-SECRET-KEY-1") {
		t.Errorf("private key has unexpected prefix")
	}
	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("PublicKey = %q, want prefix age1", keypair.PublicKey)
	}
	if err := ParsePublicKey(keypair.PublicKey); err != nil {
		t.Errorf("ParsePublicKey: %v", err)
	}

	other := generate(t)
	if other.PublicKey == keypair.PublicKey {
		t.Error("two generated keypairs share a public key")
	}
}

func TestSealOpen(t *testing.T) {
	keypair := generate(t)

	ciphertext, err := Seal([]byte("token-abc"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(ciphertext, "token-abc") {
		t.Fatal("ciphertext contains the plaintext")
	}
	if _, err := base64.StdEncoding.DecodeString(ciphertext); err != nil {
		t.Fatalf("ciphertext is not base64: %v", err)
	}

	plaintext, err := Open(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer plaintext.Close()
	if plaintext.String() != "token-abc" {
		t.Errorf("Open = %q, want %q", plaintext.String(), "token-abc")
	}
}

func TestSealMultipleRecipients(t *testing.T) {
	first := generate(t)
	second := generate(t)

	ciphertext, err := Seal([]byte("shared"), []string{first.PublicKey, second.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	for _, keypair := range []*Keypair{first, second} {
		plaintext, err := Open(ciphertext, keypair.PrivateKey)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if plaintext.String() != "shared" {
			t.Errorf("Open = %q, want %q", plaintext.String(), "shared")
		}
		plaintext.Close()
	}
}

func TestOpenWrongIdentity(t *testing.T) {
	owner := generate(t)
	stranger := generate(t)

	ciphertext, err := Seal([]byte("token"), []string{owner.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(ciphertext, stranger.PrivateKey); err == nil {
		t.Fatal("Open with the wrong identity succeeded")
	}
}

func TestOpenIdentityFileFormat(t *testing.T) {
	keypair := generate(t)

	file := "# created: 2026-01-01T00:00:00Z\n# public key: " + keypair.PublicKey + "\n" +
		keypair.PrivateKey.String() + "\n"
	identityFile, err := secret.NewFromString(file)
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer identityFile.Close()

	ciphertext, err := Seal([]byte("token"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	plaintext, err := Open(ciphertext, identityFile)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer plaintext.Close()
	if plaintext.String() != "token" {
		t.Errorf("Open = %q, want %q", plaintext.String(), "token")
	}
}

func TestSealErrors(t *testing.T) {
	keypair := generate(t)

	if _, err := Seal(nil, []string{keypair.PublicKey}); !errors.Is(err, ErrEmptyPlaintext) {
		t.Errorf("Seal(nil) error = %v, want ErrEmptyPlaintext", err)
	}
	if _, err := Seal([]byte("x"), nil); err == nil {
		t.Error("Seal with no recipients succeeded")
	}
	if _, err := Seal([]byte("x"), []string{"not-a-key"}); err == nil {
		t.Error("Seal with an invalid recipient succeeded")
	}
	if err := ParsePublicKey("age1invalid"); err == nil {
		t.Error("ParsePublicKey accepted an invalid key")
	}
}

func TestOpenErrors(t *testing.T) {
	keypair := generate(t)

	if _, err := Open("!!!", keypair.PrivateKey); err == nil {
		t.Error("Open accepted invalid base64")
	}
	if _, err := Open(base64.StdEncoding.EncodeToString([]byte("garbage")), keypair.PrivateKey); err == nil {
		t.Error("Open accepted a non-age payload")
	}
	if _, err := ParseIdentities(nil); err == nil {
		t.Error("ParseIdentities(nil) succeeded")
	}
}
