package proof

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	privKeyFile = "truthgit_ed25519"
	pubKeyFile  = "truthgit_ed25519.pub"
)

// KeyPair holds the repository signing keys. Keys are always passed in
// explicitly; nothing in this package keeps global key state, so tests can
// inject ephemeral pairs.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair creates a fresh Ed25519 pair.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// KeysExist reports whether a private key is stored under dir.
func KeysExist(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, privKeyFile))
	return err == nil
}

// SaveKeyPair writes the pair under dir as base64 files, private key
// readable by owner only.
func SaveKeyPair(dir string, kp KeyPair) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	priv := base64.StdEncoding.EncodeToString(kp.Private) + "\n"
	if err := os.WriteFile(filepath.Join(dir, privKeyFile), []byte(priv), 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	pub := base64.StdEncoding.EncodeToString(kp.Public) + "\n"
	if err := os.WriteFile(filepath.Join(dir, pubKeyFile), []byte(pub), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

// LoadKeyPair reads the pair stored under dir. The public key is derived
// from the private key rather than trusted from disk.
func LoadKeyPair(dir string) (KeyPair, error) {
	data, err := os.ReadFile(filepath.Join(dir, privKeyFile))
	if err != nil {
		return KeyPair{}, fmt.Errorf("read private key: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return KeyPair{}, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return KeyPair{}, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	return KeyPair{Public: priv.Public().(ed25519.PublicKey), Private: priv}, nil
}

// LoadOrCreateKeyPair loads the stored pair, generating and saving one on
// first use.
func LoadOrCreateKeyPair(dir string) (KeyPair, error) {
	if KeysExist(dir) {
		return LoadKeyPair(dir)
	}
	kp, err := GenerateKeyPair()
	if err != nil {
		return KeyPair{}, err
	}
	if err := SaveKeyPair(dir, kp); err != nil {
		return KeyPair{}, err
	}
	return kp, nil
}
