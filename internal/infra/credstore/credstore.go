// Package credstore persists remembered login credentials for the terminal
// frontend, encrypted at rest with AES-256-GCM. The key lives next to the
// credential file with 0600 permissions; this protects against casual
// reads of a synced home directory, not against an attacker with full
// account access.
package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const keySize = 32

// Credentials is the remembered login.
type Credentials struct {
	ServerURL string `json:"serverUrl"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Store reads and writes one encrypted credential file.
type Store struct {
	credPath string
	keyPath  string
}

// New creates a store rooted at dir, typically ~/.easyexp.
func New(dir string) *Store {
	return &Store{
		credPath: filepath.Join(dir, "credentials.enc"),
		keyPath:  filepath.Join(dir, "credentials.key"),
	}
}

// Save encrypts and writes the credentials, generating a key on first use.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.credPath), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	// nonce prefixes the ciphertext in the file
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	if err := os.WriteFile(s.credPath, sealed, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Load decrypts the stored credentials. Returns found=false when nothing
// has been saved yet.
func (s *Store) Load() (Credentials, bool, error) {
	sealed, err := os.ReadFile(s.credPath)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read credentials: %w", err)
	}

	key, err := os.ReadFile(s.keyPath)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read key: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return Credentials{}, false, err
	}
	if len(sealed) < gcm.NonceSize() {
		return Credentials{}, false, errors.New("credential file truncated")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("decrypt credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, true, nil
}

// Clear removes the stored credential file, keeping the key.
func (s *Store) Clear() error {
	err := os.Remove(s.credPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) loadOrCreateKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath)
	if err == nil && len(key) == keySize {
		return key, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key: %w", err)
	}

	key = make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(s.keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
