package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// ErrNoKey is returned by a Cipher created without a key
var ErrNoKey = errors.New("encryption key not initialized")

// Cipher seals session tokens with AES-256-GCM before they are persisted
type Cipher struct {
	key []byte
}

// NewCipher derives a 32-byte key from key by zero-padding or truncating it.
// An empty key yields a Cipher whose operations fail with ErrNoKey.
func NewCipher(key string) *Cipher {
	if key == "" {
		return &Cipher{}
	}

	// Pad the key to 32 bytes if needed
	if len(key) < 32 {
		padding := make([]byte, 32-len(key))
		key = key + string(padding)
	}
	return &Cipher{key: []byte(key[:32])}
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	if len(c.key) == 0 {
		return nil, ErrNoKey
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// Encrypt seals plaintext and returns it base64-encoded with the nonce prepended.
// The empty string stays empty so an absent token remains absent.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a value produced by Encrypt
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}
	if encrypted == "" {
		return "", nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertext = ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
