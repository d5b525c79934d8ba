package security

import (
	"errors"
	"testing"
)

const testKey = "test-encryption-key-12345678901234"

func TestNewCipherKeyLength(t *testing.T) {
	testCases := []struct {
		name string
		key  string
	}{
		{"Short key is padded", "short-key"},
		{"Exact key is kept", "12345678901234567890123456789012"},
		{"Long key is truncated", "this-is-a-very-long-key-that-exceeds-32-bytes-by-quite-a-lot"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCipher(tc.key)
			if len(c.key) != 32 {
				t.Errorf("Expected key length of 32, got %d", len(c.key))
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := NewCipher(testKey)

	testCases := []struct {
		name  string
		value string
	}{
		{"Access token", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
		{"Special characters", "!@#$%^&*()_+{}|:<>?~"},
		{"Empty string", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := c.Encrypt(tc.value)
			if err != nil {
				t.Fatalf("Error encrypting '%s': %v", tc.value, err)
			}

			if encrypted == tc.value && tc.value != "" {
				t.Errorf("Encrypted value '%s' is the same as the original", encrypted)
			}

			decrypted, err := c.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Error decrypting '%s': %v", encrypted, err)
			}

			if decrypted != tc.value {
				t.Errorf("Expected decrypted value '%s', got '%s'", tc.value, decrypted)
			}
		})
	}
}

func TestCipherWithoutKey(t *testing.T) {
	c := NewCipher("")

	if _, err := c.Encrypt("test"); !errors.Is(err, ErrNoKey) {
		t.Errorf("Expected ErrNoKey when encrypting, got %v", err)
	}

	if _, err := c.Decrypt("test"); !errors.Is(err, ErrNoKey) {
		t.Errorf("Expected ErrNoKey when decrypting, got %v", err)
	}
}

func TestDecryptInvalidData(t *testing.T) {
	c := NewCipher(testKey)

	if _, err := c.Decrypt("not-base64"); err == nil {
		t.Error("Expected error when decrypting invalid base64 data, got nil")
	}

	// "hello" in base64
	if _, err := c.Decrypt("aGVsbG8="); err == nil {
		t.Error("Expected error when decrypting invalid ciphertext, got nil")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	encrypted, err := NewCipher(testKey).Encrypt("refresh-token")
	if err != nil {
		t.Fatalf("Error encrypting: %v", err)
	}

	if _, err := NewCipher("another-key").Decrypt(encrypted); err == nil {
		t.Error("Expected error when decrypting with a different key, got nil")
	}
}
