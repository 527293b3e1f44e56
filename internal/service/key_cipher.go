package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the vault key.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// DeriveVaultKey turns the configured passphrase into a 32-byte AES key.
func DeriveVaultKey(passphrase, salt string) []byte {
	return argon2.IDKey([]byte(passphrase), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// KeyCipher seals private keys with AES-256-GCM. Output is split into
// ciphertext, IV and authentication tag, matching the wallet record.
type KeyCipher struct {
	key []byte // 32-byte key for AES-256
}

// NewKeyCipher derives the cipher key from passphrase and salt.
func NewKeyCipher(passphrase, salt string) (*KeyCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase must not be empty")
	}
	return &KeyCipher{key: DeriveVaultKey(passphrase, salt)}, nil
}

func (c *KeyCipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aesGCM, nil
}

// Seal encrypts plaintext bound to aad.
func (c *KeyCipher) Seal(plaintext, aad []byte) (ciphertext, iv, tag []byte, err error) {
	aesGCM, err := c.gcm()
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, fmt.Errorf("generating iv: %w", err)
	}

	sealed := aesGCM.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - aesGCM.Overhead()
	return sealed[:split], iv, sealed[split:], nil
}

// Open decrypts and authenticates. Any tampering yields an error and no plaintext.
func (c *KeyCipher) Open(ciphertext, iv, tag, aad []byte) ([]byte, error) {
	aesGCM, err := c.gcm()
	if err != nil {
		return nil, err
	}
	if len(iv) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid iv length %d", len(iv))
	}
	if len(tag) != aesGCM.Overhead() {
		return nil, fmt.Errorf("invalid tag length %d", len(tag))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}
