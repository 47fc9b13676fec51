package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// Encryptor seals private profile fields (display name, contact info) with
// AES-256-GCM. The stored form is base64(nonce || ciphertext).
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives a 32-byte key from an arbitrary-length secret with
// SHA-256.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) == 0 {
		return nil, errors.New("encryption key must not be empty")
	}
	sum := sha256.Sum256(key)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: aead}, nil
}

func (e *Encryptor) Encrypt(plain string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := e.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (e *Encryptor) Decrypt(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", errors.New("malformed ciphertext")
	}
	if len(raw) < e.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("failed to decrypt field")
	}
	return string(plain), nil
}

// EncryptOptional maps nil to nil and "" to "" so that patch semantics
// (absent vs. clear) survive encryption.
func (e *Encryptor) EncryptOptional(plain *string) (*string, error) {
	if plain == nil || *plain == "" {
		return plain, nil
	}
	enc, err := e.Encrypt(*plain)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// DecryptOptional is the inverse of EncryptOptional.
func (e *Encryptor) DecryptOptional(enc *string) (*string, error) {
	if enc == nil || *enc == "" {
		return enc, nil
	}
	plain, err := e.Decrypt(*enc)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
