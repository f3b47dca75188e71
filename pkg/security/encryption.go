package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	nonceSize = 24
	// sealedPrefix marks values written by TextCipher so legacy plaintext rows can still be read.
	sealedPrefix = "sb1:"
)

var (
	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")
)

// Encryptor provides a generic interface for encryption/decryption
type Encryptor interface {
	Encrypt(data []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// NewSecretboxEncryptor derives a 32 byte key from the passphrase with SHA-256.
func NewSecretboxEncryptor(passphrase string) Encryptor {
	return &secretboxEncryptor{key: sha256.Sum256([]byte(passphrase))}
}

type secretboxEncryptor struct {
	key [32]byte
}

func (s *secretboxEncryptor) Encrypt(data []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, ErrEncryption
	}
	return secretbox.Seal(nonce[:], data, &nonce, &s.key), nil
}

func (s *secretboxEncryptor) Decrypt(data []byte) ([]byte, error) {
	if len(data) < nonceSize+secretbox.Overhead {
		return nil, ErrDecryption
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	plaintext, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

// TextCipher seals free text columns. A nil Encryptor turns it into a passthrough.
type TextCipher struct {
	enc Encryptor
}

// NewTextCipher returns a cipher for the passphrase; an empty passphrase disables encryption.
func NewTextCipher(passphrase string) *TextCipher {
	if passphrase == "" {
		return &TextCipher{}
	}
	return &TextCipher{enc: NewSecretboxEncryptor(passphrase)}
}

// Enabled reports whether values are sealed.
func (c *TextCipher) Enabled() bool {
	return c != nil && c.enc != nil
}

// Seal encrypts a value for storage. Empty strings are stored as-is.
func (c *TextCipher) Seal(plain string) (string, error) {
	if !c.Enabled() || plain == "" {
		return plain, nil
	}
	sealed, err := c.enc.Encrypt([]byte(plain))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned unchanged.
func (c *TextCipher) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if !c.Enabled() {
		return "", ErrDecryption
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", ErrDecryption
	}
	plain, err := c.enc.Decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
