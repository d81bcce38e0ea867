package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// KeySize is the required key size for AES-256 (256 bits).
const KeySize = 32

// Encryptor performs symmetric encryption with a fixed AES-256 key.
// The zero value is not usable; construct with NewEncryptor.
type Encryptor struct {
	key []byte
}

// NewEncryptor creates an Encryptor from a raw 32-byte key.
func NewEncryptor(key []byte) (Encryptor, error) {
	if len(key) != KeySize {
		return Encryptor{}, ErrInvalidKeyLength
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return Encryptor{key: k}, nil
}

// NewEncryptorFromBase64 creates an Encryptor from a base64-encoded 32-byte key,
// the format produced by GenerateEncodedKey and used in environment configuration.
func NewEncryptorFromBase64(encodedKey string) (Encryptor, error) {
	if encodedKey == "" {
		return Encryptor{}, ErrKeyNotSet
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return Encryptor{}, errors.Join(ErrInvalidKeyLength, err)
	}
	return NewEncryptor(key)
}

// EncryptString encrypts the plaintext and returns a base64-encoded
// ciphertext with the GCM nonce prepended.
func (e Encryptor) EncryptString(plainText string) (string, error) {
	cipherText, err := e.Encrypt([]byte(plainText))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(cipherText), nil
}

// DecryptString decrypts a base64-encoded ciphertext produced by EncryptString.
func (e Encryptor) DecryptString(cipherText string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plainText, err := e.Decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(plainText), nil
}

// Encrypt seals data with AES-256-GCM. Output layout: nonce + ciphertext + tag.
func (e Encryptor) Encrypt(data []byte) ([]byte, error) {
	aesGCM, err := e.gcm()
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aesGCM.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens data sealed by Encrypt.
func (e Encryptor) Decrypt(data []byte) ([]byte, error) {
	aesGCM, err := e.gcm()
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}
	nonce, cipherText := data[:nonceSize], data[nonceSize:]

	plainText, err := aesGCM.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plainText, nil
}

func (e Encryptor) gcm() (cipher.AEAD, error) {
	if len(e.key) != KeySize {
		return nil, ErrKeyNotSet
	}
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateKey creates a new random 32-byte key suitable for AES-256.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateEncodedKey creates a new random key as a base64-encoded string,
// convenient for storing in environment configuration.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
