package cipher

import (
	"crypto/aes"
	crypto "crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrDecrypt is returned for ciphertext that is corrupted or was produced
// under a different key.
var ErrDecrypt = errors.New("cannot decrypt payload")

// Cipher is a deterministic AES-CBC cipher with a key-derived IV. Safe for
// concurrent use; the key never changes after New.
type Cipher struct {
	block crypto.Block
	iv    []byte
}

// New builds a Cipher from a 16, 24, or 32 byte key. The IV is derived from
// the key itself, which is what makes ciphertext deterministic.
func New(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(key)
	return &Cipher{
		block: block,
		iv:    sum[:aes.BlockSize],
	}, nil
}

// Encrypt returns the base64url ciphertext of plain. Same input, same output.
func (c *Cipher) Encrypt(plain string) string {
	padded := pad([]byte(plain))
	out := make([]byte, len(padded))
	crypto.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.RawURLEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt. Every structural failure (bad encoding, wrong
// length, invalid padding) yields ErrDecrypt with no further detail.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	out := make([]byte, len(raw))
	crypto.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)

	plain, ok := unpad(out)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// EncryptJSON marshals v and encrypts the result. Encoding is deterministic
// because encoding/json serializes struct fields in declaration order.
func (c *Cipher) EncryptJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.Encrypt(string(data)), nil
}

// DecryptJSON decrypts ciphertext and unmarshals it into v. A payload that
// decrypts to something other than the expected JSON shape (foreign-key
// ciphertext surviving the padding check) also fails with ErrDecrypt.
func (c *Cipher) DecryptJSON(ciphertext string, v any) error {
	plain, err := c.Decrypt(ciphertext)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(plain), v); err != nil {
		return ErrDecrypt
	}
	return nil
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// PKCS#7.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
