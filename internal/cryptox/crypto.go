// Package cryptox implements the credential hashing scheme: salted PBKDF2
// password derivation, random identifiers and tokens, and constant-time
// comparison of secrets.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 4096
	// KeyLength is the derived key size in bytes.
	KeyLength = 256

	IDBytes    = 16
	TokenBytes = 32
	SaltBytes  = 128
)

// randRead is swapped in tests to simulate an exhausted entropy source.
var randRead = rand.Read

// DeriveHash derives a password hash with PBKDF2-HMAC-SHA256.
//
// If salt is empty a fresh SaltBytes-long random salt is generated. The hex
// text of the salt (not its decoded bytes) is fed to the KDF, so stored salts
// can be reused as-is. Both returned values are lowercase hex.
func DeriveHash(password, salt string) (string, string, error) {
	if salt == "" {
		s, err := RandomToken(SaltBytes)
		if err != nil {
			return "", "", err
		}
		salt = s
	}

	key := pbkdf2.Key([]byte(password), []byte(salt), Iterations, KeyLength, sha256.New)
	return salt, hex.EncodeToString(key), nil
}

// RandomToken returns n bytes from the system CSPRNG, hex encoded.
// A failing source is reported as an entropy error; there is no fallback.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := randRead(buf); err != nil {
		return "", common.Entropy(err)
	}
	return hex.EncodeToString(buf), nil
}

// NewID returns a random record identifier.
func NewID() (string, error) {
	return RandomToken(IDBytes)
}

// NewToken returns a random verification or reset token.
func NewToken() (string, error) {
	return RandomToken(TokenBytes)
}

// Equal compares two secrets in constant time with respect to their content.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
