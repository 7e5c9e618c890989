package keys

import (
	"crypto"
	"crypto/hmac"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

var hmacHashes = map[string]crypto.Hash{
	domain.HMACSHA1:   crypto.SHA1,
	domain.HMACSHA256: crypto.SHA256,
	domain.HMACSHA384: crypto.SHA384,
	domain.HMACSHA512: crypto.SHA512,
}

// HMACKey is a shared-secret key.
type HMACKey struct {
	algorithm string
	hash      crypto.Hash
	secret    []byte
}

// NewHMACKey returns a key for an HMAC signature method.
func NewHMACKey(algorithm string, secret []byte) (*HMACKey, error) {
	if len(secret) == 0 {
		return nil, domain.ErrInvalidKey.Withf("empty HMAC secret")
	}
	h, ok := hmacHashes[algorithm]
	if !ok {
		return nil, domain.ErrUnsupportedSignatureMethod.Withf("%q is not an HMAC signature method", algorithm)
	}
	return &HMACKey{algorithm: algorithm, hash: h, secret: append([]byte(nil), secret...)}, nil
}

// Algorithm implements ports.Key.
func (k *HMACKey) Algorithm() string { return k.algorithm }

// Sign implements ports.Key.
func (k *HMACKey) Sign(data []byte) ([]byte, error) {
	mac := hmac.New(k.hash.New, k.secret)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// Verify implements ports.Key.
func (k *HMACKey) Verify(data, signature []byte) (bool, error) {
	expected, _ := k.Sign(data)
	return hmac.Equal(expected, signature), nil
}

var _ ports.Key = (*HMACKey)(nil)
