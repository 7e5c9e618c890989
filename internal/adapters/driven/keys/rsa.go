// Package keys provides signing keys for the signature engine: RSA
// (PKCS#1 v1.5), ECDSA and HMAC, plus PEM loading and a bridge to
// goxmldsig key stores.
package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1" // registers crypto.SHA1
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

var rsaHashes = map[string]crypto.Hash{
	domain.RSASHA1:   crypto.SHA1,
	domain.RSASHA256: crypto.SHA256,
	domain.RSASHA384: crypto.SHA384,
	domain.RSASHA512: crypto.SHA512,
}

// RSAKey signs with RSASSA-PKCS1-v1_5. A key built from a public key can
// only verify.
type RSAKey struct {
	algorithm string
	hash      crypto.Hash
	private   *rsa.PrivateKey
	public    *rsa.PublicKey
}

// NewRSAKey returns a signing key for an RSA signature method.
func NewRSAKey(algorithm string, private *rsa.PrivateKey) (*RSAKey, error) {
	if private == nil {
		return nil, domain.ErrInvalidKey.Withf("nil RSA private key")
	}
	k, err := NewRSAPublicKey(algorithm, &private.PublicKey)
	if err != nil {
		return nil, err
	}
	k.private = private
	return k, nil
}

// NewRSAPublicKey returns a verification-only key.
func NewRSAPublicKey(algorithm string, public *rsa.PublicKey) (*RSAKey, error) {
	if public == nil {
		return nil, domain.ErrInvalidKey.Withf("nil RSA public key")
	}
	h, ok := rsaHashes[algorithm]
	if !ok {
		return nil, domain.ErrUnsupportedSignatureMethod.Withf("%q is not an RSA signature method", algorithm)
	}
	return &RSAKey{algorithm: algorithm, hash: h, public: public}, nil
}

// Algorithm implements ports.Key.
func (k *RSAKey) Algorithm() string { return k.algorithm }

// Sign implements ports.Key.
func (k *RSAKey) Sign(data []byte) ([]byte, error) {
	if k.private == nil {
		return nil, domain.ErrInvalidKey.Withf("public RSA key cannot sign")
	}
	return rsa.SignPKCS1v15(rand.Reader, k.private, k.hash, sum(k.hash, data))
}

// Verify implements ports.Key.
func (k *RSAKey) Verify(data, signature []byte) (bool, error) {
	if err := rsa.VerifyPKCS1v15(k.public, k.hash, sum(k.hash, data), signature); err != nil {
		return false, nil
	}
	return true, nil
}

// PublicKey returns the RSA public key.
func (k *RSAKey) PublicKey() *rsa.PublicKey { return k.public }

func sum(h crypto.Hash, data []byte) []byte {
	hh := h.New()
	hh.Write(data)
	return hh.Sum(nil)
}

var _ ports.Key = (*RSAKey)(nil)
