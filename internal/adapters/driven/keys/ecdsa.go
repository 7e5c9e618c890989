package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"math/big"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

var ecdsaHashes = map[string]crypto.Hash{
	domain.ECDSASHA1:   crypto.SHA1,
	domain.ECDSASHA256: crypto.SHA256,
	domain.ECDSASHA384: crypto.SHA384,
	domain.ECDSASHA512: crypto.SHA512,
}

// ECDSAKey signs with ECDSA. Signature values are the XML-DSig encoding:
// r and s as fixed-width big-endian integers, concatenated.
type ECDSAKey struct {
	algorithm string
	hash      crypto.Hash
	private   *ecdsa.PrivateKey
	public    *ecdsa.PublicKey
}

// NewECDSAKey returns a signing key for an ECDSA signature method.
func NewECDSAKey(algorithm string, private *ecdsa.PrivateKey) (*ECDSAKey, error) {
	if private == nil {
		return nil, domain.ErrInvalidKey.Withf("nil ECDSA private key")
	}
	k, err := NewECDSAPublicKey(algorithm, &private.PublicKey)
	if err != nil {
		return nil, err
	}
	k.private = private
	return k, nil
}

// NewECDSAPublicKey returns a verification-only key.
func NewECDSAPublicKey(algorithm string, public *ecdsa.PublicKey) (*ECDSAKey, error) {
	if public == nil || public.Curve == nil {
		return nil, domain.ErrInvalidKey.Withf("nil ECDSA public key")
	}
	h, ok := ecdsaHashes[algorithm]
	if !ok {
		return nil, domain.ErrUnsupportedSignatureMethod.Withf("%q is not an ECDSA signature method", algorithm)
	}
	return &ECDSAKey{algorithm: algorithm, hash: h, public: public}, nil
}

// Algorithm implements ports.Key.
func (k *ECDSAKey) Algorithm() string { return k.algorithm }

func (k *ECDSAKey) size() int {
	return (k.public.Curve.Params().BitSize + 7) / 8
}

// Sign implements ports.Key.
func (k *ECDSAKey) Sign(data []byte) ([]byte, error) {
	if k.private == nil {
		return nil, domain.ErrInvalidKey.Withf("public ECDSA key cannot sign")
	}
	r, s, err := ecdsa.Sign(rand.Reader, k.private, sum(k.hash, data))
	if err != nil {
		return nil, err
	}
	size := k.size()
	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])
	return out, nil
}

// Verify implements ports.Key.
func (k *ECDSAKey) Verify(data, signature []byte) (bool, error) {
	size := k.size()
	if len(signature) != 2*size {
		return false, nil
	}
	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])
	return ecdsa.Verify(k.public, sum(k.hash, data), r, s), nil
}

// PublicKey returns the ECDSA public key.
func (k *ECDSAKey) PublicKey() *ecdsa.PublicKey { return k.public }

var _ ports.Key = (*ECDSAKey)(nil)
