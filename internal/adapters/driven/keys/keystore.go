package keys

import (
	"crypto/rsa"
	"crypto/tls"

	dsig "github.com/russellhaering/goxmldsig"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// FromKeyStore builds an RSA signing key from a goxmldsig key store and
// returns it with the store's DER certificate.
func FromKeyStore(ks dsig.X509KeyStore, algorithm string) (*RSAKey, []byte, error) {
	if ks == nil {
		return nil, nil, domain.ErrInvalidKey.Withf("nil key store")
	}
	private, cert, err := ks.GetKeyPair()
	if err != nil {
		return nil, nil, domain.ErrInvalidKey.With("key store", err)
	}
	if algorithm == "" {
		algorithm = domain.RSASHA256
	}
	key, err := NewRSAKey(algorithm, private)
	if err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}

// FromTLSCertificate builds an RSA signing key from a TLS certificate and
// returns its DER chain.
func FromTLSCertificate(cert tls.Certificate, algorithm string) (*RSAKey, [][]byte, error) {
	ks := dsig.TLSCertKeyStore(cert)
	key, _, err := FromKeyStore(ks, algorithm)
	if err != nil {
		return nil, nil, err
	}
	chain, err := ks.GetChain()
	if err != nil {
		return nil, nil, domain.ErrInvalidKey.With("certificate chain", err)
	}
	return key, chain, nil
}

// KeyStore exposes a signing key and its certificate chain as a goxmldsig
// key store, so a goxmldsig SigningContext can sign with the same key.
type KeyStore struct {
	private *rsa.PrivateKey
	chain   [][]byte
}

// NewKeyStore returns a key store for an RSA signing key. chain[0] is the
// signing certificate.
func NewKeyStore(key *RSAKey, chain [][]byte) (*KeyStore, error) {
	if key == nil || key.private == nil {
		return nil, domain.ErrInvalidKey.Withf("key store needs an RSA private key")
	}
	if len(chain) == 0 {
		return nil, domain.ErrInvalidKey.With("key store", dsig.ErrMissingCertificates)
	}
	return &KeyStore{private: key.private, chain: chain}, nil
}

// GetKeyPair implements dsig.X509KeyStore.
func (s *KeyStore) GetKeyPair() (*rsa.PrivateKey, []byte, error) {
	return s.private, s.chain[0], nil
}

// GetChain implements dsig.X509ChainStore.
func (s *KeyStore) GetChain() ([][]byte, error) {
	return s.chain, nil
}

var (
	_ dsig.X509KeyStore   = (*KeyStore)(nil)
	_ dsig.X509ChainStore = (*KeyStore)(nil)
)
