package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// LoadCertificates loads X.509 certificates from a PEM file. Several
// certificates in one file are returned in file order.
func LoadCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate file: %w", err)
	}
	certs, err := ParseCertificates(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return certs, nil
}

// ParseCertificates parses every CERTIFICATE block of PEM data.
func ParseCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse certificate: %w", err)
			}
			certs = append(certs, cert)
		}
		data = rest
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found")
	}
	return certs, nil
}

// LoadPrivateKey loads the first private key of a PEM file.
func LoadPrivateKey(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

// ParsePrivateKey parses the first RSA or ECDSA private key of PEM data,
// in PKCS#1, SEC 1 or PKCS#8 form.
func ParsePrivateKey(data []byte) (crypto.Signer, error) {
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		switch block.Type {
		case "RSA PRIVATE KEY":
			return x509.ParsePKCS1PrivateKey(block.Bytes)
		case "EC PRIVATE KEY":
			return x509.ParseECPrivateKey(block.Bytes)
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			signer, ok := key.(crypto.Signer)
			if !ok {
				return nil, domain.ErrInvalidKey.Withf("unsupported PKCS#8 key type %T", key)
			}
			return signer, nil
		}
		data = rest
	}
	return nil, domain.ErrInvalidKey.Withf("no private key found")
}

// NewSigningKey wraps an RSA or ECDSA private key for algorithm. An empty
// algorithm selects DefaultAlgorithm for the key.
func NewSigningKey(algorithm string, signer crypto.Signer) (ports.Key, error) {
	if signer == nil {
		return nil, domain.ErrInvalidKey.Withf("nil private key")
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm(signer.Public())
	}
	switch k := signer.(type) {
	case *rsa.PrivateKey:
		return NewRSAKey(algorithm, k)
	case *ecdsa.PrivateKey:
		return NewECDSAKey(algorithm, k)
	default:
		return nil, domain.ErrInvalidKey.Withf("unsupported private key type %T", signer)
	}
}

// NewVerificationKey wraps an RSA or ECDSA public key for algorithm.
func NewVerificationKey(algorithm string, public crypto.PublicKey) (ports.Key, error) {
	switch k := public.(type) {
	case *rsa.PublicKey:
		return NewRSAPublicKey(algorithm, k)
	case *ecdsa.PublicKey:
		return NewECDSAPublicKey(algorithm, k)
	default:
		return nil, domain.ErrInvalidKey.Withf("unsupported public key type %T", public)
	}
}

// DefaultAlgorithm picks a SHA-2 signature method matching the key: RSA
// with SHA-256, ECDSA with the hash sized to the curve.
func DefaultAlgorithm(public crypto.PublicKey) string {
	switch k := public.(type) {
	case *rsa.PublicKey:
		return domain.RSASHA256
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P384():
			return domain.ECDSASHA384
		case elliptic.P521():
			return domain.ECDSASHA512
		default:
			return domain.ECDSASHA256
		}
	default:
		return ""
	}
}
