//go:build unit

package dsig

import (
	"context"
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

func parse(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		t.Fatalf("failed to parse XML: %v", err)
	}
	return doc
}

// reparse serializes doc and parses it again, as a receiver would.
func reparse(t *testing.T, doc *etree.Document) *etree.Document {
	t.Helper()
	s, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("failed to serialize document: %v", err)
	}
	return parse(t, s)
}

// hmacKey is a minimal ports.Key over HMAC-SHA256.
type hmacKey struct {
	secret []byte
}

func (k hmacKey) Algorithm() string { return domain.HMACSHA256 }

func (k hmacKey) Sign(data []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, k.secret)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (k hmacKey) Verify(data, sig []byte) (bool, error) {
	expected, _ := k.Sign(data)
	return hmac.Equal(expected, sig), nil
}

// rsaKey is a minimal ports.Key over RSA-SHA256.
type rsaKey struct {
	private *rsa.PrivateKey
}

func newRSAKey(t *testing.T) rsaKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return rsaKey{private: key}
}

func (k rsaKey) Algorithm() string { return domain.RSASHA256 }

func (k rsaKey) Sign(data []byte) ([]byte, error) {
	sum := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, k.private, crypto.SHA256, sum[:])
}

func (k rsaKey) Verify(data, sig []byte) (bool, error) {
	sum := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(&k.private.PublicKey, crypto.SHA256, sum[:], sig) == nil, nil
}

// failingKey fails every operation.
type failingKey struct{}

func (failingKey) Algorithm() string                   { return domain.RSASHA256 }
func (failingKey) Sign([]byte) ([]byte, error)         { return nil, errors.New("hsm unavailable") }
func (failingKey) Verify([]byte, []byte) (bool, error) { return false, errors.New("hsm unavailable") }

// stubFetcher serves fixed bodies by URI.
type stubFetcher map[string][]byte

func (f stubFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	data, ok := f[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

// recordingMetrics counts recorder calls.
type recordingMetrics struct {
	signs, verifies, validations, fetches int
	lastValidation                        bool
}

func (m *recordingMetrics) RecordSign(string, bool)   { m.signs++ }
func (m *recordingMetrics) RecordVerify(string, bool) { m.verifies++ }
func (m *recordingMetrics) RecordReferenceValidation(success bool, _ int) {
	m.validations++
	m.lastValidation = success
}
func (m *recordingMetrics) RecordExternalFetch(string, bool) { m.fetches++ }

// verifyDocument runs the verification flow over a received document.
func verifyDocument(t *testing.T, doc *etree.Document, key ports.Key, opts ...Option) (*Context, error) {
	t.Helper()
	ctx, err := LocateDocument(doc, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.CanonicalizeSignedInfo(); err != nil {
		return ctx, err
	}
	if err := ctx.ValidateReferences(context.Background()); err != nil {
		return ctx, err
	}
	ok, err := ctx.Verify(key)
	if err != nil {
		return ctx, err
	}
	if !ok {
		return ctx, domain.ErrSignatureInvalid
	}
	return ctx, nil
}
