package dsig

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"sort"
	"sync"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is a registered XML-DSig digest

	"github.com/philiph/xmldsig/internal/core/domain"
)

// HashFactory creates a fresh hash for a digest algorithm.
type HashFactory func() hash.Hash

var (
	digestMu       sync.RWMutex
	digestRegistry = map[string]HashFactory{}
)

func init() {
	MustRegisterDigest(domain.DigestSHA1, sha1.New)
	MustRegisterDigest(domain.DigestSHA256, sha256.New)
	MustRegisterDigest(domain.DigestSHA384, sha512.New384)
	MustRegisterDigest(domain.DigestSHA512, sha512.New)
	MustRegisterDigest(domain.DigestRIPEMD160, ripemd160.New)
}

// RegisterDigest adds a digest algorithm identifier.
func RegisterDigest(algorithm string, factory HashFactory) error {
	if algorithm == "" {
		return fmt.Errorf("digest algorithm identifier cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("digest factory cannot be nil")
	}

	digestMu.Lock()
	defer digestMu.Unlock()

	if _, exists := digestRegistry[algorithm]; exists {
		return fmt.Errorf("digest algorithm %q already registered", algorithm)
	}
	digestRegistry[algorithm] = factory
	return nil
}

// MustRegisterDigest registers a digest algorithm or panics.
func MustRegisterDigest(algorithm string, factory HashFactory) {
	if err := RegisterDigest(algorithm, factory); err != nil {
		panic(fmt.Sprintf("failed to register digest %q: %v", algorithm, err))
	}
}

// SupportedDigests returns the registered digest identifiers, sorted.
func SupportedDigests() []string {
	digestMu.RLock()
	defer digestMu.RUnlock()

	out := make([]string, 0, len(digestRegistry))
	for alg := range digestRegistry {
		out = append(out, alg)
	}
	sort.Strings(out)
	return out
}

// IsDigestSupported reports whether algorithm is registered.
func IsDigestSupported(algorithm string) bool {
	digestMu.RLock()
	defer digestMu.RUnlock()
	_, ok := digestRegistry[algorithm]
	return ok
}

// Digest hashes data with the algorithm and returns the base64 value as it
// appears in DigestValue.
func Digest(algorithm string, data []byte) (string, error) {
	digestMu.RLock()
	factory, ok := digestRegistry[algorithm]
	digestMu.RUnlock()
	if !ok {
		return "", domain.ErrUnsupportedDigestAlgorithm.Withf("%q", algorithm)
	}

	h := factory()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
