package ports

// Key signs and verifies SignedInfo bytes. The signature engine never
// performs key math itself; implementations are adapters.
type Key interface {
	// Algorithm returns the signature method identifier written into
	// SignatureMethod.
	Algorithm() string

	// Sign returns the raw signature value over data.
	Sign(data []byte) ([]byte, error)

	// Verify reports whether signature is valid for data. A mismatch is
	// reported as (false, nil); errors are reserved for unusable input.
	Verify(data, signature []byte) (bool, error)
}
