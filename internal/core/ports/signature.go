package ports

// SignatureVerifier verifies enveloped XML signatures on documents.
// This is a port interface - implementations are adapters.
//
// The interface returns validated bytes (not just error) to prevent
// signature wrapping attacks. The returned bytes should be used for
// further processing instead of the input.
type SignatureVerifier interface {
	// Verify validates the XML signature on the document and returns the
	// validated XML bytes. Returns error if signature is invalid or missing.
	Verify(data []byte) ([]byte, error)
}

// DocumentSigner signs XML documents.
// This is a port interface - implementations are adapters.
type DocumentSigner interface {
	// Sign adds an enveloped XML signature to the document and returns
	// the signed XML bytes.
	Sign(data []byte) ([]byte, error)
}
