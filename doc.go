// Package xmldsig creates and verifies XML digital signatures over etree
// documents.
//
// The low-level engine is Context: build a Signature element with New,
// add References to the nodes that should be protected, then Sign with a
// Key. On the receiving side Locate finds an existing Signature,
// ValidateReferences recomputes every digest and Verify checks the
// SignatureValue. Both steps must succeed before ValidatedNodes may be
// trusted.
//
// DocumentSigner and Verifier wrap the engine for the common enveloped
// signature over a whole document, with certificates in KeyInfo.
package xmldsig

// Version is the module release.
const Version = "0.3.0"
