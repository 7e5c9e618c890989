package domain

import (
	dsig "github.com/russellhaering/goxmldsig"
)

// XML-DSig namespace and the prefix used for elements this module creates.
const (
	Namespace     = dsig.Namespace
	DefaultPrefix = dsig.DefaultPrefix
)

// XMLNamespace is the namespace permanently bound to the xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Canonicalization method identifiers.
const (
	C14N                     = string(dsig.CanonicalXML10RecAlgorithmId)
	C14NWithComments         = string(dsig.CanonicalXML10WithCommentsAlgorithmId)
	ExclusiveC14N            = string(dsig.CanonicalXML10ExclusiveAlgorithmId)
	ExclusiveC14NWithComment = string(dsig.CanonicalXML10ExclusiveWithCommentsAlgorithmId)
)

// Digest algorithm identifiers.
const (
	DigestSHA1      = "http://www.w3.org/2000/09/xmldsig#sha1"
	DigestSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"
	DigestSHA384    = "http://www.w3.org/2001/04/xmldsig-more#sha384"
	DigestSHA512    = "http://www.w3.org/2001/04/xmlenc#sha512"
	DigestRIPEMD160 = "http://www.w3.org/2001/04/xmlenc#ripemd160"
)

// Transform identifiers other than the canonicalization methods.
const (
	TransformEnveloped = string(dsig.EnvelopedSignatureAltorithmId)
	TransformXPath     = "http://www.w3.org/TR/1999/REC-xpath-19991116"
)

// Signature method identifiers.
const (
	RSASHA1     = dsig.RSASHA1SignatureMethod
	RSASHA256   = dsig.RSASHA256SignatureMethod
	RSASHA384   = dsig.RSASHA384SignatureMethod
	RSASHA512   = dsig.RSASHA512SignatureMethod
	ECDSASHA1   = dsig.ECDSASHA1SignatureMethod
	ECDSASHA256 = dsig.ECDSASHA256SignatureMethod
	ECDSASHA384 = dsig.ECDSASHA384SignatureMethod
	ECDSASHA512 = dsig.ECDSASHA512SignatureMethod
	HMACSHA1    = "http://www.w3.org/2000/09/xmldsig#hmac-sha1"
	HMACSHA256  = "http://www.w3.org/2001/04/xmldsig-more#hmac-sha256"
	HMACSHA384  = "http://www.w3.org/2001/04/xmldsig-more#hmac-sha384"
	HMACSHA512  = "http://www.w3.org/2001/04/xmldsig-more#hmac-sha512"
)

// CanonicalMode is the pair of flags a canonicalization identifier selects.
type CanonicalMode struct {
	Exclusive    bool
	WithComments bool
}

// ParseCanonicalMethod maps one of the four canonicalization identifiers to
// its mode.
func ParseCanonicalMethod(method string) (CanonicalMode, error) {
	switch method {
	case C14N:
		return CanonicalMode{}, nil
	case C14NWithComments:
		return CanonicalMode{WithComments: true}, nil
	case ExclusiveC14N:
		return CanonicalMode{Exclusive: true}, nil
	case ExclusiveC14NWithComment:
		return CanonicalMode{Exclusive: true, WithComments: true}, nil
	default:
		return CanonicalMode{}, ErrInvalidCanonicalMethod.Withf("%q", method)
	}
}

// Method returns the identifier for the mode.
func (m CanonicalMode) Method() string {
	switch {
	case m.Exclusive && m.WithComments:
		return ExclusiveC14NWithComment
	case m.Exclusive:
		return ExclusiveC14N
	case m.WithComments:
		return C14NWithComments
	default:
		return C14N
	}
}

// IsCanonicalMethod reports whether method is one of the four supported
// canonicalization identifiers.
func IsCanonicalMethod(method string) bool {
	_, err := ParseCanonicalMethod(method)
	return err == nil
}

var algorithmNames = map[string]string{
	C14N:                     "c14n",
	C14NWithComments:         "c14n-with-comments",
	ExclusiveC14N:            "exc-c14n",
	ExclusiveC14NWithComment: "exc-c14n-with-comments",
	DigestSHA1:               "sha1",
	DigestSHA256:             "sha256",
	DigestSHA384:             "sha384",
	DigestSHA512:             "sha512",
	DigestRIPEMD160:          "ripemd160",
	RSASHA1:                  "rsa-sha1",
	RSASHA256:                "rsa-sha256",
	RSASHA384:                "rsa-sha384",
	RSASHA512:                "rsa-sha512",
	ECDSASHA1:                "ecdsa-sha1",
	ECDSASHA256:              "ecdsa-sha256",
	ECDSASHA384:              "ecdsa-sha384",
	ECDSASHA512:              "ecdsa-sha512",
	HMACSHA1:                 "hmac-sha1",
	HMACSHA256:               "hmac-sha256",
	HMACSHA384:               "hmac-sha384",
	HMACSHA512:               "hmac-sha512",
}

// AlgorithmName returns a short human-readable name for an algorithm
// identifier. Unknown identifiers are returned as-is.
func AlgorithmName(uri string) string {
	if name, ok := algorithmNames[uri]; ok {
		return name
	}
	return uri
}

// AlgorithmByName is the inverse of AlgorithmName. It accepts full
// identifiers unchanged.
func AlgorithmByName(name string) (string, bool) {
	for uri, n := range algorithmNames {
		if n == name || uri == name {
			return uri, true
		}
	}
	return "", false
}
