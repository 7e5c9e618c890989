package domain

import "net/url"

// Reference is the descriptor of a single ds:Reference element.
type Reference struct {
	// URI is nil when the element carries no URI attribute.
	URI             *string
	Transforms      []Transform
	DigestAlgorithm string
	DigestValue     string
}

// URIKind classifies a reference URI for target resolution.
type URIKind int

const (
	// URIAbsent means the Reference has no URI attribute.
	URIAbsent URIKind = iota
	// URIFragment is a same-document "#id" reference.
	URIFragment
	// URIDocument is "" or "#": the whole containing document. Only the
	// empty fragment "#" keeps comments.
	URIDocument
	// URIExternal has a non-empty path and names an external resource.
	URIExternal
)

// String returns a short name for the kind.
func (k URIKind) String() string {
	switch k {
	case URIAbsent:
		return "absent"
	case URIFragment:
		return "fragment"
	case URIDocument:
		return "document"
	case URIExternal:
		return "external"
	default:
		return "unknown"
	}
}

// ClassifyURI returns how a reference URI resolves and, for fragment
// references, the identifier it names. A URI that does not parse but has
// no path-like content is treated as external so that it fails closed.
func ClassifyURI(uri *string) (URIKind, string) {
	if uri == nil {
		return URIAbsent, ""
	}
	if *uri == "" || *uri == "#" {
		return URIDocument, ""
	}
	u, err := url.Parse(*uri)
	if err != nil {
		return URIExternal, ""
	}
	if u.Scheme == "" && u.Host == "" && u.Path == "" && u.Opaque == "" {
		if u.Fragment == "" {
			return URIDocument, ""
		}
		return URIFragment, u.Fragment
	}
	return URIExternal, ""
}

// Kind classifies the reference URI.
func (r Reference) Kind() URIKind {
	kind, _ := ClassifyURI(r.URI)
	return kind
}

// ID returns the fragment identifier of a same-document reference, or "".
func (r Reference) ID() string {
	_, id := ClassifyURI(r.URI)
	return id
}

// URIString returns the URI or "" when absent.
func (r Reference) URIString() string {
	if r.URI == nil {
		return ""
	}
	return *r.URI
}

// ReferenceOptions controls how AddReference identifies an element target.
// The zero value is the default: identifier attribute "Id", a fresh
// identifier on every call and no URI for document targets.
type ReferenceOptions struct {
	// Prefix and PrefixNS qualify the identifier attribute. When PrefixNS
	// is set the attribute is written as Prefix:IDName with a matching
	// namespace declaration.
	Prefix   string
	PrefixNS string
	// IDName is the identifier attribute's local name, "Id" when empty.
	IDName string
	// KeepExistingID reuses an identifier already present on the target
	// instead of replacing it with a fresh one.
	KeepExistingID bool
	// ForceURI writes URI="" for document targets instead of omitting it.
	ForceURI bool
}

// DefaultReferenceOptions returns {IDName: "Id"}.
func DefaultReferenceOptions() ReferenceOptions {
	return ReferenceOptions{IDName: "Id"}
}

// CertificateOptions controls certificate embedding.
type CertificateOptions struct {
	// IssuerSerial emits an X509IssuerSerial before each certificate whose
	// issuer and serial number can be parsed.
	IssuerSerial bool
}

// DefaultCertificateOptions returns the zero value.
func DefaultCertificateOptions() CertificateOptions {
	return CertificateOptions{}
}
