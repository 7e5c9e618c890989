package domain

import "strings"

// Transform is one step of a reference's transform chain. The concrete
// types are CanonicalizationTransform, XPathFilterTransform,
// EnvelopedSignatureTransform and UnknownTransform.
type Transform interface {
	Algorithm() string
	transform()
}

// CanonicalizationTransform selects the canonicalization mode used to
// serialize the reference target.
type CanonicalizationTransform struct {
	Exclusive    bool
	WithComments bool
	// PrefixList is the InclusiveNamespaces prefix list. Only meaningful
	// for exclusive canonicalization. "#default" names the default namespace.
	PrefixList []string
}

// Algorithm returns the transform identifier.
func (t CanonicalizationTransform) Algorithm() string {
	return CanonicalMode{Exclusive: t.Exclusive, WithComments: t.WithComments}.Method()
}

// Mode returns the canonicalization flags of the transform.
func (t CanonicalizationTransform) Mode() CanonicalMode {
	return CanonicalMode{Exclusive: t.Exclusive, WithComments: t.WithComments}
}

func (CanonicalizationTransform) transform() {}

// XPathFilterTransform restricts the node-set to nodes for which Query
// evaluates to true. Namespaces holds the prefix bindings in scope for the
// query; the xml prefix is never included.
type XPathFilterTransform struct {
	Query      string
	Namespaces map[string]string
}

// Algorithm returns the transform identifier.
func (XPathFilterTransform) Algorithm() string { return TransformXPath }

func (XPathFilterTransform) transform() {}

// EnvelopedSignatureTransform removes the enclosing Signature element from
// the node-set.
type EnvelopedSignatureTransform struct{}

// Algorithm returns the transform identifier.
func (EnvelopedSignatureTransform) Algorithm() string { return TransformEnveloped }

func (EnvelopedSignatureTransform) transform() {}

// UnknownTransform carries an identifier this engine does not process.
// It is kept so that foreign signatures round-trip unchanged.
type UnknownTransform struct {
	URI string
}

// Algorithm returns the transform identifier.
func (t UnknownTransform) Algorithm() string { return t.URI }

func (UnknownTransform) transform() {}

// TransformFor returns the parameterless transform for an identifier.
// Canonicalization identifiers yield a CanonicalizationTransform with an
// empty prefix list and the XPath identifier an XPathFilterTransform with
// an empty query.
func TransformFor(algorithm string) Transform {
	if mode, err := ParseCanonicalMethod(algorithm); err == nil {
		return CanonicalizationTransform{Exclusive: mode.Exclusive, WithComments: mode.WithComments}
	}
	switch algorithm {
	case TransformEnveloped:
		return EnvelopedSignatureTransform{}
	case TransformXPath:
		return XPathFilterTransform{}
	default:
		return UnknownTransform{URI: algorithm}
	}
}

// TransformsFor maps a list of identifiers with TransformFor.
func TransformsFor(algorithms ...string) []Transform {
	out := make([]Transform, 0, len(algorithms))
	for _, alg := range algorithms {
		out = append(out, TransformFor(alg))
	}
	return out
}

// ParsePrefixList splits a whitespace separated PrefixList attribute value.
func ParsePrefixList(value string) []string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
