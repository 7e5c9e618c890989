package canonical

import (
	"strings"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// Canonicalizer binds a canonicalization method and prefix list. It
// satisfies goxmldsig's Canonicalizer so the same serialization can drive
// a goxmldsig SigningContext.
type Canonicalizer struct {
	method     string
	prefixList []string
}

// NewCanonicalizer validates method and returns a Canonicalizer for it.
func NewCanonicalizer(method string, prefixList ...string) (*Canonicalizer, error) {
	if _, err := domain.ParseCanonicalMethod(method); err != nil {
		return nil, err
	}
	return &Canonicalizer{method: method, prefixList: prefixList}, nil
}

// Canonicalize serializes el.
func (c *Canonicalizer) Canonicalize(el *etree.Element) ([]byte, error) {
	return Canonicalize(el, c.method, Options{InclusivePrefixes: c.prefixList})
}

// Algorithm returns the method identifier.
func (c *Canonicalizer) Algorithm() dsig.AlgorithmID {
	return dsig.AlgorithmID(c.method)
}

// PrefixList returns the InclusiveNamespaces prefix list as an attribute
// value.
func (c *Canonicalizer) PrefixList() string {
	return strings.Join(c.prefixList, " ")
}

var _ dsig.Canonicalizer = (*Canonicalizer)(nil)
