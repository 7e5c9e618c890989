package canonical

import "github.com/beevik/etree"

// NodeFilter selects the document subset to canonicalize. An element
// rejected by Element is not written, but its children are still visited
// and decided individually.
type NodeFilter interface {
	Element(el *etree.Element) bool
	Attr(el *etree.Element, attr *etree.Attr) bool
	// Namespace decides the namespace node for prefix on el. The empty
	// prefix is the default namespace.
	Namespace(el *etree.Element, prefix string) bool
	// Token decides character data, comments and processing instructions.
	Token(tok etree.Token) bool
}

// And returns a filter that accepts a node only when every filter accepts
// it. nil filters are ignored; the result is nil when no filter remains.
func And(filters ...NodeFilter) NodeFilter {
	var out andFilter
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

type andFilter []NodeFilter

func (a andFilter) Element(el *etree.Element) bool {
	for _, f := range a {
		if !f.Element(el) {
			return false
		}
	}
	return true
}

func (a andFilter) Attr(el *etree.Element, attr *etree.Attr) bool {
	for _, f := range a {
		if !f.Attr(el, attr) {
			return false
		}
	}
	return true
}

func (a andFilter) Namespace(el *etree.Element, prefix string) bool {
	for _, f := range a {
		if !f.Namespace(el, prefix) {
			return false
		}
	}
	return true
}

func (a andFilter) Token(tok etree.Token) bool {
	for _, f := range a {
		if !f.Token(tok) {
			return false
		}
	}
	return true
}
