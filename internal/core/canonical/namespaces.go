package canonical

import (
	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// scope maps in-scope prefixes to namespace URIs. The empty prefix is the
// default namespace.
type scope map[string]string

// with returns the scope inside el. The receiver is returned unchanged when
// el declares nothing.
func (sc scope) with(el *etree.Element) scope {
	var next scope
	for _, a := range el.Attr {
		prefix, ok := declaredPrefix(a)
		if !ok || prefix == "xml" {
			continue
		}
		if next == nil {
			next = make(scope, len(sc)+1)
			for k, v := range sc {
				next[k] = v
			}
		}
		if prefix != "" && a.Value == "" {
			delete(next, prefix)
			continue
		}
		next[prefix] = a.Value
	}
	if next == nil {
		return sc
	}
	return next
}

// attrNamespace resolves an attribute prefix. Unprefixed attributes are in
// no namespace.
func (sc scope) attrNamespace(prefix string) string {
	switch prefix {
	case "":
		return ""
	case "xml":
		return domain.XMLNamespace
	default:
		return sc[prefix]
	}
}

// ancestorScope returns the namespaces in scope at el's parent.
func ancestorScope(el *etree.Element) scope {
	var chain []*etree.Element
	for p := el.Parent(); p != nil && !isDocument(p); p = p.Parent() {
		chain = append(chain, p)
	}
	sc := scope{}
	for i := len(chain) - 1; i >= 0; i-- {
		sc = sc.with(chain[i])
	}
	return sc
}

// InScopeNamespaces returns the prefix bindings in scope at el, including
// those declared on el. The xml prefix is not included.
func InScopeNamespaces(el *etree.Element) map[string]string {
	sc := ancestorScope(el).with(el)
	out := make(map[string]string, len(sc))
	for k, v := range sc {
		out[k] = v
	}
	return out
}

// LookupNamespace resolves prefix at el.
func LookupNamespace(el *etree.Element, prefix string) (string, bool) {
	if prefix == "xml" {
		return domain.XMLNamespace, true
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if p, ok := declaredPrefix(a); ok && p == prefix {
				return a.Value, a.Value != "" || prefix == ""
			}
		}
	}
	return "", false
}

// rendered holds the namespace declarations written by output ancestors.
type rendered map[string]string

func (r rendered) with(decls []nsDecl) rendered {
	if len(decls) == 0 {
		return r
	}
	next := make(rendered, len(r)+len(decls))
	for k, v := range r {
		next[k] = v
	}
	for _, d := range decls {
		next[d.prefix] = d.uri
	}
	return next
}

func isNamespaceDecl(a *etree.Attr) bool {
	_, ok := declaredPrefix(*a)
	return ok
}

// declaredPrefix reports the prefix a declares when a is a namespace
// declaration.
func declaredPrefix(a etree.Attr) (string, bool) {
	switch {
	case a.Space == "" && a.Key == "xmlns":
		return "", true
	case a.Space == "xmlns":
		return a.Key, true
	default:
		return "", false
	}
}
