package dsig

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
)

// applyTransforms turns a resolved target into the octets that are
// digested. The method defaults to inclusive C14N without comments; later
// canonicalization transforms replace earlier ones, and includeComments
// false downgrades them to their without-comments variant. Raw targets
// pass through unchanged.
//
// The context's own Signature element is removed from any target that
// contains it, which is what the enveloped-signature transform asks for.
func (c *Context) applyTransforms(target domain.ResolvedTarget, transforms []domain.Transform, includeComments bool) ([]byte, error) {
	if !target.IsNode() {
		return target.Raw, nil
	}

	method := domain.C14N
	var prefixList []string
	var xpathFilter *domain.XPathFilterTransform
	for _, t := range transforms {
		switch t := t.(type) {
		case domain.CanonicalizationTransform:
			mode := t.Mode()
			if !includeComments {
				mode.WithComments = false
			}
			method = mode.Method()
			if t.Exclusive && len(t.PrefixList) > 0 {
				prefixList = t.PrefixList
			}
		case domain.XPathFilterTransform:
			xpathFilter = &t
		case domain.EnvelopedSignatureTransform, domain.UnknownTransform:
		}
	}

	opts := canonical.Options{InclusivePrefixes: prefixList}
	if !contains(c.sig, target.Node) {
		opts.Exclude = c.sig
	}
	if xpathFilter != nil {
		filter, err := canonical.NewXPathFilter(target.Node, xpathFilter.Query, xpathFilter.Namespaces)
		if err != nil {
			return nil, err
		}
		opts.Filter = filter
	}
	return canonical.Canonicalize(target.Node, method, opts)
}

// writeTransforms appends a Transforms element describing transforms to
// ref. Nothing is written for an empty chain.
func (c *Context) writeTransforms(ref *etree.Element, transforms []domain.Transform) {
	if len(transforms) == 0 {
		return
	}
	container := c.createElement("Transforms", "")
	ref.AddChild(container)

	for _, t := range transforms {
		el := c.createElement("Transform", "")
		el.CreateAttr("Algorithm", t.Algorithm())
		container.AddChild(el)

		switch t := t.(type) {
		case domain.CanonicalizationTransform:
			if t.Exclusive && len(t.PrefixList) > 0 {
				ns := el.CreateElement("ec:InclusiveNamespaces")
				ns.CreateAttr("xmlns:ec", domain.ExclusiveC14N)
				ns.CreateAttr("PrefixList", strings.Join(t.PrefixList, " "))
			}
		case domain.XPathFilterTransform:
			xp := c.createElement("XPath", t.Query)
			for _, prefix := range sortedKeys(t.Namespaces) {
				if prefix == "" || prefix == "xml" {
					continue
				}
				xp.CreateAttr("xmlns:"+prefix, t.Namespaces[prefix])
			}
			el.AddChild(xp)
		}
	}
}

// parseTransforms reads the Transform children of ref in order.
// Identifiers this package does not implement are kept as
// UnknownTransform.
func parseTransforms(ref *etree.Element) []domain.Transform {
	container := childElement(ref, "Transforms")
	if container == nil {
		return nil
	}

	var out []domain.Transform
	for _, el := range childElements(container, "Transform") {
		t := domain.TransformFor(el.SelectAttrValue("Algorithm", ""))
		switch tt := t.(type) {
		case domain.CanonicalizationTransform:
			if tt.Exclusive {
				if ns := childByLocalName(el, "InclusiveNamespaces"); ns != nil {
					tt.PrefixList = domain.ParsePrefixList(ns.SelectAttrValue("PrefixList", ""))
				}
			}
			t = tt
		case domain.XPathFilterTransform:
			if xp := childByLocalName(el, "XPath"); xp != nil {
				tt.Query = xp.Text()
				tt.Namespaces = canonical.InScopeNamespaces(xp)
				delete(tt.Namespaces, "")
			}
			t = tt
		}
		out = append(out, t)
	}
	return out
}

// childByLocalName matches on local name only.
func childByLocalName(parent *etree.Element, local string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == local {
			return child
		}
	}
	return nil
}
