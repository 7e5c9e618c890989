// Package canonical implements Canonical XML 1.0 and Exclusive XML
// Canonicalization 1.0, with and without comments, over etree trees.
package canonical

import (
	"bytes"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// Options refines a canonicalization call.
type Options struct {
	// Filter restricts the output to a document subset. nil selects every
	// node of the target.
	Filter NodeFilter

	// InclusivePrefixes is the InclusiveNamespaces PrefixList used by
	// exclusive canonicalization. "#default" names the default namespace.
	InclusivePrefixes []string

	// Exclude omits an element and all of its descendants.
	Exclude *etree.Element
}

// Canonicalize serializes node under the canonicalization method.
//
// node is either an element or the document container (&doc.Element).
// When no filter is given and node is the document element, the whole
// document is canonicalized instead, unless a processing instruction, or a
// comment under a with-comments method, precedes it.
func Canonicalize(node *etree.Element, method string, opts Options) ([]byte, error) {
	mode, err := domain.ParseCanonicalMethod(method)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, domain.BadRequestError("canonicalize: nil node")
	}

	s := newSerializer(mode, opts)
	switch {
	case isDocument(node):
		s.document(node)
	case opts.Filter == nil && isDocumentElement(node) && !hasLeadingNode(node, mode.WithComments):
		s.document(node.Parent())
	default:
		s.apex(node)
	}
	return s.buf.Bytes(), nil
}

// CanonicalizeDocument serializes the whole document.
func CanonicalizeDocument(doc *etree.Document, method string, opts Options) ([]byte, error) {
	if doc == nil {
		return nil, domain.BadRequestError("canonicalize: nil document")
	}
	return Canonicalize(&doc.Element, method, opts)
}

// isDocument reports whether el is an etree document container.
func isDocument(el *etree.Element) bool {
	return el.Parent() == nil && el.Space == "" && el.Tag == ""
}

func isDocumentElement(el *etree.Element) bool {
	p := el.Parent()
	return p != nil && isDocument(p)
}

// hasLeadingNode reports whether a processing instruction, or a comment
// when comments are kept, precedes el among its siblings. The XML
// declaration is not a node and does not count.
func hasLeadingNode(el *etree.Element, withComments bool) bool {
	p := el.Parent()
	for i := el.Index() - 1; i >= 0; i-- {
		switch t := p.Child[i].(type) {
		case *etree.ProcInst:
			if t.Target != "xml" {
				return true
			}
		case *etree.Comment:
			if withComments {
				return true
			}
		}
	}
	return false
}

type serializer struct {
	buf       bytes.Buffer
	mode      domain.CanonicalMode
	filter    NodeFilter
	exclude   *etree.Element
	inclusive map[string]bool
}

func newSerializer(mode domain.CanonicalMode, opts Options) *serializer {
	s := &serializer{mode: mode, filter: opts.Filter, exclude: opts.Exclude}
	if mode.Exclusive && len(opts.InclusivePrefixes) > 0 {
		s.inclusive = make(map[string]bool, len(opts.InclusivePrefixes))
		for _, p := range opts.InclusivePrefixes {
			if p == "#default" {
				p = ""
			}
			s.inclusive[p] = true
		}
	}
	return s
}

// document writes the children of a document container. Nodes outside the
// document element are separated from it by a single line feed.
func (s *serializer) document(doc *etree.Element) {
	afterRoot := false
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			s.element(t, scope{}, rendered{}, nil)
			afterRoot = true
		case *etree.Comment:
			if !s.mode.WithComments || !s.includeToken(t) {
				continue
			}
			if afterRoot {
				s.buf.WriteByte('\n')
			}
			s.comment(t)
			if !afterRoot {
				s.buf.WriteByte('\n')
			}
		case *etree.ProcInst:
			if t.Target == "xml" || !s.includeToken(t) {
				continue
			}
			if afterRoot {
				s.buf.WriteByte('\n')
			}
			s.procInst(t)
			if !afterRoot {
				s.buf.WriteByte('\n')
			}
		}
	}
}

// apex writes a subtree rooted at an element that is not the whole
// document. Namespaces declared by its ancestors are in scope.
func (s *serializer) apex(el *etree.Element) {
	if s.exclude != nil && isWithin(el, s.exclude) {
		return
	}
	s.element(el, ancestorScope(el), rendered{}, nil)
}

func (s *serializer) element(el *etree.Element, parentScope scope, ctx rendered, outputAncestor *etree.Element) {
	if el == s.exclude {
		return
	}
	sc := parentScope.with(el)
	visible := s.filter == nil || s.filter.Element(el)

	childCtx := ctx
	childAncestor := outputAncestor
	if visible {
		decls := s.namespaces(el, sc, ctx)
		attrs := s.attributes(el, sc, outputAncestor)

		s.buf.WriteByte('<')
		s.buf.WriteString(qualifiedName(el.Space, el.Tag))
		for _, d := range decls {
			s.buf.WriteByte(' ')
			if d.prefix == "" {
				s.buf.WriteString("xmlns")
			} else {
				s.buf.WriteString("xmlns:")
				s.buf.WriteString(d.prefix)
			}
			s.buf.WriteString(`="`)
			s.buf.WriteString(attrEscaper.Replace(d.uri))
			s.buf.WriteByte('"')
		}
		for _, a := range attrs {
			s.buf.WriteByte(' ')
			s.buf.WriteString(a.name)
			s.buf.WriteString(`="`)
			s.buf.WriteString(attrEscaper.Replace(a.value))
			s.buf.WriteByte('"')
		}
		s.buf.WriteByte('>')

		childCtx = ctx.with(decls)
		childAncestor = el
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			s.element(t, sc, childCtx, childAncestor)
		case *etree.CharData:
			if s.includeToken(t) {
				s.buf.WriteString(textEscaper.Replace(t.Data))
			}
		case *etree.Comment:
			if s.mode.WithComments && s.includeToken(t) {
				s.comment(t)
			}
		case *etree.ProcInst:
			if s.includeToken(t) {
				s.procInst(t)
			}
		}
	}

	if visible {
		s.buf.WriteString("</")
		s.buf.WriteString(qualifiedName(el.Space, el.Tag))
		s.buf.WriteByte('>')
	}
}

func (s *serializer) includeToken(tok etree.Token) bool {
	return s.filter == nil || s.filter.Token(tok)
}

func (s *serializer) comment(c *etree.Comment) {
	s.buf.WriteString("<!--")
	s.buf.WriteString(c.Data)
	s.buf.WriteString("-->")
}

func (s *serializer) procInst(p *etree.ProcInst) {
	s.buf.WriteString("<?")
	s.buf.WriteString(p.Target)
	if p.Inst != "" {
		s.buf.WriteByte(' ')
		s.buf.WriteString(p.Inst)
	}
	s.buf.WriteString("?>")
}

type nsDecl struct {
	prefix string
	uri    string
}

// namespaces returns the namespace declarations el must render, sorted by
// prefix with the default namespace first.
func (s *serializer) namespaces(el *etree.Element, sc scope, ctx rendered) []nsDecl {
	var candidates []string
	if s.mode.Exclusive {
		used := map[string]bool{el.Space: true}
		for i := range el.Attr {
			a := &el.Attr[i]
			if isNamespaceDecl(a) || a.Space == "" || a.Space == "xml" {
				continue
			}
			if s.filter == nil || s.filter.Attr(el, a) {
				used[a.Space] = true
			}
		}
		for p := range s.inclusive {
			if _, ok := sc[p]; ok {
				used[p] = true
			}
		}
		for p := range used {
			candidates = append(candidates, p)
		}
	} else {
		candidates = append(candidates, "")
		for p := range sc {
			if p != "" {
				candidates = append(candidates, p)
			}
		}
	}
	sort.Strings(candidates)

	var decls []nsDecl
	for _, p := range candidates {
		uri := sc[p]
		if s.filter != nil && uri != "" && !s.filter.Namespace(el, p) {
			uri = ""
			if p != "" {
				continue
			}
		}
		prev, seen := ctx[p]
		if p == "" {
			if uri == "" {
				if prev != "" {
					decls = append(decls, nsDecl{prefix: "", uri: ""})
				}
				continue
			}
			if prev != uri {
				decls = append(decls, nsDecl{prefix: "", uri: uri})
			}
			continue
		}
		if uri == "" {
			continue
		}
		if !seen || prev != uri {
			decls = append(decls, nsDecl{prefix: p, uri: uri})
		}
	}
	return decls
}

type attribute struct {
	space string
	local string
	name  string
	value string
}

// attributes returns the attributes el must render, sorted by namespace
// URI then local name. Inclusive canonicalization also inherits xml:*
// attributes from ancestors that are not part of the output.
func (s *serializer) attributes(el *etree.Element, sc scope, outputAncestor *etree.Element) []attribute {
	var attrs []attribute
	present := map[string]bool{}
	for i := range el.Attr {
		a := &el.Attr[i]
		if isNamespaceDecl(a) {
			continue
		}
		if s.filter != nil && !s.filter.Attr(el, a) {
			continue
		}
		attrs = append(attrs, attribute{
			space: sc.attrNamespace(a.Space),
			local: a.Key,
			name:  qualifiedName(a.Space, a.Key),
			value: a.Value,
		})
		if a.Space == "xml" {
			present[a.Key] = true
		}
	}

	if !s.mode.Exclusive {
		for p := el.Parent(); p != nil && p != outputAncestor && !isDocument(p); p = p.Parent() {
			for _, a := range p.Attr {
				if a.Space != "xml" || present[a.Key] {
					continue
				}
				present[a.Key] = true
				attrs = append(attrs, attribute{
					space: domain.XMLNamespace,
					local: a.Key,
					name:  "xml:" + a.Key,
					value: a.Value,
				})
			}
		}
	}

	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].space != attrs[j].space {
			return attrs[i].space < attrs[j].space
		}
		return attrs[i].local < attrs[j].local
	})
	return attrs
}

func qualifiedName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// isWithin reports whether tok is a descendant of ancestor.
func isWithin(tok etree.Token, ancestor *etree.Element) bool {
	for p := tok.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)
