package canonical

import (
	"fmt"
	"strings"

	"github.com/antchfx/xpath"
	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// XPathFilter is the document subset selected by an XPath filter
// transform: every node n of the target subtree for which the predicate
// holds with n as context node, i.e.
//
//	(.//. | .//@* | .//namespace::*)[predicate]
//
// Namespace nodes and processing instructions are not addressable through
// the XPath engine; they follow the verdict of their owning element.
type XPathFilter struct {
	root     *etree.Element
	elements map[*etree.Element]bool
	attrs    map[*etree.Attr]bool
	tokens   map[etree.Token]bool
}

// NewXPathFilter evaluates query against every node of the subtree at node.
// namespaces binds the prefixes the query may use.
func NewXPathFilter(node *etree.Element, query string, namespaces map[string]string) (*XPathFilter, error) {
	if node == nil {
		return nil, domain.BadRequestError("xpath filter: nil node")
	}
	expr, err := compileXPath(query, namespaces)
	if err != nil {
		return nil, err
	}

	f := &XPathFilter{
		root:     node,
		elements: make(map[*etree.Element]bool),
		attrs:    make(map[*etree.Attr]bool),
		tokens:   make(map[etree.Token]bool),
	}
	top := topmost(node)
	pos := 0
	var visit func(el *etree.Element) error
	visit = func(el *etree.Element) error {
		pos++
		ok, err := evaluate(expr, &navigator{root: top, cur: el, attr: -1}, pos)
		if err != nil {
			return err
		}
		f.elements[el] = ok
		for i := range el.Attr {
			if isNamespaceDecl(&el.Attr[i]) {
				continue
			}
			pos++
			ok, err := evaluate(expr, &navigator{root: top, cur: el, attr: i}, pos)
			if err != nil {
				return err
			}
			f.attrs[&el.Attr[i]] = ok
		}
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.Element:
				if err := visit(t); err != nil {
					return err
				}
			case *etree.CharData, *etree.Comment:
				if isDocument(el) {
					if _, isText := t.(*etree.CharData); isText {
						continue
					}
				}
				pos++
				ok, err := evaluate(expr, &navigator{root: top, cur: t, attr: -1}, pos)
				if err != nil {
					return err
				}
				f.tokens[t] = ok
			case *etree.ProcInst:
				f.tokens[t] = f.elements[el]
			}
		}
		return nil
	}
	if err := visit(node); err != nil {
		return nil, err
	}
	return f, nil
}

// Element implements NodeFilter.
func (f *XPathFilter) Element(el *etree.Element) bool { return f.elements[el] }

// Attr implements NodeFilter.
func (f *XPathFilter) Attr(_ *etree.Element, attr *etree.Attr) bool { return f.attrs[attr] }

// Namespace implements NodeFilter.
func (f *XPathFilter) Namespace(el *etree.Element, _ string) bool { return f.elements[el] }

// Token implements NodeFilter.
func (f *XPathFilter) Token(tok etree.Token) bool { return f.tokens[tok] }

var _ NodeFilter = (*XPathFilter)(nil)

func compileXPath(query string, namespaces map[string]string) (expr *xpath.Expr, err error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.BadRequestError("xpath filter: empty query")
	}
	ns := make(map[string]string, len(namespaces))
	for k, v := range namespaces {
		if k != "xml" {
			ns[k] = v
		}
	}
	defer func() {
		if r := recover(); r != nil {
			expr, err = nil, domain.BadRequestError(fmt.Sprintf("xpath filter: compile %q: %v", query, r))
		}
	}()
	expr, err = xpath.CompileWithNS(query, ns)
	if err != nil {
		return nil, domain.BadRequestError(fmt.Sprintf("xpath filter: compile %q: %v", query, err))
	}
	return expr, nil
}

// evaluate applies the predicate with nav as context node. A numeric
// result selects the node at that position, as in an XPath predicate.
func evaluate(expr *xpath.Expr, nav *navigator, position int) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, domain.BadRequestError(fmt.Sprintf("xpath filter: evaluate %q: %v", expr.String(), r))
		}
	}()
	switch v := expr.Evaluate(nav).(type) {
	case bool:
		return v, nil
	case float64:
		return v == float64(position), nil
	case string:
		return v != "", nil
	case *xpath.NodeIterator:
		return v.MoveNext(), nil
	default:
		return false, nil
	}
}

func topmost(el *etree.Element) *etree.Element {
	for el.Parent() != nil {
		el = el.Parent()
	}
	return el
}

// navigator implements xpath.NodeNavigator over an etree tree. Namespace
// declarations are not exposed as attributes and processing instructions
// are skipped.
type navigator struct {
	root *etree.Element
	cur  etree.Token
	attr int
}

var _ xpath.NodeNavigator = (*navigator)(nil)

func (n *navigator) element() (*etree.Element, bool) {
	el, ok := n.cur.(*etree.Element)
	return el, ok
}

func (n *navigator) NodeType() xpath.NodeType {
	if n.attr >= 0 {
		return xpath.AttributeNode
	}
	switch t := n.cur.(type) {
	case *etree.Element:
		if t == n.root && isDocument(t) {
			return xpath.RootNode
		}
		return xpath.ElementNode
	case *etree.CharData:
		return xpath.TextNode
	case *etree.Comment:
		return xpath.CommentNode
	}
	return xpath.TextNode
}

func (n *navigator) LocalName() string {
	el, ok := n.element()
	if !ok {
		return ""
	}
	if n.attr >= 0 {
		return el.Attr[n.attr].Key
	}
	return el.Tag
}

func (n *navigator) Prefix() string {
	el, ok := n.element()
	if !ok {
		return ""
	}
	if n.attr >= 0 {
		return el.Attr[n.attr].Space
	}
	return el.Space
}

// NamespaceURL lets prefixed name tests match by namespace rather than by
// the literal prefix.
func (n *navigator) NamespaceURL() string {
	el, ok := n.element()
	if !ok {
		return ""
	}
	if n.attr >= 0 {
		space := el.Attr[n.attr].Space
		if space == "" {
			return ""
		}
		uri, _ := LookupNamespace(el, space)
		return uri
	}
	uri, _ := LookupNamespace(el, el.Space)
	return uri
}

func (n *navigator) Value() string {
	switch t := n.cur.(type) {
	case *etree.Element:
		if n.attr >= 0 {
			return t.Attr[n.attr].Value
		}
		var sb strings.Builder
		stringValue(t, &sb)
		return sb.String()
	case *etree.CharData:
		return t.Data
	case *etree.Comment:
		return t.Data
	}
	return ""
}

func stringValue(el *etree.Element, sb *strings.Builder) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			stringValue(t, sb)
		}
	}
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() {
	n.cur = n.root
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}
	if n.cur == etree.Token(n.root) {
		return false
	}
	p := n.cur.Parent()
	if p == nil {
		return false
	}
	n.cur = p
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	el, ok := n.element()
	if !ok {
		return false
	}
	for i := n.attr + 1; i < len(el.Attr); i++ {
		if !isNamespaceDecl(&el.Attr[i]) {
			n.attr = i
			return true
		}
	}
	return false
}

func (n *navigator) MoveToChild() bool {
	if n.attr >= 0 {
		return false
	}
	el, ok := n.element()
	if !ok {
		return false
	}
	for _, tok := range el.Child {
		if navigable(el, tok) {
			n.cur = tok
			return true
		}
	}
	return false
}

func (n *navigator) MoveToFirst() bool {
	if n.attr >= 0 || n.cur == etree.Token(n.root) {
		return false
	}
	p := n.cur.Parent()
	if p == nil {
		return false
	}
	for _, tok := range p.Child {
		if navigable(p, tok) {
			n.cur = tok
			return true
		}
	}
	return false
}

func (n *navigator) MoveToNext() bool {
	return n.moveSibling(1)
}

func (n *navigator) MoveToPrevious() bool {
	return n.moveSibling(-1)
}

func (n *navigator) moveSibling(step int) bool {
	if n.attr >= 0 || n.cur == etree.Token(n.root) {
		return false
	}
	p := n.cur.Parent()
	if p == nil {
		return false
	}
	for i := n.cur.Index() + step; i >= 0 && i < len(p.Child); i += step {
		if navigable(p, p.Child[i]) {
			n.cur = p.Child[i]
			return true
		}
	}
	return false
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.root != n.root {
		return false
	}
	*n = *o
	return true
}

// navigable reports whether tok is visible to XPath as a child of parent.
func navigable(parent *etree.Element, tok etree.Token) bool {
	switch tok.(type) {
	case *etree.Element, *etree.Comment:
		return true
	case *etree.CharData:
		return !isDocument(parent)
	default:
		return false
	}
}
