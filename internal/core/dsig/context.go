// Package dsig builds, signs, locates and verifies XML-DSig Signature
// elements over etree trees.
//
// A Context owns one Signature element. Creating a signature:
//
//	ctx := dsig.New()
//	ctx.SetCanonicalMethod(domain.ExclusiveC14N)
//	ctx.AddReference(&doc.Element, domain.DigestSHA256, transforms)
//	ctx.Sign(key, doc.Root())
//
// Verifying one:
//
//	ctx, err := dsig.Locate(&doc.Element)
//	ctx.CanonicalizeSignedInfo()
//	ctx.ValidateReferences(context.Background())
//	ok, err := ctx.Verify(key)
//
// A Context is not safe for concurrent use.
package dsig

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
)

// State is the lifecycle position of a Context.
type State int

// Creation flow: Empty, SignedInfoBuilt, Signed.
// Verification flow: Located, InfoCanonicalized, ReferencesValidated, Verified.
const (
	StateEmpty State = iota
	StateSignedInfoBuilt
	StateSigned
	StateLocated
	StateInfoCanonicalized
	StateReferencesValidated
	StateVerified
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSignedInfoBuilt:
		return "signed_info_built"
	case StateSigned:
		return "signed"
	case StateLocated:
		return "located"
	case StateInfoCanonicalized:
		return "info_canonicalized"
	case StateReferencesValidated:
		return "references_validated"
	case StateVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Context is a Signature element together with the state needed to build
// or verify it.
type Context struct {
	sig             *etree.Element
	prefix          string
	canonicalMethod string

	// signedInfo caches the canonical SignedInfo bytes.
	signedInfo []byte
	validated  domain.ValidatedNodes
	state      State

	opts   contextOptions
	logger *zap.Logger
}

// New creates a Context holding an empty signature skeleton in its own
// document:
//
//	<ds:Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#">
//	  <ds:SignedInfo><ds:SignatureMethod/></ds:SignedInfo>
//	</ds:Signature>
func New(opts ...Option) *Context {
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{prefix: o.prefix, opts: o, logger: o.logger, state: StateEmpty}

	doc := etree.NewDocument()
	sig := c.createElement("Signature", "")
	if o.prefix == "" {
		sig.CreateAttr("xmlns", domain.Namespace)
	} else {
		sig.CreateAttr("xmlns:"+o.prefix, domain.Namespace)
	}
	doc.AddChild(sig)

	signedInfo := c.createElement("SignedInfo", "")
	signedInfo.AddChild(c.createElement("SignatureMethod", ""))
	sig.AddChild(signedInfo)

	c.sig = sig
	return c
}

// Locate returns a Context for the first Signature element in the
// XML-DSig namespace at or below node. node may be an element or a
// document container (&doc.Element).
func Locate(node *etree.Element, opts ...Option) (*Context, error) {
	if node == nil {
		return nil, domain.ErrSignatureNotFound
	}
	sig := findFirst(node, "Signature")
	if sig == nil {
		return nil, domain.ErrSignatureNotFound
	}

	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{sig: sig, prefix: sig.Space, opts: o, logger: o.logger, state: StateLocated}
	c.logger.Debug("signature located", zap.String("path", sig.GetPath()))
	return c, nil
}

// LocateDocument is Locate over a whole document.
func LocateDocument(doc *etree.Document, opts ...Option) (*Context, error) {
	if doc == nil {
		return nil, domain.ErrSignatureNotFound
	}
	return Locate(&doc.Element, opts...)
}

// Element returns the Signature element. The handle allows edits, so the
// cached canonical SignedInfo is dropped and Verify canonicalizes again.
func (c *Context) Element() *etree.Element {
	c.invalidate()
	return c.sig
}

// State returns the lifecycle state.
func (c *Context) State() State { return c.state }

// SignedInfo returns the SignedInfo element. Like Element it drops the
// cached canonical SignedInfo.
func (c *Context) SignedInfo() (*etree.Element, error) {
	si, err := c.signedInfoElement()
	if err != nil {
		return nil, err
	}
	c.invalidate()
	return si, nil
}

func (c *Context) signedInfoElement() (*etree.Element, error) {
	si := childElement(c.sig, "SignedInfo")
	if si == nil {
		return nil, domain.ErrSignedInfoNotFound
	}
	return si, nil
}

// CanonicalMethod returns the configured canonicalization method, or the
// one recorded in SignedInfo for a located signature.
func (c *Context) CanonicalMethod() string {
	if c.canonicalMethod != "" {
		return c.canonicalMethod
	}
	if si := childElement(c.sig, "SignedInfo"); si != nil {
		if cm := childElement(si, "CanonicalizationMethod"); cm != nil {
			return cm.SelectAttrValue("Algorithm", "")
		}
	}
	return ""
}

// SignatureMethod returns the SignatureMethod algorithm, or "".
func (c *Context) SignatureMethod() string {
	if si := childElement(c.sig, "SignedInfo"); si != nil {
		if sm := childElement(si, "SignatureMethod"); sm != nil {
			return sm.SelectAttrValue("Algorithm", "")
		}
	}
	return ""
}

// ValidatedNodes returns the nodes covered by the last successful
// ValidateReferences call, or nil.
func (c *Context) ValidatedNodes() domain.ValidatedNodes { return c.validated }

// invalidate drops cached SignedInfo bytes after a structural edit.
func (c *Context) invalidate() {
	c.signedInfo = nil
}

// buildingState moves a context out of Empty once SignedInfo has content.
func (c *Context) buildingState() {
	if c.state == StateEmpty {
		c.state = StateSignedInfoBuilt
	}
}

// createElement creates a detached element in the signature namespace
// with the context's prefix.
func (c *Context) createElement(local, text string) *etree.Element {
	el := etree.NewElement(qualifiedName(c.prefix, local))
	if text != "" {
		el.SetText(text)
	}
	return el
}

func qualifiedName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// isSignatureElement reports whether el is local in the XML-DSig
// namespace, resolved through its in-scope declarations.
func isSignatureElement(el *etree.Element, local string) bool {
	if el.Tag != local {
		return false
	}
	uri, ok := canonical.LookupNamespace(el, el.Space)
	return ok && uri == domain.Namespace
}

// childElement returns the first child of parent that is local in the
// XML-DSig namespace.
func childElement(parent *etree.Element, local string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if isSignatureElement(child, local) {
			return child
		}
	}
	return nil
}

// childElements returns every such child in document order.
func childElements(parent *etree.Element, local string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if isSignatureElement(child, local) {
			out = append(out, child)
		}
	}
	return out
}

// findFirst returns the first descendant-or-self of node that is local in
// the XML-DSig namespace, in document order.
func findFirst(node *etree.Element, local string) *etree.Element {
	if node.Tag != "" && isSignatureElement(node, local) {
		return node
	}
	for _, child := range node.ChildElements() {
		if found := findFirst(child, local); found != nil {
			return found
		}
	}
	return nil
}

// topmost returns the root of el's tree: the document container when el
// belongs to a document.
func topmost(el *etree.Element) *etree.Element {
	for el.Parent() != nil {
		el = el.Parent()
	}
	return el
}

// contains reports whether el is ancestor or one of its descendants.
func contains(ancestor, el *etree.Element) bool {
	for e := el; e != nil; e = e.Parent() {
		if e == ancestor {
			return true
		}
	}
	return false
}
