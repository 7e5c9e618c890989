package dsig

import (
	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/domain"
)

// AddObject appends an Object element carrying data. data is either an
// *etree.Element, which is deep-copied, or text. mimeType and encoding are
// written only when non-empty.
func (c *Context) AddObject(data any, mimeType, encoding string) (*etree.Element, error) {
	obj := c.createElement("Object", "")
	if mimeType != "" {
		obj.CreateAttr("MimeType", mimeType)
	}
	if encoding != "" {
		obj.CreateAttr("Encoding", encoding)
	}

	switch d := data.(type) {
	case *etree.Element:
		if d == nil {
			return nil, domain.BadRequestError("object data: nil element")
		}
		obj.AddChild(d.Copy())
	case string:
		obj.SetText(d)
	case []byte:
		obj.SetText(string(d))
	default:
		return nil, domain.BadRequestError("object data must be an element, string or []byte")
	}

	c.sig.AddChild(obj)
	c.invalidate()
	return obj, nil
}

// InsertSignature moves the Signature element into parent, before the
// child before, or as the last child when before is nil. It returns the
// Signature element.
func (c *Context) InsertSignature(parent, before *etree.Element) (*etree.Element, error) {
	if parent == nil || parent.Tag == "" {
		return nil, domain.ErrInvalidParentNode
	}
	if before != nil && before.Parent() != parent {
		return nil, domain.ErrInvalidParentNode.Withf("insertion point is not a child of %s", parent.FullTag())
	}
	if contains(c.sig, parent) {
		return nil, domain.ErrInvalidParentNode.Withf("cannot insert the signature into itself")
	}

	c.detach()
	if before == nil {
		parent.AddChild(c.sig)
	} else {
		parent.InsertChildAt(before.Index(), c.sig)
	}
	c.invalidate()
	return c.sig, nil
}

// AppendSignature moves the Signature element into parent as its last
// child, or as its first child when insertBefore is set.
func (c *Context) AppendSignature(parent *etree.Element, insertBefore bool) (*etree.Element, error) {
	if parent == nil || parent.Tag == "" {
		return nil, domain.ErrInvalidParentNode
	}
	if !insertBefore || len(parent.Child) == 0 {
		return c.InsertSignature(parent, nil)
	}
	if contains(c.sig, parent) {
		return nil, domain.ErrInvalidParentNode.Withf("cannot insert the signature into itself")
	}

	c.detach()
	parent.InsertChildAt(0, c.sig)
	c.invalidate()
	return c.sig, nil
}

// detach removes the Signature element from its current parent. The
// namespace binding for the context prefix is copied onto the element
// first so the subtree stays self-contained.
func (c *Context) detach() {
	p := c.sig.Parent()
	if p == nil {
		return
	}
	c.ensureNamespaceDecl()
	p.RemoveChild(c.sig)
}

func (c *Context) ensureNamespaceDecl() {
	name := "xmlns"
	if c.prefix != "" {
		name = "xmlns:" + c.prefix
	}
	if c.sig.SelectAttr(name) == nil {
		c.sig.CreateAttr(name, domain.Namespace)
	}
}

// keyInfo returns the KeyInfo child of parent, creating it immediately
// before the first Object, or at the end, when absent.
func keyInfo(parent *etree.Element, create func(string, string) *etree.Element) *etree.Element {
	if ki := childElement(parent, "KeyInfo"); ki != nil {
		return ki
	}
	ki := create("KeyInfo", "")
	if obj := childElement(parent, "Object"); obj != nil {
		parent.InsertChildAt(obj.Index(), ki)
	} else {
		parent.AddChild(ki)
	}
	return ki
}
