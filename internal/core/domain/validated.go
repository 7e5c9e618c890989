package domain

import "github.com/beevik/etree"

// ResolvedTarget is what a reference URI points at: a node of the tree or
// the bytes of an external resource. Exactly one field is set.
type ResolvedTarget struct {
	// Node is an element, or the document container for whole-document
	// references. Use IsDocument to tell them apart.
	Node *etree.Element
	// Raw holds the bytes of an external resource.
	Raw []byte
}

// IsNode reports whether the target is part of an XML tree.
func (t ResolvedTarget) IsNode() bool { return t.Node != nil }

// IsDocument reports whether the target is a whole document.
func (t ResolvedTarget) IsDocument() bool {
	return t.Node != nil && t.Node.Parent() == nil && t.Node.Tag == "" && t.Node.Space == ""
}

// ValidatedNode is one tree node covered by a valid reference. ID is the
// fragment identifier, or "" for whole-document references.
type ValidatedNode struct {
	ID     string
	Target ResolvedTarget
}

// ValidatedNodes lists the nodes covered by a fully validated signature in
// reference order.
type ValidatedNodes []ValidatedNode

// Lookup returns the node validated under id.
func (v ValidatedNodes) Lookup(id string) (*etree.Element, bool) {
	if id == "" {
		return nil, false
	}
	for _, n := range v {
		if n.ID == id {
			return n.Target.Node, true
		}
	}
	return nil, false
}

// IDs returns the non-empty identifiers in order.
func (v ValidatedNodes) IDs() []string {
	var ids []string
	for _, n := range v {
		if n.ID != "" {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
