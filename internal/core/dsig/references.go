package dsig

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
)

// idPrefix starts every generated identifier so that it is a valid NCName.
const idPrefix = "pfx"

func newID() string {
	return idPrefix + uuid.New().String()
}

// AddReference appends a Reference to target under SignedInfo and computes
// its digest immediately.
//
// target is an element or a document container (&doc.Element). Element
// targets are identified by an ID attribute which is generated unless
// opts.KeepExistingID is set and one already exists. Document targets carry
// no URI unless opts.ForceURI is set. With no transforms and a configured
// canonical method, a single transform with that method is recorded.
func (c *Context) AddReference(target *etree.Element, digestAlgorithm string, transforms []domain.Transform, opts ...domain.ReferenceOptions) error {
	signedInfo, err := c.signedInfoElement()
	if err != nil {
		return err
	}
	if target == nil {
		return domain.BadRequestError("reference target cannot be nil")
	}

	o := domain.DefaultReferenceOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.IDName == "" {
		o.IDName = "Id"
	}

	if len(transforms) == 0 && c.canonicalMethod != "" {
		transforms = []domain.Transform{domain.TransformFor(c.canonicalMethod)}
	}

	ref := c.createElement("Reference", "")
	var uri *string
	isDoc := target.Parent() == nil && target.Tag == ""
	switch {
	case !isDoc:
		id := ""
		if o.KeepExistingID {
			id = idAttrValue(target, o.PrefixNS, o.IDName)
		}
		if id == "" {
			id = newID()
			setIDAttr(target, o, id)
		}
		u := "#" + id
		uri = &u
	case o.ForceURI:
		u := ""
		uri = &u
	}
	if uri != nil {
		ref.CreateAttr("URI", *uri)
	}

	// Only "#" keeps comments on resolution and it is never written here.
	data, err := c.applyTransforms(domain.ResolvedTarget{Node: target}, transforms, false)
	if err != nil {
		return err
	}
	digest, err := Digest(digestAlgorithm, data)
	if err != nil {
		return err
	}

	c.writeTransforms(ref, transforms)
	dm := c.createElement("DigestMethod", "")
	dm.CreateAttr("Algorithm", digestAlgorithm)
	ref.AddChild(dm)
	ref.AddChild(c.createElement("DigestValue", digest))
	signedInfo.AddChild(ref)

	c.logger.Debug("reference added",
		zap.String("uri", derefURI(uri)),
		zap.String("digest_algorithm", domain.AlgorithmName(digestAlgorithm)),
		zap.Int("transforms", len(transforms)),
	)

	c.invalidate()
	c.buildingState()
	return nil
}

// AddReferences adds one reference per target with shared parameters.
func (c *Context) AddReferences(targets []*etree.Element, digestAlgorithm string, transforms []domain.Transform, opts ...domain.ReferenceOptions) error {
	for _, target := range targets {
		if err := c.AddReference(target, digestAlgorithm, transforms, opts...); err != nil {
			return err
		}
	}
	return nil
}

// References reads every Reference under SignedInfo.
func (c *Context) References() ([]domain.Reference, error) {
	els, err := c.referenceElements()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reference, 0, len(els))
	for _, el := range els {
		out = append(out, readReference(el))
	}
	return out, nil
}

// ReferenceIDs returns the fragment identifier of each reference, "" for
// references that do not use one.
func (c *Context) ReferenceIDs() ([]string, error) {
	refs, err := c.References()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID()
	}
	return ids, nil
}

// ValidateReferences re-digests every reference and compares it with the
// stored value. All references must validate: on the first failure the
// validated node list is cleared and ErrReferenceValidationFailed is
// returned.
func (c *Context) ValidateReferences(ctx context.Context) error {
	els, err := c.referenceElements()
	if err != nil {
		return err
	}

	c.validated = nil
	validated := make(domain.ValidatedNodes, 0, len(els))
	for _, el := range els {
		ref := readReference(el)
		node, err := c.validateReference(ctx, ref)
		if err != nil {
			c.opts.metrics.RecordReferenceValidation(false, 0)
			c.logger.Warn("reference validation failed",
				zap.String("uri", ref.URIString()),
				zap.Error(err),
			)
			if errors.Is(err, domain.ErrReferenceValidationFailed) {
				return err
			}
			return domain.ErrReferenceValidationFailed.With(ref.URIString(), err)
		}
		if node.Target.IsNode() {
			validated = append(validated, node)
		}
	}

	c.validated = validated
	if c.state < StateReferencesValidated {
		c.state = StateReferencesValidated
	}
	c.opts.metrics.RecordReferenceValidation(true, len(els))
	c.logger.Debug("references validated", zap.Int("count", len(els)))
	return nil
}

// validateReference resolves, transforms and digests one reference.
func (c *Context) validateReference(ctx context.Context, ref domain.Reference) (domain.ValidatedNode, error) {
	target, includeComments, id, err := c.resolveTarget(ctx, ref)
	if err != nil {
		return domain.ValidatedNode{}, err
	}
	data, err := c.applyTransforms(target, ref.Transforms, includeComments)
	if err != nil {
		return domain.ValidatedNode{}, err
	}
	digest, err := Digest(ref.DigestAlgorithm, data)
	if err != nil {
		return domain.ValidatedNode{}, err
	}
	if digest != ref.DigestValue {
		return domain.ValidatedNode{}, domain.ErrReferenceValidationFailed.Withf("digest mismatch for %q", ref.URIString())
	}
	return domain.ValidatedNode{ID: id, Target: target}, nil
}

// resolveTarget dereferences a reference URI:
//
//	absent, ""  owning document, without comments
//	"#id"       element carrying the identifier, without comments
//	"#"         owning document, with comments
//	other       external resource through the configured fetcher
func (c *Context) resolveTarget(ctx context.Context, ref domain.Reference) (domain.ResolvedTarget, bool, string, error) {
	root := topmost(c.sig)
	kind, id := domain.ClassifyURI(ref.URI)
	switch kind {
	case domain.URIAbsent:
		return domain.ResolvedTarget{Node: root}, false, "", nil
	case domain.URIFragment:
		el, err := c.findByID(root, id)
		if err != nil {
			return domain.ResolvedTarget{}, false, "", err
		}
		return domain.ResolvedTarget{Node: el}, false, id, nil
	case domain.URIDocument:
		return domain.ResolvedTarget{Node: root}, *ref.URI == "#", "", nil
	default:
		data, err := c.fetch(ctx, *ref.URI)
		if err != nil {
			return domain.ResolvedTarget{}, false, "", err
		}
		return domain.ResolvedTarget{Raw: data}, true, "", nil
	}
}

func (c *Context) fetch(ctx context.Context, uri string) ([]byte, error) {
	scheme := "file"
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
	}
	if c.opts.fetcher == nil {
		c.opts.metrics.RecordExternalFetch(scheme, false)
		return nil, domain.ErrExternalResourceFetchFailed.Withf("no resource fetcher configured for %q", uri)
	}
	data, err := c.opts.fetcher.Fetch(ctx, uri)
	c.opts.metrics.RecordExternalFetch(scheme, err == nil)
	if err != nil {
		if errors.Is(err, domain.ErrExternalResourceFetchFailed) {
			return nil, err
		}
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	return data, nil
}

// idAttribute is an identifier attribute resolved to its namespace.
type idAttribute struct {
	space string
	local string
}

// idAttributes returns the unprefixed Id attribute plus the configured
// ones.
func (c *Context) idAttributes() ([]idAttribute, error) {
	attrs := []idAttribute{{local: "Id"}}
	for _, name := range c.opts.idAttributes {
		prefix, local, found := strings.Cut(name, ":")
		if !found {
			attrs = append(attrs, idAttribute{local: name})
			continue
		}
		var space string
		switch {
		case prefix == "xml":
			space = domain.XMLNamespace
		case c.opts.idNamespaces[prefix] != "":
			space = c.opts.idNamespaces[prefix]
		default:
			return nil, domain.BadRequestError("id attribute " + name + ": prefix " + prefix + " is not bound")
		}
		attrs = append(attrs, idAttribute{space: space, local: local})
	}
	return attrs, nil
}

// findByID returns the single element under root carrying id in one of
// the identifier attributes.
func (c *Context) findByID(root *etree.Element, id string) (*etree.Element, error) {
	attrs, err := c.idAttributes()
	if err != nil {
		return nil, err
	}

	var matches []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag != "" && hasID(el, attrs, id) {
			matches = append(matches, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)

	switch len(matches) {
	case 0:
		return nil, domain.ErrReferenceTargetNotFound.Withf("#%s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, domain.ErrAmbiguousReference.Withf("#%s matches %d elements", id, len(matches))
	}
}

func hasID(el *etree.Element, attrs []idAttribute, id string) bool {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Value != id || a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		for _, want := range attrs {
			if a.Key == want.local && attrSpace(el, a) == want.space {
				return true
			}
		}
	}
	return false
}

// attrSpace resolves the namespace URI of an attribute. Unprefixed
// attributes are in no namespace.
func attrSpace(el *etree.Element, a *etree.Attr) string {
	switch a.Space {
	case "":
		return ""
	case "xml":
		return domain.XMLNamespace
	default:
		uri, _ := canonical.LookupNamespace(el, a.Space)
		return uri
	}
}

// idAttrValue reads the identifier attribute of a reference target.
func idAttrValue(el *etree.Element, space, local string) string {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == local && attrSpace(el, a) == space {
			return a.Value
		}
	}
	return ""
}

// setIDAttr writes the identifier, declaring the prefix when the
// attribute is namespaced and the binding is not yet in scope.
func setIDAttr(el *etree.Element, o domain.ReferenceOptions, id string) {
	name := o.IDName
	if o.Prefix != "" {
		name = o.Prefix + ":" + o.IDName
		if o.PrefixNS != "" {
			if uri, ok := canonical.LookupNamespace(el, o.Prefix); !ok || uri != o.PrefixNS {
				el.CreateAttr("xmlns:"+o.Prefix, o.PrefixNS)
			}
		}
	}
	el.CreateAttr(name, id)
}

func (c *Context) referenceElements() ([]*etree.Element, error) {
	signedInfo, err := c.signedInfoElement()
	if err != nil {
		return nil, err
	}
	els := childElements(signedInfo, "Reference")
	if len(els) == 0 {
		return nil, domain.ErrNoReferencesFound
	}
	return els, nil
}

func readReference(el *etree.Element) domain.Reference {
	ref := domain.Reference{Transforms: parseTransforms(el)}
	if a := el.SelectAttr("URI"); a != nil {
		uri := a.Value
		ref.URI = &uri
	}
	if dm := childElement(el, "DigestMethod"); dm != nil {
		ref.DigestAlgorithm = dm.SelectAttrValue("Algorithm", "")
	}
	if dv := childElement(el, "DigestValue"); dv != nil {
		ref.DigestValue = strings.TrimSpace(dv.Text())
	}
	return ref
}

func derefURI(uri *string) string {
	if uri == nil {
		return ""
	}
	return *uri
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
