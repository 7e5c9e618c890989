package dsig

import (
	"encoding/base64"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// SetCanonicalMethod sets the method used to canonicalize SignedInfo and
// records it in a CanonicalizationMethod element, the first child of
// SignedInfo.
func (c *Context) SetCanonicalMethod(method string) error {
	if !domain.IsCanonicalMethod(method) {
		return domain.ErrInvalidCanonicalMethod.Withf("%q", method)
	}
	signedInfo, err := c.signedInfoElement()
	if err != nil {
		return err
	}

	c.canonicalMethod = method
	cm := childElement(signedInfo, "CanonicalizationMethod")
	if cm == nil {
		cm = c.createElement("CanonicalizationMethod", "")
		signedInfo.InsertChildAt(0, cm)
	}
	cm.CreateAttr("Algorithm", method)

	c.invalidate()
	c.buildingState()
	return nil
}

// CanonicalizeSignedInfo canonicalizes SignedInfo with the method named by
// its CanonicalizationMethod element and caches the result for Verify.
// Call it while the signature is at its final position in the document:
// inherited namespaces are part of the output.
func (c *Context) CanonicalizeSignedInfo() ([]byte, error) {
	signedInfo, err := c.signedInfoElement()
	if err != nil {
		return nil, err
	}
	method := domain.C14N
	if cm := childElement(signedInfo, "CanonicalizationMethod"); cm != nil {
		method = cm.SelectAttrValue("Algorithm", "")
	}

	data, err := canonicalizeSignedInfo(signedInfo, method)
	if err != nil {
		return nil, err
	}
	c.signedInfo = data
	if c.state == StateLocated {
		c.state = StateInfoCanonicalized
	}
	return data, nil
}

// canonicalizeSignedInfo serializes SignedInfo. An InclusiveNamespaces
// prefix list under CanonicalizationMethod is honoured.
func canonicalizeSignedInfo(signedInfo *etree.Element, method string) ([]byte, error) {
	var prefixes []string
	if cm := childElement(signedInfo, "CanonicalizationMethod"); cm != nil {
		if ns := childByLocalName(cm, "InclusiveNamespaces"); ns != nil {
			prefixes = domain.ParsePrefixList(ns.SelectAttrValue("PrefixList", ""))
		}
	}
	return canonical.Canonicalize(signedInfo, method, canonical.Options{InclusivePrefixes: prefixes})
}

// Sign computes the SignatureValue with key. When attachTo is non-nil the
// signature is first appended to it so canonicalization sees its final
// position. The SignatureMethod algorithm is taken from the key.
func (c *Context) Sign(key ports.Key, attachTo *etree.Element) error {
	if key == nil {
		return domain.ErrInvalidKey.Withf("nil key")
	}
	algorithm := key.Algorithm()

	if attachTo != nil {
		if _, err := c.AppendSignature(attachTo, false); err != nil {
			return err
		}
	}
	signedInfo, err := c.signedInfoElement()
	if err != nil {
		return err
	}
	sm := childElement(signedInfo, "SignatureMethod")
	if sm == nil {
		sm = c.createElement("SignatureMethod", "")
		if cm := childElement(signedInfo, "CanonicalizationMethod"); cm != nil {
			signedInfo.InsertChildAt(cm.Index()+1, sm)
		} else {
			signedInfo.InsertChildAt(0, sm)
		}
	}
	sm.CreateAttr("Algorithm", algorithm)

	method := c.canonicalMethod
	if method == "" {
		method = domain.C14N
	}
	data, err := canonicalizeSignedInfo(signedInfo, method)
	if err != nil {
		return err
	}
	raw, err := key.Sign(data)
	if err != nil {
		c.opts.metrics.RecordSign(algorithm, false)
		c.logger.Warn("signing failed", zap.String("algorithm", algorithm), zap.Error(err))
		return domain.ErrInvalidKey.With("sign", err)
	}

	value := base64.StdEncoding.EncodeToString(raw)
	if sv := childElement(c.sig, "SignatureValue"); sv != nil {
		sv.SetText(value)
	} else {
		c.sig.InsertChildAt(signedInfo.Index()+1, c.createElement("SignatureValue", value))
	}

	c.signedInfo = data
	c.state = StateSigned
	c.opts.metrics.RecordSign(algorithm, true)
	c.logger.Debug("signature created", zap.String("algorithm", domain.AlgorithmName(algorithm)))
	return nil
}

// LocateKey returns the SignatureMethod algorithm so the caller can select
// a matching key.
func (c *Context) LocateKey() (string, error) {
	alg := c.SignatureMethod()
	if alg == "" {
		return "", domain.ErrSignatureMethodNotFound
	}
	return alg, nil
}

// SignatureValue returns the decoded SignatureValue.
func (c *Context) SignatureValue() ([]byte, error) {
	sv := childElement(c.sig, "SignatureValue")
	if sv == nil {
		return nil, domain.ErrSignatureValueNotFound
	}
	text := strings.Join(strings.Fields(sv.Text()), "")
	if text == "" {
		return nil, domain.ErrSignatureValueNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, domain.ErrSignatureInvalid.With("decode SignatureValue", err)
	}
	return raw, nil
}

// Verify checks SignatureValue against the canonical SignedInfo with key.
// SignedInfo is canonicalized first when CanonicalizeSignedInfo has not
// been called. A mismatch is reported as (false, nil).
func (c *Context) Verify(key ports.Key) (bool, error) {
	if key == nil {
		return false, domain.ErrInvalidKey.Withf("nil key")
	}
	raw, err := c.SignatureValue()
	if err != nil {
		return false, err
	}
	algorithm := key.Algorithm()
	if declared := c.SignatureMethod(); declared != "" && declared != algorithm {
		c.opts.metrics.RecordVerify(algorithm, false)
		return false, domain.ErrUnsupportedSignatureMethod.Withf("signature uses %q, key provides %q", declared, algorithm)
	}

	if c.signedInfo == nil {
		if _, err := c.CanonicalizeSignedInfo(); err != nil {
			return false, err
		}
	}

	ok, err := key.Verify(c.signedInfo, raw)
	c.opts.metrics.RecordVerify(algorithm, ok && err == nil)
	if err != nil {
		return false, domain.SignatureError("verify", err)
	}
	if !ok {
		c.logger.Warn("signature value mismatch", zap.String("algorithm", domain.AlgorithmName(algorithm)))
		return false, nil
	}
	if c.state == StateReferencesValidated {
		c.state = StateVerified
	}
	c.logger.Debug("signature value verified", zap.String("algorithm", domain.AlgorithmName(algorithm)))
	return true, nil
}
