package dsig

import (
	"bufio"
	"bytes"
	"context"
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
)

// AddCertificates appends an X509Data element with one X509Certificate per
// certificate to the signature's KeyInfo, in input order. See
// AddCertificatesTo.
func (c *Context) AddCertificates(certs [][]byte, opts domain.CertificateOptions) error {
	if len(certs) == 0 {
		return domain.BadRequestError("no certificates to embed")
	}
	if err := addCertificates(c.sig, c.createElement, certs, opts); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Certificates parses the X509Certificate elements under KeyInfo in
// document order. A signature without KeyInfo yields no certificates.
func (c *Context) Certificates() ([]*x509.Certificate, error) {
	var out []*x509.Certificate
	for _, data := range childElements(childElement(c.sig, "KeyInfo"), "X509Data") {
		for _, el := range childElements(data, "X509Certificate") {
			der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(el.Text()), ""))
			if err != nil {
				return nil, domain.ErrInvalidKey.With("decode X509Certificate", err)
			}
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return nil, domain.ErrInvalidKey.With("parse X509Certificate", err)
			}
			out = append(out, cert)
		}
	}
	return out, nil
}

// AddCertificateURL fetches a certificate through the configured resource
// fetcher and embeds it.
func (c *Context) AddCertificateURL(ctx context.Context, uri string, opts domain.CertificateOptions) error {
	data, err := c.fetch(ctx, uri)
	if err != nil {
		return err
	}
	return c.AddCertificates([][]byte{data}, opts)
}

// AddCertificatesTo embeds certificates under parent's KeyInfo, creating
// KeyInfo before the first Object when it is absent.
//
// An input carrying certificate armor lines is split on them and may hold
// several certificates; any other input is one certificate, either base64
// text or DER. An input that yields no certificate fails the whole call
// before anything is written. With opts.IssuerSerial an X509IssuerSerial
// element precedes every certificate whose issuer and serial number can
// be read.
func AddCertificatesTo(parent *etree.Element, certs [][]byte, opts domain.CertificateOptions) error {
	if parent == nil || parent.Tag == "" {
		return domain.ErrInvalidParentNode
	}
	if len(certs) == 0 {
		return domain.BadRequestError("no certificates to embed")
	}
	prefix := domain.DefaultPrefix
	if uri, ok := canonical.LookupNamespace(parent, parent.Space); ok && uri == domain.Namespace {
		prefix = parent.Space
	}
	declare := false
	if uri, ok := canonical.LookupNamespace(parent, prefix); !ok || uri != domain.Namespace {
		declare = true
	}

	create := func(local, text string) *etree.Element {
		el := etree.NewElement(qualifiedName(prefix, local))
		if local == "KeyInfo" && declare {
			el.CreateAttr("xmlns:"+prefix, domain.Namespace)
		}
		if text != "" {
			el.SetText(text)
		}
		return el
	}
	return addCertificates(parent, create, certs, opts)
}

// pemArmor marks an input that is split with SplitPEMCertificates.
var pemArmor = []byte("-----BEGIN CERTIFICATE")

func addCertificates(parent *etree.Element, create func(string, string) *etree.Element, certs [][]byte, opts domain.CertificateOptions) error {
	var encoded []string
	for i, blob := range certs {
		if len(bytes.TrimSpace(blob)) == 0 {
			return domain.BadRequestError(fmt.Sprintf("certificate %d is empty", i))
		}
		if !bytes.Contains(blob, pemArmor) {
			encoded = append(encoded, opaqueCertificate(blob))
			continue
		}
		split := SplitPEMCertificates(blob)
		if len(split) == 0 {
			return domain.BadRequestError(fmt.Sprintf("certificate %d: no complete PEM certificate block", i))
		}
		encoded = append(encoded, split...)
	}

	ki := keyInfo(parent, create)
	data := create("X509Data", "")
	ki.AddChild(data)

	for _, cert := range encoded {
		if opts.IssuerSerial {
			if issuer, serial, ok := issuerSerial(cert); ok {
				is := create("X509IssuerSerial", "")
				is.AddChild(create("X509IssuerName", issuer))
				is.AddChild(create("X509SerialNumber", serial))
				data.AddChild(is)
			}
		}
		data.AddChild(create("X509Certificate", cert))
	}
	return nil
}

// SplitPEMCertificates returns the base64 body of every certificate block
// in data, with line breaks removed. Text outside the blocks is ignored.
func SplitPEMCertificates(data []byte) []string {
	var out []string
	var body strings.Builder
	inData := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		line := scanner.Text()
		if !inData {
			if strings.HasPrefix(line, "-----BEGIN CERTIFICATE") {
				inData = true
			}
			continue
		}
		if strings.HasPrefix(line, "-----END CERTIFICATE") {
			inData = false
			out = append(out, body.String())
			body.Reset()
			continue
		}
		body.WriteString(strings.TrimSpace(line))
	}
	return out
}

// opaqueCertificate returns a non-PEM certificate as base64 text. Input
// that already is base64 text is kept.
func opaqueCertificate(blob []byte) string {
	text := strings.Join(strings.Fields(string(blob)), "")
	if text != "" {
		if _, err := base64.StdEncoding.DecodeString(text); err == nil {
			return text
		}
	}
	return base64.StdEncoding.EncodeToString(blob)
}

// issuerSerial reads the issuer name and decimal serial number of a base64
// encoded certificate. The issuer is written most specific first, as
// key=value pairs joined by commas.
func issuerSerial(encoded string) (string, string, bool) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil || cert.SerialNumber == nil || len(cert.Issuer.Names) == 0 {
		return "", "", false
	}
	return IssuerName(cert), cert.SerialNumber.String(), true
}

// IssuerName returns the issuer distinguished name of cert with its
// attributes in reverse order.
func IssuerName(cert *x509.Certificate) string {
	parts := make([]string, 0, len(cert.Issuer.Names))
	for _, atv := range cert.Issuer.Names {
		parts = append(parts, attributeName(atv.Type)+"="+fmt.Sprint(atv.Value))
	}
	slices.Reverse(parts)
	return strings.Join(parts, ",")
}

var attributeNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.4":                    "SN",
	"2.5.4.5":                    "serialNumber",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "street",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"2.5.4.12":                   "title",
	"2.5.4.17":                   "postalCode",
	"2.5.4.42":                   "GN",
	"1.2.840.113549.1.9.1":       "emailAddress",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
}

func attributeName(oid asn1.ObjectIdentifier) string {
	if name, ok := attributeNames[oid.String()]; ok {
		return name
	}
	return oid.String()
}
