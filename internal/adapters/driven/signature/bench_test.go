//go:build unit

package signature

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"strings"
	"testing"
	"text/template"
)

// Benchmark whole-document signing and verification with growing
// documents.
// Run with: go test -tags unit -bench=. -benchmem ./internal/adapters/driven/signature/

var catalogTemplate = template.Must(template.New("catalog").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<Catalog xmlns="urn:example:catalog" xmlns:ui="urn:example:ui" updated="2099-12-31T23:59:59Z">
{{range .}}
    <Entry id="{{.ID}}">
        <ui:DisplayName xml:lang="en">{{.Name}}</ui:DisplayName>
        <ui:Description xml:lang="en">{{.Description}}</ui:Description>
        <Location>{{.URL}}</Location>
        <!-- entry {{.ID}} -->
    </Entry>
{{end}}
</Catalog>
`))

type benchEntry struct {
	ID          string
	Name        string
	Description string
	URL         string
}

var categories = []string{"Archive", "Library", "Laboratory", "Registry", "Service"}

// generateCatalog creates a document with n entries.
func generateCatalog(n int) []byte {
	entries := make([]benchEntry, n)
	for i := range entries {
		category := categories[i%len(categories)]
		entries[i] = benchEntry{
			ID:          fmt.Sprintf("e%05d", i),
			Name:        fmt.Sprintf("%s %05d", category, i),
			Description: strings.Repeat(fmt.Sprintf("%s entry %d and more. ", category, i), 4),
			URL:         fmt.Sprintf("https://host%05d.example.org/%s", i, strings.ToLower(category)),
		}
	}

	var buf bytes.Buffer
	if err := catalogTemplate.Execute(&buf, entries); err != nil {
		panic(fmt.Sprintf("failed to generate catalog fixture: %v", err))
	}
	return buf.Bytes()
}

var (
	catalog100  = generateCatalog(100)
	catalog1000 = generateCatalog(1000)
)

func BenchmarkSign_100(b *testing.B)    { benchmarkSign(b, catalog100) }
func BenchmarkSign_1000(b *testing.B)   { benchmarkSign(b, catalog1000) }
func BenchmarkVerify_100(b *testing.B)  { benchmarkVerify(b, catalog100) }
func BenchmarkVerify_1000(b *testing.B) { benchmarkVerify(b, catalog1000) }

func newBenchSigner(b *testing.B) (*DocumentSigner, *Verifier) {
	b.Helper()
	cert, private := generateTestCert(b)
	signer, err := NewDocumentSigner(rsaSigningKey(b, private), []*x509.Certificate{cert})
	if err != nil {
		b.Fatalf("NewDocumentSigner() error = %v", err)
	}
	verifier, err := NewVerifier([]*x509.Certificate{cert})
	if err != nil {
		b.Fatalf("NewVerifier() error = %v", err)
	}
	return signer, verifier
}

func benchmarkSign(b *testing.B, data []byte) {
	signer, _ := newBenchSigner(b)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := signer.Sign(data); err != nil {
			b.Fatalf("Sign() error = %v", err)
		}
	}
}

func benchmarkVerify(b *testing.B, data []byte) {
	signer, verifier := newBenchSigner(b)
	signed, err := signer.Sign(data)
	if err != nil {
		b.Fatalf("Sign() error = %v", err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(signed)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := verifier.Verify(signed); err != nil {
			b.Fatalf("Verify() error = %v", err)
		}
	}
}
