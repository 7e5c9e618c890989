//go:build unit

package cli

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig"
)

// writeCredentials writes a PKCS#8 RSA key and a self-signed certificate
// into dir and returns their paths.
func writeCredentials(t *testing.T, dir, name string) (keyPath, certPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	keyPath = filepath.Join(dir, name+".key")
	certPath = filepath.Join(dir, name+".pem")
	writeFile(t, keyPath, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})))
	writeFile(t, certPath, string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})))
	return keyPath, certPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// execute runs the root command and returns its stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := New()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const invoice = `<Invoice number="7"><Total>10</Total></Invoice>`

// signInvoice signs the invoice document and returns the signed file path.
func signInvoice(t *testing.T, dir, keyPath, certPath string, extra ...string) string {
	t.Helper()
	input := filepath.Join(dir, "invoice.xml")
	writeFile(t, input, invoice)
	output := filepath.Join(dir, "signed.xml")

	args := append([]string{"sign", "--key", keyPath, "--cert", certPath, "-o", output}, extra...)
	args = append(args, input)
	if _, stderr, err := execute(t, args...); err != nil {
		t.Fatalf("sign failed: %v\n%s", err, stderr)
	}
	return output
}

func TestSignVerify(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeCredentials(t, dir, "signer")
	signed := signInvoice(t, dir, keyPath, certPath)

	stdout, stderr, err := execute(t, "verify", "--trusted", certPath, signed)
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "<Total>10</Total>") || !strings.HasPrefix(stdout, "<Invoice") {
		t.Errorf("verify output = %s", stdout)
	}
}

func TestVerify_Failures(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeCredentials(t, dir, "signer")
	_, otherCert := writeCredentials(t, dir, "other")
	signed := signInvoice(t, dir, keyPath, certPath)

	data, err := os.ReadFile(signed)
	if err != nil {
		t.Fatalf("failed to read signed document: %v", err)
	}
	tampered := filepath.Join(dir, "tampered.xml")
	writeFile(t, tampered, strings.Replace(string(data), "<Total>10</Total>", "<Total>99</Total>", 1))

	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"tampered content", []string{"verify", "--trusted", certPath, tampered}, xmldsig.ErrReferenceValidationFailed},
		{"untrusted certificate", []string{"verify", "--trusted", otherCert, signed}, xmldsig.ErrInvalidKey},
		{"unsigned document", []string{"verify", "--trusted", certPath, filepath.Join(dir, "invoice.xml")}, xmldsig.ErrSignatureNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, tc.args...)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("verify error = %v, want %v", err, tc.wantErr)
			}
			if stdout != "" {
				t.Errorf("failed verification wrote output: %s", stdout)
			}
		})
	}

	if _, _, err := execute(t, "verify", signed); err == nil {
		t.Error("expected error without trusted certificates")
	}
}

func TestSign_Options(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeCredentials(t, dir, "signer")
	input := filepath.Join(dir, "invoice.xml")
	writeFile(t, input, invoice)

	stdout, stderr, err := execute(t, "sign", "--key", keyPath, "--cert", certPath,
		"--digest", "sha512", "--c14n", "c14n", "--signature-method", "rsa-sha512",
		"--issuer-serial", "--insert-first", "--prefix", "sig", input)
	if err != nil {
		t.Fatalf("sign failed: %v\n%s", err, stderr)
	}

	for _, want := range []string{xmldsig.DigestSHA512, xmldsig.C14N, xmldsig.RSASHA512, "<sig:X509IssuerSerial>", "<Invoice number=\"7\"><sig:Signature"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("signed output missing %q", want)
		}
	}

	for _, args := range [][]string{
		{"sign", "--cert", certPath, input},
		{"sign", "--key", keyPath, "--digest", "md5", input},
		{"sign", "--key", keyPath, "--c14n", "c14n11", input},
		{"sign", "--key", keyPath, "--signature-method", "dsa-sha1", input},
	} {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("expected error for %v", args[1:])
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeCredentials(t, dir, "signer")
	input := filepath.Join(dir, "invoice.xml")
	writeFile(t, input, invoice)

	yamlConfig := filepath.Join(dir, "sign.yaml")
	writeFile(t, yamlConfig, `key: `+keyPath+`
certificates:
  - `+certPath+`
digest: sha384
canonicalization: exc-c14n-with-comments
issuer_serial: true
`)
	signed := filepath.Join(dir, "signed.xml")
	if _, stderr, err := execute(t, "--config", yamlConfig, "sign", "-o", signed, input); err != nil {
		t.Fatalf("sign failed: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(signed)
	if err != nil {
		t.Fatalf("failed to read signed document: %v", err)
	}
	for _, want := range []string{xmldsig.DigestSHA384, xmldsig.ExclusiveC14NWithComment, "X509IssuerSerial"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("signed output missing %q", want)
		}
	}

	jsonConfig := filepath.Join(dir, "verify.json")
	writeFile(t, jsonConfig, `{"trusted": ["`+certPath+`"]}`)
	if _, stderr, err := execute(t, "-c", jsonConfig, "verify", signed); err != nil {
		t.Fatalf("verify failed: %v\n%s", err, stderr)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "config.toml", `key = "k"`},
		{"invalid yaml", "config.yaml", "key: [unterminated"},
		{"invalid json", "config.json", `{"key":`},
		{"unsupported digest", "config.yml", "digest: md5"},
		{"invalid canonicalization", "config.yml", "canonicalization: c14n11"},
		{"unknown signature method", "config.json", `{"signature_method": "dsa-sha1"}`},
		{"invalid timeout", "config.yaml", "fetch:\n  timeout: soon"},
		{"negative cache ttl", "config.yaml", "fetch:\n  cache_ttl: -1m"},
		{"negative max size", "config.json", `{"fetch": {"max_size": -1}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			writeFile(t, path, tc.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_Full(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `digest: http://www.w3.org/2001/04/xmlenc#sha256
id_attributes: [ID, "wsu:Id"]
id_namespaces:
  wsu: urn:wsu
fetch:
  allow_http: true
  timeout: 5s
  cache_ttl: 10m
  max_size: 1024
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.IDAttributes) != 2 || cfg.IDNamespaces["wsu"] != "urn:wsu" {
		t.Errorf("ID settings = %v, %v", cfg.IDAttributes, cfg.IDNamespaces)
	}
	if !cfg.Fetch.AllowHTTP || cfg.Fetch.Timeout != "5s" || cfg.Fetch.MaxSize != 1024 {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "abc.txt")
	writeFile(t, input, "abc")

	testCases := []struct {
		algorithm string
		want      string
	}{
		{"sha1", "qZk+NkcGgWq6PiVxeFDCbJzQ2J0="},
		{"sha256", "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0="},
		{xmldsig.DigestSHA256, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0="},
	}

	for _, tc := range testCases {
		t.Run(tc.algorithm, func(t *testing.T) {
			stdout, _, err := execute(t, "digest", "--algorithm", tc.algorithm, input)
			if err != nil {
				t.Fatalf("digest failed: %v", err)
			}
			if strings.TrimSpace(stdout) != tc.want {
				t.Errorf("digest = %q, want %q", stdout, tc.want)
			}
		})
	}

	if _, _, err := execute(t, "digest", "--algorithm", "md5", input); !errors.Is(err, xmldsig.ErrUnsupportedDigestAlgorithm) {
		t.Errorf("digest md5 error = %v, want ErrUnsupportedDigestAlgorithm", err)
	}
}

// TestDigest_Canonical verifies differently serialized equivalent
// documents digest equally after canonicalization.
func TestDigest_Canonical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.xml")
	second := filepath.Join(dir, "second.xml")
	writeFile(t, first, `<a b="1" c="2"/>`)
	writeFile(t, second, `<a  c='2'   b='1'></a>`)

	a, _, err := execute(t, "digest", "--c14n", "c14n", first)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	b, _, err := execute(t, "digest", "--c14n", "c14n", second)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if a != b {
		t.Errorf("canonical digests differ: %q, %q", a, b)
	}
}

func TestC14N(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.xml")
	writeFile(t, plain, `<a  b="1" a="2"/>`)
	signed := filepath.Join(dir, "signed.xml")
	writeFile(t, signed, `<r><ds:Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#"><ds:SignedInfo/></ds:Signature><x/></r>`)

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"attribute order", []string{"c14n", plain}, `<a a="2" b="1"></a>`},
		{"exclude signature", []string{"c14n", "--exclude-signature", signed}, `<r><x></x></r>`},
		{"no signature to exclude", []string{"c14n", "--exclude-signature", plain}, `<a a="2" b="1"></a>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, tc.args...)
			if err != nil {
				t.Fatalf("c14n failed: %v", err)
			}
			if stdout != tc.want {
				t.Errorf("c14n = %q, want %q", stdout, tc.want)
			}
		})
	}

	if _, _, err := execute(t, "c14n", "--method", "c14n11", plain); !errors.Is(err, xmldsig.ErrInvalidCanonicalMethod) {
		t.Errorf("c14n11 error = %v, want ErrInvalidCanonicalMethod", err)
	}
}

func TestMetricsAndLogging(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeCredentials(t, dir, "signer")
	input := filepath.Join(dir, "invoice.xml")
	writeFile(t, input, invoice)

	_, stderr, err := execute(t, "--metrics", "--log-level", "info", "--log-format", "json",
		"sign", "--key", keyPath, "--cert", certPath, input)
	if err != nil {
		t.Fatalf("sign failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, `"msg":"document signed"`) {
		t.Errorf("stderr missing sign log: %s", stderr)
	}
	if !strings.Contains(stderr, `xmldsig_sign_total{algorithm="rsa-sha256",result="success"} 1`) {
		t.Errorf("stderr missing sign metric: %s", stderr)
	}

	if _, _, err := execute(t, "--log-level", "loud", "algorithms"); err == nil {
		t.Error("expected error for invalid log level")
	}
	if _, _, err := execute(t, "--log-format", "xml", "algorithms"); err == nil {
		t.Error("expected error for invalid log format")
	}
}

func TestAlgorithms(t *testing.T) {
	stdout, _, err := execute(t, "algorithms")
	if err != nil {
		t.Fatalf("algorithms failed: %v", err)
	}
	for _, want := range []string{"sha256", "ripemd160", "exc-c14n", "rsa-sha256", "ecdsa-sha512"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("algorithms output missing %q", want)
		}
	}
}

func TestNewFetcher(t *testing.T) {
	logger := zap.NewNop()

	fetcher, err := newFetcher(FetchConfig{}, logger)
	if err != nil || fetcher != nil {
		t.Fatalf("newFetcher(disabled) = %v, %v; want nil", fetcher, err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.xml"), "<data/>")
	fetcher, err = newFetcher(FetchConfig{BaseDir: dir, CacheTTL: "1m", MaxSize: 64}, logger)
	if err != nil {
		t.Fatalf("newFetcher() error = %v", err)
	}
	got, err := fetcher.Fetch(context.Background(), "data.xml")
	if err != nil || string(got) != "<data/>" {
		t.Errorf("Fetch(data.xml) = %q, %v", got, err)
	}
	if _, err := fetcher.Fetch(context.Background(), "https://example.com/x"); !errors.Is(err, xmldsig.ErrExternalResourceFetchFailed) {
		t.Errorf("Fetch(https) error = %v, want ErrExternalResourceFetchFailed", err)
	}

	if _, err := newFetcher(FetchConfig{BaseDir: filepath.Join(dir, "missing")}, logger); err == nil {
		t.Error("expected error for missing base directory")
	}
}
