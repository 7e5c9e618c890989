// Command dsigtool signs, verifies, digests and canonicalizes XML
// documents.
//
// Usage:
//
//	dsigtool sign --key key.pem --cert cert.pem document.xml > signed.xml
//	dsigtool verify --trusted cert.pem signed.xml
//	dsigtool digest --algorithm sha256 --c14n exc-c14n document.xml
package main

import (
	"os"

	"github.com/philiph/xmldsig/cmd/dsigtool/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
