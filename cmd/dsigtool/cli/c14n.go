package cli

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/philiph/xmldsig"
)

type c14nOptions struct {
	method           string
	prefixes         string
	excludeSignature bool
}

func newC14NCommand(a *app) *cobra.Command {
	o := &c14nOptions{}

	cmd := &cobra.Command{
		Use:   "c14n [flags] FILE",
		Short: "Canonicalize an XML document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.c14n(cmd, o, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.method, "method", "m", "c14n", "canonicalization method")
	flags.StringVar(&o.prefixes, "inclusive-prefixes", "", "InclusiveNamespaces PrefixList for exclusive canonicalization")
	flags.BoolVar(&o.excludeSignature, "exclude-signature", false, "omit the first Signature element, as the enveloped-signature transform does")
	return cmd
}

func (a *app) c14n(cmd *cobra.Command, o *c14nOptions, input string) error {
	method, err := resolveCanonical(o.method)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("parse XML: %w", err)
	}

	opts := xmldsig.CanonicalOptions{InclusivePrefixes: xmldsig.ParsePrefixList(o.prefixes)}
	if o.excludeSignature {
		sig, err := xmldsig.LocateDocument(doc, xmldsig.WithLogger(a.logger))
		switch {
		case err == nil:
			opts.Exclude = sig.Element()
		case !errors.Is(err, xmldsig.ErrSignatureNotFound):
			return err
		}
	}

	out, err := xmldsig.CanonicalizeDocument(doc, method, opts)
	if err != nil {
		return err
	}
	return writeOutput(cmd, "", out)
}
