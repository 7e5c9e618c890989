package cli

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/philiph/xmldsig"
)

type digestOptions struct {
	algorithm string
	canonical string
}

func newDigestCommand(a *app) *cobra.Command {
	o := &digestOptions{}

	cmd := &cobra.Command{
		Use:   "digest [flags] FILE",
		Short: "Print the base64 digest of a file.",
		Long: `Print the base64 digest of FILE ("-" for stdin) as it would appear in a
DigestValue. With --c14n the input is parsed as XML and canonicalized
first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.digest(cmd, o, args[0])
		},
	}

	cmd.Flags().StringVarP(&o.algorithm, "algorithm", "a", "sha256", "digest algorithm")
	cmd.Flags().StringVar(&o.canonical, "c14n", "", "canonicalize the XML input with this method first")
	return cmd
}

func (a *app) digest(cmd *cobra.Command, o *digestOptions, input string) error {
	algorithm, err := resolveDigest(stringFlag(cmd, "algorithm", o.algorithm, a.config.Digest))
	if err != nil {
		return err
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	if o.canonical != "" {
		method, err := resolveCanonical(o.canonical)
		if err != nil {
			return err
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return fmt.Errorf("parse XML: %w", err)
		}
		data, err = xmldsig.CanonicalizeDocument(doc, method, xmldsig.CanonicalOptions{})
		if err != nil {
			return err
		}
	}

	value, err := xmldsig.Digest(algorithm, data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
