package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/philiph/xmldsig"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the supported algorithms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			groups := []struct {
				title string
				uris  []string
			}{
				{"digest", xmldsig.SupportedDigests()},
				{"canonicalization", []string{xmldsig.C14N, xmldsig.C14NWithComments, xmldsig.ExclusiveC14N, xmldsig.ExclusiveC14NWithComment}},
				{"signature", []string{
					xmldsig.RSASHA1, xmldsig.RSASHA256, xmldsig.RSASHA384, xmldsig.RSASHA512,
					xmldsig.ECDSASHA1, xmldsig.ECDSASHA256, xmldsig.ECDSASHA384, xmldsig.ECDSASHA512,
				}},
			}
			for _, g := range groups {
				uris := append([]string(nil), g.uris...)
				sort.Strings(uris)
				for _, uri := range uris {
					if _, err := fmt.Fprintf(w, "%-16s %-24s %s\n", g.title, xmldsig.AlgorithmName(uri), uri); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}
