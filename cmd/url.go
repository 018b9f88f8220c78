package cmd

import (
	"fmt"

	"github.com/huangsam/seobench/core/load"
	"github.com/spf13/cobra"
)

// urlCmd prints the canonical key of each URL argument.
var urlCmd = &cobra.Command{
	Use:   "url <url>...",
	Short: "Print the canonical form used to join URLs across exports",
	Long: `Canonicalize URLs exactly as a run does when it joins rows across the
performance and metadata exports.

Scheme, host and path are lower-cased, the fragment and a dangling '?' are
dropped, duplicate slashes are collapsed and the path ends in one slash.
A non-empty query string is kept as is.

Examples:
  seobench url 'HTTPS://Example.com/Services#top'
  seobench url example.com/blog//post`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, raw := range args {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, load.CanonicalURL(raw))
		}
	},
}
