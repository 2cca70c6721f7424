package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avsol/linkrot/internal/extract"
	"github.com/avsol/linkrot/internal/manifest"
)

var (
	enumOutput  string
	extractMode string
	globalDedup bool
)

// enumCmd represents the enum command
var enumCmd = &cobra.Command{
	Use:   "enum [dir]",
	Short: "Enumerate files and extract links into a manifest",
	Long: `Enum walks a document tree, extracts href/src links from .htm/.html
files, and writes the inventory to links-list.json for a later check run.

Hidden files and directories are skipped. With global dedup (the default),
a link already inventoried from an earlier document is recorded as
repeated and excluded from verification.

Example:
  linkrot enum
  linkrot enum ./site --output site-links.json
  linkrot enum ./site --extract-mode dom --global-dedup=false`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnum,
}

func init() {
	rootCmd.AddCommand(enumCmd)

	enumCmd.Flags().StringVar(&enumOutput, "output", "links-list.json", "manifest output path")
	enumCmd.Flags().StringVar(&extractMode, "extract-mode", "regex", "extraction mode (regex or dom)")
	enumCmd.Flags().BoolVar(&globalDedup, "global-dedup", true, "mark links repeated across documents and exclude them from checking")
}

func runEnum(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	if !cmd.Flags().Changed("extract-mode") && viper.IsSet("extract.mode") {
		extractMode = viper.GetString("extract.mode")
	}
	if !cmd.Flags().Changed("output") && viper.IsSet("output.manifest") {
		enumOutput = viper.GetString("output.manifest")
	}

	if extractMode != "regex" && extractMode != "dom" {
		return fmt.Errorf("unknown extract mode %q (want regex or dom)", extractMode)
	}

	fmt.Fprintf(os.Stderr, "Scanning %s for files and links...\n", root)

	scanner := extract.NewScanner()
	scanner.Mode = extractMode
	if globalDedup {
		scanner.Registry = extract.NewSeenRegistry()
	}
	if verbose {
		scanner.Progress = os.Stderr
	}

	m, err := scanner.Scan(root)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if err := manifest.Save(m, enumOutput); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Found %d files\n", len(m.Files))
	fmt.Fprintf(os.Stderr, "Extracted %d checkable links\n", m.TotalLinks())
	fmt.Fprintf(os.Stderr, "Results saved to: %s\n", enumOutput)

	return nil
}
