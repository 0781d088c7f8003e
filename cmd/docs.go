package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var (
	docsOutputDir string
	docsFormat    string
)

// docGenerators writes the command tree in one format.
var docGenerators = map[string]func(root *cobra.Command, dir string) error{
	"markdown": doc.GenMarkdownTree,
	"man": func(root *cobra.Command, dir string) error {
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "QA-APP",
			Section: "1",
			Source:  "qa-app " + Version,
			Manual:  "qa-app manual",
		}, dir)
	},
	"rest": doc.GenReSTTree,
	"yaml": doc.GenYamlTree,
}

var docFormatAliases = map[string]string{
	"md":  "markdown",
	"rst": "rest",
	"yml": "yaml",
}

// docsCmd generates reference documentation for every qa-app command
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate documentation for all commands",
	Long: `Generate reference documentation for every qa-app command.

Supported formats are markdown, man, rest and yaml. Files are written to
--output, ./docs by default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger().WithComponent("docs")

		format := strings.ToLower(docsFormat)
		if alias, ok := docFormatAliases[format]; ok {
			format = alias
		}
		gen, ok := docGenerators[format]
		if !ok {
			log.Error("Unsupported format", "format", docsFormat)
			return fmt.Errorf("unsupported format: %s (want one of %s)", docsFormat, strings.Join(docFormats(), ", "))
		}

		if err := os.MkdirAll(docsOutputDir, 0755); err != nil {
			log.Error("Failed to create output directory", "dir", docsOutputDir, "error", err)
			return err
		}

		log.Info("Generating documentation", "format", format, "output", docsOutputDir)
		if err := gen(rootCmd, docsOutputDir); err != nil {
			log.Error("Failed to generate documentation", "error", err)
			return err
		}

		absPath, _ := filepath.Abs(docsOutputDir)
		log.Info("Documentation generated successfully", "path", absPath)
		return nil
	},
}

func docFormats() []string {
	formats := make([]string, 0, len(docGenerators))
	for f := range docGenerators {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().StringVarP(&docsOutputDir, "output", "o", "./docs", "Output directory for documentation")
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "markdown", "Documentation format (markdown, man, rest, yaml)")
}
