package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/deusflow/contentcore/internal/app"
)

var (
	sourcesFile string
	contentFile string
	attrFormat  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check generated content against the sources it was written from",
	Long: `Compare generated content with its sources and print the originality report.

Sources are a JSON array of objects with title, url, source, description,
content and published. Pass the exact list used for generation.

Examples:
  contentcore analyze --content draft.html --sources sources.json
  cat draft.txt | contentcore analyze --content - --sources sources.json`,
	RunE: runAnalyze,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score a source list for credibility, recency and diversity",
	RunE:  runValidate,
}

var attributionCmd = &cobra.Command{
	Use:   "attribution",
	Short: "Render the attribution block for a source list",
	Long: `Render the HTML attribution block, or a plain-text source list with
--format text. With --content the block is appended to that content.`,
	RunE: runAttribution,
}

func init() {
	rootCmd.AddCommand(analyzeCmd, validateCmd, attributionCmd)

	for _, c := range []*cobra.Command{analyzeCmd, validateCmd, attributionCmd} {
		c.Flags().StringVar(&sourcesFile, "sources", "", "JSON file with the source list, - for stdin (required)")
		_ = c.MarkFlagRequired("sources")
	}

	analyzeCmd.Flags().StringVar(&contentFile, "content", "", "file with the generated content, - for stdin (required)")
	_ = analyzeCmd.MarkFlagRequired("content")

	attributionCmd.Flags().StringVar(&contentFile, "content", "", "file with content to append the block to")
	attributionCmd.Flags().StringVar(&attrFormat, "format", "html", "html or text")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if sourcesFile == "-" && contentFile == "-" {
		return eris.New("only one of --sources and --content can read stdin")
	}
	sources, err := readSources(sourcesFile)
	if err != nil {
		return err
	}
	content, err := readInput(contentFile)
	if err != nil {
		return err
	}

	svc := app.New(*cfg)
	defer svc.Close()
	return printJSON(cmd.OutOrStdout(), svc.AnalyzePlagiarism(string(content), sources))
}

func runValidate(cmd *cobra.Command, args []string) error {
	sources, err := readSources(sourcesFile)
	if err != nil {
		return err
	}

	svc := app.New(*cfg)
	defer svc.Close()
	return printJSON(cmd.OutOrStdout(), svc.ValidateSources(sources))
}

func runAttribution(cmd *cobra.Command, args []string) error {
	sources, err := readSources(sourcesFile)
	if err != nil {
		return err
	}

	svc := app.New(*cfg)
	defer svc.Close()

	var out string
	switch attrFormat {
	case "text":
		out = svc.SourceSummary(sources)
	case "html":
		if contentFile == "" {
			out = svc.BuildAttribution(sources)
			break
		}
		content, err := readInput(contentFile)
		if err != nil {
			return err
		}
		out = svc.EnhanceWithAttribution(string(content), sources)
	default:
		return eris.Errorf("unknown format %q, want html or text", attrFormat)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
