package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/contentcore/internal/app"
)

var (
	topicsCategory string
	topicsLimit    int

	siteDescription string
	siteTopic       string
	siteLimit       int

	extractURL string
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Fetch enriched trending articles for a category",
	Long: `Fetch, enrich and de-duplicate articles from the feeds of one category.

When every feed fails the built-in placeholder topics are returned and
is_fallback is true.

Examples:
  contentcore topics --category ai --limit 5`,
	RunE: runTopics,
}

var siteTopicsCmd = &cobra.Command{
	Use:   "site-topics",
	Short: "Fetch articles ranked for a site description",
	Long: `Rank articles against a free-text site description.

With --topic, only articles mentioning the topic are kept (falling back to
the first three when none do).

Examples:
  contentcore site-topics --description "A blog about sustainable living" --limit 3
  contentcore site-topics --description "AI for small business" --topic "chatbots"`,
	RunE: runSiteTopics,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and analyse one article page",
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(topicsCmd, siteTopicsCmd, extractCmd)

	topicsCmd.Flags().StringVar(&topicsCategory, "category", "general", "feed category (ai, tech, business, sustainability, general)")
	topicsCmd.Flags().IntVar(&topicsLimit, "limit", 10, "maximum number of articles")

	siteTopicsCmd.Flags().StringVar(&siteDescription, "description", "", "site description (required)")
	siteTopicsCmd.Flags().StringVar(&siteTopic, "topic", "", "only keep articles about this topic")
	siteTopicsCmd.Flags().IntVar(&siteLimit, "limit", 5, "maximum number of articles")
	_ = siteTopicsCmd.MarkFlagRequired("description")

	extractCmd.Flags().StringVar(&extractURL, "url", "", "article URL (required)")
	_ = extractCmd.MarkFlagRequired("url")
}

func newService(ctx context.Context) (*app.Service, error) {
	return app.NewFromConfig(ctx, *cfg)
}

func runTopics(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	return printJSON(cmd.OutOrStdout(), svc.FetchTopics(ctx, topicsCategory, topicsLimit))
}

func runSiteTopics(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if siteTopic != "" {
		return printJSON(cmd.OutOrStdout(), svc.RelevantSources(ctx, siteTopic, siteDescription))
	}
	return printJSON(cmd.OutOrStdout(), svc.FetchSiteTopics(ctx, siteDescription, siteLimit))
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	summary, err := svc.ArticleSummary(ctx, extractURL)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
