package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/config"
	"github.com/deusflow/contentcore/internal/logger"
)

var (
	cfgFile string
	envFile string
	debug   bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "contentcore",
	Short: "Content automation core: trending topics, relevance ranking and originality checks",
	Long: `contentcore pulls trending articles from RSS feeds, enriches and ranks them
against a site description, and checks generated content for originality.

Commands:
  topics       Fetch enriched articles for a category
  site-topics  Fetch articles ranked for a site description
  extract      Extract and analyse one article page
  analyze      Check generated content against its sources
  validate     Score a source list
  attribution  Render the attribution block for a source list
  serve        Refresh topics periodically and expose /health and /metrics
  mcp          Serve the operations as MCP tools over stdio`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrapf(err, "load %s", envFile)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if debug {
		loaded.Debug = true
	}
	cfg = loaded

	logger.InitTo(os.Stderr, cfg.Debug)
	logger.Debug("config loaded", "catalog", cfg.Feeds.CatalogPath, "gemini", cfg.Gemini.APIKey != "")
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, eris.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// readSources decodes a JSON array of sources.
func readSources(path string) ([]article.Source, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var sources []article.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, eris.Wrapf(err, "decode sources from %s", path)
	}
	return sources, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
