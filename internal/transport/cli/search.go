package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/drugfacts/internal/logger"
)

var (
	searchK    int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank drug facts records against a query",
	Long: `Ranks corpus records with TF-IDF cosine similarity and prints the best
matches. No LLM call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "top-k", "k", 0, "number of results (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

type searchHit struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	LastUpdated string  `json:"last_updated"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := buildApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	k := searchK
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}

	ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
	results := a.retrieval.Retrieve(ctx, args[0], k)

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []result.Result) error {
	hits := make([]searchHit, len(results))
	for i, r := range results {
		hits[i] = searchHit{
			Name:        r.Record().DisplayName(),
			Score:       r.Score(),
			LastUpdated: r.Record().LastUpdated(),
		}
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func outputSearchTable(cmd *cobra.Command, results []result.Result) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	header := color.New(color.Bold)
	name := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	header.Fprintln(out, "Results:")
	fmt.Fprintln(out)
	for i, r := range results {
		fmt.Fprintf(out, "[%d] %s %s\n", i+1,
			name.Sprint(r.Record().DisplayName()),
			faint.Sprintf("(%.2f, updated %s)", r.Score(), r.Record().LastUpdated()))
	}
}
