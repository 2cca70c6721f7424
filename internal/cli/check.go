package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avsol/linkrot/internal/llm"
	"github.com/avsol/linkrot/internal/manifest"
	"github.com/avsol/linkrot/internal/model"
	"github.com/avsol/linkrot/internal/report"
	"github.com/avsol/linkrot/internal/verify"
)

var (
	manifestPath  string
	reportPath    string
	workers       int
	timeoutSecs   int
	ratePerSecond float64
	rateBurst     int
	respectRobots bool
	httpProxy     string
	httpsProxy    string
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every link in the manifest and report dead ones",
	Long: `Check consumes the manifest produced by enum, verifies local links
against the filesystem and external links over the network, and streams
every failing link into a CSV report as it is discovered.

External URLs are probed concurrently with a HEAD-then-GET ladder,
browser-emulation retry on 403, and certificate-bypass fallback on TLS
failures, so the report explains why each link failed.

Example:
  linkrot check
  linkrot check --manifest site-links.json --output dead.csv
  linkrot check --workers 64 --timeout 15 --respect-robots`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&manifestPath, "manifest", "links-list.json", "input manifest path")
	checkCmd.Flags().StringVar(&reportPath, "output", "links-dead.csv", "output CSV path")
	checkCmd.Flags().IntVar(&workers, "workers", 32, "external probe worker count")
	checkCmd.Flags().IntVar(&timeoutSecs, "timeout", 30, "per-request timeout in seconds")
	checkCmd.Flags().Float64Var(&ratePerSecond, "rate", 8, "max requests per second per host")
	checkCmd.Flags().IntVar(&rateBurst, "burst", 4, "per-host burst allowance")
	checkCmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "skip URLs disallowed by robots.txt")
	checkCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	checkCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	checkCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM triage summary of the report")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := buildCheckConfig(cmd)
	if err != nil {
		return err
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("cannot read manifest %s (run 'linkrot enum' first): %w", manifestPath, err)
	}

	// A previous report left open in another program blocks the run; the
	// report must start empty.
	if err := os.Remove(reportPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot delete previous report %s (is it open in another program?): %w", reportPath, err)
	}

	sink, err := report.NewCSVSink(reportPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	recorder := &recordingSink{inner: sink}

	if verbose {
		fmt.Fprintf(os.Stderr, "Manifest: %s (%d files, %d links)\n", manifestPath, len(m.Files), m.TotalLinks())
		fmt.Fprintf(os.Stderr, "Workers: %d, timeout: %v\n\n", cfg.Concurrency.Workers, cfg.HTTP.Timeout())
	}

	engine := verify.New(cfg, ".", recorder, os.Stderr)
	stats, err := engine.Run(ctx, m)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nProcessed %d files with %d total links\n", stats.FilesProcessed, stats.LinksChecked)
	fmt.Fprintf(os.Stderr, "Found %d dead or invalid links\n", stats.DeadLinks)
	fmt.Fprintf(os.Stderr, "Results written to: %s\n", reportPath)
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "Interrupted - the report contains all links checked so far\n")
	}

	if llmEnabled && ctx.Err() == nil {
		summarize(cfg, stats, recorder.Records())
	}

	return nil
}

// buildCheckConfig layers defaults, config file values, and flags. The
// viper keys match the yaml tags on model.Config, so a file written by
// 'config init' round-trips; file values apply only where the flag was
// left at its default.
func buildCheckConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if !cmd.Flags().Changed("workers") && viper.IsSet("concurrency.workers") {
		workers = viper.GetInt("concurrency.workers")
	}
	if !cmd.Flags().Changed("timeout") && viper.IsSet("http.timeout_seconds") {
		timeoutSecs = viper.GetInt("http.timeout_seconds")
	}
	if !cmd.Flags().Changed("rate") && viper.IsSet("rate_limit.requests_per_second") {
		ratePerSecond = viper.GetFloat64("rate_limit.requests_per_second")
	}
	if !cmd.Flags().Changed("burst") && viper.IsSet("rate_limit.burst") {
		rateBurst = viper.GetInt("rate_limit.burst")
	}
	if !cmd.Flags().Changed("respect-robots") && viper.IsSet("robots.respect") {
		respectRobots = viper.GetBool("robots.respect")
	}
	if !cmd.Flags().Changed("http-proxy") && viper.IsSet("http.http_proxy") {
		httpProxy = viper.GetString("http.http_proxy")
	}
	if !cmd.Flags().Changed("https-proxy") && viper.IsSet("http.https_proxy") {
		httpsProxy = viper.GetString("http.https_proxy")
	}
	if !cmd.Flags().Changed("manifest") && viper.IsSet("output.manifest") {
		manifestPath = viper.GetString("output.manifest")
	}
	if !cmd.Flags().Changed("output") && viper.IsSet("output.report") {
		reportPath = viper.GetString("output.report")
	}
	if !cmd.Flags().Changed("llm-provider") && viper.IsSet("llm.provider") {
		llmProvider = viper.GetString("llm.provider")
	}
	if !cmd.Flags().Changed("llm-model") && viper.IsSet("llm.model") {
		llmModel = viper.GetString("llm.model")
	}

	cfg.Concurrency.Workers = workers
	cfg.HTTP.TimeoutSeconds = timeoutSecs
	if viper.IsSet("http.max_redirects") {
		cfg.HTTP.MaxRedirects = viper.GetInt("http.max_redirects")
	}
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.RateLimit.RequestsPerSecond = ratePerSecond
	cfg.RateLimit.Burst = rateBurst
	cfg.Robots.Respect = respectRobots
	if viper.IsSet("robots.cache_ttl_minutes") {
		cfg.Robots.CacheTTLMinutes = viper.GetInt("robots.cache_ttl_minutes")
	}
	cfg.Output.Manifest = manifestPath
	cfg.Output.Report = reportPath
	cfg.Output.Verbose = verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// summarize prints the optional LLM triage. Failures here only warn; the
// report on disk is already complete.
func summarize(cfg *model.Config, stats model.CheckStats, records []model.VerificationRecord) {
	summarizer, err := llm.NewSummarizer(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM summary unavailable: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := summarizer.Summarize(ctx, stats, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "\nTriage summary:\n%s\n", summary)
}

// recordingSink forwards records to the CSV sink while keeping a copy for
// the optional triage summary.
type recordingSink struct {
	inner   verify.Sink
	mu      sync.Mutex
	records []model.VerificationRecord
}

func (s *recordingSink) Write(rec model.VerificationRecord) error {
	if err := s.inner.Write(rec); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) Records() []model.VerificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}
