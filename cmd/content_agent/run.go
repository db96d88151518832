package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/compose"
	"github.com/jonathan/content-agent/internal/config"
	"github.com/jonathan/content-agent/internal/db"
	"github.com/jonathan/content-agent/internal/distill"
	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/jonathan/content-agent/internal/social"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full content generation pipeline end-to-end",
	Long: `Orchestrates the entire content generation process: web research -> social search -> distillation -> composition.

Stages that already have cached output for the session are skipped, so re-running with the same session resumes where the previous run got to.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runTopic        string
	runQuery        string
	runSessionName  string
	runSessionID    string
	runProductName  string
	runProductDesc  string
	runFeaturesFile string
	runForceNew     bool
	runReuseLatest  bool
	runSkipResearch bool
	runSkipSocial   bool
	runVerbose      bool
	runDatabaseURL  string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTopic, "topic", "t", "", "Topic to research")
	runCommand.Flags().StringVarP(&runQuery, "query", "q", "", "Social search query (defaults to --topic)")
	runCommand.Flags().StringVar(&runSessionName, "session-name", "", "Name for a newly created session")
	runCommand.Flags().StringVar(&runSessionID, "session-id", "", "Existing session UUID to resume")
	runCommand.Flags().StringVar(&runProductName, "product-name", "", "Product being promoted")
	runCommand.Flags().StringVar(&runProductDesc, "product-description", "", "Short product pitch fed to the LLM stages")
	runCommand.Flags().StringVar(&runFeaturesFile, "features", "", "Path to a plain-text product features file")
	runCommand.Flags().BoolVar(&runForceNew, "force-new-session", false, "Always create a fresh session")
	runCommand.Flags().BoolVar(&runReuseLatest, "reuse-session", false, "Reuse the most recent session instead of creating one")
	runCommand.Flags().BoolVar(&runSkipResearch, "skip-research", false, "Skip the web research stage")
	runCommand.Flags().BoolVar(&runSkipSocial, "skip-social", false, "Skip the social search stage")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print stage summaries")

	// Database URL for the session cache
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("topic") {
		cfg.Topic = runTopic
	}
	if cmd.Flags().Changed("query") {
		cfg.Query = runQuery
	}
	if cmd.Flags().Changed("product-name") {
		cfg.ProductName = runProductName
	}
	if cmd.Flags().Changed("product-description") {
		cfg.ProductDescription = runProductDesc
	}
	if cmd.Flags().Changed("features") {
		cfg.FeaturesFile = runFeaturesFile
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Fill remaining gaps from the environment, then validate
	cfg.FillFromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	var sessionID uuid.UUID
	if runSessionID != "" {
		var err error
		if sessionID, err = uuid.Parse(runSessionID); err != nil {
			return fmt.Errorf("invalid --session-id: %w", err)
		}
	}
	if cfg.Topic == "" && sessionID == uuid.Nil && !runReuseLatest {
		return fmt.Errorf("--topic is required when not resuming a session")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or gemini_api_key config value is required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	features, err := cfg.ReadFeatures()
	if err != nil {
		return err
	}

	// Step 5: Connect the session cache
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	if err := database.InitSchema(ctx); err != nil {
		return err
	}

	// Step 6: Build the stage clients
	researchClient, err := buildResearchClient(cfg, runSkipResearch)
	if err != nil {
		return err
	}
	socialClient, err := buildSocialClient(cfg, runSkipSocial)
	if err != nil {
		return err
	}

	llmClient, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer llmClient.Close()

	p := pipeline.New(database, researchClient, socialClient,
		distill.NewDistiller(llmClient), compose.NewComposer(llmClient))

	result, err := p.Run(ctx, pipeline.RunOptions{
		Topic:              cfg.Topic,
		Query:              cfg.Query,
		SessionName:        runSessionName,
		ProductName:        cfg.ProductName,
		ProductDescription: cfg.ProductDescription,
		Features:           features,
		SessionID:          sessionID,
		ReuseLatest:        runReuseLatest,
		ForceNewSession:    runForceNew,
		SkipResearch:       runSkipResearch,
		SkipSocial:         runSkipSocial,
		Verbose:            cfg.Verbose,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Session %s: %d research records, %d social posts, %d composed posts\n",
		result.Session.ID, len(result.ResearchRecords), len(result.SocialRecords), len(result.Posts))
	return nil
}

// buildResearchClient returns a no-op client when the stage is skipped,
// so a missing credential only matters when the stage would actually run.
func buildResearchClient(cfg config.Config, skip bool) (pipeline.Researcher, error) {
	if skip {
		return noopResearcher{}, nil
	}
	if cfg.ResearchAPIKey == "" {
		return nil, fmt.Errorf("PERPLEXITY_API_KEY environment variable is required (or pass --skip-research)")
	}
	return research.NewClient(cfg.ResearchAPIKey)
}

func buildSocialClient(cfg config.Config, skip bool) (pipeline.SocialSearcher, error) {
	if skip {
		return noopSocialSearcher{}, nil
	}
	if cfg.SocialAPIKey == "" {
		return nil, fmt.Errorf("RAPIDAPI_API_KEY environment variable is required (or pass --skip-social)")
	}
	return social.NewClient(cfg.SocialAPIKey)
}
