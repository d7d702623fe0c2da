package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arushs/Formly-sub001/internal/adapters/driven/config/file"
	"github.com/arushs/Formly-sub001/internal/adapters/driven/extraction"
	"github.com/arushs/Formly-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/arushs/Formly-sub001/internal/connectors"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
	"github.com/arushs/Formly-sub001/internal/core/services"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Services wired by setup() and shared by the commands.
var (
	store            *sqlite.Store
	configStore      driven.ConfigStore
	engagementStore  driven.EngagementStore
	providerFactory  driven.ProviderFactory
	eventDispatcher  driving.EventDispatcher
	intakeService    driving.IntakeOrchestrator
	schedulerService *services.Scheduler
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "formly",
	Short: "Tax document intake orchestration",
	Long: `Formly watches client storage folders, discovers uploaded tax
documents, runs them through extraction and classification, and
reconciles them against each engagement's document checklist.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// setup wires stores, connectors and services for a command run.
func setup() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	store, err = sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	engagementStore = store.EngagementStore()

	providerFactory = connectors.NewDefaultFactory(configStore)

	var extractor driven.Extractor
	if baseURL := cfg.GetString("extraction.url"); baseURL != "" {
		client, err := extraction.NewClient(extraction.Config{
			BaseURL: baseURL,
			APIKey:  cfg.GetString("extraction.api_key"),
		})
		if err != nil {
			return fmt.Errorf("configuring extraction: %w", err)
		}
		extractor = extraction.NewRetryingExtractor(client, extraction.DefaultRetryConfig(),
			extraction.WithPlainTextFallback())
	}

	assessment := services.NewAssessmentService(engagementStore, providerFactory, extractor, nil)
	reconciliation := services.NewReconciliationService(engagementStore)
	outreach := services.NewOutreachService(engagementStore, nil)
	eventDispatcher = services.NewDispatcher(outreach, assessment, reconciliation)
	intakeService = services.NewIntakeService(engagementStore, providerFactory, eventDispatcher)

	schedulerService = services.NewScheduler(schedulerConfig(configStore),
		store.SchedulerStore(), engagementStore, intakeService, eventDispatcher)
	return nil
}

// teardown closes the store after a command run.
func teardown() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		store = nil
	}
}

// schedulerConfig reads scheduler settings, falling back to defaults.
func schedulerConfig(cfg driven.ConfigStore) domain.SchedulerConfig {
	out := domain.DefaultSchedulerConfig()
	if val, ok := cfg.Get("scheduler.enabled"); ok {
		if enabled, ok := val.(bool); ok {
			out.Enabled = enabled
		}
	}
	if minutes := cfg.GetInt("scheduler.poll_minutes"); minutes > 0 {
		out.PollInterval = time.Duration(minutes) * time.Minute
	}
	if hours := cfg.GetInt("scheduler.stale_hours"); hours > 0 {
		out.StaleAfter = time.Duration(hours) * time.Hour
	}
	return out
}
