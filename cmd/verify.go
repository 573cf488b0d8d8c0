package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/faridlogistics/freightcrm/internal/ai"
	"github.com/faridlogistics/freightcrm/internal/ai/gemini"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/secrets"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify qualified leads: assess public footprint and intent before outreach",
	Run: func(cmd *cobra.Command, _ []string) {
		runVerify(cmd)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Int("limit", 5, "maximum leads to verify in one run")
	verifyCmd.Flags().Duration("delay", 2*time.Second, "delay between investigations")
}

func runVerify(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	if config.AI == nil || !config.AI.Enabled {
		zlog.Fatal("ai verification is not enabled",
			zap.String("hint", "set ai.enabled to true in the configuration file"),
		)
	}

	investigator, err := newInvestigator(ctx, config.AI, zlog)
	if err != nil {
		zlog.Fatal("building the investigator", zap.Error(err))
	}

	db, err := store.Open(config.Database)
	if err != nil {
		zlog.Fatal("opening the database", zap.Error(err))
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	delay, _ := cmd.Flags().GetDuration("delay")

	leads, err := db.ListLeads(store.LeadFilter{QualifiedOnly: true, Limit: limit})
	if err != nil {
		zlog.Fatal("listing qualified leads", zap.Error(err))
	}
	if len(leads) == 0 {
		zlog.Info("exiting", zap.String("reason", "no qualified leads to verify"))
		return
	}

	session, err := ai.VerifyBatch(ctx, investigator, leads, delay, zlog)
	if err != nil {
		zlog.Fatal("verifying leads", zap.Error(err))
	}

	saved := 0
	for _, lead := range leads {
		if lead.VerificationStatus != "verified" {
			continue
		}
		if err := db.SaveLead(lead); err != nil {
			zlog.Warn("saving verified lead", zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}
		saved++
	}

	zlog.Info("verification finished",
		zap.Int("investigated", session.TotalInvestigated),
		zap.Int("social_verified", session.SocialVerifiedCount),
		zap.Int("high_intent", session.HighIntentCount),
		zap.Int("errors", session.Errors),
		zap.Int("saved", saved),
		zap.Duration("duration", session.Duration),
	)
}

func newInvestigator(ctx context.Context, cfg *AIConfig, zlog *zap.Logger) (ai.Investigator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai verification is enabled")
	}

	apiKey, err := loadGeminiKey(cfg.Gemini)
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumScore
	if minScore < 0 {
		minScore = 0
	}

	invLogger := logger.WithCommonFields(zlog, "gemini", generator.Model())
	invLogger = invLogger.With(zap.Float64("minimum_score", minScore))

	return gemini.NewInvestigator(generator, invLogger, minScore, cfg.Gemini.MaxLogLength), nil
}

func loadGeminiKey(cfg *GeminiConfig) (string, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}
	return apiKey, nil
}
