package cmd

import (
	"context"
	"log"

	"github.com/faridlogistics/freightcrm/internal/hunters"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/secrets"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var huntCmd = &cobra.Command{
	Use:   "hunt <mc-number> [mc-number...]",
	Short: "Look up carriers in the federal registry by MC number and store them as leads",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runHunt(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(huntCmd)

	huntCmd.Flags().Bool("dry-run", false, "look up carriers without writing to the database")
}

func runHunt(cmd *cobra.Command, mcNumbers []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config.FMCSA == nil || config.FMCSA.WebKeyFile == "" {
		logger.Fatal("registry access is not configured",
			zap.String("hint", "set FMCSA_WEB_KEY_FILE environment variable or the 'fmcsa.web-key-file' key in the configuration file"),
		)
	}

	webKey, err := secrets.Load(secrets.Source{
		Name: "fmcsa web key",
		File: config.FMCSA.WebKeyFile,
	})
	if err != nil {
		logger.Fatal("loading fmcsa web key", zap.Error(err))
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var sink hunters.LeadSink
	if !dryRun {
		db, err := store.Open(config.Database)
		if err != nil {
			logger.Fatal("opening the database", zap.Error(err))
		}
		defer db.Close()
		sink = db
	}

	client := hunters.NewFMCSAClient(ctx, logger, webKey)
	result, err := client.HuntByMC(ctx, sink, mcNumbers)
	if err != nil {
		logger.Fatal("hunting carriers", zap.Error(err))
	}

	for _, huntErr := range result.Errors {
		logger.Warn("lookup issue", zap.String("detail", huntErr))
	}

	logger.Info("hunt finished",
		zap.Int("requested", len(mcNumbers)),
		zap.Int("collected", result.TotalFound),
		zap.Int("duplicates", result.TotalDuplicates),
		zap.Bool("dry_run", dryRun),
	)
}
