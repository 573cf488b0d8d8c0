package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/faridlogistics/freightcrm/internal/hunters"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import carrier leads from a registry CSV export, qualify and store them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runImport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int("limit", 0, "maximum leads to import (0 is unlimited)")
	importCmd.Flags().Bool("require-email", false, "skip rows without a valid email address")
	importCmd.Flags().Bool("preview", false, "parse and qualify without writing to the database")
}

func runImport(cmd *cobra.Command, path string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	scorer, err := config.newScorer()
	if err != nil {
		logger.Fatal("building the lead scorer", zap.Error(err))
	}

	preview, _ := cmd.Flags().GetBool("preview")

	var sink hunters.LeadSink
	if !preview {
		db, err := store.Open(config.Database)
		if err != nil {
			logger.Fatal("opening the database", zap.Error(err))
		}
		defer db.Close()
		sink = db
	}

	limit, _ := cmd.Flags().GetInt("limit")
	requireEmail, _ := cmd.Flags().GetBool("require-email")

	hunter := hunters.NewCSVHunter(sink, scorer, logger)
	result, err := hunter.Import(ctx, path, hunters.ImportOptions{
		Limit:        limit,
		RequireEmail: requireEmail,
	})
	if err != nil {
		logger.Fatal("importing leads", zap.Error(err))
	}

	for _, importErr := range result.Errors {
		logger.Warn("import issue", zap.String("detail", importErr))
	}

	qualified := 0
	for _, lead := range result.Leads {
		if lead.IsQualified {
			qualified++
		}
		if preview {
			logger.Info("parsed lead",
				zap.String("company", lead.CompanyName),
				zap.String("mc_number", lead.Authority.MCNumber),
				zap.Float64("score", lead.Score),
				zap.Bool("qualified", lead.IsQualified),
			)
		}
	}

	logger.Info("import finished",
		zap.String("file", path),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("imported", result.TotalFound),
		zap.Int("qualified", qualified),
		zap.Int("duplicates", result.TotalDuplicates),
		zap.String("duration", fmt.Sprintf("%.2fs", result.Duration().Seconds())),
		zap.Bool("preview", preview),
	)
}
