package cmd

import (
	"log"
	"time"

	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lead and load counts by status",
	Run: func(_ *cobra.Command, _ []string) {
		runStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus() {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	db, err := store.Open(config.Database)
	if err != nil {
		zlog.Fatal("opening the database", zap.Error(err))
	}
	defer db.Close()

	leadCounts, err := db.CountLeads()
	if err != nil {
		zlog.Fatal("counting leads", zap.Error(err))
	}

	loadCounts, err := db.CountLoads()
	if err != nil {
		zlog.Fatal("counting loads", zap.Error(err))
	}

	recent, err := db.RecordedSince(time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		zlog.Fatal("counting recent leads", zap.Error(err))
	}

	leadTotal := 0
	for status, count := range leadCounts {
		leadTotal += count
		zlog.Info("leads", zap.String("status", string(status)), zap.Int("count", count))
	}

	loadTotal := 0
	for status, count := range loadCounts {
		loadTotal += count
		zlog.Info("loads", zap.String("status", string(status)), zap.Int("count", count))
	}

	zlog.Info("totals",
		zap.Int("leads", leadTotal),
		zap.Int("loads", loadTotal),
		zap.Int("leads_last_7_days", recent),
		zap.String("database", config.Database),
	)
}
