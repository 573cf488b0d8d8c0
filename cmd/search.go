package cmd

import (
	"log"
	"strings"

	"github.com/faridlogistics/freightcrm/internal/index"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search stored leads and loads by free text",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("limit", 10, "maximum results")
}

func runSearch(cmd *cobra.Command, query string) {
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

	idx := index.New()

	leads, err := db.ListLeads(store.LeadFilter{})
	if err != nil {
		zlog.Fatal("listing leads", zap.Error(err))
	}
	for _, lead := range leads {
		idx.Upsert(index.Document{
			ID:   lead.ID,
			Text: lead.EmbeddingText(),
			Metadata: map[string]string{
				"kind": "lead",
				"name": lead.CompanyName,
			},
		})
	}

	loads, err := db.ListAvailableLoads(0)
	if err != nil {
		zlog.Fatal("listing loads", zap.Error(err))
	}
	for _, load := range loads {
		idx.Upsert(index.Document{
			ID:   load.ID,
			Text: load.EmbeddingText(),
			Metadata: map[string]string{
				"kind": "load",
				"name": load.Lane(),
			},
		})
	}

	limit, _ := cmd.Flags().GetInt("limit")
	hits := idx.Search(query, limit)

	if len(hits) == 0 {
		zlog.Info("no results", zap.String("query", query), zap.Int("indexed", idx.Len()))
		return
	}

	for _, hit := range hits {
		zlog.Info("result",
			zap.String("kind", hit.Metadata["kind"]),
			zap.String("name", hit.Metadata["name"]),
			zap.String("id", hit.ID),
			zap.Float64("similarity", hit.Similarity),
		)
	}
}
