package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/outreach"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Draft the next email in the contact sequence for eligible leads",
	Run: func(cmd *cobra.Command, _ []string) {
		runOutreach(cmd)
	},
}

func init() {
	rootCmd.AddCommand(outreachCmd)

	outreachCmd.Flags().Int("limit", 10, "maximum drafts to generate")
	outreachCmd.Flags().Bool("high-intent-only", false, "only draft for leads with intent signals")
	outreachCmd.Flags().Bool("mark-sent", false, "record a contact attempt for every drafted lead")
	outreachCmd.Flags().String("out", "", "write drafts to a JSON file instead of logging them")
}

func runOutreach(cmd *cobra.Command) {
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

	leads, err := db.ListLeads(store.LeadFilter{QualifiedOnly: true})
	if err != nil {
		zlog.Fatal("listing qualified leads", zap.Error(err))
	}

	if highIntent, _ := cmd.Flags().GetBool("high-intent-only"); highIntent {
		filtered := make([]*freight.Lead, 0, len(leads))
		for _, lead := range leads {
			if lead.HighIntent {
				filtered = append(filtered, lead)
			}
		}
		leads = filtered
	}

	if len(leads) == 0 {
		zlog.Info("exiting", zap.String("reason", "no eligible leads"))
		return
	}

	sequencer, err := outreach.NewSequencer(zlog)
	if err != nil {
		zlog.Fatal("building the sequencer", zap.Error(err))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	result := sequencer.Campaign(leads, limit)

	for _, campaignErr := range result.Errors {
		zlog.Warn("draft issue", zap.String("detail", campaignErr))
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeDrafts(out, result.Drafts); err != nil {
			zlog.Fatal("writing drafts", zap.Error(err))
		}
		zlog.Info("drafts written", zap.String("filename", out))
	} else {
		for _, draft := range result.Drafts {
			zlog.Info("draft",
				zap.String("to", draft.ToEmail),
				zap.String("subject", draft.Subject),
				zap.String("stage", string(draft.Stage)),
			)
		}
	}

	if markSent, _ := cmd.Flags().GetBool("mark-sent"); markSent {
		for _, draft := range result.Drafts {
			for _, lead := range leads {
				if lead.ID != draft.LeadID {
					continue
				}
				sequencer.MarkSent(lead)
				if err := db.SaveLead(lead); err != nil {
					zlog.Warn("saving contacted lead", zap.String("lead_id", lead.ID), zap.Error(err))
				}
			}
		}
	}

	zlog.Info("outreach finished",
		zap.Int("total_leads", result.TotalLeads),
		zap.Int("drafts", result.DraftsCreated),
		zap.Int("skipped_no_email", result.SkippedNoEmail),
		zap.Int("skipped_do_not_contact", result.SkippedDoNotContact),
		zap.Int("skipped_recent_contact", result.SkippedRecentContact),
		zap.Int("skipped_max_attempts", result.SkippedMaxAttempts),
	)
}

func writeDrafts(path string, drafts []*outreach.Draft) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(drafts)
}
