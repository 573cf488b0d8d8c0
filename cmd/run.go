package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/faridlogistics/freightcrm/internal/compliance"
	"github.com/faridlogistics/freightcrm/internal/dispatch"
	"github.com/faridlogistics/freightcrm/internal/filtering"
	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/outreach"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes                 = "Book top matches"
	PromptNo                  = "No"
	PromptReportByBroker      = "Report by broker"
	PromptAppendToExcludeFile = "Append all loads to exclude file"
	PromptReportsToFile       = "Dump match reports to file"
	PromptOutreachDrafts      = "Generate outreach drafts"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByBroker, PromptAppendToExcludeFile, PromptReportsToFile, PromptOutreachDrafts},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the matching pipeline: screen available loads and rank qualified carriers against them",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-deadhead-filter", false, "do not drop loads with excessive deadhead miles")
	runCmd.Flags().BoolP("auto-approve", "y", false, "book top matches without asking for confirmation")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with loads to exclude. Default is unset.")
	runCmd.Flags().Float64("min-score", 0, "minimum carrier match score")
	runCmd.Flags().Int("limit", 0, "maximum matches per load")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting freightcrm", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	db, err := store.Open(config.Database)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}
	defer db.Close()

	carriers, err := db.ListLeads(store.LeadFilter{QualifiedOnly: true})
	if err != nil {
		logger.Fatal("listing qualified carriers", zap.Error(err))
	}

	logger.Info("getting qualified carriers", zap.Int("count", len(carriers)))
	if len(carriers) == 0 {
		logger.Info("exiting", zap.String("reason", "no qualified carriers, run import first"))
		return
	}

	available, err := db.ListAvailableLoads(0)
	if err != nil {
		logger.Fatal("listing available loads", zap.Error(err))
	}

	loads := &freight.Loads{Items: available}
	logger.Info("getting available loads", zap.Int("count", loads.Len()))
	if loads.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no available loads"))
		return
	}

	classifier := compliance.NewClassifier(*config.Compliance)

	loads, err = runFilters(ctx, cmd, config, classifier, logger, loads)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if loads.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no loads left after filters"))
		return
	}

	engine := dispatch.NewEngine(classifier, matchOptions(cmd, config), logger)
	reports := engine.FindMatchesAll(loads.Items, carriers)

	matched := 0
	for _, report := range reports {
		if report.HasMatches() {
			matched++
		}
		logger.Info(report.Summary())
	}
	if matched == 0 {
		logger.Info("exiting", zap.String("reason", "no matches above the score floor"))
		return
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of loads", zap.Int("count", loads.Len()), zap.Int("matched", matched))

		if err := handleAction(action, db, logger, loads, carriers, reports); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, db *store.Store, logger *zap.Logger, loads *freight.Loads, carriers []*freight.Lead, reports []*freight.MatchReport) error {
	switch action {
	case PromptYes:
		return bookTopMatches(db, logger, loads, reports)
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByBroker:
		byBroker := make(map[string][]string)
		for _, load := range loads.Items {
			byBroker[load.Broker.CompanyName] = append(byBroker[load.Broker.CompanyName], load.Lane())
		}
		pretty, _ := json.MarshalIndent(byBroker, "", "  ")
		logger.Info(string(pretty), zap.Int("loads count", loads.Len()))
		return nil
	case PromptAppendToExcludeFile:
		excludeFile := viper.GetString("exclude-file")
		if excludeFile == "" {
			return errors.New("exclude file is not configured")
		}

		excluded, err := freight.GetExcludedLoadsFromFile(excludeFile)
		if err != nil {
			return err
		}

		excluded.Append(loads.ToExcluded("declined by operator"))

		if err = excluded.ToFile(excludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", excludeFile))

		loads.ExcludeIDs(excluded.LoadIDs())
		return nil
	case PromptOutreachDrafts:
		sequencer, err := outreach.NewSequencer(logger)
		if err != nil {
			return fmt.Errorf("building outreach sequencer: %w", err)
		}

		result := sequencer.Campaign(carriers, 0)
		if len(result.Drafts) == 0 {
			logger.Info("no drafts generated", zap.Int("leads", result.TotalLeads))
			return nil
		}

		filename, err := dumpDrafts(result.Drafts)
		if err != nil {
			return fmt.Errorf("dump drafts to file: %w", err)
		}
		logger.Info("dumping outreach drafts to file",
			zap.String("filename", filename),
			zap.Int("drafts", result.DraftsCreated),
		)
		return nil
	case PromptReportsToFile:
		filename, err := dumpReports(reports)
		if err != nil {
			return fmt.Errorf("dump reports to file: %w", err)
		}
		logger.Info("dumping match reports to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// bookTopMatches books each matched load with its best ranked carrier
// and persists the result.
func bookTopMatches(db *store.Store, logger *zap.Logger, loads *freight.Loads, reports []*freight.MatchReport) error {
	booked := 0
	for _, report := range reports {
		if !report.HasMatches() {
			continue
		}

		load := loads.FindByID(report.LoadID)
		if load == nil {
			continue
		}

		best := report.Matches[0]
		load.Book(best.LeadID, best.CompanyName)

		if err := db.SaveLoad(load); err != nil {
			return fmt.Errorf("saving load %s: %w", load.ID, err)
		}

		booked++
		logger.Info("booked load with carrier",
			zap.String("load_id", load.ID),
			zap.String("lane", load.Lane()),
			zap.String("carrier", best.CompanyName),
			zap.Float64("score", best.Score),
			zap.Float64("commission", load.CommissionAmount),
			zap.Float64("charity", load.CharityContribution),
		)
	}

	logger.Info("successfully booked loads", zap.Int("count", booked))
	return errExit
}

func dumpReports(reports []*freight.MatchReport) (string, error) {
	file, err := os.CreateTemp("", app+"-matches-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reports); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func dumpDrafts(drafts []*outreach.Draft) (string, error) {
	file, err := os.CreateTemp("", app+"-drafts-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(drafts); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func matchOptions(cmd *cobra.Command, config *Config) dispatch.Options {
	opts := *config.Match
	if v, err := cmd.Flags().GetFloat64("min-score"); err == nil && v > 0 {
		opts.MinScore = v
	}
	if v, err := cmd.Flags().GetInt("limit"); err == nil && v > 0 {
		opts.Limit = v
	}
	return opts
}

func runFilters(ctx context.Context, cmd *cobra.Command, config *Config, classifier *compliance.Classifier, logger *zap.Logger, loads *freight.Loads) (*freight.Loads, error) {
	steps := []filtering.Filter{
		filtering.NewCompliance(),
		filtering.NewRateFloor(),
		filtering.NewDeadhead(),
		filtering.NewExcludeFile(),
	}

	if flag := cmd.Flag("no-deadhead-filter"); flag != nil && strings.EqualFold(flag.Value.String(), "true") {
		filtering.DisableByName(steps, "deadhead", "disabled by flag")
	}

	excludeFile := viper.GetString("exclude-file")
	if excludeFile == "" {
		excludeFile = config.ExcludeFile
	}

	cfg := &filtering.Config{
		MinRatePerMile:   config.Filters.MinRatePerMile,
		MaxDeadheadMiles: config.Filters.MaxDeadheadMiles,
		MaxDeadheadRatio: config.Filters.MaxDeadheadRatio,
		ExcludeFile:      excludeFile,
	}
	deps := filtering.Deps{
		Logger:     logger,
		Classifier: classifier,
	}

	return filtering.Run(ctx, cfg, deps, steps, loads)
}
