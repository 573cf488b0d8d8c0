package cmd

import (
	"log"

	"github.com/faridlogistics/freightcrm/internal/compliance"
	"github.com/faridlogistics/freightcrm/internal/dispatch"
	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/scoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "freightcrm"
)

type Config struct {
	Database    string             `mapstructure:"database"`
	ExcludeFile string             `mapstructure:"exclude-file"`
	Compliance  *compliance.Config `mapstructure:"compliance"`
	Scoring     *ScoringConfig     `mapstructure:"scoring"`
	Filters     *FilterConfig      `mapstructure:"filters"`
	Match       *dispatch.Options  `mapstructure:"match"`
	FMCSA       *FMCSAConfig       `mapstructure:"fmcsa"`
	AI          *AIConfig          `mapstructure:"ai"`
}

type ScoringConfig struct {
	Weights         *scoring.Weights `mapstructure:"weights"`
	Threshold       float64          `mapstructure:"threshold"`
	TargetEquipment []string         `mapstructure:"target-equipment"`
	TargetStates    []string         `mapstructure:"target-states"`
}

type FilterConfig struct {
	MinRatePerMile   float64 `mapstructure:"min-rate-per-mile"`
	MaxDeadheadMiles int     `mapstructure:"max-deadhead-miles"`
	MaxDeadheadRatio float64 `mapstructure:"max-deadhead-ratio"`
}

type FMCSAConfig struct {
	WebKeyFile string `mapstructure:"web-key-file"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	MinimumScore float64       `mapstructure:"minimum-score"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "freightcrm is a dispatch crm: it hunts carrier leads, screens loads and matches carriers to freight",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("fmcsa.web-key-file", "FMCSA_WEB_KEY_FILE"); err != nil {
		log.Fatalf("binding FMCSA_WEB_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is freightcrm.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("database", app+".db", "path to the sqlite database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional: defaults cover a usable setup.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}
	return config.withDefaults(), nil
}

func (c *Config) withDefaults() *Config {
	if c.Database == "" {
		c.Database = viper.GetString("database")
	}
	if c.Database == "" {
		c.Database = app + ".db"
	}
	if c.Compliance == nil {
		cfg := compliance.DefaultConfig()
		c.Compliance = &cfg
	}
	if c.Scoring == nil {
		c.Scoring = &ScoringConfig{}
	}
	if c.Scoring.Weights == nil {
		weights := scoring.DefaultWeights()
		c.Scoring.Weights = &weights
	}
	if c.Scoring.Threshold <= 0 {
		c.Scoring.Threshold = scoring.DefaultQualificationThreshold
	}
	if len(c.Scoring.TargetEquipment) == 0 {
		c.Scoring.TargetEquipment = []string{"dry_van", "reefer", "flatbed", "step_deck"}
	}
	if len(c.Scoring.TargetStates) == 0 {
		c.Scoring.TargetStates = []string{
			"TX", "OK", "LA", "AR", "NM", "AZ", "CA", "NV", "UT", "CO",
			"KS", "MO", "TN", "MS", "AL", "GA", "FL", "NC", "SC", "VA",
			"IL", "IN", "OH", "KY", "WV", "PA", "NY", "NJ", "MI", "WI",
		}
	}
	if c.Filters == nil {
		c.Filters = &FilterConfig{}
	}
	if c.Filters.MinRatePerMile <= 0 {
		c.Filters.MinRatePerMile = 2.00
	}
	if c.Filters.MaxDeadheadMiles <= 0 {
		c.Filters.MaxDeadheadMiles = 150
	}
	if c.Filters.MaxDeadheadRatio <= 0 {
		c.Filters.MaxDeadheadRatio = 0.30
	}
	if c.Match == nil {
		c.Match = &dispatch.Options{}
	}
	return c
}

func (c *Config) targetEquipment() []freight.EquipmentType {
	out := make([]freight.EquipmentType, 0, len(c.Scoring.TargetEquipment))
	for _, raw := range c.Scoring.TargetEquipment {
		if et, err := freight.ParseEquipmentType(raw); err == nil {
			out = append(out, et)
		}
	}
	return out
}

func (c *Config) newScorer() (*scoring.Scorer, error) {
	return scoring.NewScorer(
		*c.Scoring.Weights,
		c.targetEquipment(),
		c.Scoring.TargetStates,
		scoring.WithThreshold(c.Scoring.Threshold),
	)
}
