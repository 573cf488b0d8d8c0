package cmd

import (
	"log"
	"math/rand"
	"strings"

	"github.com/faridlogistics/freightcrm/internal/compliance"
	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/logger"
	"github.com/faridlogistics/freightcrm/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Manage loads",
}

var loadAddCmd = &cobra.Command{
	Use:   "add <origin-state> <destination-state>",
	Short: "Add a load, classify its commodity and store it",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runLoadAdd(cmd, args[0], args[1])
	},
}

var loadSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate sample loads for trying out the matching pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		runLoadSample(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.AddCommand(loadAddCmd)
	loadCmd.AddCommand(loadSampleCmd)

	loadAddCmd.Flags().StringP("commodity", "c", "General Freight", "commodity type")
	loadAddCmd.Flags().StringP("equipment", "E", "dry_van", "equipment type")
	loadAddCmd.Flags().Float64P("rate", "r", 3000.0, "total rate in dollars")
	loadAddCmd.Flags().IntP("miles", "m", 1000, "loaded miles")
	loadAddCmd.Flags().Int("deadhead", 0, "deadhead miles to the pickup")
	loadAddCmd.Flags().String("broker", "Direct", "broker company name")

	loadSampleCmd.Flags().IntP("count", "n", 5, "number of sample loads")
}

func runLoadAdd(cmd *cobra.Command, origin, destination string) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	commodity, _ := cmd.Flags().GetString("commodity")
	equipmentRaw, _ := cmd.Flags().GetString("equipment")
	rate, _ := cmd.Flags().GetFloat64("rate")
	miles, _ := cmd.Flags().GetInt("miles")
	deadhead, _ := cmd.Flags().GetInt("deadhead")
	broker, _ := cmd.Flags().GetString("broker")

	equipment, err := freight.ParseEquipmentType(strings.ToLower(equipmentRaw))
	if err != nil {
		equipment = freight.EquipmentDryVan
	}

	load := freight.NewLoad(
		freight.Stop{State: strings.ToUpper(origin)},
		freight.Stop{State: strings.ToUpper(destination)},
		commodity, equipment, rate, miles,
	)
	load.DeadheadMiles = deadhead
	load.Broker = freight.Broker{CompanyName: broker}

	classifier := compliance.NewClassifier(*config.Compliance)
	verdict := classifier.ClassifyLoad(load)

	if verdict.Verdict == freight.VerdictForbidden {
		zlog.Warn("load rejected by compliance screen",
			zap.String("commodity", commodity),
			zap.String("reason", verdict.Reason),
		)
	}

	db, err := store.Open(config.Database)
	if err != nil {
		zlog.Fatal("opening the database", zap.Error(err))
	}
	defer db.Close()

	if err := db.SaveLoad(load); err != nil {
		zlog.Fatal("saving the load", zap.Error(err))
	}

	zlog.Info("load stored",
		zap.String("load_id", load.ID),
		zap.String("lane", load.Lane()),
		zap.String("verdict", string(load.ComplianceVerdict)),
		zap.Float64("rate_per_mile", load.RatePerMile()),
	)
}

type sampleRoute struct {
	originCity string
	origin     string
	destCity   string
	dest       string
	miles      int
}

var (
	sampleCommodities = []struct {
		commodity string
		equipment freight.EquipmentType
	}{
		{"Electronics", freight.EquipmentDryVan},
		{"Fresh Produce", freight.EquipmentReefer},
		{"Steel Coils", freight.EquipmentFlatbed},
		{"Packaged Food", freight.EquipmentDryVan},
		{"Medical Supplies", freight.EquipmentDryVan},
		{"Furniture", freight.EquipmentDryVan},
		{"Auto Parts", freight.EquipmentDryVan},
		{"Frozen Seafood", freight.EquipmentReefer},
		{"Building Materials", freight.EquipmentFlatbed},
		{"Machinery", freight.EquipmentFlatbed},
	}

	sampleRoutes = []sampleRoute{
		{"Dallas", "TX", "Los Angeles", "CA", 1400},
		{"Chicago", "IL", "Atlanta", "GA", 720},
		{"Houston", "TX", "Miami", "FL", 1180},
		{"Phoenix", "AZ", "Denver", "CO", 600},
		{"Seattle", "WA", "Portland", "OR", 175},
		{"Nashville", "TN", "Charlotte", "NC", 410},
		{"Kansas City", "MO", "St. Louis", "MO", 250},
		{"Detroit", "MI", "Cleveland", "OH", 170},
		{"Minneapolis", "MN", "Milwaukee", "WI", 340},
		{"San Antonio", "TX", "Austin", "TX", 80},
	}

	sampleBrokers = []freight.Broker{
		{CompanyName: "TQL Logistics", MCNumber: "123456", ContactPhone: "(800) 555-0101"},
		{CompanyName: "CH Robinson", MCNumber: "234567", ContactPhone: "(800) 555-0102"},
		{CompanyName: "XPO Logistics", MCNumber: "345678", ContactPhone: "(800) 555-0103"},
		{CompanyName: "Coyote Logistics", MCNumber: "456789", ContactPhone: "(800) 555-0104"},
		{CompanyName: "Echo Global", MCNumber: "567890", ContactPhone: "(800) 555-0105"},
	}
)

func runLoadSample(cmd *cobra.Command) {
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

	classifier := compliance.NewClassifier(*config.Compliance)

	count, _ := cmd.Flags().GetInt("count")
	loads := make([]*freight.Load, 0, count)
	for i := 0; i < count; i++ {
		pick := sampleCommodities[rand.Intn(len(sampleCommodities))]
		route := sampleRoutes[rand.Intn(len(sampleRoutes))]
		broker := sampleBrokers[rand.Intn(len(sampleBrokers))]

		// $2.00 - $3.50 per mile
		ratePerMile := 2.0 + rand.Float64()*1.5
		rate := float64(int(ratePerMile*float64(route.miles)*100)) / 100

		load := freight.NewLoad(
			freight.Stop{City: route.originCity, State: route.origin},
			freight.Stop{City: route.destCity, State: route.dest},
			pick.commodity, pick.equipment, rate, route.miles,
		)
		load.WeightLbs = 20000 + rand.Intn(24001)
		load.Broker = broker

		classifier.ClassifyLoad(load)
		loads = append(loads, load)
	}

	saved, err := db.SaveLoads(loads)
	if err != nil {
		zlog.Fatal("saving sample loads", zap.Error(err))
	}

	zlog.Info("sample loads stored", zap.Int("count", saved))
}
