package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/qc"
	"github.com/shortlist-group/jobscout/internal/repair"
)

var (
	repairBundlePath  string
	repairTierID      string
	repairOrderID     string
	repairCandidateID string
	repairPrefsPath   string
	repairTargetURL   string
	repairNoProbe     bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Run the QC repair loop on a deliverable bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var bundle model.Bundle
		if err := readJSONFile(repairBundlePath, &bundle); err != nil {
			return err
		}

		var prefs model.JobPreferences
		if repairPrefsPath != "" {
			if err := readJSONFile(repairPrefsPath, &prefs); err != nil {
				return err
			}
		}

		tiers, err := qc.LoadTiers(cfg.QC.TiersPath)
		if err != nil {
			return err
		}
		tier, err := qc.TierByID(tiers, repairTierID)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		input := model.PipelineInput{
			CandidateID:  repairCandidateID,
			Profile:      bundle.Profile,
			Preferences:  prefs,
			TargetJobURL: repairTargetURL,
		}

		outcome, err := repair.Loop(ctx, repair.Deps{
			Store:       env.Store,
			Pipeline:    env.Pipeline,
			Generators:  repair.LocalGenerators{},
			Probe:       buildProbe(repairNoProbe),
			MaxAttempts: cfg.Repair.MaxAttempts,
		}, repairOrderID, bundle, tier, input)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	repairCmd.Flags().StringVar(&repairBundlePath, "bundle", "", "path to bundle JSON (required)")
	repairCmd.Flags().StringVar(&repairTierID, "tier", "launch", "tier ID from the rulebook")
	repairCmd.Flags().StringVar(&repairOrderID, "order-id", "", "order ID recorded on QC results")
	repairCmd.Flags().StringVar(&repairCandidateID, "candidate-id", "", "candidate UUID for pipeline re-runs")
	repairCmd.Flags().StringVar(&repairPrefsPath, "preferences", "", "path to job preferences JSON")
	repairCmd.Flags().StringVar(&repairTargetURL, "target-url", "", "specific posting URL to include on re-runs")
	repairCmd.Flags().BoolVar(&repairNoProbe, "no-probe", false, "skip URL reachability probes")
	_ = repairCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(repairCmd)
}
