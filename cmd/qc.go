package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shortlist-group/jobscout/internal/fetcher"
	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/qc"
)

var (
	qcBundlePath string
	qcTierID     string
	qcOrderID    string
	qcNoProbe    bool
)

var qcCmd = &cobra.Command{
	Use:   "qc",
	Short: "Evaluate a deliverable bundle against a tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var bundle model.Bundle
		if err := readJSONFile(qcBundlePath, &bundle); err != nil {
			return err
		}

		tiers, err := qc.LoadTiers(cfg.QC.TiersPath)
		if err != nil {
			return err
		}
		tier, err := qc.TierByID(tiers, qcTierID)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		result := qc.Evaluate(ctx, qcOrderID, bundle, tier, buildProbe(qcNoProbe))
		if err := st.SaveQCResult(ctx, result); err != nil {
			return eris.Wrap(err, "save qc result")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// buildProbe returns the reachability probe, or nil when probing is
// disabled (offline evaluation of a stored bundle).
func buildProbe(disabled bool) qc.ProbeFunc {
	if disabled {
		return nil
	}
	f := fetcher.NewHTTPFetcher(cfg.Fetch.UserAgent, cfg.Fetch.Timeout())
	timeout := cfg.Fetch.ProbeTimeout()
	return func(ctx context.Context, rawURL string) bool {
		return f.Probe(ctx, rawURL, timeout)
	}
}

func init() {
	qcCmd.Flags().StringVar(&qcBundlePath, "bundle", "", "path to bundle JSON (required)")
	qcCmd.Flags().StringVar(&qcTierID, "tier", "launch", "tier ID from the rulebook")
	qcCmd.Flags().StringVar(&qcOrderID, "order-id", "", "order ID recorded on the QC result")
	qcCmd.Flags().BoolVar(&qcNoProbe, "no-probe", false, "skip URL reachability probes")
	_ = qcCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(qcCmd)
}
