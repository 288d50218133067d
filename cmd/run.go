package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shortlist-group/jobscout/internal/model"
)

var (
	runCandidateID string
	runProfilePath string
	runPrefsPath   string
	runTargetURL   string
	runTargetJD    string
	runMaxResults  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the discovery pipeline for one candidate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if _, err := uuid.Parse(runCandidateID); err != nil {
			return eris.Wrap(err, "candidate-id must be a UUID")
		}

		var profile model.ResumeProfile
		if err := readJSONFile(runProfilePath, &profile); err != nil {
			return err
		}

		var prefs model.JobPreferences
		if runPrefsPath != "" {
			if err := readJSONFile(runPrefsPath, &prefs); err != nil {
				return err
			}
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, model.PipelineInput{
			CandidateID:       runCandidateID,
			Profile:           profile,
			Preferences:       prefs,
			TargetJobURL:      runTargetURL,
			TargetDescription: runTargetJD,
			MaxResults:        runMaxResults,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// readJSONFile decodes one JSON file into out.
func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runCandidateID, "candidate-id", "", "candidate UUID (required)")
	runCmd.Flags().StringVar(&runProfilePath, "profile", "", "path to resume profile JSON (required)")
	runCmd.Flags().StringVar(&runPrefsPath, "preferences", "", "path to job preferences JSON")
	runCmd.Flags().StringVar(&runTargetURL, "target-url", "", "specific posting URL to include")
	runCmd.Flags().StringVar(&runTargetJD, "target-jd", "", "pasted job description for the target posting")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "max jobs to return (default from config)")
	_ = runCmd.MarkFlagRequired("candidate-id")
	_ = runCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(runCmd)
}
