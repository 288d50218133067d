package qc

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/shortlist-group/jobscout/internal/model"
)

//go:embed tiers.yaml
var defaultTiersYAML []byte

type tierFile struct {
	Tiers []model.Tier `yaml:"tiers"`
}

// LoadTiers returns the tier rulebook. An empty path selects the embedded
// default rulebook; otherwise the YAML file at path replaces it entirely.
func LoadTiers(path string) ([]model.Tier, error) {
	data := defaultTiersYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "qc: read tiers file %s", path)
		}
		data = fileData
	}

	var tf tierFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, eris.Wrap(err, "qc: parse tiers yaml")
	}
	if len(tf.Tiers) == 0 {
		return nil, eris.New("qc: tiers file defines no tiers")
	}
	for _, t := range tf.Tiers {
		if t.ID == "" {
			return nil, eris.New("qc: tier missing id")
		}
		if t.RequiredJobs <= 0 {
			return nil, eris.Errorf("qc: tier %s has no required job count", t.ID)
		}
	}
	return tf.Tiers, nil
}

// TierByID finds a tier in the rulebook.
func TierByID(tiers []model.Tier, id string) (model.Tier, error) {
	for _, t := range tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Tier{}, eris.Errorf("qc: unknown tier: %s", id)
}
