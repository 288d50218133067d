package qc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTiers_EmbeddedDefaults(t *testing.T) {
	tiers, err := LoadTiers("")
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	launch, err := TierByID(tiers, "launch")
	require.NoError(t, err)
	assert.Equal(t, 5, launch.RequiredJobs)
	assert.False(t, launch.RequiresResume)
	assert.InDelta(t, 0.82, launch.AutoShipMin, 1e-9)

	accelerate, err := TierByID(tiers, "accelerate")
	require.NoError(t, err)
	assert.True(t, accelerate.RequiresResume)
	assert.True(t, accelerate.RequiresOutreach)

	concierge, err := TierByID(tiers, "concierge")
	require.NoError(t, err)
	assert.True(t, concierge.HumanReviewed)
	assert.True(t, concierge.RequiresCerts)
	assert.InDelta(t, 0.9, concierge.AutoShipMin, 1e-9)
}

func TestLoadTiers_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  - id: custom
    required_jobs: 3
    min_fit_score: 10
    max_ghost_score: 90
`), 0o644))

	tiers, err := LoadTiers(path)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "custom", tiers[0].ID)
	assert.Equal(t, 3, tiers[0].RequiredJobs)
}

func TestLoadTiers_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTiers(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tiers:\n  - id: x\n    required_jobs: 0\n"), 0o644))
	_, err = LoadTiers(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("tiers: []\n"), 0o644))
	_, err = LoadTiers(empty)
	assert.Error(t, err)
}

func TestTierByID_Unknown(t *testing.T) {
	tiers, err := LoadTiers("")
	require.NoError(t, err)
	_, err = TierByID(tiers, "platinum")
	assert.Error(t, err)
}
