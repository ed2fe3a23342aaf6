package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cycle-server/config"
	"cycle-server/util"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsOptions_Client(t *testing.T) {
	tests := []struct {
		name    string
		opts    statsOptions
		wantErr bool
	}{
		{"nothing", statsOptions{}, true},
		{"both", statsOptions{file: "a.json", serverURL: "http://localhost:8080"}, true},
		{"server without user", statsOptions{serverURL: "http://localhost:8080"}, true},
		{"server", statsOptions{serverURL: "http://localhost:8080", userID: "u1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.client()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunStats_FromFile(t *testing.T) {
	dir := t.TempDir()
	obsPath := filepath.Join(dir, "observations.json")
	require.NoError(t, os.WriteFile(obsPath, []byte(`[
		{"date": "2024-03-01", "is_period": true},
		{"date": "2024-03-02", "is_period": true},
		{"date": "2024-03-03", "is_period": true},
		{"date": "2024-03-04", "is_period": true}
	]`), 0600))

	opts := &statsOptions{file: obsPath, months: 1, now: "2024-03-10", chartPath: filepath.Join(dir, "chart.html")}
	client, err := opts.client()
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runStats(cmd, client, opts))

	assert.Contains(t, out.String(), "Next period start: 2024-03-29")
	assert.Contains(t, out.String(), "Current cycle day: 10 (follicular)")
	assert.Contains(t, out.String(), "Predictions (11):")
	assert.Contains(t, out.String(), "2024-04-12  Predicted ovulation")
	assert.FileExists(t, opts.chartPath)
}

func TestRunStats_InvalidNow(t *testing.T) {
	opts := &statsOptions{now: "yesterday"}

	err := runStats(&cobra.Command{}, nil, opts)

	assert.Error(t, err)
}

func TestSeedResource_IsValid(t *testing.T) {
	byUser, err := util.ReadSeedFromJSON(filepath.Join("resources", config.SEED_OBSERVATIONS_RESOURCE))
	require.NoError(t, err)
	require.NotEmpty(t, byUser)

	for userID, observations := range byUser {
		for _, o := range observations {
			o.Normalize()
			assert.NoError(t, o.Validate(), "%s %s", userID, o.ToString())
		}
	}
}
