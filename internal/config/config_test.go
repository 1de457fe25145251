package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
maproom: ethiopia
mode: 1
season: season1
predictor: pnep
predictand: bad-years
year: 2024
bad_years: [1984, 2015, 2020]
issue_months: [0, 1, 2]
frequencies: [15, 30]
include_upcoming: false
threshold_protocol: 1.5
need_valid_keys: true
valid_keys: ["ET01", "ET05"]
decision:
  value_true_positive: 4
  cost_false_positive: -1
  value_true_negative: 2
  cost_false_negative: -3
  risk_tolerances: [0, 0.5, 1]
kafka:
  enabled: true
  brokers: ["localhost:9092"]
  topic: trigger-tables
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "ethiopia", cfg.Maproom)
	assert.Equal(t, 1, cfg.Mode)
	assert.Equal(t, "season1", cfg.Season)
	assert.Equal(t, "pnep", cfg.Predictor)
	assert.Equal(t, []int{1984, 2015, 2020}, cfg.BadYears)
	assert.Equal(t, []int{0, 1, 2}, cfg.IssueMonths)
	assert.Equal(t, []int{15, 30}, cfg.Frequencies)
	assert.Equal(t, 1.5, cfg.ThresholdProtocol)
	assert.True(t, cfg.NeedValidKeys)
	assert.Equal(t, []string{"ET01", "ET05"}, cfg.ValidKeys)
	assert.Equal(t, 4.0, cfg.Decision.ValueTruePositive)
	assert.Equal(t, []float64{0, 0.5, 1}, cfg.Decision.RiskTolerances)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "trigger-tables", cfg.Kafka.Topic)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
maproom: ethiopia
predictor: pnep
predictand: bad-years
issue_months: [0]
frequencies: [30]
`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.RegionCacheSize)
	assert.Empty(t, cfg.MetricsAddr)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_CredentialsFromEnv(t *testing.T) {
	t.Setenv("MAPROOM_USERNAME", "analyst")
	t.Setenv("MAPROOM_PASSWORD", "s3cret")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "analyst", cfg.Username)
	assert.Equal(t, "s3cret", cfg.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "maproom: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing maproom",
			yaml:    "predictor: pnep\npredictand: bad-years\nissue_months: [0]\nfrequencies: [30]",
			wantErr: "maproom",
		},
		{
			name:    "missing predictor",
			yaml:    "maproom: ethiopia\npredictand: bad-years\nissue_months: [0]\nfrequencies: [30]",
			wantErr: "predictor",
		},
		{
			name:    "issue month out of range",
			yaml:    "maproom: ethiopia\npredictor: pnep\npredictand: bad-years\nissue_months: [12]\nfrequencies: [30]",
			wantErr: "issue_months",
		},
		{
			name:    "frequency out of range",
			yaml:    "maproom: ethiopia\npredictor: pnep\npredictand: bad-years\nissue_months: [0]\nfrequencies: [0]",
			wantErr: "frequencies",
		},
		{
			name:    "valid keys required",
			yaml:    "maproom: ethiopia\nmode: 1\npredictor: pnep\npredictand: bad-years\nissue_months: [0]\nfrequencies: [30]\nneed_valid_keys: true",
			wantErr: "valid_keys",
		},
		{
			name:    "risk tolerance out of range",
			yaml:    "maproom: ethiopia\npredictor: pnep\npredictand: bad-years\nissue_months: [0]\nfrequencies: [30]\ndecision:\n  risk_tolerances: [1.5]",
			wantErr: "risk_tolerances",
		},
		{
			name:    "kafka topic required",
			yaml:    "maproom: ethiopia\npredictor: pnep\npredictand: bad-years\nissue_months: [0]\nfrequencies: [30]\nkafka:\n  enabled: true\n  brokers: [\"localhost:9092\"]",
			wantErr: "kafka.topic",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
