package ruleconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loadaudit/internal/contracts"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `contract_gap_threshold: 1h
load_gap_threshold: 60s
duration_min: 5m
duration_max: 24h
point_count_min: 10
point_count_max: 100000
ping_rate_threshold: 5s
flag_unknown_delta: true
`

func TestLoad(t *testing.T) {
	rules, err := Load(writeRules(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, time.Hour, rules.ContractGapThreshold.Std())
	assert.Equal(t, 60*time.Second, rules.LoadGapThreshold.Std())
	assert.Equal(t, 5*time.Minute, rules.DurationMin.Std())
	assert.Equal(t, 24*time.Hour, rules.DurationMax.Std())
	assert.Equal(t, 10, rules.PointCountMin)
	assert.Equal(t, 100000, rules.PointCountMax)
	assert.Equal(t, 5*time.Second, rules.PingRateThreshold.Std())
	assert.True(t, rules.FlagUnknownDelta)
}

func TestLoad_unknownFieldFails(t *testing.T) {
	_, err := Load(writeRules(t, validYAML+"load_gap_treshold: 30s\n"))
	require.Error(t, err)
}

func TestLoad_badDurationFails(t *testing.T) {
	_, err := Load(writeRules(t, "contract_gap_threshold: sixty seconds\n"))
	require.Error(t, err)
}

func TestLoad_missingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		tweak     func(*Rules)
		wantField string
	}{
		{name: "valid", tweak: func(r *Rules) {}},
		{
			name:      "zero contract gap",
			tweak:     func(r *Rules) { r.ContractGapThreshold = 0 },
			wantField: "contract_gap_threshold",
		},
		{
			name:      "negative load gap",
			tweak:     func(r *Rules) { r.LoadGapThreshold = Duration(-time.Second) },
			wantField: "load_gap_threshold",
		},
		{
			name:      "duration max below min",
			tweak:     func(r *Rules) { r.DurationMax = Duration(time.Minute) },
			wantField: "duration_max",
		},
		{
			name:      "point count min below one",
			tweak:     func(r *Rules) { r.PointCountMin = 0 },
			wantField: "point_count_min",
		},
		{
			name:      "point count max below min",
			tweak:     func(r *Rules) { r.PointCountMax = r.PointCountMin - 1 },
			wantField: "point_count_max",
		},
		{
			name:      "zero ping rate threshold",
			tweak:     func(r *Rules) { r.PingRateThreshold = 0 },
			wantField: "ping_rate_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := Default()
			tt.tweak(&rules)

			err := Validate(&rules)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *contracts.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestHash(t *testing.T) {
	a, err := Load(writeRules(t, validYAML))
	require.NoError(t, err)
	b, err := Load(writeRules(t, validYAML))
	require.NoError(t, err)

	hashA, err := Hash(a)
	require.NoError(t, err)
	hashB, err := Hash(b)
	require.NoError(t, err)

	// Same thresholds, same hash; 64 hex chars of SHA256
	assert.Equal(t, hashA, hashB)
	assert.Len(t, hashA, 64)

	// Any threshold change changes the hash
	b.PointCountMin = 11
	hashC, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashC)
}
