package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/waterflow-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/flow_table.csv", cfg.TableURL)
	assert.Equal(t, "data/sources.json", cfg.SourcesFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "flow-features", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("TABLE_URL", "https://example.org/flows.csv")
	t.Setenv("SOURCES_FILE", "/etc/waterflow/sources.json")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/flows.csv", cfg.TableURL)
	assert.Equal(t, "/etc/waterflow/sources.json", cfg.SourcesFile)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, ParseBrokers("a:1, b:2"))
	assert.Empty(t, ParseBrokers(" , "))
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	payload := `[
		{"name": "rivers", "geometry": "data/rivers.geo.json", "category": "river"},
		{"name": "weirs", "geometry": "data/weir_points.geo.json", "attributes": "data/weir_points.attrs.json"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	sources, err := LoadSources(path)
	require.NoError(t, err)

	require.Len(t, sources, 2)
	assert.Equal(t, "rivers", sources[0].Name)
	assert.Equal(t, domain.CategoryRiver, sources[0].Category)
	assert.Empty(t, sources[1].Category)
	assert.Equal(t, "data/weir_points.attrs.json", sources[1].Attributes)
}

func TestLoadSources_Invalid(t *testing.T) {
	dir := t.TempDir()

	missingGeom := filepath.Join(dir, "missing.json")
	require.NoError(t, os.WriteFile(missingGeom, []byte(`[{"name":"x"}]`), 0o600))
	_, err := LoadSources(missingGeom)
	assert.ErrorContains(t, err, "no geometry locator")

	badCategory := filepath.Join(dir, "badcat.json")
	require.NoError(t, os.WriteFile(badCategory, []byte(`[{"geometry":"g.json","category":"lake"}]`), 0o600))
	_, err = LoadSources(badCategory)
	assert.ErrorContains(t, err, "unknown category")

	_, err = LoadSources(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}
