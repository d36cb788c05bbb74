package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.SegmentDuration())
	assert.Equal(t, []string{"es-ES", "fr-FR"}, cfg.Pipeline.TargetLanguages)
	assert.Equal(t, 1, cfg.Pipeline.StageRetries)
	assert.Equal(t, "meetings", cfg.Mongo.Collection)
	assert.Equal(t, "pipeline_execution_logs", cfg.Mongo.AuditCollection)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_AUDIO_SEGMENT_DURATION", "30")
	t.Setenv("PIPELINE_TRANSLATION_TARGET_LANGUAGE", "de-DE")
	t.Setenv("PIPELINE_STAGE_RETRIES", "3")
	t.Setenv("MONGO_DB_COLLECTION", "recordings")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.SegmentDuration())
	assert.Equal(t, []string{"de-DE"}, cfg.Pipeline.TargetLanguages)
	assert.Equal(t, 3, cfg.Pipeline.StageRetries)
	assert.Equal(t, "recordings", cfg.Mongo.Collection)
}

func TestLoad_BareKeyFallback(t *testing.T) {
	t.Setenv("AUDIO_SEGMENT_DURATION", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.SegmentDuration())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PIPELINE_AUDIO_SEGMENT_DURATION", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_AutoMigrateInProduction(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Server.Environment = "production"
	cfg.Database.AutoMigrate = true
	assert.Error(t, cfg.Validate())

	cfg.Database.AutoMigrate = false
	assert.NoError(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "runs", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=runs sslmode=disable", cfg.GetDatabaseDSN())
}
