//go:build !integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/outwriter"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}
}

func analyzeConfig() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			Key:             "test-key",
			RateLimit:       10,
			CompetitorLimit: 5,
			Concurrency:     2,
		},
		Store:  config.StoreConfig{Driver: "memory", MaxEntries: 10, TTLHours: 1},
		Notify: config.NotifyConfig{Workers: 1, QueueSize: 4},
	}
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = sqliteConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, err = os.Stat(cfg.Store.DatabaseURL)
	assert.NoError(t, err)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "oracle"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open store")
}

func TestInitAnalysis_NoSinks(t *testing.T) {
	cfg = analyzeConfig()

	env, err := initAnalysis(context.Background(), config.ModeAnalyze)
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.NotNil(t, env.Service)
	assert.Nil(t, env.Dispatcher)
}

func TestInitAnalysis_WithWebhook(t *testing.T) {
	cfg = analyzeConfig()
	cfg.Notify.WebhookURL = "http://127.0.0.1:1/hook"

	env, err := initAnalysis(context.Background(), config.ModeAnalyze)
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Dispatcher)
}

func TestInitAnalysis_InvalidConfig(t *testing.T) {
	cfg = analyzeConfig()
	cfg.Google.Key = ""

	_, err := initAnalysis(context.Background(), config.ModeAnalyze)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key is required")
}

func TestAnalysisEnv_CloseNil(t *testing.T) {
	env := &analysisEnv{}
	assert.NotPanics(t, env.Close)
}

func TestScoreCommand_JSON(t *testing.T) {
	cfg = &config.Config{Google: config.GoogleConfig{CompetitorLimit: 5}}

	req := `{
		"business": {"name": "Café Nord", "rating": 4.6, "review_count": 10, "photo_count": 4, "has_website": true},
		"competitors": [
			{"name": "Small Bakery", "rating": 4.2, "review_count": 50},
			{"name": "Corner Café", "rating": 4.8, "review_count": 120},
			{"name": "Big Chain", "rating": 4.0, "review_count": 5000}
		]
	}`
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(req), 0o644))

	scoreInput, scoreFormat, scoreReportDir = path, outwriter.FormatJSON, ""
	var out bytes.Buffer
	scoreCmd.SetOut(&out)
	defer scoreCmd.SetOut(nil)

	require.NoError(t, scoreCmd.RunE(scoreCmd, nil))

	var got outwriter.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Café Nord", got.Business)
	assert.NotEmpty(t, got.Grade)
	require.Len(t, got.Competitors, 2)
	assert.Equal(t, "Corner Café", got.Competitors[0].Name)
	assert.Equal(t, "Small Bakery", got.Competitors[1].Name)
	assert.Equal(t, "Corner Café", got.TopCompetitor)
}

func TestScoreCommand_Stdin(t *testing.T) {
	cfg = &config.Config{}
	scoreInput, scoreFormat, scoreReportDir = "-", outwriter.FormatCSV, t.TempDir()

	var out bytes.Buffer
	scoreCmd.SetIn(bytes.NewBufferString(`{"business": {"name": "Solo", "review_count": 3}}`))
	scoreCmd.SetOut(&out)
	defer func() {
		scoreCmd.SetIn(nil)
		scoreCmd.SetOut(nil)
	}()

	require.NoError(t, scoreCmd.RunE(scoreCmd, nil))
	assert.Contains(t, out.String(), "business,metric,score,max")

	entries, err := os.ReadDir(scoreReportDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestScoreCommand_SchemaViolation(t *testing.T) {
	cfg = &config.Config{}
	scoreInput, scoreFormat, scoreReportDir = "-", outwriter.FormatJSON, ""

	var errOut bytes.Buffer
	scoreCmd.SetIn(bytes.NewBufferString(`{"business": {"name": "Solo", "rating": 9}}`))
	scoreCmd.SetErr(&errOut)
	defer func() {
		scoreCmd.SetIn(nil)
		scoreCmd.SetErr(nil)
	}()

	require.Error(t, scoreCmd.RunE(scoreCmd, nil))
	assert.Contains(t, errOut.String(), "rating")
}

func TestScoreCommand_MissingFile(t *testing.T) {
	cfg = &config.Config{}
	scoreInput = filepath.Join(t.TempDir(), "missing.json")

	err := scoreCmd.RunE(scoreCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ")
}

func TestStorePurgeCommand(t *testing.T) {
	cfg = sqliteConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, &model.Analysis{Token: "short", Business: model.BusinessProfile{Name: "Gone"}}, time.Millisecond))
	require.NoError(t, st.Save(ctx, &model.Analysis{Token: "kept", Business: model.BusinessProfile{Name: "Kept"}}, 0))
	require.NoError(t, st.Close())
	time.Sleep(5 * time.Millisecond)

	var out bytes.Buffer
	storePurgeCmd.SetOut(&out)
	storePurgeCmd.SetContext(ctx)
	defer storePurgeCmd.SetOut(nil)

	require.NoError(t, storePurgeCmd.RunE(storePurgeCmd, nil))
	assert.Contains(t, out.String(), "purged 1 expired analyses")
}

func TestStoreMigrateCommand_InvalidDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "oracle"}}
	storeMigrateCmd.SetContext(context.Background())

	err := storeMigrateCmd.RunE(storeMigrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestResultsCommand(t *testing.T) {
	cfg = sqliteConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	a := &model.Analysis{
		Token:    "tok123",
		Business: model.BusinessProfile{Name: "Café Nord"},
		Scores:   model.ScoreResult{Total: 61, Grade: model.Grade("C")},
	}
	require.NoError(t, st.Save(ctx, a, time.Hour))
	require.NoError(t, st.Close())

	resultsFormat = outwriter.FormatJSON
	var out bytes.Buffer
	resultsCmd.SetOut(&out)
	resultsCmd.SetContext(ctx)
	defer resultsCmd.SetOut(nil)

	require.NoError(t, resultsCmd.RunE(resultsCmd, []string{"tok123"}))

	var got outwriter.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, 61, got.Total)

	err = resultsCmd.RunE(resultsCmd, []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis for token nope")
}

func TestWriteReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	a := &model.Analysis{Reports: map[string]model.Report{
		"html": {Filename: "Visibility_Report_X.html", Data: []byte("<html></html>")},
	}}

	require.NoError(t, writeReports(dir, a))

	data, err := os.ReadFile(filepath.Join(dir, "Visibility_Report_X.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
