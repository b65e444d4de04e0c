package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/config"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/metrics"
	"github.com/vladimiradmaev/nutriscan/internal/services"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

type stubGenerator struct{}

func (stubGenerator) Name() string { return "stub" }

func (stubGenerator) Generate(context.Context, services.Request) (string, error) {
	return `{"productName": "Banana", "calories": 105, "protein": 1.3, "carbs": 27, "fat": 0.4,
		"healthScore": 8, "summary": "Fruit.", "pros": ["Potassium"], "cons": [],
		"effectOnBody": "Steady energy.", "consumptionAdvice": "Daily."}`, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AI:               config.AIConfig{Provider: config.ProviderOpenAI, Timeout: time.Second},
		Storage:          config.StorageConfig{Backend: config.StorageMemory},
		ProgressInterval: 10 * time.Millisecond,
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	a := New(testConfig(), storage.NewMemoryStore(), stubGenerator{}, m)
	defer a.Close()
	ctx := context.Background()

	alice := a.NewSession(ctx, storage.ChatPrefix(1), capture.NewFrameDevice())
	bob := a.NewSession(ctx, storage.ChatPrefix(2), capture.NewFrameDevice())
	defer alice.Controller.Close()
	defer bob.Controller.Close()

	require.NoError(t, alice.Controller.Search(ctx, "banana"))
	assert.Equal(t, controller.KindShowingResult, alice.Controller.Snapshot().State.Kind())
	assert.Len(t, alice.Controller.Snapshot().History, 1)
	assert.Empty(t, bob.Controller.Snapshot().History)

	again := a.NewSession(ctx, storage.ChatPrefix(1), capture.NewFrameDevice())
	defer again.Controller.Close()
	assert.Len(t, again.Controller.Snapshot().History, 1, "history survives a new session")

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.AnalysisRequests.WithLabelValues(services.OpAnalyzeText, "stub", metrics.OutcomeSuccess)))
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	s, err := NewStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, s)

	cfg.Storage = config.StorageConfig{Backend: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "db", "n.db")}
	s, err = NewStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Backend = "mongo"
	_, err = NewStore(ctx, cfg)
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	gen, closeFn, err := NewGenerator(ctx, config.AIConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk", OpenAIModel: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())
	assert.Nil(t, closeFn)

	_, _, err = NewGenerator(ctx, config.AIConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestOpenAIGeneratorUsesBaseURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer srv.Close()

	gen, _, err := NewGenerator(context.Background(), config.AIConfig{
		Provider:      config.ProviderOpenAI,
		OpenAIAPIKey:  "sk",
		OpenAIModel:   "gpt-4o-mini",
		OpenAIBaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), services.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, "/v1/chat/completions", path)
}
