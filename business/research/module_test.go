package research

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/resale-pricer/business/pricing"
	"github.com/fd1az/resale-pricer/internal/config"
	"github.com/fd1az/resale-pricer/internal/logger"
	"github.com/fd1az/resale-pricer/internal/monolith"
)

func startMonolith(t *testing.T, cfg *config.Config, modules ...monolith.Module) http.Handler {
	t.Helper()
	mono, err := monolith.New(cfg, logger.New(io.Discard, logger.LevelError, "pricer-test", nil))
	require.NoError(t, err)
	t.Cleanup(func() { mono.Close() })

	require.NoError(t, mono.RegisterModules(modules...))
	require.NoError(t, mono.StartModules(context.Background(), modules...))
	return mono.Handler()
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "pricer.db")
	cfg.Research.APIKey = ""
	return cfg
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestModule_SuggestsPurchaseWithPricingModule(t *testing.T) {
	h := startMonolith(t, loadConfig(t), &pricing.Module{}, &Module{})

	page := `<li class="s-item"><a class="s-item__link" href="#">x</a><span class="s-item__price">$100.00</span></li>`
	rec := post(h, "/api/v1/research/sold-listings", page)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"max_purchase_price":"2463"`)
}

func TestModule_StandaloneHasNoSuggestion(t *testing.T) {
	h := startMonolith(t, loadConfig(t), &Module{})

	page := `<li class="s-item"><a class="s-item__link" href="#">x</a><span class="s-item__price">$100.00</span></li>`
	rec := post(h, "/api/v1/research/sold-listings", page)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"suggestion":null`)
}

func TestModule_UsesConfiguredLanguageModel(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Chanel Matelasse Bag"}}]}`))
	}))
	defer llmServer.Close()

	cfg := loadConfig(t)
	cfg.Research.APIKey = "sk-test"
	cfg.Research.BaseURL = llmServer.URL
	h := startMonolith(t, cfg, &Module{})

	rec := post(h, "/api/v1/research/keywords", `{"title": "シャネル マトラッセ バッグ"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"keywords":"Chanel Matelasse Bag"`)
	assert.Contains(t, rec.Body.String(), `"origin":"llm"`)
}
