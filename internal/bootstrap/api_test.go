package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/internal/storage/memstore"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "wishlist-tracker"
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.HTTP.Port = "0"
	cfg.HTTP.RateLimitRPS = 1
	cfg.HTTP.RateLimitBurst = 1
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*http.Server, error) {
	t.Helper()
	services := InitServices(memstore.New(), price.NopHistoryCache{}, nil, logger.Nop())
	return InitHTTPServer(cfg, InitHandlers(cfg, services, logger.Nop()), logger.Nop())
}

func health(srv *http.Server, forwardedFor string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	srv.Handler.ServeHTTP(w, req)
	return w.Code
}

func TestInitHTTPServer_IgnoresForwardedForByDefault(t *testing.T) {
	srv, err := newTestServer(t, testConfig())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, health(srv, "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, health(srv, "2.2.2.2"))
}

func TestInitHTTPServer_TrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.TrustedProxies = []string{"192.0.2.0/24"}

	srv, err := newTestServer(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, health(srv, "1.1.1.1"))
	assert.Equal(t, http.StatusOK, health(srv, "2.2.2.2"))
}

func TestInitHTTPServer_InvalidTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.TrustedProxies = []string{"not-an-ip"}

	_, err := newTestServer(t, cfg)
	assert.Error(t, err)
}
