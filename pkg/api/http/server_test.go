package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aescanero/chaincfg/internal/application/publisher"
	"github.com/aescanero/chaincfg/internal/toolchain"
	eventsmemory "github.com/aescanero/chaincfg/pkg/adapters/events/memory"
	metricsprom "github.com/aescanero/chaincfg/pkg/adapters/metrics/prometheus"
	storagememory "github.com/aescanero/chaincfg/pkg/adapters/storage/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testKey    = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testAPIKey = "ABCDEF1234567890"
)

func newTestServer(t *testing.T, environ map[string]string, publish bool) *Server {
	t.Helper()

	store := storagememory.NewInMemorySnapshotStore()
	reg := prometheus.NewRegistry()
	metrics := metricsprom.NewCollector(reg)
	pub := publisher.NewManager(toolchain.Load(environ), store, eventsmemory.NewInMemoryEventBus(), metrics, zap.NewNop(), time.Hour)
	if publish {
		_, err := pub.Publish(context.Background())
		require.NoError(t, err)
	}

	return NewServer(&Config{
		Addr:      ":0",
		Publisher: pub,
		Store:     store,
		Metrics:   metrics,
		Gatherer:  reg,
		Logger:    zap.NewNop(),
	})
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func fullEnv() map[string]string {
	return map[string]string{"PRIVATE_KEY": testKey, "POLYGONSCAN_API_KEY": testAPIKey}
}

func TestHealth(t *testing.T) {
	rec := doGet(t, newTestServer(t, nil, false), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doGet(t, newTestServer(t, nil, true), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestGetConfigIsRedacted(t *testing.T) {
	s := newTestServer(t, fullEnv(), true)

	rec := doGet(t, s, "/api/v1/config")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), testKey)
	assert.NotContains(t, rec.Body.String(), testAPIKey)

	cfg, err := toolchain.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "0.6.12", cfg.Compiler.Version)
	assert.Equal(t, uint64(137), cfg.Networks["polygon"].ChainID)
	key, ok := cfg.Networks["mumbai"].SigningKey.Value()
	assert.True(t, ok)
	assert.Equal(t, toolchain.RedactedMarker, key)
}

func TestGetCompiler(t *testing.T) {
	rec := doGet(t, newTestServer(t, nil, true), "/api/v1/compiler")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "0.6.12", body["version"])
	optimizer := body["optimizer"].(map[string]interface{})
	assert.Equal(t, true, optimizer["enabled"])
	assert.Equal(t, float64(999999), optimizer["runs"])
}

func TestNetworks(t *testing.T) {
	s := newTestServer(t, map[string]string{"PRIVATE_KEY": testKey}, true)

	rec := doGet(t, s, "/api/v1/networks")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data  []NetworkResponse `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, []NetworkResponse{
		{Name: "mumbai", URL: "https://rpc-mumbai.matic.today", ChainID: 80001, SigningKeyPresent: true},
		{Name: "polygon", URL: "https://polygon-rpc.com/", ChainID: 137, SigningKeyPresent: true},
	}, list.Data)

	rec = doGet(t, s, "/api/v1/networks/polygon")
	require.Equal(t, http.StatusOK, rec.Code)
	var polygon NetworkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &polygon))
	assert.Equal(t, uint64(137), polygon.ChainID)

	rec = doGet(t, s, "/api/v1/networks/goerli")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "NETWORK_NOT_FOUND", errBody["code"])
}

func TestVerification(t *testing.T) {
	rec := doGet(t, newTestServer(t, nil, true), "/api/v1/verification")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["apiKeyPresent"])

	rec = doGet(t, newTestServer(t, fullEnv(), true), "/api/v1/verification")
	assert.Equal(t, true, decode(t, rec)["apiKeyPresent"])
	assert.NotContains(t, rec.Body.String(), testAPIKey)
}

func TestSnapshot(t *testing.T) {
	rec := doGet(t, newTestServer(t, nil, false), "/api/v1/snapshot")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s := newTestServer(t, fullEnv(), true)
	rec = doGet(t, s, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), testKey)

	body := decode(t, rec)
	assert.Equal(t, s.publisher.Snapshot().ID, body["id"])
	assert.Equal(t, true, body["signing_key_present"])
}

func TestValidate(t *testing.T) {
	rec := doGet(t, newTestServer(t, fullEnv(), true), "/api/v1/validate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ready"])

	rec = doGet(t, newTestServer(t, nil, true), "/api/v1/validate")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Ready  bool          `json:"ready"`
		Checks []CheckResult `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)

	byName := map[string]CheckResult{}
	for _, c := range body.Checks {
		byName[c.Name] = c
	}
	assert.True(t, byName["structure"].Ready)
	assert.False(t, byName["accounts.polygon"].Ready)
	assert.Equal(t, toolchain.ErrMissingSigningKey.Error(), byName["accounts.mumbai"].Error)
	assert.False(t, byName["verification"].Ready)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, true)
	doGet(t, s, "/api/v1/compiler")

	rec := doGet(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chaincfg_config_loads_total 1")
	assert.Contains(t, rec.Body.String(), `chaincfg_http_requests_total{method="GET",path="/api/v1/compiler",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/config", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
