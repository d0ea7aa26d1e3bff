package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvsite/interactome/internal/cache"
	"github.com/dvsite/interactome/internal/config"
	"github.com/dvsite/interactome/internal/core"
	"github.com/dvsite/interactome/internal/server"
	"github.com/dvsite/interactome/internal/stringdb"
)

// stubSTRING mimics the two STRING endpoints with a fixed two-gene world and
// counts calls per endpoint.
type stubSTRING struct {
	mapCalls     int64
	networkCalls int64
}

func (s *stubSTRING) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tsv/get_string_ids":
			atomic.AddInt64(&s.mapCalls, 1)
			w.Write([]byte("queryItem\tstringId\tncbiTaxonId\tpreferredName\tscore\n" +
				"Actb\t10090.ENSMUSP00000001963\t10090\tActb\t0.98\n" +
				"Gapdh\t10090.ENSMUSP00000023211\t10090\tGapdh\t0.95\n"))
		case "/api/tsv/network":
			atomic.AddInt64(&s.networkCalls, 1)
			w.Write([]byte("stringId_A\tstringId_B\tscore\tescore\n" +
				"10090.ENSMUSP00000023211\t10090.ENSMUSP00000001963\t0.91\t0.85\n"))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestRouter(t *testing.T, stub *stubSTRING) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := httptest.NewServer(stub.handler())
	t.Cleanup(remote.Close)

	client := stringdb.NewClient(stringdb.Config{
		BaseURL:           remote.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, zerolog.Nop())

	srv := &server.Server{
		App:    core.NewInteractome(client, cache.NewMemoryStore(), zerolog.Nop()),
		Config: config.Default(),
		Logger: zerolog.Nop(),
	}
	return srv.SetupRouter()
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestResolveEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubSTRING{})

	rec := postJSON(t, router, "/api/resolve", map[string]interface{}{
		"terms":   []string{"Actb", "NotAGene123"},
		"species": 10090,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Outcomes []struct {
			Kind      string `json:"kind"`
			InputTerm string `json:"input_term"`
			Reason    string `json:"reason"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, "resolved", resp.Outcomes[0].Kind)
	assert.Equal(t, "unresolved", resp.Outcomes[1].Kind)
	assert.Equal(t, "no match", resp.Outcomes[1].Reason)
}

type networkResponse struct {
	Graph struct {
		Nodes []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"nodes"`
		Edges []struct {
			ID     string `json:"id"`
			Weight int    `json:"weight"`
		} `json:"edges"`
	} `json:"graph"`
	Skipped []struct {
		InputTerm string `json:"input_term"`
	} `json:"skipped"`
}

func TestNetworkEndpointFullFlow(t *testing.T) {
	stub := &stubSTRING{}
	router := newTestRouter(t, stub)

	payload := map[string]interface{}{
		"terms":   []string{"Actb", "Gapdh", "NotAGene123"},
		"species": 10090,
	}

	rec := postJSON(t, router, "/api/network", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp networkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Graph.Nodes, 2)
	assert.Equal(t, "10090.ENSMUSP00000001963", resp.Graph.Nodes[0].ID)
	require.Len(t, resp.Graph.Edges, 1)
	assert.Equal(t, 910, resp.Graph.Edges[0].Weight)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "NotAGene123", resp.Skipped[0].InputTerm)

	// Second identical request: served from cache, no new network call.
	rec2 := postJSON(t, router, "/api/network", payload)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.networkCalls))

	var resp2 networkResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp2))
	assert.Equal(t, resp.Graph, resp2.Graph)
}

func TestNetworkEndpointForceRefresh(t *testing.T) {
	stub := &stubSTRING{}
	router := newTestRouter(t, stub)

	base := map[string]interface{}{"terms": []string{"Actb", "Gapdh"}, "species": 10090}
	rec := postJSON(t, router, "/api/network", base)
	require.Equal(t, http.StatusOK, rec.Code)

	refreshed := map[string]interface{}{"terms": []string{"Actb", "Gapdh"}, "species": 10090, "force_refresh": true}
	rec = postJSON(t, router, "/api/network", refreshed)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.networkCalls))
}

func TestNetworkEndpointNoResolvableIdentifiers(t *testing.T) {
	router := newTestRouter(t, &stubSTRING{})

	rec := postJSON(t, router, "/api/network", map[string]interface{}{
		"terms":   []string{"NotAGene123"},
		"species": 10090,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNetworkEndpointRejectsBadNetworkType(t *testing.T) {
	router := newTestRouter(t, &stubSTRING{})

	rec := postJSON(t, router, "/api/network", map[string]interface{}{
		"terms":        []string{"Actb"},
		"species":      10090,
		"network_type": "directed",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateEndpoint(t *testing.T) {
	stub := &stubSTRING{}
	router := newTestRouter(t, stub)

	payload := map[string]interface{}{"terms": []string{"Actb", "Gapdh"}, "species": 10090}
	require.Equal(t, http.StatusOK, postJSON(t, router, "/api/network", payload).Code)

	rec := postJSON(t, router, "/api/network/invalidate", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, postJSON(t, router, "/api/network", payload).Code)
	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.networkCalls))
}
