package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rabbit-admin/internal/rabbit"
)

func TestHealthzE2E(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// TestExchangeLifecycleE2E walks one exchange through its whole life via
// the HTTP API, against a stateful fake broker.
func TestExchangeLifecycleE2E(t *testing.T) {
	var mu sync.Mutex
	stored := map[string]map[string]any{}
	broker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			attrs := map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&attrs)
			stored[r.RequestURI] = attrs
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			attrs, ok := stored[r.RequestURI]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(attrs)
		case http.MethodDelete:
			if _, ok := stored[r.RequestURI]; !ok {
				http.NotFound(w, r)
				return
			}
			delete(stored, r.RequestURI)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer broker.Close()

	deps := Deps{
		Rabbit:       rabbit.NewClient(broker.URL, rabbit.Credentials{Username: "guest", Password: "guest"}, 0),
		DefaultVHost: "/",
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, deps)

	// create
	w, resp := doJSON(t, r, http.MethodPost, "/v1/exchanges",
		`{"name":"orders","type":"direct","vhost":"/","durable":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	// read back the attributes we created with
	w, resp = doJSON(t, r, http.MethodGet, "/v1/exchanges?name=orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out OutcomeResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "direct", out.Body["type"])
	assert.Equal(t, true, out.Body["durable"])

	// rename is rejected without touching the broker
	w, resp = doJSON(t, r, http.MethodPut, "/v1/exchanges",
		`{"name":"orders","new_name":"orders2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_OPERATION", resp.Error.Code)

	// delete
	w, _ = doJSON(t, r, http.MethodDelete, "/v1/exchanges?name=orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	// gone now
	w, resp = doJSON(t, r, http.MethodGet, "/v1/exchanges?name=orders", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}
