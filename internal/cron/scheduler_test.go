package cron

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"rabbit-admin/internal/rabbit"
)

func TestScheduler_CheckTransitions(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	client := rabbit.NewClient(srv.URL, rabbit.Credentials{Username: "guest", Password: "guest"}, 0)
	s := NewScheduler(client, "/")

	s.check()
	assert.True(t, s.healthy)

	healthy.Store(false)
	s.check()
	assert.False(t, s.healthy)

	s.check() // stays unhealthy without flapping
	assert.False(t, s.healthy)

	healthy.Store(true)
	s.check()
	assert.True(t, s.healthy)
}

func TestScheduler_StartWithoutClient(t *testing.T) {
	s := NewScheduler(nil, "/")
	s.Start() // must not panic
	s.Stop()
}
