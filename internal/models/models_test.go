package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONHidesPassword(t *testing.T) {
	u := User{
		ID:        1,
		Username:  "alice",
		Password:  "$argon2id$secret-hash",
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-hash")
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"username":"alice"`)
}
