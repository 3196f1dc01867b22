package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:54321", c.SupabaseURL)
	assert.Equal(t, "familystock.db", c.DatabaseDSN)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.False(t, c.OfflineOnly)
}
