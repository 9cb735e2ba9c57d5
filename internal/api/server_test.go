package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/logger"
)

func TestServerUsesConfiguredTimeouts(t *testing.T) {
	cfg := &config.Config{
		Port: "8090",
		HTTP: config.HTTPConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 7 * time.Second,
			IdleTimeout:  90 * time.Second,
		},
	}

	s := New(cfg, logger.NewNop(), http.NewServeMux())

	assert.Equal(t, ":8090", s.httpServer.Addr)
	assert.Equal(t, 5*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 7*time.Second, s.httpServer.WriteTimeout)
	assert.Equal(t, 90*time.Second, s.httpServer.IdleTimeout)
}
