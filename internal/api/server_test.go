package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/loadaudit/pkg/config"
	"github.com/wonny/loadaudit/pkg/logger"
)

func TestServer_New_timeoutsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Port: "8091",
		Env:  "development",
		API: config.APIConfig{
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 7 * time.Second,
			IdleTimeout:  11 * time.Second,
		},
	}

	s := New(cfg, logger.NewNop(), http.NewServeMux())

	assert.Equal(t, ":8091", s.httpServer.Addr)
	assert.Equal(t, 3*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 7*time.Second, s.httpServer.WriteTimeout)
	assert.Equal(t, 11*time.Second, s.httpServer.IdleTimeout)
}
