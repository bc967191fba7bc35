package config_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-spa/pkg/config"
)

func TestLoad_ElClientePorDefectoApuntaAlBackend(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(cfg.API.BaseURL, fmt.Sprintf(":%d", cfg.Backend.Port)),
		"API_BASE_URL (%s) debe apuntar al puerto donde escucha el backend de desarrollo (%d)",
		cfg.API.BaseURL, cfg.Backend.Port)
	assert.NotEqual(t, cfg.HTTP.Port, cfg.Backend.Port,
		"la shell y el backend no pueden compartir puerto")
}

func TestBackendConfig_AddrFormateaHostYPuerto(t *testing.T) {
	c := config.BackendConfig{Host: "127.0.0.1", Port: 3000}
	assert.Equal(t, "127.0.0.1:3000", c.Addr())
}
