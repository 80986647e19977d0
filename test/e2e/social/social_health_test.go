package social_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness probe.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()

	health, err := newClient(t, baseURL).GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.NotEmpty(t, health.Version)
}

// TestReadyzEndpoint verifies every dependency reports ok.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()

	health, err := newClient(t, baseURL).GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cache)
	require.Equal(t, "ok", health.Checks.Push)
}
