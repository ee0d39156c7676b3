package platform

import (
	"context"
	"testing"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/memory"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseServiceMemory(t *testing.T) {
	cfg, err := platformconfig.LoadFromMap(map[string]string{"DB_TYPE": "memory"})
	require.NoError(t, err)

	svc, err := NewBaseService(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, interfaces.DatabaseTypeMemory, svc.DatabaseType)
	assert.NoError(t, svc.HealthCheck(context.Background()))

	require.NoError(t, svc.Close())
	assert.Error(t, svc.HealthCheck(context.Background()))
}

func TestNewBaseServiceRequiresConfig(t *testing.T) {
	_, err := NewBaseService(context.Background(), nil)
	assert.Error(t, err)
}

func TestNilBaseService(t *testing.T) {
	var svc *BaseService
	assert.Error(t, svc.HealthCheck(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestNewBaseServiceWithRepo(t *testing.T) {
	svc := NewBaseServiceWithRepo(memory.NewMemoryRepository(), interfaces.DatabaseTypeMemory)
	assert.NoError(t, svc.HealthCheck(context.Background()))
}
