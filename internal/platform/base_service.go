// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/qolzam/telar/apps/social/internal/database/factory"
	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
)

const healthCheckTimeout = 3 * time.Second

// BaseService owns the process-wide document store handle shared by every domain service.
type BaseService struct {
	Repository   interfaces.Repository
	DatabaseType string
}

// NewBaseService creates a new base service instance from platform config
func NewBaseService(ctx context.Context, cfg *platformconfig.Config) (*BaseService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("platform configuration is required")
	}

	repositoryFactory := factory.NewRepositoryFactoryFromPlatformConfig(cfg.Database)
	if err := repositoryFactory.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}

	repository, err := repositoryFactory.CreateRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	return &BaseService{
		Repository:   repository,
		DatabaseType: cfg.Database.Type,
	}, nil
}

// NewBaseServiceWithRepo wraps an existing repository, used by tests.
func NewBaseServiceWithRepo(repo interfaces.Repository, databaseType string) *BaseService {
	return &BaseService{
		Repository:   repo,
		DatabaseType: databaseType,
	}
}

// HealthCheck pings the store, bounded by a short timeout.
func (s *BaseService) HealthCheck(ctx context.Context) error {
	if s == nil || s.Repository == nil {
		return fmt.Errorf("repository is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := <-s.Repository.Ping(ctx); err != nil {
		return fmt.Errorf("%s health check failed: %w", s.DatabaseType, err)
	}
	return nil
}

// Close closes the underlying repository
func (s *BaseService) Close() error {
	if s == nil || s.Repository == nil {
		return nil
	}
	return s.Repository.Close()
}
