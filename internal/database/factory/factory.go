// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package factory

import (
	"context"
	"fmt"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/memory"
	"github.com/qolzam/telar/apps/social/internal/database/mongodb"
	"github.com/qolzam/telar/apps/social/internal/database/observability"
	"github.com/qolzam/telar/apps/social/internal/database/postgresql"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
)

// RepositoryFactory creates repository instances based on configuration
type RepositoryFactory struct {
	config *interfaces.RepositoryConfig
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(config *interfaces.RepositoryConfig) *RepositoryFactory {
	return &RepositoryFactory{
		config: config,
	}
}

// NewRepositoryFactoryFromPlatformConfig creates a new repository factory from platform config
func NewRepositoryFactoryFromPlatformConfig(dbConfig platformconfig.DatabaseConfig) *RepositoryFactory {
	config := &interfaces.RepositoryConfig{
		DatabaseType:          dbConfig.Type,
		DatabaseName:          getDatabaseName(dbConfig),
		ForceNonTransactional: dbConfig.ForceNonTransactional,
	}

	switch dbConfig.Type {
	case interfaces.DatabaseTypeMongoDB:
		config.MongoConfig = &interfaces.MongoDBConfig{
			URI:            dbConfig.MongoDB.URI,
			Host:           dbConfig.MongoDB.Host,
			Port:           dbConfig.MongoDB.Port,
			Username:       dbConfig.MongoDB.Username,
			Password:       dbConfig.MongoDB.Password,
			AuthDatabase:   dbConfig.MongoDB.AuthDatabase,
			ReplicaSet:     dbConfig.MongoDB.ReplicaSet,
			MaxPoolSize:    dbConfig.MongoDB.MaxPoolSize,
			ConnectTimeout: int(dbConfig.MongoDB.ConnectTimeout.Seconds()),
			SocketTimeout:  int(dbConfig.MongoDB.SocketTimeout.Seconds()),
		}
	case interfaces.DatabaseTypePostgreSQL:
		config.PostgresConfig = &interfaces.PostgreSQLConfig{
			Host:               dbConfig.Postgres.Host,
			Port:               dbConfig.Postgres.Port,
			Username:           dbConfig.Postgres.Username,
			Password:           dbConfig.Postgres.Password,
			SSLMode:            dbConfig.Postgres.SSLMode,
			Schema:             dbConfig.Postgres.Schema,
			MaxOpenConnections: dbConfig.Postgres.MaxOpenConns,
			MaxIdleConnections: dbConfig.Postgres.MaxIdleConns,
			MaxLifetime:        int(dbConfig.Postgres.ConnMaxLifetime.Seconds()),
			ConnectTimeout:     10,
		}
	}

	return &RepositoryFactory{
		config: config,
	}
}

// getDatabaseName extracts the database name from platform config
func getDatabaseName(dbConfig platformconfig.DatabaseConfig) string {
	switch dbConfig.Type {
	case interfaces.DatabaseTypeMongoDB:
		return dbConfig.MongoDB.Database
	case interfaces.DatabaseTypePostgreSQL:
		return dbConfig.Postgres.Database
	default:
		return "social"
	}
}

// ValidateConfig checks that the backend-specific section is present
func (f *RepositoryFactory) ValidateConfig() error {
	if f.config == nil || f.config.DatabaseType == "" {
		return fmt.Errorf("database type is required")
	}
	switch f.config.DatabaseType {
	case interfaces.DatabaseTypeMongoDB:
		if f.config.MongoConfig == nil {
			return fmt.Errorf("MongoDB configuration is missing")
		}
	case interfaces.DatabaseTypePostgreSQL:
		if f.config.PostgresConfig == nil {
			return fmt.Errorf("PostgreSQL configuration is missing")
		}
	case interfaces.DatabaseTypeMemory:
	default:
		return fmt.Errorf("unsupported database type: %s", f.config.DatabaseType)
	}
	return nil
}

// CreateRepository creates an instrumented repository for the configured database type
func (f *RepositoryFactory) CreateRepository(ctx context.Context) (interfaces.Repository, error) {
	if err := f.ValidateConfig(); err != nil {
		return nil, err
	}

	var (
		repo interfaces.Repository
		err  error
	)
	switch f.config.DatabaseType {
	case interfaces.DatabaseTypeMongoDB:
		repo, err = mongodb.NewMongoRepository(ctx, f.config.MongoConfig, f.config.DatabaseName, f.config.ForceNonTransactional)
		if err != nil {
			return nil, fmt.Errorf("failed to create MongoDB repository: %w", err)
		}
	case interfaces.DatabaseTypePostgreSQL:
		repo, err = postgresql.NewPostgreSQLRepository(ctx, f.config.PostgresConfig, f.config.DatabaseName)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL repository: %w", err)
		}
	case interfaces.DatabaseTypeMemory:
		repo = memory.NewMemoryRepository()
	}

	return observability.NewInstrumentedRepository(repo, f.config.DatabaseType), nil
}
