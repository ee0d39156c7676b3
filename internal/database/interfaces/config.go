// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

// RepositoryConfig represents the configuration for repository creation
type RepositoryConfig struct {
	DatabaseType string
	DatabaseName string

	// ForceNonTransactional runs WithTransaction bodies without a server-side transaction.
	ForceNonTransactional bool

	// MongoDB specific
	MongoConfig *MongoDBConfig

	// PostgreSQL specific
	PostgresConfig *PostgreSQLConfig
}

// MongoDBConfig represents MongoDB specific configuration
type MongoDBConfig struct {
	URI            string
	Host           string
	Port           int
	Username       string
	Password       string
	AuthDatabase   string
	ReplicaSet     string
	ConnectTimeout int
	SocketTimeout  int
	MaxPoolSize    int
	MinPoolSize    int
}

// PostgreSQLConfig represents PostgreSQL specific configuration
type PostgreSQLConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	SSLMode            string
	ConnectTimeout     int
	MaxOpenConnections int
	MaxIdleConnections int
	MaxLifetime        int
	Schema             string
}
