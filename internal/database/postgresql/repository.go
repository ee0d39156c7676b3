// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

// PostgreSQLRepository implements the Repository interface for PostgreSQL.
// Every collection is a table holding one JSONB document per row.
type PostgreSQLRepository struct {
	db     *sqlx.DB
	dbName string
	schema string
	tables sync.Map
}

// PostgreSQLQueryResult implements QueryResult over rows read eagerly, so a
// transaction connection is free again before the caller iterates.
type PostgreSQLQueryResult struct {
	docs [][]byte
	pos  int
	err  error
}

// PostgreSQLSingleResult implements SingleResult for PostgreSQL
type PostgreSQLSingleResult struct {
	doc      []byte
	err      error
	noResult bool
}

type txContextKey struct{}

// NewPostgreSQLRepository creates a new PostgreSQL repository
func NewPostgreSQLRepository(ctx context.Context, config *interfaces.PostgreSQLConfig, databaseName string) (*PostgreSQLRepository, error) {
	connStr := buildConnectionString(config, databaseName)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL with sqlx: %w", err)
	}

	// Configure connection pool
	if config.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(config.MaxOpenConnections)
	}
	if config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(config.MaxIdleConnections)
	}
	if config.MaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(config.MaxLifetime) * time.Second)
	}

	schema := "public"
	if config.Schema != "" {
		schema = config.Schema
	}
	if !interfaces.ValidName(schema) {
		db.Close()
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}

	repo := &PostgreSQLRepository{
		db:     db,
		dbName: databaseName,
		schema: schema,
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// buildConnectionString builds PostgreSQL connection string from config
func buildConnectionString(config *interfaces.PostgreSQLConfig, databaseName string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", databaseName))

	if config.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", config.Username))
	}

	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))

	if config.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", config.ConnectTimeout))
	}

	return strings.Join(parts, " ")
}

// getTableName returns the table name for a collection
func (r *PostgreSQLRepository) getTableName(collectionName string) (string, error) {
	if !interfaces.ValidName(collectionName) {
		return "", fmt.Errorf("%w: collection name %q", interfaces.ErrInvalidFilter, collectionName)
	}
	return fmt.Sprintf("%s.%s", r.schema, collectionName), nil
}

// ensureTable creates the collection table on first use. It always runs on the
// pool, never inside a caller's transaction, so a rollback cannot drop it.
func (r *PostgreSQLRepository) ensureTable(ctx context.Context, collectionName string) (string, error) {
	tableName, err := r.getTableName(collectionName)
	if err != nil {
		return "", err
	}
	if _, ok := r.tables.Load(tableName); ok {
		return tableName, nil
	}

	createQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		object_id VARCHAR(255) PRIMARY KEY,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, tableName)

	if _, err := r.db.ExecContext(ctx, createQuery); err != nil {
		// Concurrent creators race on the system catalog.
		var pgErr *pq.Error
		if !errors.As(err, &pgErr) || (pgErr.Code != "42P07" && pgErr.Code != "23505") {
			return "", fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}

	indexQuery := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_data_gin ON %s USING GIN (data)", collectionName, tableName)
	if _, err := r.db.ExecContext(ctx, indexQuery); err != nil {
		log.Warn("Failed to create index: %s", err.Error())
	}

	r.tables.Store(tableName, struct{}{})
	return tableName, nil
}

// getExecutor returns the transaction carried by ctx, or the pool.
func (r *PostgreSQLRepository) getExecutor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txContextKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

// Save stores a single document
func (r *PostgreSQLRepository) Save(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		if objectID == "" {
			result <- interfaces.RepositoryResult{Error: fmt.Errorf("%w: object id is required", interfaces.ErrInvalidFilter)}
			return
		}

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		jsonData, err := json.Marshal(data)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal data: %w", err)}
			return
		}

		exec := r.getExecutor(ctx)
		query := exec.Rebind(fmt.Sprintf(`INSERT INTO %s (object_id, data) VALUES (?, ?::jsonb)`, tableName))
		if _, err := exec.ExecContext(ctx, query, objectID, string(jsonData)); err != nil {
			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				result <- interfaces.RepositoryResult{Error: interfaces.ErrDuplicateKey}
				return
			}
			log.Error("PostgreSQL Save error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: objectID}
	}()

	return result
}

// Find retrieves multiple documents
func (r *PostgreSQLRepository) Find(ctx context.Context, collectionName string, query *interfaces.Query, opts *interfaces.FindOptions) <-chan interfaces.QueryResult {
	result := make(chan interfaces.QueryResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- &PostgreSQLQueryResult{err: err}
			return
		}

		where, args, err := buildWhereClause(query)
		if err != nil {
			result <- &PostgreSQLQueryResult{err: err}
			return
		}

		orderBy, err := buildOrderByClause(opts)
		if err != nil {
			result <- &PostgreSQLQueryResult{err: err}
			return
		}

		sqlQuery := fmt.Sprintf("SELECT data FROM %s WHERE %s%s", tableName, where, orderBy)
		if opts != nil && opts.Limit != nil {
			sqlQuery += " LIMIT ?"
			args = append(args, *opts.Limit)
		}

		exec := r.getExecutor(ctx)
		rows, err := exec.QueryxContext(ctx, exec.Rebind(sqlQuery), args...)
		if err != nil {
			log.Error("PostgreSQL Find error: %s", err.Error())
			result <- &PostgreSQLQueryResult{err: err}
			return
		}
		defer rows.Close()

		var docs [][]byte
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				result <- &PostgreSQLQueryResult{err: err}
				return
			}
			docs = append(docs, raw)
		}
		if err := rows.Err(); err != nil {
			result <- &PostgreSQLQueryResult{err: err}
			return
		}

		result <- &PostgreSQLQueryResult{docs: docs}
	}()

	return result
}

// FindOne retrieves a single document
func (r *PostgreSQLRepository) FindOne(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.SingleResult {
	result := make(chan interfaces.SingleResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- &PostgreSQLSingleResult{err: err}
			return
		}

		where, args, err := buildWhereClause(query)
		if err != nil {
			result <- &PostgreSQLSingleResult{err: err}
			return
		}

		exec := r.getExecutor(ctx)
		sqlQuery := exec.Rebind(fmt.Sprintf("SELECT data FROM %s WHERE %s ORDER BY created_at LIMIT 1", tableName, where))

		var raw []byte
		if err := exec.QueryRowxContext(ctx, sqlQuery, args...).Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result <- &PostgreSQLSingleResult{noResult: true}
				return
			}
			log.Error("PostgreSQL FindOne error: %s", err.Error())
			result <- &PostgreSQLSingleResult{err: err}
			return
		}

		result <- &PostgreSQLSingleResult{doc: raw}
	}()

	return result
}

// Replace overwrites the document with the given object id
func (r *PostgreSQLRepository) Replace(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		jsonData, err := json.Marshal(data)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal data: %w", err)}
			return
		}

		exec := r.getExecutor(ctx)
		query := exec.Rebind(fmt.Sprintf("UPDATE %s SET data = ?::jsonb WHERE object_id = ?", tableName))
		res, err := exec.ExecContext(ctx, query, string(jsonData), objectID)
		if err != nil {
			log.Error("PostgreSQL Replace error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		affected, err := res.RowsAffected()
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}
		if affected == 0 {
			result <- interfaces.RepositoryResult{Error: interfaces.ErrNoDocuments}
			return
		}

		result <- interfaces.RepositoryResult{Result: affected}
	}()

	return result
}

// UpdateFields merges the updates into every matching document
func (r *PostgreSQLRepository) UpdateFields(ctx context.Context, collectionName string, query *interfaces.Query, updates map[string]interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		for field := range updates {
			if !interfaces.ValidName(field) {
				result <- interfaces.RepositoryResult{Error: fmt.Errorf("%w: field name %q", interfaces.ErrInvalidFilter, field)}
				return
			}
		}

		patch, err := json.Marshal(updates)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal updates: %w", err)}
			return
		}

		where, whereArgs, err := buildWhereClause(query)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		args := append([]interface{}{string(patch)}, whereArgs...)
		exec := r.getExecutor(ctx)
		sqlQuery := exec.Rebind(fmt.Sprintf("UPDATE %s SET data = data || ?::jsonb WHERE %s", tableName, where))
		res, err := exec.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			log.Error("PostgreSQL UpdateFields error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		affected, err := res.RowsAffected()
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: affected}
	}()

	return result
}

// Delete removes every matching document
func (r *PostgreSQLRepository) Delete(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		where, args, err := buildWhereClause(query)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		exec := r.getExecutor(ctx)
		res, err := exec.ExecContext(ctx, exec.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, where)), args...)
		if err != nil {
			log.Error("PostgreSQL Delete error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		affected, err := res.RowsAffected()
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: affected}
	}()

	return result
}

// Count counts documents matching the query
func (r *PostgreSQLRepository) Count(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.CountResult {
	result := make(chan interfaces.CountResult)

	go func() {
		defer close(result)

		tableName, err := r.ensureTable(ctx, collectionName)
		if err != nil {
			result <- interfaces.CountResult{Error: err}
			return
		}

		where, args, err := buildWhereClause(query)
		if err != nil {
			result <- interfaces.CountResult{Error: err}
			return
		}

		exec := r.getExecutor(ctx)
		var count int64
		if err := sqlx.GetContext(ctx, exec, &count, exec.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, where)), args...); err != nil {
			log.Error("PostgreSQL Count error: %s", err.Error())
			result <- interfaces.CountResult{Error: err}
			return
		}

		result <- interfaces.CountResult{Count: count}
	}()

	return result
}

// WithTransaction runs fn inside a database transaction carried by the context
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", interfaces.ErrTransactionFailed, err)
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", interfaces.ErrTransactionFailed, err)
	}

	return nil
}

// Ping checks the database connection
func (r *PostgreSQLRepository) Ping(ctx context.Context) <-chan error {
	result := make(chan error, 1)

	go func() {
		defer close(result)
		result <- r.db.PingContext(ctx)
	}()

	return result
}

// Close closes the connection pool
func (r *PostgreSQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// PostgreSQLQueryResult implementation
func (r *PostgreSQLQueryResult) Next() bool {
	if r.err != nil || r.pos >= len(r.docs) {
		return false
	}
	r.pos++
	return true
}

func (r *PostgreSQLQueryResult) Decode(v interface{}) error {
	if r.pos == 0 || r.pos > len(r.docs) {
		return fmt.Errorf("cursor is not positioned on a row")
	}
	return json.Unmarshal(r.docs[r.pos-1], v)
}

func (r *PostgreSQLQueryResult) Close() {
	r.docs = nil
}

func (r *PostgreSQLQueryResult) Error() error {
	return r.err
}

// PostgreSQLSingleResult implementation
func (r *PostgreSQLSingleResult) Decode(v interface{}) error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal(r.doc, v)
}

func (r *PostgreSQLSingleResult) Error() error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	return r.err
}

func (r *PostgreSQLSingleResult) NoResult() bool {
	return r.noResult
}
