// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"context"
	"errors"
	"time"
)

// Repository defines the interface for document store operations
type Repository interface {
	// Basic CRUD operations
	Save(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan RepositoryResult
	Find(ctx context.Context, collectionName string, query *Query, opts *FindOptions) <-chan QueryResult
	FindOne(ctx context.Context, collectionName string, query *Query) <-chan SingleResult
	Replace(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan RepositoryResult
	Delete(ctx context.Context, collectionName string, query *Query) <-chan RepositoryResult

	// UpdateFields sets top-level fields on every matched document. Result holds the matched count.
	UpdateFields(ctx context.Context, collectionName string, query *Query, updates map[string]interface{}) <-chan RepositoryResult

	// Aggregation operations
	Count(ctx context.Context, collectionName string, query *Query) <-chan CountResult

	// WithTransaction runs fn as one unit of work. Nested calls join the outer unit.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Connection management
	Ping(ctx context.Context) <-chan error
	Close() error
}

// SortDirection is the order applied to FindOptions.SortField
type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

// FindOptions represents options for find operations
type FindOptions struct {
	Limit     *int64
	SortField string
	Direction SortDirection
	// SortCast interprets the sort key before comparing, e.g. CastTimestamp for RFC3339 strings.
	SortCast string
}

// CastTimestamp compares sort keys as timestamps.
const CastTimestamp = "timestamptz"

// RepositoryResult represents the result of a repository operation
type RepositoryResult struct {
	Result interface{}
	Error  error
}

// QueryResult represents a query result cursor
type QueryResult interface {
	Next() bool
	Decode(v interface{}) error
	Close()
	Error() error
}

// SingleResult represents a single document result
type SingleResult interface {
	Decode(v interface{}) error
	Error() error
	NoResult() bool
}

// CountResult represents the result of a count operation
type CountResult struct {
	Count int64
	Error error
}

// Database type constants
const (
	DatabaseTypeMongoDB    = "mongodb"
	DatabaseTypePostgreSQL = "postgresql"
	DatabaseTypeMemory     = "memory"
)

// Common errors
var (
	ErrNoDocuments          = NewRepositoryError("no documents found", "NOT_FOUND")
	ErrDuplicateKey         = NewRepositoryError("duplicate key error", "DUPLICATE_KEY")
	ErrInvalidFilter        = NewRepositoryError("invalid filter", "INVALID_FILTER")
	ErrConnectionFailed     = NewRepositoryError("database connection failed", "CONNECTION_FAILED")
	ErrTransactionFailed    = NewRepositoryError("transaction failed", "TRANSACTION_FAILED")
)

// RepositoryError represents a repository specific error
type RepositoryError struct {
	Message string
	Code    string
	Time    time.Time
}

func (e *RepositoryError) Error() string {
	return e.Message
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message, code string) *RepositoryError {
	return &RepositoryError{
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}
}

// ErrorCode extracts the repository error code, or "" for foreign errors.
func ErrorCode(err error) string {
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Code
	}
	return ""
}
