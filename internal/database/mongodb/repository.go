// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepository implements the Repository interface for MongoDB
type MongoRepository struct {
	client           *mongo.Client
	database         *mongo.Database
	dbName           string
	nonTransactional bool
}

// MongoQueryResult implements QueryResult for MongoDB
type MongoQueryResult struct {
	cursor *mongo.Cursor
	ctx    context.Context
	err    error
}

// MongoSingleResult implements SingleResult for MongoDB
type MongoSingleResult struct {
	result   *mongo.SingleResult
	err      error
	noResult bool
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(ctx context.Context, config *interfaces.MongoDBConfig, databaseName string, nonTransactional bool) (*MongoRepository, error) {
	uri := config.URI
	if uri == "" {
		uri = buildConnectionURI(config)
	}

	clientOptions := options.Client().ApplyURI(uri)

	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(config.MaxPoolSize))
	}

	if config.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(uint64(config.MinPoolSize))
	}

	if config.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(time.Duration(config.ConnectTimeout) * time.Second)
	}

	if config.SocketTimeout > 0 {
		clientOptions.SetSocketTimeout(time.Duration(config.SocketTimeout) * time.Second)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoRepository{
		client:           client,
		database:         client.Database(databaseName),
		dbName:           databaseName,
		nonTransactional: nonTransactional,
	}, nil
}

// buildConnectionURI builds MongoDB connection URI from config
func buildConnectionURI(config *interfaces.MongoDBConfig) string {
	uri := "mongodb://"

	if config.Username != "" && config.Password != "" {
		uri += fmt.Sprintf("%s:%s@", config.Username, config.Password)
	}

	uri += fmt.Sprintf("%s:%d", config.Host, config.Port)

	params := ""
	if config.AuthDatabase != "" {
		params += "authSource=" + config.AuthDatabase
	}
	if config.ReplicaSet != "" {
		if params != "" {
			params += "&"
		}
		params += "replicaSet=" + config.ReplicaSet
	}
	if params != "" {
		uri += "/?" + params
	}

	return uri
}

// Save stores a single document
func (r *MongoRepository) Save(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		if objectID == "" {
			result <- interfaces.RepositoryResult{Error: fmt.Errorf("%w: object id is required", interfaces.ErrInvalidFilter)}
			return
		}

		_, err := r.database.Collection(collectionName).InsertOne(ctx, data)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				result <- interfaces.RepositoryResult{Error: interfaces.ErrDuplicateKey}
				return
			}
			log.Error("MongoDB Save error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: objectID}
	}()

	return result
}

// Find retrieves multiple documents
func (r *MongoRepository) Find(ctx context.Context, collectionName string, query *interfaces.Query, opts *interfaces.FindOptions) <-chan interfaces.QueryResult {
	result := make(chan interfaces.QueryResult)

	go func() {
		defer close(result)

		filter, err := buildFilter(query)
		if err != nil {
			result <- &MongoQueryResult{err: err}
			return
		}

		cursor, err := r.database.Collection(collectionName).Find(ctx, filter, buildFindOptions(opts))
		if err != nil {
			log.Error("MongoDB Find error: %s", err.Error())
			result <- &MongoQueryResult{err: err}
			return
		}

		result <- &MongoQueryResult{cursor: cursor, ctx: ctx}
	}()

	return result
}

func buildFindOptions(opts *interfaces.FindOptions) *options.FindOptions {
	findOptions := options.Find()
	if opts == nil {
		return findOptions
	}
	if opts.Limit != nil {
		findOptions.SetLimit(*opts.Limit)
	}
	if opts.SortField != "" {
		direction := 1
		if opts.Direction == interfaces.SortDescending {
			direction = -1
		}
		// BSON dates and numbers already compare natively, so SortCast needs no translation.
		findOptions.SetSort(bson.D{{Key: opts.SortField, Value: direction}})
	}
	return findOptions
}

// FindOne retrieves a single document
func (r *MongoRepository) FindOne(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.SingleResult {
	result := make(chan interfaces.SingleResult)

	go func() {
		defer close(result)

		filter, err := buildFilter(query)
		if err != nil {
			result <- &MongoSingleResult{err: err}
			return
		}

		singleResult := r.database.Collection(collectionName).FindOne(ctx, filter)
		if err := singleResult.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				result <- &MongoSingleResult{result: singleResult, noResult: true}
				return
			}
			log.Error("MongoDB FindOne error: %s", err.Error())
			result <- &MongoSingleResult{err: err}
			return
		}

		result <- &MongoSingleResult{result: singleResult}
	}()

	return result
}

// Replace overwrites the document with the given object id
func (r *MongoRepository) Replace(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		res, err := r.database.Collection(collectionName).ReplaceOne(ctx, bson.M{"_id": objectID}, data)
		if err != nil {
			log.Error("MongoDB Replace error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}
		if res.MatchedCount == 0 {
			result <- interfaces.RepositoryResult{Error: interfaces.ErrNoDocuments}
			return
		}

		result <- interfaces.RepositoryResult{Result: res.MatchedCount}
	}()

	return result
}

// UpdateFields sets fields on every matching document using $set
func (r *MongoRepository) UpdateFields(ctx context.Context, collectionName string, query *interfaces.Query, updates map[string]interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		filter, err := buildFilter(query)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		res, err := r.database.Collection(collectionName).UpdateMany(ctx, filter, bson.M{"$set": updates})
		if err != nil {
			log.Error("MongoDB UpdateFields error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: res.MatchedCount}
	}()

	return result
}

// Delete removes every matching document
func (r *MongoRepository) Delete(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult)

	go func() {
		defer close(result)

		filter, err := buildFilter(query)
		if err != nil {
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		res, err := r.database.Collection(collectionName).DeleteMany(ctx, filter)
		if err != nil {
			log.Error("MongoDB Delete error: %s", err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: res.DeletedCount}
	}()

	return result
}

// Count counts documents matching the query
func (r *MongoRepository) Count(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.CountResult {
	result := make(chan interfaces.CountResult)

	go func() {
		defer close(result)

		filter, err := buildFilter(query)
		if err != nil {
			result <- interfaces.CountResult{Error: err}
			return
		}

		count, err := r.database.Collection(collectionName).CountDocuments(ctx, filter)
		if err != nil {
			log.Error("MongoDB Count error: %s", err.Error())
			result <- interfaces.CountResult{Error: err}
			return
		}

		result <- interfaces.CountResult{Count: count}
	}()

	return result
}

// WithTransaction runs fn inside a session transaction. Standalone servers cannot
// run transactions; FORCE_NON_TRANSACTIONAL runs fn directly for them.
func (r *MongoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.nonTransactional || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: failed to start session: %v", interfaces.ErrTransactionFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})

	return err
}

// Ping checks the connection to the primary
func (r *MongoRepository) Ping(ctx context.Context) <-chan error {
	result := make(chan error, 1)

	go func() {
		defer close(result)
		result <- r.client.Ping(ctx, readpref.Primary())
	}()

	return result
}

// Close disconnects the client
func (r *MongoRepository) Close() error {
	return r.client.Disconnect(context.Background())
}

// MongoQueryResult implementation
func (r *MongoQueryResult) Next() bool {
	if r.cursor == nil {
		return false
	}
	return r.cursor.Next(r.ctx)
}

func (r *MongoQueryResult) Decode(v interface{}) error {
	if r.cursor == nil {
		return fmt.Errorf("cursor is nil")
	}
	return r.cursor.Decode(v)
}

func (r *MongoQueryResult) Close() {
	if r.cursor != nil {
		r.cursor.Close(r.ctx)
	}
}

func (r *MongoQueryResult) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.cursor != nil {
		return r.cursor.Err()
	}
	return nil
}

// MongoSingleResult implementation
func (r *MongoSingleResult) Decode(v interface{}) error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	if r.result == nil {
		if r.err != nil {
			return r.err
		}
		return fmt.Errorf("result is nil")
	}
	if err := r.result.Decode(v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.noResult = true
			return interfaces.ErrNoDocuments
		}
		return err
	}
	return nil
}

func (r *MongoSingleResult) Error() error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	return r.err
}

func (r *MongoSingleResult) NoResult() bool {
	return r.noResult
}
