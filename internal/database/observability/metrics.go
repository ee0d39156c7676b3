// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package observability

import (
	"context"
	"errors"
	"time"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/metrics"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

// InstrumentedRepository records count, latency and outcome of every call to
// the wrapped repository.
type InstrumentedRepository struct {
	next    interfaces.Repository
	backend string
}

// NewInstrumentedRepository wraps next; backend labels the recorded series.
func NewInstrumentedRepository(next interfaces.Repository, backend string) *InstrumentedRepository {
	return &InstrumentedRepository{next: next, backend: backend}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, interfaces.ErrNoDocuments):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

func (r *InstrumentedRepository) observe(operation string, start time.Time, err error) {
	metrics.ObserveStoreOperation(r.backend, operation, outcome(err), time.Since(start))
}

func (r *InstrumentedRepository) relay(operation string, start time.Time, in <-chan interfaces.RepositoryResult) <-chan interfaces.RepositoryResult {
	out := make(chan interfaces.RepositoryResult, 1)
	go func() {
		defer close(out)
		res := <-in
		r.observe(operation, start, res.Error)
		out <- res
	}()
	return out
}

func (r *InstrumentedRepository) Save(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	return r.relay("save", time.Now(), r.next.Save(ctx, collectionName, objectID, data))
}

func (r *InstrumentedRepository) Find(ctx context.Context, collectionName string, query *interfaces.Query, opts *interfaces.FindOptions) <-chan interfaces.QueryResult {
	start := time.Now()
	in := r.next.Find(ctx, collectionName, query, opts)
	out := make(chan interfaces.QueryResult, 1)
	go func() {
		defer close(out)
		res := <-in
		r.observe("find", start, res.Error())
		out <- res
	}()
	return out
}

func (r *InstrumentedRepository) FindOne(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.SingleResult {
	start := time.Now()
	in := r.next.FindOne(ctx, collectionName, query)
	out := make(chan interfaces.SingleResult, 1)
	go func() {
		defer close(out)
		res := <-in
		r.observe("find_one", start, res.Error())
		out <- res
	}()
	return out
}

func (r *InstrumentedRepository) Replace(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	return r.relay("replace", time.Now(), r.next.Replace(ctx, collectionName, objectID, data))
}

func (r *InstrumentedRepository) UpdateFields(ctx context.Context, collectionName string, query *interfaces.Query, updates map[string]interface{}) <-chan interfaces.RepositoryResult {
	return r.relay("update_fields", time.Now(), r.next.UpdateFields(ctx, collectionName, query, updates))
}

func (r *InstrumentedRepository) Delete(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.RepositoryResult {
	return r.relay("delete", time.Now(), r.next.Delete(ctx, collectionName, query))
}

func (r *InstrumentedRepository) Count(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.CountResult {
	start := time.Now()
	in := r.next.Count(ctx, collectionName, query)
	out := make(chan interfaces.CountResult, 1)
	go func() {
		defer close(out)
		res := <-in
		r.observe("count", start, res.Error)
		out <- res
	}()
	return out
}

// WithTransaction records the unit of work as a whole and logs rollbacks.
func (r *InstrumentedRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := r.next.WithTransaction(ctx, fn)
	r.observe("transaction", start, err)
	if err != nil {
		log.WarnWithContext(ctx, "Transaction rolled back on %s after %v: %v", r.backend, time.Since(start), err)
	}
	return err
}

func (r *InstrumentedRepository) Ping(ctx context.Context) <-chan error {
	start := time.Now()
	in := r.next.Ping(ctx)
	out := make(chan error, 1)
	go func() {
		defer close(out)
		err := <-in
		r.observe("ping", start, err)
		out <- err
	}()
	return out
}

func (r *InstrumentedRepository) Close() error {
	return r.next.Close()
}
