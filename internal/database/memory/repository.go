// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
)

// MemoryRepository implements the Repository interface on process-local maps.
// Documents are kept as JSON so reads never share memory with callers.
type MemoryRepository struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	collections map[string]*collection
	closed      bool
}

type collection struct {
	docs  map[string][]byte
	order []string
}

type txKey struct{}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		collections: make(map[string]*collection),
	}
}

func inTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// lockWrites serializes writes with running transactions. Writes issued inside a
// transaction already hold the lock.
func (r *MemoryRepository) lockWrites(ctx context.Context) func() {
	if inTransaction(ctx) {
		return func() {}
	}
	r.txMu.Lock()
	return r.txMu.Unlock
}

func (r *MemoryRepository) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.closed {
		return interfaces.ErrConnectionFailed
	}
	return nil
}

func (r *MemoryRepository) coll(name string) *collection {
	c, ok := r.collections[name]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		r.collections[name] = c
	}
	return c
}

func repositoryResult(res interfaces.RepositoryResult) <-chan interfaces.RepositoryResult {
	ch := make(chan interfaces.RepositoryResult, 1)
	ch <- res
	close(ch)
	return ch
}

// Save stores a single document under objectID
func (r *MemoryRepository) Save(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	unlock := r.lockWrites(ctx)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(ctx); err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}
	if objectID == "" {
		return repositoryResult(interfaces.RepositoryResult{Error: fmt.Errorf("%w: object id is required", interfaces.ErrInvalidFilter)})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal data: %w", err)})
	}

	c := r.coll(collectionName)
	if _, exists := c.docs[objectID]; exists {
		return repositoryResult(interfaces.RepositoryResult{Error: interfaces.ErrDuplicateKey})
	}
	c.docs[objectID] = raw
	c.order = append(c.order, objectID)

	return repositoryResult(interfaces.RepositoryResult{Result: objectID})
}

// Find retrieves every matching document
func (r *MemoryRepository) Find(ctx context.Context, collectionName string, query *interfaces.Query, opts *interfaces.FindOptions) <-chan interfaces.QueryResult {
	ch := make(chan interfaces.QueryResult, 1)
	defer close(ch)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.check(ctx); err != nil {
		ch <- &MemoryQueryResult{err: err}
		return ch
	}

	matches, err := r.match(collectionName, query)
	if err != nil {
		ch <- &MemoryQueryResult{err: err}
		return ch
	}

	if opts != nil && opts.SortField != "" {
		sortDocuments(matches, opts)
	}
	if opts != nil && opts.Limit != nil && *opts.Limit >= 0 && int64(len(matches)) > *opts.Limit {
		matches = matches[:*opts.Limit]
	}

	docs := make([][]byte, len(matches))
	for i, m := range matches {
		docs[i] = m.raw
	}
	ch <- &MemoryQueryResult{docs: docs}
	return ch
}

// FindOne retrieves the first matching document in insertion order
func (r *MemoryRepository) FindOne(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.SingleResult {
	ch := make(chan interfaces.SingleResult, 1)
	defer close(ch)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.check(ctx); err != nil {
		ch <- &MemorySingleResult{err: err}
		return ch
	}

	matches, err := r.match(collectionName, query)
	if err != nil {
		ch <- &MemorySingleResult{err: err}
		return ch
	}
	if len(matches) == 0 {
		ch <- &MemorySingleResult{noResult: true}
		return ch
	}
	ch <- &MemorySingleResult{doc: matches[0].raw}
	return ch
}

// Replace overwrites the document stored under objectID
func (r *MemoryRepository) Replace(ctx context.Context, collectionName string, objectID string, data interface{}) <-chan interfaces.RepositoryResult {
	unlock := r.lockWrites(ctx)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(ctx); err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}

	c := r.coll(collectionName)
	if _, exists := c.docs[objectID]; !exists {
		return repositoryResult(interfaces.RepositoryResult{Error: interfaces.ErrNoDocuments})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal data: %w", err)})
	}
	c.docs[objectID] = raw

	return repositoryResult(interfaces.RepositoryResult{Result: int64(1)})
}

// UpdateFields sets top-level fields on every matching document
func (r *MemoryRepository) UpdateFields(ctx context.Context, collectionName string, query *interfaces.Query, updates map[string]interface{}) <-chan interfaces.RepositoryResult {
	unlock := r.lockWrites(ctx)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(ctx); err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}

	normalized := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if !interfaces.ValidName(k) {
			return repositoryResult(interfaces.RepositoryResult{Error: fmt.Errorf("%w: field name %q", interfaces.ErrInvalidFilter, k)})
		}
		nv, err := normalize(v)
		if err != nil {
			return repositoryResult(interfaces.RepositoryResult{Error: err})
		}
		normalized[k] = nv
	}

	matches, err := r.match(collectionName, query)
	if err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}

	c := r.coll(collectionName)
	for _, m := range matches {
		for k, v := range normalized {
			m.fields[k] = v
		}
		raw, err := json.Marshal(m.fields)
		if err != nil {
			return repositoryResult(interfaces.RepositoryResult{Error: fmt.Errorf("failed to marshal data: %w", err)})
		}
		c.docs[m.id] = raw
	}

	return repositoryResult(interfaces.RepositoryResult{Result: int64(len(matches))})
}

// Delete removes every matching document
func (r *MemoryRepository) Delete(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.RepositoryResult {
	unlock := r.lockWrites(ctx)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(ctx); err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}

	matches, err := r.match(collectionName, query)
	if err != nil {
		return repositoryResult(interfaces.RepositoryResult{Error: err})
	}
	if len(matches) == 0 {
		return repositoryResult(interfaces.RepositoryResult{Result: int64(0)})
	}

	c := r.coll(collectionName)
	removed := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		delete(c.docs, m.id)
		removed[m.id] = struct{}{}
	}
	order := c.order[:0]
	for _, id := range c.order {
		if _, gone := removed[id]; !gone {
			order = append(order, id)
		}
	}
	c.order = order

	return repositoryResult(interfaces.RepositoryResult{Result: int64(len(matches))})
}

// Count counts matching documents
func (r *MemoryRepository) Count(ctx context.Context, collectionName string, query *interfaces.Query) <-chan interfaces.CountResult {
	ch := make(chan interfaces.CountResult, 1)
	defer close(ch)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.check(ctx); err != nil {
		ch <- interfaces.CountResult{Error: err}
		return ch
	}
	matches, err := r.match(collectionName, query)
	if err != nil {
		ch <- interfaces.CountResult{Error: err}
		return ch
	}
	ch <- interfaces.CountResult{Count: int64(len(matches))}
	return ch
}

// WithTransaction serializes fn against every other write and restores the
// previous state of all collections when fn fails.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	if err := r.check(ctx); err != nil {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %v", interfaces.ErrTransactionFailed, err)
	}
	snapshot := r.snapshot()
	r.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		r.mu.Lock()
		r.collections = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *MemoryRepository) snapshot() map[string]*collection {
	out := make(map[string]*collection, len(r.collections))
	for name, c := range r.collections {
		docs := make(map[string][]byte, len(c.docs))
		for id, raw := range c.docs {
			docs[id] = raw
		}
		out[name] = &collection{docs: docs, order: append([]string(nil), c.order...)}
	}
	return out
}

// Ping reports whether the repository is still open
func (r *MemoryRepository) Ping(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	r.mu.RLock()
	ch <- r.check(ctx)
	r.mu.RUnlock()
	close(ch)
	return ch
}

// Close marks the repository closed; later operations fail
func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type document struct {
	id     string
	raw    []byte
	fields map[string]interface{}
}

// match must be called with r.mu held.
func (r *MemoryRepository) match(collectionName string, query *interfaces.Query) ([]*document, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	c, ok := r.collections[collectionName]
	if !ok {
		return nil, nil
	}

	var out []*document
	for _, id := range c.order {
		raw := c.docs[id]
		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		ok, err := matches(fields, query)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, &document{id: id, raw: raw, fields: fields})
		}
	}
	return out, nil
}

func matches(fields map[string]interface{}, query *interfaces.Query) (bool, error) {
	if query.Empty() {
		return true, nil
	}
	for _, cond := range query.Conditions {
		ok, err := matchField(fields, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, group := range query.OrGroups {
		if len(group) == 0 {
			continue
		}
		matched := false
		for _, cond := range group {
			ok, err := matchField(fields, cond)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

func matchField(fields map[string]interface{}, cond interfaces.Field) (bool, error) {
	actual := fields[cond.Name]
	switch cond.Operator {
	case interfaces.OpEqualFold:
		s, ok := actual.(string)
		return ok && strings.EqualFold(s, cond.Value.(string)), nil
	case interfaces.OpIn:
		s, ok := actual.(string)
		if !ok {
			return false, nil
		}
		for _, candidate := range cond.Value.([]string) {
			if candidate == s {
				return true, nil
			}
		}
		return false, nil
	default:
		expected, err := normalize(cond.Value)
		if err != nil {
			return false, err
		}
		return reflect.DeepEqual(actual, expected), nil
	}
}

// normalize converts v to the shape encoding/json produces when decoding into interface{}.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return out, nil
}

func sortDocuments(docs []*document, opts *interfaces.FindOptions) {
	less := func(a, b interface{}) bool {
		if opts.SortCast == interfaces.CastTimestamp {
			return parseTime(a).Before(parseTime(b))
		}
		switch av := a.(type) {
		case float64:
			if bv, ok := b.(float64); ok {
				return av < bv
			}
		case string:
			if bv, ok := b.(string); ok {
				return av < bv
			}
		}
		return fmt.Sprint(a) < fmt.Sprint(b)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].fields[opts.SortField], docs[j].fields[opts.SortField]
		if opts.Direction == interfaces.SortDescending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func parseTime(v interface{}) time.Time {
	s, _ := v.(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// MemoryQueryResult implements QueryResult over a materialized result set
type MemoryQueryResult struct {
	docs [][]byte
	pos  int
	err  error
}

func (r *MemoryQueryResult) Next() bool {
	if r.err != nil || r.pos >= len(r.docs) {
		return false
	}
	r.pos++
	return true
}

func (r *MemoryQueryResult) Decode(v interface{}) error {
	if r.pos == 0 || r.pos > len(r.docs) {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	return json.Unmarshal(r.docs[r.pos-1], v)
}

func (r *MemoryQueryResult) Close() {}

func (r *MemoryQueryResult) Error() error {
	return r.err
}

// MemorySingleResult implements SingleResult
type MemorySingleResult struct {
	doc      []byte
	err      error
	noResult bool
}

func (r *MemorySingleResult) Decode(v interface{}) error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal(r.doc, v)
}

func (r *MemorySingleResult) Error() error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	return r.err
}

func (r *MemorySingleResult) NoResult() bool {
	return r.noResult
}
