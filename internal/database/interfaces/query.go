// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"fmt"
	"regexp"
)

// Supported field operators.
const (
	OpEqual     = "="
	OpEqualFold = "ieq" // case-insensitive string equality
	OpIn        = "in"  // value is a []string of candidates
)

// Field is a single condition on a top-level document field.
type Field struct {
	Name     string      // The document field name, e.g. "email" or "_id".
	Value    interface{} // The value to query against.
	Operator string      // One of OpEqual, OpEqualFold, OpIn.
}

// Query defines a structured, database-agnostic query.
// Conditions are ANDed; each OR group is ORed internally and ANDed with the rest.
type Query struct {
	Conditions []Field
	OrGroups   [][]Field
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is safe to use as a field or collection identifier.
func ValidName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// Where starts a query with one equality condition.
func Where(name string, value interface{}) *Query {
	return &Query{Conditions: []Field{{Name: name, Value: value, Operator: OpEqual}}}
}

// ByID matches the document with the given object id.
func ByID(objectID string) *Query {
	return Where("_id", objectID)
}

// ByIDs matches every document whose object id is in ids.
func ByIDs(ids []string) *Query {
	return &Query{Conditions: []Field{{Name: "_id", Value: ids, Operator: OpIn}}}
}

// WhereFold matches a string field case-insensitively.
func WhereFold(name string, value string) *Query {
	return &Query{Conditions: []Field{{Name: name, Value: value, Operator: OpEqualFold}}}
}

// And appends an equality condition.
func (q *Query) And(name string, value interface{}) *Query {
	q.Conditions = append(q.Conditions, Field{Name: name, Value: value, Operator: OpEqual})
	return q
}

// Empty reports whether the query matches every document.
func (q *Query) Empty() bool {
	return q == nil || (len(q.Conditions) == 0 && len(q.OrGroups) == 0)
}

// Validate checks field names, operators and value shapes.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	check := func(f Field) error {
		if !ValidName(f.Name) {
			return fmt.Errorf("%w: field name %q", ErrInvalidFilter, f.Name)
		}
		switch f.Operator {
		case OpEqual, "":
		case OpEqualFold:
			if _, ok := f.Value.(string); !ok {
				return fmt.Errorf("%w: %s requires a string value for %q", ErrInvalidFilter, OpEqualFold, f.Name)
			}
		case OpIn:
			if _, ok := f.Value.([]string); !ok {
				return fmt.Errorf("%w: %s requires a []string value for %q", ErrInvalidFilter, OpIn, f.Name)
			}
		default:
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, f.Operator)
		}
		return nil
	}
	for _, f := range q.Conditions {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, group := range q.OrGroups {
		for _, f := range group {
			if err := check(f); err != nil {
				return err
			}
		}
	}
	return nil
}
