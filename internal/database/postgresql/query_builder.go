// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgresql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
)

// buildWhereClause renders a Query as a WHERE body with `?` placeholders.
// Callers rebind to the driver's placeholder style.
func buildWhereClause(query *interfaces.Query) (string, []interface{}, error) {
	if err := query.Validate(); err != nil {
		return "", nil, err
	}
	if query.Empty() {
		return "TRUE", nil, nil
	}

	var conditions []string
	var args []interface{}

	processField := func(field interfaces.Field) (string, error) {
		switch field.Operator {
		case interfaces.OpEqualFold:
			args = append(args, field.Value)
			return fmt.Sprintf("lower(data->>'%s') = lower(?)", field.Name), nil
		case interfaces.OpIn:
			args = append(args, pq.Array(field.Value))
			return fmt.Sprintf("data->>'%s' = ANY(?)", field.Name), nil
		default:
			containment, err := json.Marshal(map[string]interface{}{field.Name: field.Value})
			if err != nil {
				return "", fmt.Errorf("failed to marshal condition on %s: %w", field.Name, err)
			}
			args = append(args, string(containment))
			return "data @> ?::jsonb", nil
		}
	}

	for _, field := range query.Conditions {
		clause, err := processField(field)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, clause)
	}

	for _, group := range query.OrGroups {
		var alternatives []string
		for _, field := range group {
			clause, err := processField(field)
			if err != nil {
				return "", nil, err
			}
			alternatives = append(alternatives, clause)
		}
		if len(alternatives) > 0 {
			conditions = append(conditions, fmt.Sprintf("(%s)", strings.Join(alternatives, " OR ")))
		}
	}

	if len(conditions) == 0 {
		return "TRUE", nil, nil
	}

	return strings.Join(conditions, " AND "), args, nil
}

// buildOrderByClause renders the sort options, falling back to insertion order.
func buildOrderByClause(opts *interfaces.FindOptions) (string, error) {
	if opts == nil || opts.SortField == "" {
		return " ORDER BY created_at", nil
	}
	if !interfaces.ValidName(opts.SortField) {
		return "", fmt.Errorf("%w: sort field %q", interfaces.ErrInvalidFilter, opts.SortField)
	}

	expr := fmt.Sprintf("data->>'%s'", opts.SortField)
	switch opts.SortCast {
	case "":
	case interfaces.CastTimestamp:
		expr = fmt.Sprintf("(%s)::timestamptz", expr)
	default:
		return "", fmt.Errorf("%w: sort cast %q", interfaces.ErrInvalidFilter, opts.SortCast)
	}

	direction := "ASC"
	if opts.Direction == interfaces.SortDescending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, created_at", expr, direction), nil
}
