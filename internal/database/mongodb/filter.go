// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"regexp"

	"github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"go.mongodb.org/mongo-driver/bson"
)

// buildFilter translates a Query into a MongoDB filter document.
func buildFilter(query *interfaces.Query) (bson.M, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if query.Empty() {
		return bson.M{}, nil
	}

	var clauses bson.A
	for _, field := range query.Conditions {
		clauses = append(clauses, fieldFilter(field))
	}
	for _, group := range query.OrGroups {
		if len(group) == 0 {
			continue
		}
		var alternatives bson.A
		for _, field := range group {
			alternatives = append(alternatives, fieldFilter(field))
		}
		clauses = append(clauses, bson.M{"$or": alternatives})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}, nil
	case 1:
		return clauses[0].(bson.M), nil
	default:
		return bson.M{"$and": clauses}, nil
	}
}

func fieldFilter(field interfaces.Field) bson.M {
	switch field.Operator {
	case interfaces.OpEqualFold:
		pattern := "^" + regexp.QuoteMeta(field.Value.(string)) + "$"
		return bson.M{field.Name: bson.M{"$regex": pattern, "$options": "i"}}
	case interfaces.OpIn:
		return bson.M{field.Name: bson.M{"$in": field.Value}}
	default:
		return bson.M{field.Name: field.Value}
	}
}
