package querybuilder

import (
	"fmt"
	"strings"

	"cloudy/internal/application/policy"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/user"
)

// sortable is the allow-list of fields a caller may order by.
var sortable = map[string]query.Field{
	"createdAt": query.FieldCreatedAt,
	"updatedAt": query.FieldUpdatedAt,
	"name":      query.FieldName,
	"size":      query.FieldSize,
}

// Build composes the listing query for requester. The visibility clause is
// always present; the other clauses only when their input is set. sort is a
// single "field-direction" token, empty means newest first. limit <= 0 means
// no limit.
func Build(requester *user.User, types []file.Type, searchText, sort string, limit int) (query.Spec, error) {
	if requester == nil {
		return query.Spec{}, apperr.ErrUnauthorized
	}
	if limit < 0 {
		return query.Spec{}, fmt.Errorf("%w: negative limit %d", apperr.ErrInvalidQuery, limit)
	}

	spec := query.Spec{
		Filter: []query.Expr{policy.Visibility(requester)},
		Sort:   query.DefaultSort,
		Limit:  limit,
	}

	if len(types) > 0 {
		vals := make([]string, 0, len(types))
		for _, t := range types {
			if !t.Valid() {
				return query.Spec{}, fmt.Errorf("%w: unknown type %q", apperr.ErrInvalidQuery, t)
			}
			vals = append(vals, string(t))
		}
		spec.Filter = append(spec.Filter, query.In(query.FieldType, vals...))
	}

	if searchText != "" {
		spec.Filter = append(spec.Filter, query.Contains(query.FieldName, searchText))
	}

	if sort != "" {
		s, err := ParseSort(sort)
		if err != nil {
			return query.Spec{}, err
		}
		spec.Sort = s
	}

	return spec, nil
}

// ParseSort reads a "field-direction" token. Any direction other than "asc"
// is descending.
func ParseSort(token string) (query.Sort, error) {
	name, dir, _ := strings.Cut(strings.TrimSpace(token), "-")
	name = strings.TrimPrefix(name, "$")

	field, ok := sortable[name]
	if !ok {
		return query.Sort{}, fmt.Errorf("%w: sort field %q is not allowed", apperr.ErrInvalidQuery, name)
	}

	s := query.Sort{Field: field, Direction: query.Desc}
	if dir == string(query.Asc) {
		s.Direction = query.Asc
	}

	return s, nil
}
