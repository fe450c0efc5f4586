package file

import (
	"fmt"
	"strconv"
	"strings"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/query"
)

var fieldColumns = map[query.Field]string{
	query.FieldID:        "id",
	query.FieldOwner:     "owner_id",
	query.FieldUsers:     "users",
	query.FieldType:      "type",
	query.FieldName:      "name",
	query.FieldSize:      "size",
	query.FieldCreatedAt: "created_at",
	query.FieldUpdatedAt: "updated_at",
}

// casts for columns whose parameters arrive as strings
var fieldCasts = map[query.Field]string{
	query.FieldID:        "uuid",
	query.FieldOwner:     "uuid",
	query.FieldSize:      "bigint",
	query.FieldCreatedAt: "timestamptz",
	query.FieldUpdatedAt: "timestamptz",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// buildSelect renders spec as a parameterized SELECT over files.
func buildSelect(spec query.Spec) (string, []any, error) {
	b := &sqlBuilder{}
	var sb strings.Builder
	sb.WriteString(SelectFiles)

	if len(spec.Filter) > 0 {
		where, err := b.expr(query.And(spec.Filter...))
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	s := spec.Sort
	if s.Field == "" {
		s = query.DefaultSort
	}
	col, ok := fieldColumns[s.Field]
	if !ok || s.Field == query.FieldUsers {
		return "", nil, fmt.Errorf("%w: cannot sort by %q", apperr.ErrInvalidQuery, s.Field)
	}
	dir := "DESC"
	if s.Direction == query.Asc {
		dir = "ASC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", col, dir, dir)

	if spec.Limit > 0 {
		sb.WriteString(" LIMIT " + b.arg(spec.Limit))
	}

	return sb.String(), b.args, nil
}

func (b *sqlBuilder) expr(e query.Expr) (string, error) {
	switch e.Op {
	case query.OpAnd, query.OpOr:
		if len(e.Children) == 0 {
			if e.Op == query.OpAnd {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		joiner := " AND "
		if e.Op == query.OpOr {
			joiner = " OR "
		}
		parts := make([]string, 0, len(e.Children))
		for _, c := range e.Children {
			p, err := b.expr(c)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, joiner) + ")", nil
	}

	col, ok := fieldColumns[e.Field]
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", apperr.ErrInvalidQuery, e.Field)
	}
	isList := e.Field == query.FieldUsers

	switch e.Op {
	case query.OpHas:
		if !isList || len(e.Values) != 1 {
			return "", fmt.Errorf("%w: has on %q", apperr.ErrInvalidQuery, e.Field)
		}
		return b.arg(e.Values[0]) + " = ANY(" + col + ")", nil

	case query.OpEqual:
		if isList || len(e.Values) != 1 {
			return "", fmt.Errorf("%w: equal on %q", apperr.ErrInvalidQuery, e.Field)
		}
		return col + " = " + b.cast(e.Field, b.arg(e.Values[0])), nil

	case query.OpIn:
		if isList {
			return "", fmt.Errorf("%w: in on %q", apperr.ErrInvalidQuery, e.Field)
		}
		if len(e.Values) == 0 {
			return "FALSE", nil
		}
		p := b.arg(e.Values)
		if c, ok := fieldCasts[e.Field]; ok {
			p += "::" + c + "[]"
		}
		return col + " = ANY(" + p + ")", nil

	case query.OpContains:
		if e.Field != query.FieldName && e.Field != query.FieldType || len(e.Values) != 1 {
			return "", fmt.Errorf("%w: contains on %q", apperr.ErrInvalidQuery, e.Field)
		}
		return col + ` ILIKE '%' || ` + b.arg(likeEscaper.Replace(e.Values[0])) + ` || '%'`, nil

	default:
		return "", fmt.Errorf("%w: unknown operator %d", apperr.ErrInvalidQuery, e.Op)
	}
}

func (b *sqlBuilder) cast(f query.Field, placeholder string) string {
	if c, ok := fieldCasts[f]; ok {
		return placeholder + "::" + c
	}
	return placeholder
}
