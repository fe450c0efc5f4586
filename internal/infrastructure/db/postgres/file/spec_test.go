package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/query"
)

func TestBuildSelect(t *testing.T) {
	owner := "3f1c2a52-8f3e-4c55-9d8e-0d6f5d0b7a11"
	visible := query.Or(query.Equal(query.FieldOwner, owner), query.Has(query.FieldUsers, "a@x.io"))

	tests := []struct {
		name     string
		spec     query.Spec
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no filter uses default sort",
			spec:     query.Spec{},
			wantSQL:  SelectFiles + " ORDER BY created_at DESC, id DESC",
			wantArgs: nil,
		},
		{
			name: "listing query",
			spec: query.Spec{
				Filter: []query.Expr{
					visible,
					query.In(query.FieldType, "image", "video"),
					query.Contains(query.FieldName, "50%_off"),
				},
				Sort:  query.Sort{Field: query.FieldName, Direction: query.Asc},
				Limit: 10,
			},
			wantSQL: SelectFiles + " WHERE ((owner_id = $1::uuid OR $2 = ANY(users)) AND type = ANY($3)" +
				` AND name ILIKE '%' || $4 || '%') ORDER BY name ASC, id ASC LIMIT $5`,
			wantArgs: []any{owner, "a@x.io", []string{"image", "video"}, `50\%\_off`, 10},
		},
		{
			name: "ids with uuid cast",
			spec: query.Spec{
				Filter: []query.Expr{query.In(query.FieldID, owner)},
				Sort:   query.Sort{Field: query.FieldSize, Direction: query.Desc},
			},
			wantSQL:  SelectFiles + " WHERE id = ANY($1::uuid[]) ORDER BY size DESC, id DESC",
			wantArgs: []any{[]string{owner}},
		},
		{
			name: "empty in matches nothing",
			spec: query.Spec{
				Filter: []query.Expr{query.In(query.FieldType)},
			},
			wantSQL:  SelectFiles + " WHERE FALSE ORDER BY created_at DESC, id DESC",
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildSelect(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildSelect_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec query.Spec
	}{
		{name: "has on scalar", spec: query.Spec{Filter: []query.Expr{query.Has(query.FieldName, "x")}}},
		{name: "equal on list", spec: query.Spec{Filter: []query.Expr{query.Equal(query.FieldUsers, "x")}}},
		{name: "contains on size", spec: query.Spec{Filter: []query.Expr{query.Contains(query.FieldSize, "1")}}},
		{name: "unknown field", spec: query.Spec{Filter: []query.Expr{query.Equal("color", "red")}}},
		{name: "sort by users", spec: query.Spec{Sort: query.Sort{Field: query.FieldUsers}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildSelect(tt.spec)
			assert.ErrorIs(t, err, apperr.ErrInvalidQuery)
		})
	}
}
