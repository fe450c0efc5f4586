// Package query describes provider-agnostic filters over file records.
// Metadata stores translate a Spec into their own query language.
package query

type (
	Field     string
	Op        int
	Direction string
)

const (
	FieldID        Field = "id"
	FieldOwner     Field = "owner"
	FieldUsers     Field = "users"
	FieldType      Field = "type"
	FieldName      Field = "name"
	FieldSize      Field = "size"
	FieldCreatedAt Field = "createdAt"
	FieldUpdatedAt Field = "updatedAt"
)

const (
	OpAnd Op = iota
	OpOr
	// OpEqual matches a scalar field against Values[0].
	OpEqual
	// OpIn matches a scalar field against any of Values.
	OpIn
	// OpContains is case-insensitive substring containment on a scalar field.
	OpContains
	// OpHas is membership of Values[0] in a list field.
	OpHas
)

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type (
	Expr struct {
		Op       Op
		Field    Field
		Values   []string
		Children []Expr
	}

	Sort struct {
		Field     Field
		Direction Direction
	}

	// Spec is a conjunction of Filter clauses plus ordering and an optional
	// limit (0 = unlimited).
	Spec struct {
		Filter []Expr
		Sort   Sort
		Limit  int
	}
)

func And(children ...Expr) Expr { return Expr{Op: OpAnd, Children: children} }
func Or(children ...Expr) Expr  { return Expr{Op: OpOr, Children: children} }

func Equal(f Field, v string) Expr { return Expr{Op: OpEqual, Field: f, Values: []string{v}} }

func In(f Field, vs ...string) Expr { return Expr{Op: OpIn, Field: f, Values: vs} }

func Contains(f Field, substr string) Expr {
	return Expr{Op: OpContains, Field: f, Values: []string{substr}}
}

func Has(f Field, v string) Expr { return Expr{Op: OpHas, Field: f, Values: []string{v}} }

// DefaultSort orders newest first.
var DefaultSort = Sort{Field: FieldCreatedAt, Direction: Desc}
