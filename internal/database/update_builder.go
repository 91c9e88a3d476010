package database

import (
	"fmt"
	"strings"

	"tale-server/internal/models"
)

// updateBuilder accumulates SET assignments with numbered placeholders for
// dynamic partial updates.
type updateBuilder struct {
	assignments []string
	args        []any
	nextArg     int
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{nextArg: 1}
}

func (b *updateBuilder) set(column string, arg any) {
	b.assignments = append(b.assignments, fmt.Sprintf("%s = $%d", column, b.nextArg))
	b.args = append(b.args, arg)
	b.nextArg++
}

func (b *updateBuilder) setRaw(assignment string) {
	b.assignments = append(b.assignments, assignment)
}

func (b *updateBuilder) empty() bool {
	return len(b.assignments) == 0
}

// clause joins the accumulated assignments for a SET list.
func (b *updateBuilder) clause() string {
	return strings.Join(b.assignments, ", ")
}

// next returns the placeholder index for the first argument after the SET
// list, e.g. for WHERE conditions.
func (b *updateBuilder) next() int {
	return b.nextArg
}

// setField adds the column when the field was provided: NULL when explicitly
// cleared, the value otherwise. Absent fields leave the column untouched.
func setField[T any](b *updateBuilder, column string, f models.Field[T]) {
	if !f.IsSet() {
		return
	}
	if f.IsNull() {
		b.setRaw(column + " = NULL")
		return
	}
	b.set(column, f.Get())
}
