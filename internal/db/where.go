package db

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed SQL conditions with positional arguments.
type Where struct {
	conds []string
	args  []any
}

// Arg appends v to the argument list and returns its placeholder ($n).
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// Add appends a condition. Placeholders in cond must come from Arg.
func (w *Where) Add(cond string) {
	w.conds = append(w.conds, cond)
}

// Eq adds "column = value".
func (w *Where) Eq(column string, v any) {
	w.Add(column + " = " + w.Arg(v))
}

// SQL returns " WHERE ..." or "" when no conditions were added.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns the accumulated arguments.
func (w *Where) Args() []any {
	return w.args
}
