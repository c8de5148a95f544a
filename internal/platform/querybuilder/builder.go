package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// writer accumulates SQL text and its positional ($n) arguments.
type writer struct {
	sql  strings.Builder
	args []any
}

func (w *writer) str(parts ...string) {
	for _, p := range parts {
		w.sql.WriteString(p)
	}
}

func (w *writer) arg(value any) {
	w.args = append(w.args, value)
	w.sql.WriteString("$")
	w.sql.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes raw SQL, binding each '?' to the next of exprArgs. Extra '?'
// characters without a matching argument are kept verbatim.
func (w *writer) expr(raw string, exprArgs []any) {
	next := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' && next < len(exprArgs) {
			w.arg(exprArgs[next])
			next++
			continue
		}
		w.sql.WriteByte(raw[i])
	}
}

func (w *writer) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			w.str(" WHERE ")
		} else {
			w.str(" AND ")
		}
		c.write(w)
	}
}

func (w *writer) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	w.str(" ", keyword, " ", strings.Join(items, ", "))
}

func (w *writer) suffix(raw string) {
	if raw == "" {
		return
	}
	w.str(" ")
	w.expr(raw, nil)
}

func (w *writer) result() (string, []any, error) {
	return w.sql.String(), w.args, nil
}

type Condition interface {
	write(w *writer)
}

type compare struct {
	column string
	op     string
	value  any
}

func (c compare) write(w *writer) {
	w.str(c.column, " ", c.op, " ")
	w.arg(c.value)
}

func Eq(column string, value any) Condition    { return compare{column, "=", value} }
func NotEq(column string, value any) Condition { return compare{column, "<>", value} }
func Lt(column string, value any) Condition    { return compare{column, "<", value} }
func Lte(column string, value any) Condition   { return compare{column, "<=", value} }
func Gt(column string, value any) Condition    { return compare{column, ">", value} }

type in struct {
	column string
	values []any
}

// In with no values matches nothing.
func In(column string, values []any) Condition {
	return in{column: column, values: values}
}

func (c in) write(w *writer) {
	if len(c.values) == 0 {
		w.str("1=0")
		return
	}
	w.str(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.str(", ")
		}
		w.arg(v)
	}
	w.str(")")
}

type isNull string

func IsNull(column string) Condition { return isNull(column) }

func (c isNull) write(w *writer) { w.str(string(c), " IS NULL") }

type rawExpr struct {
	sql  string
	args []any
}

// Expr embeds raw SQL using '?' as the argument marker.
func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}

func (c rawExpr) write(w *writer) { w.expr(c.sql, c.args) }

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
	suffix  string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// Suffix appends raw SQL after LIMIT, e.g. "FOR UPDATE".
func (b *SelectBuilder) Suffix(sql string) *SelectBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var w writer
	w.str("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.where)
	w.list("ORDER BY", b.orderBy)
	if b.limit > 0 {
		w.str(" LIMIT ", strconv.Itoa(b.limit))
	}
	w.suffix(b.suffix)
	return w.result()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values adds one row; call it repeatedly for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL such as "ON CONFLICT DO NOTHING" or "RETURNING id".
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w writer
	w.str("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.str(", ")
		}
		w.str("(")
		for j, value := range row {
			if j > 0 {
				w.str(", ")
			}
			w.arg(value)
		}
		w.str(")")
	}
	w.suffix(b.suffix)
	return w.result()
}

type assignment struct {
	column string
	value  any
	raw    *rawExpr
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, e.g. SetExpr("updated_at", "NOW()").
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: &rawExpr{sql: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var w writer
	w.str("UPDATE ", b.table, " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.str(", ")
		}
		w.str(s.column, " = ")
		if s.raw != nil {
			s.raw.write(&w)
			continue
		}
		w.arg(s.value)
	}
	w.where(b.where)
	w.suffix(b.suffix)
	return w.result()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without where clause is not allowed")
	}

	var w writer
	w.str("DELETE FROM ", b.table)
	w.where(b.where)
	return w.result()
}
