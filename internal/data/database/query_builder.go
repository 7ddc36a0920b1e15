// Package database provides SQL query construction helpers shared by the data repositories.
package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType enumerates the comparison operators supported by WhereCond.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
)

// Condition is one WHERE predicate; conditions combine with AND.
type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

// WhereCond builds a standard field/operator/value condition.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{
		Field: field,
		Type:  condType,
		Value: value,
	}
}

// Ordering is one ORDER BY key. Direction must be ASC or DESC; anything else
// falls back to the database default.
type Ordering struct {
	Column    string
	Direction string
}

// ListQueryOptions collects the pieces of a filtered list query.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	Orderings  []Ordering
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions creates options for a query against table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:      table,
		Columns:    []string{},
		Conditions: []Condition{},
		Orderings:  []Ordering{},
	}

	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrdering appends an ORDER BY key; call repeatedly for multi-key ordering.
func WithOrdering(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Orderings = append(o.Orderings, Ordering{Column: column, Direction: direction})
	}
}

// sanitizeIdentifier wraps a single string identifier for sanitization.
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// buildSelectClause generates the SELECT part of the query with sanitized columns.
func buildSelectClause(options *ListQueryOptions) string {
	if len(options.Columns) == 0 {
		return "SELECT * "
	}

	sanitized := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		sanitized[i] = sanitizeIdentifier(col)
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(sanitized, ", "))
}

// buildWhereClause generates the WHERE part with positional parameters starting
// at startParamIndex. Conditions with empty fields are skipped.
func buildWhereClause(conditions []Condition, startParamIndex int) (string, []any, int) {
	if len(conditions) == 0 {
		return "", nil, startParamIndex
	}

	parts := make([]string, 0, len(conditions))
	args := make([]any, 0, len(conditions))
	paramCount := startParamIndex

	for _, cond := range conditions {
		if cond.Field == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s $%d", sanitizeIdentifier(cond.Field), cond.Type, paramCount))
		args = append(args, cond.Value)
		paramCount++
	}

	if len(parts) == 0 {
		return "", nil, startParamIndex
	}
	return "WHERE " + strings.Join(parts, " AND "), args, paramCount
}

// buildOrderClause generates the ORDER BY part with sanitized columns and
// validated directions.
func buildOrderClause(orderings []Ordering) string {
	if len(orderings) == 0 {
		return ""
	}

	keys := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if ord.Column == "" {
			continue
		}
		key := sanitizeIdentifier(ord.Column)
		if dir := strings.ToUpper(ord.Direction); dir == "ASC" || dir == "DESC" {
			key += " " + dir
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}

// BuildListQuery constructs a SQL query string and arguments from options,
// sanitizing identifiers.
//
// Example usage:
//
//	options := NewListQueryOptions("housing_price_index",
//		WithColumns("id", "tarih", "fiyat_endeksi"),
//		WithCondition(WhereCond("istanbul_turkiye", Equal, "İstanbul")),
//		WithCondition(WhereCond("tarih", GreaterThanOrEqual, start)),
//		WithOrdering("tarih", "DESC"),
//		WithOrdering("istanbul_turkiye", "ASC"),
//	)
//
//	query, args := BuildListQuery(options)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder

	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, whereArgs, _ := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	query.WriteString(buildOrderClause(options.Orderings))

	return query.String(), whereArgs
}
