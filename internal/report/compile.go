package report

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
)

var (
	ErrNoAggregation         = errors.New("report: at least one aggregation is required")
	ErrUnsupportedGroupField = errors.New("report: unsupported group field")
	ErrUnsupportedFunction   = errors.New("report: unsupported aggregation function")
	ErrUnsupportedField      = errors.New("report: unsupported aggregation field")
	ErrInvalidAlias          = errors.New("report: invalid alias")
	ErrInvalidFilter         = errors.New("report: invalid filter")
)

// groupColumns lists the fields a report may group by.
var groupColumns = map[string]string{
	"month":        "month",
	"year":         "year",
	"category_id":  "category_id",
	"counterparty": "counterparty",
}

var functions = map[string]string{
	"sum":     "SUM",
	"count":   "COUNT",
	"avg":     "AVG",
	"average": "AVG",
}

type aggField struct {
	column    string
	money     bool
	countOnly bool
}

var aggFields = map[string]aggField{
	"amount_in":      {column: "amount_in_cents", money: true},
	"amount_out":     {column: "amount_out_cents", money: true},
	"transaction_id": {column: "transaction_id", countOnly: true},
	"*":              {column: "*", countOnly: true},
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// sqliteKeywords are rejected as aliases; unquoted they break the statement.
var sqliteKeywords = func() map[string]bool {
	words := strings.Fields(`
		ABORT ACTION ADD AFTER ALL ALTER ALWAYS ANALYZE AND AS ASC ATTACH AUTOINCREMENT
		BEFORE BEGIN BETWEEN BY CASCADE CASE CAST CHECK COLLATE COLUMN COMMIT CONFLICT
		CONSTRAINT CREATE CROSS CURRENT CURRENT_DATE CURRENT_TIME CURRENT_TIMESTAMP
		DATABASE DEFAULT DEFERRABLE DEFERRED DELETE DESC DETACH DISTINCT DO DROP EACH
		ELSE END ESCAPE EXCEPT EXCLUDE EXCLUSIVE EXISTS EXPLAIN FAIL FILTER FIRST
		FOLLOWING FOR FOREIGN FROM FULL GENERATED GLOB GROUP GROUPS HAVING IF IGNORE
		IMMEDIATE IN INDEX INDEXED INITIALLY INNER INSERT INSTEAD INTERSECT INTO IS
		ISNULL JOIN KEY LAST LEFT LIKE LIMIT MATCH MATERIALIZED NATURAL NO NOT NOTHING
		NOTNULL NULL NULLS OF OFFSET ON OR ORDER OTHERS OUTER OVER PARTITION PLAN
		PRAGMA PRECEDING PRIMARY QUERY RAISE RANGE RECURSIVE REFERENCES REGEXP REINDEX
		RELEASE RENAME REPLACE RESTRICT RETURNING RIGHT ROLLBACK ROW ROWS SAVEPOINT
		SELECT SET TABLE TEMP TEMPORARY THEN TIES TO TRANSACTION TRIGGER UNBOUNDED
		UNION UNIQUE UPDATE USING VACUUM VALUES VIEW VIRTUAL WHEN WHERE WINDOW WITH
		WITHOUT`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

func validIdent(s string) bool {
	return identPattern.MatchString(s) && !sqliteKeywords[strings.ToUpper(s)]
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return validIdent(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("report: register sqlident: %v", err))
	}
}

// Query is a compiled report statement.
type Query struct {
	SQL     string
	Args    []any
	Columns []string
	// Money marks aggregate columns computed over minor units.
	Money map[string]bool
}

// Compile validates r and builds its SQL. No store access happens here.
func Compile(r Request) (Query, error) {
	if len(r.Aggregations) == 0 {
		return Query{}, ErrNoAggregation
	}
	for _, g := range r.Grouping {
		if _, ok := groupColumns[g]; !ok {
			return Query{}, fmt.Errorf("%w: %q", ErrUnsupportedGroupField, g)
		}
	}
	for _, a := range r.Aggregations {
		fn := strings.ToLower(a.Func)
		if _, ok := functions[fn]; !ok {
			return Query{}, fmt.Errorf("%w: %q", ErrUnsupportedFunction, a.Func)
		}
		f, ok := aggFields[a.Field]
		if !ok || (f.countOnly && fn != "count") {
			return Query{}, fmt.Errorf("%w: %s(%s)", ErrUnsupportedField, a.Func, a.Field)
		}
	}
	if err := validate.Struct(r); err != nil {
		return Query{}, classify(err)
	}

	q := Query{Money: map[string]bool{}}
	cols := make([]string, 0, len(r.Grouping)+len(r.Aggregations))
	seen := map[string]bool{}
	for _, g := range r.Grouping {
		cols = append(cols, groupColumns[g])
		q.Columns = append(q.Columns, g)
		seen[g] = true
	}
	for _, a := range r.Aggregations {
		fn := strings.ToLower(a.Func)
		f := aggFields[a.Field]
		alias := a.Alias
		if alias == "" {
			alias = defaultAlias(fn, a.Field)
		}
		if seen[alias] {
			return Query{}, fmt.Errorf("%w: duplicate column %q", ErrInvalidAlias, alias)
		}
		seen[alias] = true
		cols = append(cols, fmt.Sprintf("%s(%s) AS %s", functions[fn], f.column, alias))
		q.Columns = append(q.Columns, alias)
		if f.money && fn != "count" {
			q.Money[alias] = true
		}
	}

	stmt := sq.Select(cols...).From("transactions")
	if r.Filters.DateFrom != "" {
		stmt = stmt.Where(sq.GtOrEq{"transaction_date": r.Filters.DateFrom})
	}
	if r.Filters.DateTo != "" {
		stmt = stmt.Where(sq.LtOrEq{"transaction_date": r.Filters.DateTo})
	}
	if len(r.Filters.CategoryIDs) > 0 {
		stmt = stmt.Where(sq.Eq{"category_id": r.Filters.CategoryIDs})
	}
	if len(r.Grouping) > 0 {
		group := make([]string, len(r.Grouping))
		for i, g := range r.Grouping {
			group[i] = groupColumns[g]
		}
		stmt = stmt.GroupBy(group...).OrderBy(group...)
	}

	sqlText, args, err := stmt.ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("report: build query: %w", err)
	}
	q.SQL = sqlText
	q.Args = args
	return q, nil
}

func defaultAlias(fn, field string) string {
	if field == "*" {
		return fn + "_all"
	}
	return fn + "_" + field
}

func classify(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	first := verrs[0]
	if first.Tag() == "sqlident" {
		return fmt.Errorf("%w: %q", ErrInvalidAlias, first.Value())
	}
	return fmt.Errorf("%w: %s failed %s", ErrInvalidFilter, first.Namespace(), first.Tag())
}
