package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Trace summarizes a failed request's error for logs and, outside
// production, for the response body.
type Trace struct {
	Message string
	Code    Code
	Chain   []string
	DB      *DBFailure
}

// DBFailure carries the Postgres diagnostics found in an error chain.
type DBFailure struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// TraceOf walks err, including joined errors, and records each link.
func TraceOf(err error) Trace {
	if err == nil {
		return Trace{}
	}
	t := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		t.Code = typed.Code()
	}
	walk(err, func(e error) {
		t.Chain = append(t.Chain, fmt.Sprintf("%T: %v", e, e))
	})
	t.DB = dbFailure(err)
	return t
}

func walk(err error, visit func(error)) {
	if err == nil {
		return
	}
	visit(err)
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			walk(inner, visit)
		}
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	}
}

func dbFailure(err error) *DBFailure {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBFailure{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBFailure{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}

// LogFields flattens the trace into structured log fields. Database fields
// appear only when a Postgres error was found.
func (t Trace) LogFields() map[string]any {
	fields := map[string]any{
		"error":       t.Message,
		"error_code":  string(t.Code),
		"error_chain": t.Chain,
	}
	if t.DB != nil {
		fields["pg_code"] = t.DB.SQLState
		fields["pg_message"] = t.DB.Message
		if t.DB.Constraint != "" {
			fields["pg_constraint"] = t.DB.Constraint
		}
		if t.DB.Table != "" {
			fields["pg_table"] = t.DB.Table
		}
		if t.DB.Column != "" {
			fields["pg_column"] = t.DB.Column
		}
		if t.DB.Detail != "" {
			fields["pg_detail"] = t.DB.Detail
		}
	}
	return fields
}

// DebugDetails is the details object returned for 5xx responses when
// internal details are exposed.
func (t Trace) DebugDetails() map[string]any {
	details := map[string]any{
		"error": t.Message,
		"chain": t.Chain,
	}
	if t.DB != nil {
		details["sqlstate"] = t.DB.SQLState
	}
	return details
}
