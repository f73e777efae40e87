// Package sql connects graphs to databases through database/sql. Queries run
// off the loop through Loop.Go and their rows re-enter the graph as tuples
// emitted on the loop's goroutine.
package sql

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"

	"github.com/lguimbarda/bloem/flow/core"
)

// Scanner converts the current row into a value.
type Scanner[T any] func(*sql.Rows) (T, error)

// ExecResult contains the result of an exec operation.
type ExecResult struct {
	LastInsertId int64
	RowsAffected int64
}

// Query creates a Source that runs query on db and emits one tuple per row.
// A row the scanner rejects is raised as an error and scanning continues.
// Iteration and close failures are combined into one final error tuple.
//
// The query starts immediately; attach subscribers before draining loop.
func Query[T any](ctx context.Context, loop *core.Loop, db *sql.DB, query string, scanner Scanner[T], args ...any) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			emit(err, nil)
			return
		}
		for rows.Next() {
			value, err := scanner(rows)
			if err != nil {
				emit(err, nil)
				continue
			}
			emit(nil, value)
		}
		if err := multierr.Combine(rows.Err(), rows.Close()); err != nil {
			emit(err, nil)
		}
	}, core.WithName("sqlQuery"))
}

// single creates a Source that emits the outcome of one blocking call.
func single[T any](loop *core.Loop, name string, call func() (T, error)) *core.Source {
	return core.Produce(loop, func(emit core.Next) {
		value, err := call()
		if err != nil {
			emit(err, nil)
			return
		}
		emit(nil, value)
	}, core.WithName(name))
}

// QueryRow creates a Source that runs a query expecting a single row and
// emits the scanned value or the error.
func QueryRow[T any](ctx context.Context, loop *core.Loop, db *sql.DB, query string, scanner func(*sql.Row) (T, error), args ...any) *core.Source {
	return single(loop, "sqlQueryRow", func() (T, error) {
		return scanner(db.QueryRowContext(ctx, query, args...))
	})
}

func execResult(result sql.Result) ExecResult {
	lastID, _ := result.LastInsertId()
	rowsAffected, _ := result.RowsAffected()
	return ExecResult{LastInsertId: lastID, RowsAffected: rowsAffected}
}

// Exec creates a Source that executes a statement and emits its ExecResult.
func Exec(ctx context.Context, loop *core.Loop, db *sql.DB, query string, args ...any) *core.Source {
	return single(loop, "sqlExec", func() (ExecResult, error) {
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return ExecResult{}, err
		}
		return execResult(result), nil
	})
}

// ExecMany creates a sequential Transform that executes query once per
// incoming value of type T, emitting an ExecResult for each. binder converts
// the value into query arguments. Statements run one at a time off the loop,
// in arrival order. Incoming errors pass through.
func ExecMany[T any](ctx context.Context, loop *core.Loop, db *sql.DB, query string, binder func(T) []any, opts ...core.Option) *core.BoundedTransform {
	opts = append([]core.Option{core.WithName("sqlExecMany"), core.WithScheduler(loop)}, opts...)
	return core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		args := binder(v)
		loop.Go(func() func() {
			result, err := db.ExecContext(ctx, query, args...)
			return func() {
				if err != nil {
					next(fmt.Errorf("exec %v: %w", args, err), nil)
					return
				}
				next(nil, execResult(result))
			}
		})
	}, opts...)
}

// Transaction creates a Source that runs fn inside a transaction and emits
// its result. If fn fails the transaction is rolled back and the error,
// combined with any rollback failure, is raised.
func Transaction[T any](ctx context.Context, loop *core.Loop, db *sql.DB, fn func(tx *sql.Tx) (T, error)) *core.Source {
	return single(loop, "sqlTransaction", func() (T, error) {
		return transact(ctx, db, fn)
	})
}

func transact[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	value, err := fn(tx)
	if err != nil {
		return zero, multierr.Append(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return value, nil
}

// scanAny scans the current row into one value per column.
func scanAny(rows *sql.Rows) ([]string, []any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	values := make([]any, len(cols))
	valuePtrs := make([]any, len(cols))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, nil, err
	}
	return cols, values, nil
}

// QueryStrings is a Query whose rows are emitted as []string.
func QueryStrings(ctx context.Context, loop *core.Loop, db *sql.DB, query string, args ...any) *core.Source {
	return Query(ctx, loop, db, query, func(rows *sql.Rows) ([]string, error) {
		_, values, err := scanAny(rows)
		if err != nil {
			return nil, err
		}
		result := make([]string, len(values))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				result[i] = ""
			case []byte:
				result[i] = string(val)
			case string:
				result[i] = val
			case int64:
				result[i] = fmt.Sprintf("%d", val)
			case float64:
				result[i] = fmt.Sprintf("%g", val)
			case bool:
				result[i] = fmt.Sprintf("%t", val)
			default:
				result[i] = fmt.Sprintf("%v", val)
			}
		}
		return result, nil
	}, args...)
}

// QueryMaps is a Query whose rows are emitted as map[string]any keyed by
// column name.
func QueryMaps(ctx context.Context, loop *core.Loop, db *sql.DB, query string, args ...any) *core.Source {
	return Query(ctx, loop, db, query, func(rows *sql.Rows) (map[string]any, error) {
		cols, values, err := scanAny(rows)
		if err != nil {
			return nil, err
		}
		result := make(map[string]any, len(cols))
		for i, col := range cols {
			result[col] = values[i]
		}
		return result, nil
	}, args...)
}
