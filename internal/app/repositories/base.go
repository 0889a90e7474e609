package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// psql is the statement builder every repository uses
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// existsQuery wraps a select in SELECT EXISTS (...)
func existsQuery(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.Prefix("SELECT EXISTS (").Suffix(")").Limit(1)
}

// exists runs an EXISTS query built from q
func exists(ctx context.Context, db DBTX, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := existsQuery(q).ToSql()
	if err != nil {
		return false, err
	}
	var found bool
	if err := db.QueryRow(ctx, sql, args...).Scan(&found); err != nil && !isNoRows(err) {
		return false, err
	}
	return found, nil
}

// count runs a SELECT COUNT(*) built from q
func count(ctx context.Context, db DBTX, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// likePattern escapes s for use inside ILIKE '%s%'
func likePattern(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '%')
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(append(out, '%'))
}
