package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KiiTuNp/voteapp/internal/app"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = int32(cfg.PGMaxConn)
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) Rooms() Collection[Room] {
	return &pgCollection[Room]{pool: p.pool, k: roomKind, log: p.log}
}

func (p *Postgres) Participants() Collection[Participant] {
	return &pgCollection[Participant]{pool: p.pool, k: participantKind, log: p.log}
}

func (p *Postgres) Polls() Collection[Poll] {
	return &pgCollection[Poll]{pool: p.pool, k: pollKind, log: p.log}
}

func (p *Postgres) Votes() Collection[Vote] {
	return &pgCollection[Vote]{pool: p.pool, k: voteKind, log: p.log}
}

type pgCollection[T any] struct {
	pool *pgxpool.Pool
	k    *kind[T]
	log  *slog.Logger
}

// Insert relies on the table's unique indexes for atomic check-and-insert.
func (c *pgCollection[T]) Insert(ctx context.Context, rec T) error {
	ph := make([]string, len(c.k.columns))
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.k.table, strings.Join(c.k.columns, ", "), strings.Join(ph, ", "))

	if _, err := c.pool.Exec(ctx, q, c.k.values(rec)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicate, c.k.table, pgErr.ConstraintName)
		}
		return fmt.Errorf("insert %s: %w", c.k.table, err)
	}
	return nil
}

func (c *pgCollection[T]) FindOne(ctx context.Context, f Filter) (T, error) {
	var zero T
	if err := c.k.checkFilter(f); err != nil {
		return zero, err
	}
	where, args := buildWhere(f, 1)
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT 1",
		strings.Join(c.k.columns, ", "), c.k.table, where, c.k.order)

	rows, err := c.pool.Query(ctx, q, args...)
	if err != nil {
		return zero, fmt.Errorf("find %s: %w", c.k.table, err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("find %s: %w", c.k.table, err)
	}
	return rec, nil
}

func (c *pgCollection[T]) FindMany(ctx context.Context, f Filter) ([]T, error) {
	if err := c.k.checkFilter(f); err != nil {
		return nil, err
	}
	where, args := buildWhere(f, 1)
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(c.k.columns, ", "), c.k.table, where, c.k.order)

	rows, err := c.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.k.table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.k.table, err)
	}
	return out, nil
}

func (c *pgCollection[T]) Count(ctx context.Context, f Filter) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	where, args := buildWhere(f, 1)
	var n int
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+c.k.table+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.k.table, err)
	}
	return n, nil
}

func (c *pgCollection[T]) Update(ctx context.Context, f Filter, set Fields) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	if err := c.k.checkFields(set); err != nil {
		return 0, err
	}
	names := sortedKeys(set)
	assign := make([]string, len(names))
	args := make([]any, 0, len(names)+len(f))
	for i, name := range names {
		assign[i] = fmt.Sprintf("%s = $%d", name, i+1)
		args = append(args, set[name])
	}
	where, wargs := buildWhere(f, len(names)+1)
	args = append(args, wargs...)

	ct, err := c.pool.Exec(ctx, "UPDATE "+c.k.table+" SET "+strings.Join(assign, ", ")+where, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", c.k.table, err)
	}
	return int(ct.RowsAffected()), nil
}

func (c *pgCollection[T]) DeleteMany(ctx context.Context, f Filter) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	where, args := buildWhere(f, 1)
	ct, err := c.pool.Exec(ctx, "DELETE FROM "+c.k.table+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", c.k.table, err)
	}
	c.log.Debug("store.deleted", "table", c.k.table, "rows", ct.RowsAffected())
	return int(ct.RowsAffected()), nil
}

// buildWhere renders f as " WHERE a = $n AND b = $n+1" with keys in
// sorted order. Field names were validated against the kind beforehand.
func buildWhere(f Filter, start int) (string, []any) {
	if len(f) == 0 {
		return "", nil
	}
	names := sortedKeys(f)
	conds := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		conds[i] = fmt.Sprintf("%s = $%d", name, start+i)
		args[i] = f[name]
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
