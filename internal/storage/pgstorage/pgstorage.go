package pgstorage

import (
	"context"
	"embed"
	"fmt"
	"net"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/pkg/postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	usersTable         = "users"
	itemsTable         = "items"
	observationsTable  = "price_observations"
	couponsTable       = "coupons"
	notificationsTable = "notifications"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Storage struct {
	pg      *postgres.Postgres
	db      querier
	builder squirrel.StatementBuilderType
}

var _ domain.Store = (*Storage)(nil)

// New applies pending migrations and returns a pool-backed storage.
func New(pg *postgres.Postgres) (*Storage, error) {
	storage := &Storage{
		pg:      pg,
		db:      pg.Pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return storage, nil
}

func (s *Storage) Close() {
	if s == nil || s.pg == nil {
		return
	}
	s.pg.Close()
}

// InTx runs fn inside one transaction. The transaction is rolled back on
// every path that does not reach Commit. Nested calls reuse the outer one.
func (s *Storage) InTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	if _, nested := s.db.(pgx.Tx); nested {
		return fn(s)
	}

	tx, err := s.pg.Pool.Begin(ctx)
	if err != nil {
		return classify(errors.Wrap(err, "begin tx"))
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(&Storage{pg: s.pg, db: tx, builder: s.builder}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(errors.Wrap(err, "commit tx"))
	}

	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.pg == nil || s.pg.Pool == nil {
		return fmt.Errorf("database connection is nil")
	}

	if err := s.pg.Ping(ctx); err != nil {
		return classify(errors.Wrap(err, "health check ping failed"))
	}

	return nil
}

func (s *Storage) exec(ctx context.Context, query squirrel.Sqlizer) (pgconn.CommandTag, error) {
	queryText, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, errors.Wrap(err, "generate query error")
	}

	tag, err := s.db.Exec(ctx, queryText, args...)
	if err != nil {
		return tag, classify(errors.Wrap(err, "exec query error"))
	}

	return tag, nil
}

func (s *Storage) query(ctx context.Context, query squirrel.Sqlizer) (pgx.Rows, error) {
	queryText, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "generate query error")
	}

	rows, err := s.db.Query(ctx, queryText, args...)
	if err != nil {
		return nil, classify(errors.Wrap(err, "rows query error"))
	}

	return rows, nil
}

func (s *Storage) queryRow(ctx context.Context, query squirrel.Sqlizer) (pgx.Row, error) {
	queryText, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "generate query error")
	}

	return s.db.QueryRow(ctx, queryText, args...), nil
}

// expectAffected turns an UPDATE/DELETE that matched nothing into ErrNotFound.
func expectAffected(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return entity.NotFoundf("%s", what)
	}
	return nil
}

// classify maps driver errors onto the entity error kinds, keeping the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", entity.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %w", entity.ErrConflict, err)
		case pgErr.Code == "23503":
			return fmt.Errorf("%w: %w", entity.ErrNotFound, err)
		case pgErr.Code == "23514", strings.HasPrefix(pgErr.Code, "22"):
			return fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err)
	}

	return err
}

func (s *Storage) migrate() error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(s.pg.URL()))
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}

	return nil
}

// migrateURL rewrites a libpq URL to the scheme of the golang-migrate pgx/v5 driver.
func migrateURL(url string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(url, scheme) {
			return "pgx5://" + strings.TrimPrefix(url, scheme)
		}
	}
	return url
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
