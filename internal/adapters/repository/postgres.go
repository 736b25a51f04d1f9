package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const postgresBackend = "postgres"

// Postgres error codes the store maps to domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

//go:embed schema.sql
var schema string

const entryColumns = `id, community_id, sport_id, score, position, medal, notes, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps entries in the score_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgresStore connects to connString and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStoreFromPool(pool, opts...), nil
}

// NewPostgresStoreFromPool wraps an existing pool. Close closes the pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore{pool: pool, opts: o}
}

// Pool returns the underlying pool so directories can share it.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.opts.logger.Info(ctx, "postgres schema applied")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, communityID, sportID string) (model.Entry, bool, error) {
	defer observePG("get", time.Now())
	return (&pgTx{q: s.pool, opts: s.opts}).Get(ctx, communityID, sportID)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (model.Entry, error) {
	defer observePG("get_by_id", time.Now())
	return (&pgTx{q: s.pool, opts: s.opts}).GetByID(ctx, id)
}

func (s *PostgresStore) ListBySport(ctx context.Context, sportID string) ([]model.Entry, error) {
	defer observePG("list_by_sport", time.Now())
	return (&pgTx{q: s.pool, opts: s.opts}).ListBySport(ctx, sportID)
}

func (s *PostgresStore) ListByCommunity(ctx context.Context, communityID string) ([]model.Entry, error) {
	defer observePG("list_by_community", time.Now())
	return (&pgTx{q: s.pool, opts: s.opts}).ListByCommunity(ctx, communityID)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]model.Entry, error) {
	defer observePG("list_all", time.Now())
	return (&pgTx{q: s.pool, opts: s.opts}).ListAll(ctx)
}

// Put upserts one entry in its own transaction.
func (s *PostgresStore) Put(ctx context.Context, e model.Entry) (model.Entry, error) {
	var out model.Entry
	err := s.Atomic(ctx, func(tx Tx) error {
		var err error
		out, err = tx.Put(ctx, e)
		return err
	})
	return out, err
}

// Delete removes one entry in its own transaction.
func (s *PostgresStore) Delete(ctx context.Context, communityID, sportID string) (bool, error) {
	var deleted bool
	err := s.Atomic(ctx, func(tx Tx) error {
		var err error
		deleted, err = tx.Delete(ctx, communityID, sportID)
		return err
	})
	return deleted, err
}

// Atomic runs fn inside a database transaction. Deferred constraints are
// checked at commit and reported as domain errors.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	defer observePG("atomic", time.Now())
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// No-op once committed.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.opts.logger.Warn(ctx, "rollback failed", logger.Error(rbErr))
		}
	}()

	if err := fn(&pgTx{q: tx, opts: s.opts}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapPgError(err))
	}
	return nil
}

func (s *PostgresStore) DeleteByCommunity(ctx context.Context, communityID string) (int, error) {
	defer observePG("delete_cascade", time.Now())
	tag, err := s.pool.Exec(ctx, `DELETE FROM score_entries WHERE community_id = @community_id`,
		pgx.NamedArgs{"community_id": communityID})
	if err != nil {
		return 0, fmt.Errorf("delete entries of community %q: %w", communityID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteBySport(ctx context.Context, sportID string) (int, error) {
	defer observePG("delete_cascade", time.Now())
	tag, err := s.pool.Exec(ctx, `DELETE FROM score_entries WHERE sport_id = @sport_id`,
		pgx.NamedArgs{"sport_id": sportID})
	if err != nil {
		return 0, fmt.Errorf("delete entries of sport %q: %w", sportID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM score_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

type pgTx struct {
	q    querier
	opts options
}

func (t *pgTx) Get(ctx context.Context, communityID, sportID string) (model.Entry, bool, error) {
	row := t.q.QueryRow(ctx, `SELECT `+entryColumns+` FROM score_entries
		WHERE community_id = @community_id AND sport_id = @sport_id`,
		pgx.NamedArgs{"community_id": communityID, "sport_id": sportID})
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Entry{}, false, nil
		}
		return model.Entry{}, false, fmt.Errorf("get entry: %w", err)
	}
	return e, true, nil
}

func (t *pgTx) GetByID(ctx context.Context, id string) (model.Entry, error) {
	if uuid.Validate(id) != nil {
		return model.Entry{}, model.ErrEntryNotFound
	}
	row := t.q.QueryRow(ctx, `SELECT `+entryColumns+` FROM score_entries WHERE id = @id`,
		pgx.NamedArgs{"id": id})
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Entry{}, model.ErrEntryNotFound
		}
		return model.Entry{}, fmt.Errorf("get entry by id: %w", err)
	}
	return e, nil
}

func (t *pgTx) ListBySport(ctx context.Context, sportID string) ([]model.Entry, error) {
	return t.list(ctx, `WHERE sport_id = @id`, sportID)
}

func (t *pgTx) ListByCommunity(ctx context.Context, communityID string) ([]model.Entry, error) {
	return t.list(ctx, `WHERE community_id = @id`, communityID)
}

func (t *pgTx) ListAll(ctx context.Context) ([]model.Entry, error) {
	return t.list(ctx, ``, "")
}

func (t *pgTx) list(ctx context.Context, where, id string) ([]model.Entry, error) {
	rows, err := t.q.Query(ctx, `SELECT `+entryColumns+` FROM score_entries `+where+
		` ORDER BY created_at, id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.Entry, 0, 8)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (t *pgTx) Put(ctx context.Context, e model.Entry) (model.Entry, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return model.Entry{}, err
	}
	const q = `INSERT INTO score_entries (` + entryColumns + `)
		VALUES (@id, @community_id, @sport_id, @score, @position, @medal, @notes, @now, @now)
		ON CONFLICT (community_id, sport_id) DO UPDATE SET
			score = EXCLUDED.score,
			position = EXCLUDED.position,
			medal = EXCLUDED.medal,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + entryColumns

	args := pgx.NamedArgs{
		"id":           uuid.NewString(),
		"community_id": e.CommunityID,
		"sport_id":     e.SportID,
		"score":        e.Score,
		"position":     e.Position,
		"medal":        string(e.Medal),
		"notes":        e.Notes,
		"now":          t.opts.clock.Now().UTC(),
	}
	out, err := scanEntry(t.q.QueryRow(ctx, q, args))
	if err != nil {
		return model.Entry{}, fmt.Errorf("put entry: %w", mapPgError(err))
	}
	return out, nil
}

func (t *pgTx) Delete(ctx context.Context, communityID, sportID string) (bool, error) {
	var communityOK, sportOK bool
	err := t.q.QueryRow(ctx, `SELECT
			EXISTS (SELECT 1 FROM communities WHERE id = @community_id),
			EXISTS (SELECT 1 FROM sports WHERE id = @sport_id)`,
		pgx.NamedArgs{"community_id": communityID, "sport_id": sportID}).Scan(&communityOK, &sportOK)
	if err != nil {
		return false, fmt.Errorf("check references: %w", err)
	}
	if !communityOK {
		return false, fmt.Errorf("%w: community %q", ErrReferenceNotFound, communityID)
	}
	if !sportOK {
		return false, fmt.Errorf("%w: sport %q", ErrReferenceNotFound, sportID)
	}

	tag, err := t.q.Exec(ctx, `DELETE FROM score_entries WHERE community_id = @community_id AND sport_id = @sport_id`,
		pgx.NamedArgs{"community_id": communityID, "sport_id": sportID})
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Lock takes a transaction-scoped advisory lock on key.
func (t *pgTx) Lock(ctx context.Context, key string) error {
	if _, err := t.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext(@key))`, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("advisory lock %q: %w", key, err)
	}
	return nil
}

func scanEntry(row pgx.Row) (model.Entry, error) {
	var (
		e     model.Entry
		medal string
	)
	if err := row.Scan(&e.ID, &e.CommunityID, &e.SportID, &e.Score, &e.Position, &medal,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Entry{}, err
	}
	e.Medal = model.Medal(medal)
	return e, nil
}

// mapPgError translates constraint violations into domain errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, pgErr.Detail)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", model.ErrPositionTaken, pgErr.Detail)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

func observePG(op string, start time.Time) {
	metrics.RecordStoreLatency(postgresBackend, op, float64(time.Since(start).Microseconds())/1000)
}
