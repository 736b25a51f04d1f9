package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads the communities and sports tables. Removing a record cascades
// to its score entries through the foreign keys.
type Postgres struct {
	pool    *pgxpool.Pool
	hooksMu sync.Mutex
	hooks   hooks
}

// NewPostgres creates a directory over pool. The tables are created by the
// score store's migration.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetCommunity(ctx context.Context, id string) (Community, bool, error) {
	var c Community
	err := p.pool.QueryRow(ctx, `SELECT id, name FROM communities WHERE id = @id`,
		pgx.NamedArgs{"id": id}).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Community{}, false, nil
		}
		return Community{}, false, fmt.Errorf("get community %q: %w", id, err)
	}
	return c, true, nil
}

func (p *Postgres) CommunityExists(ctx context.Context, id string) (bool, error) {
	return p.exists(ctx, `SELECT EXISTS (SELECT 1 FROM communities WHERE id = @id)`, id)
}

func (p *Postgres) SportExists(ctx context.Context, id string) (bool, error) {
	return p.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sports WHERE id = @id)`, id)
}

func (p *Postgres) exists(ctx context.Context, q, id string) (bool, error) {
	var ok bool
	if err := p.pool.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&ok); err != nil {
		return false, fmt.Errorf("lookup %q: %w", id, err)
	}
	return ok, nil
}

// Apply upserts every record of seed in one transaction.
func (p *Postgres) Apply(ctx context.Context, seed Seed) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck // no-op after commit

	for _, c := range seed.Communities {
		if err := upsert(ctx, tx, "communities", c.ID, c.Name); err != nil {
			return err
		}
	}
	for _, s := range seed.Sports {
		if err := upsert(ctx, tx, "sports", s.ID, s.Name); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// UpsertCommunity adds or renames a community.
func (p *Postgres) UpsertCommunity(ctx context.Context, c Community) error {
	return upsert(ctx, p.pool, "communities", c.ID, c.Name)
}

// UpsertSport adds or renames a sport.
func (p *Postgres) UpsertSport(ctx context.Context, s Sport) error {
	return upsert(ctx, p.pool, "sports", s.ID, s.Name)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsert(ctx context.Context, db execer, table, id, name string) error {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if err := validate(id, name); err != nil {
		return err
	}
	q := `INSERT INTO ` + table + ` (id, name) VALUES (@id, @name)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
	if _, err := db.Exec(ctx, q, pgx.NamedArgs{"id": id, "name": name}); err != nil {
		return fmt.Errorf("upsert %s %q: %w", table, id, err)
	}
	return nil
}

// OnRemoveCommunity registers a hook run after a community is removed.
func (p *Postgres) OnRemoveCommunity(fn RemoveHook) {
	p.hooksMu.Lock()
	p.hooks.community = append(p.hooks.community, fn)
	p.hooksMu.Unlock()
}

// OnRemoveSport registers a hook run after a sport is removed.
func (p *Postgres) OnRemoveSport(fn RemoveHook) {
	p.hooksMu.Lock()
	p.hooks.sport = append(p.hooks.sport, fn)
	p.hooksMu.Unlock()
}

// RemoveCommunity deletes a community; its entries go with it.
func (p *Postgres) RemoveCommunity(ctx context.Context, id string) error {
	if err := p.remove(ctx, "communities", id); err != nil {
		return err
	}
	p.hooksMu.Lock()
	list := append([]RemoveHook(nil), p.hooks.community...)
	p.hooksMu.Unlock()
	return p.hooks.run(ctx, list, id)
}

// RemoveSport deletes a sport; its entries go with it.
func (p *Postgres) RemoveSport(ctx context.Context, id string) error {
	if err := p.remove(ctx, "sports", id); err != nil {
		return err
	}
	p.hooksMu.Lock()
	list := append([]RemoveHook(nil), p.hooks.sport...)
	p.hooksMu.Unlock()
	return p.hooks.run(ctx, list, id)
}

func (p *Postgres) remove(ctx context.Context, table, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, table, id)
	}
	return nil
}
