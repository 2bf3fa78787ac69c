package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

// detailsTables lists the per-type tables in the column order used by
// selectProfiles.
var detailsTables = []struct {
	t     model.StakeholderType
	table string
}{
	{model.TypePlayer, "player_details"},
	{model.TypeCoach, "coach_details"},
	{model.TypeClub, "club_details"},
	{model.TypeAgent, "agent_details"},
	{model.TypeSponsor, "sponsor_details"},
	{model.TypeEquipmentSupplier, "equipment_supplier_details"},
}

const selectProfiles = `
SELECT p.id, p.full_name, p.avatar_url, p.user_type,
       CASE WHEN pd.profile_id IS NULL THEN NULL ELSE to_jsonb(pd) END,
       CASE WHEN cd.profile_id IS NULL THEN NULL ELSE to_jsonb(cd) END,
       CASE WHEN kd.profile_id IS NULL THEN NULL ELSE to_jsonb(kd) END,
       CASE WHEN ad.profile_id IS NULL THEN NULL ELSE to_jsonb(ad) END,
       CASE WHEN sd.profile_id IS NULL THEN NULL ELSE to_jsonb(sd) END,
       CASE WHEN ed.profile_id IS NULL THEN NULL ELSE to_jsonb(ed) END
FROM profiles p
LEFT JOIN player_details pd ON pd.profile_id = p.id
LEFT JOIN coach_details cd ON cd.profile_id = p.id
LEFT JOIN club_details kd ON kd.profile_id = p.id
LEFT JOIN agent_details ad ON ad.profile_id = p.id
LEFT JOIN sponsor_details sd ON sd.profile_id = p.id
LEFT JOIN equipment_supplier_details ed ON ed.profile_id = p.id
`

// PostgresStore reads profiles from Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreFromPool wraps an existing pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the profile tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Profile implements Store.
func (s *PostgresStore) Profile(ctx context.Context, id string) (model.Profile, error) {
	defer observe("profile", time.Now())

	p, err := scanProfile(s.pool.QueryRow(ctx, selectProfiles+`WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		metrics.RecordStoreError("profile")
		return model.Profile{}, fmt.Errorf("query profile %s: %w", id, err)
	}
	return p, nil
}

// Candidates implements Store.
func (s *PostgresStore) Candidates(ctx context.Context, filter model.StakeholderType, excludeID string) ([]model.Profile, error) {
	defer observe("candidates", time.Now())

	rows, err := s.pool.Query(ctx, selectProfiles+`
WHERE ($1::text = '' OR p.user_type = $1) AND p.id <> $2
ORDER BY p.created_at, p.id`, filterArg(filter), excludeID)
	if err != nil {
		metrics.RecordStoreError("candidates")
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	out, err := collectProfiles(rows)
	if err != nil {
		metrics.RecordStoreError("candidates")
		return nil, err
	}
	return out, nil
}

// ByType implements Store.
func (s *PostgresStore) ByType(ctx context.Context, t model.StakeholderType, limit int) ([]model.Profile, error) {
	defer observe("by_type", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.pool.Query(ctx, selectProfiles+`
WHERE ($1::text = '' OR p.user_type = $1)
ORDER BY p.created_at, p.id
LIMIT $2`, filterArg(t), limit)
	if err != nil {
		metrics.RecordStoreError("by_type")
		return nil, fmt.Errorf("query profiles by type: %w", err)
	}
	out, err := collectProfiles(rows)
	if err != nil {
		metrics.RecordStoreError("by_type")
		return nil, err
	}
	return out, nil
}

// Count implements Store. Query failures count as zero.
func (s *PostgresStore) Count(ctx context.Context) int {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&n); err != nil {
		metrics.RecordStoreError("count")
		return 0
	}
	return n
}

// Upsert writes profiles and replaces their details rows in one transaction.
func (s *PostgresStore) Upsert(ctx context.Context, profiles ...model.Profile) error {
	for _, p := range profiles {
		if err := validate(p); err != nil {
			return fmt.Errorf("%w: id=%q type=%q", err, p.ID, p.UserType)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range profiles {
		if _, err := tx.Exec(ctx, `
INSERT INTO profiles (id, full_name, avatar_url, user_type)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET full_name = EXCLUDED.full_name,
    avatar_url = EXCLUDED.avatar_url,
    user_type = EXCLUDED.user_type`,
			p.ID, p.FullName, p.AvatarURL, string(p.UserType)); err != nil {
			return fmt.Errorf("upsert profile %s: %w", p.ID, err)
		}

		for _, d := range detailsTables {
			if _, err := tx.Exec(ctx, `DELETE FROM `+d.table+` WHERE profile_id = $1`, p.ID); err != nil {
				return fmt.Errorf("clear %s for %s: %w", d.table, p.ID, err)
			}
		}

		table, payload, err := detailsPayload(p)
		if err != nil {
			return err
		}
		if table == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO `+table+`
SELECT * FROM jsonb_populate_record(NULL::`+table+`, $2::jsonb || jsonb_build_object('profile_id', $1::text))`,
			p.ID, payload); err != nil {
			return fmt.Errorf("insert %s for %s: %w", table, p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func filterArg(t model.StakeholderType) string {
	if t.IsFilterAll() {
		return ""
	}
	return string(t)
}

// profileRow is the raw column set produced by selectProfiles.
type profileRow struct {
	id, fullName, avatarURL, userType string
	details                           [6][]byte
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var r profileRow
	if err := row.Scan(&r.id, &r.fullName, &r.avatarURL, &r.userType,
		&r.details[0], &r.details[1], &r.details[2], &r.details[3], &r.details[4], &r.details[5]); err != nil {
		return model.Profile{}, err
	}
	return assemble(r)
}

func collectProfiles(rows pgx.Rows) ([]model.Profile, error) {
	defer rows.Close()
	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

// assemble decodes the JSON details columns into a Profile. NULL columns
// leave the matching pointer nil.
func assemble(r profileRow) (model.Profile, error) {
	p := model.Profile{
		ID:        r.id,
		FullName:  r.fullName,
		AvatarURL: r.avatarURL,
		UserType:  model.StakeholderType(r.userType),
	}
	targets := [6]any{&p.Player, &p.Coach, &p.Club, &p.Agent, &p.Sponsor, &p.EquipmentSupplier}
	for i, raw := range r.details {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return model.Profile{}, fmt.Errorf("decode %s for %s: %w", detailsTables[i].table, r.id, err)
		}
	}
	return p, nil
}

// detailsPayload returns the details table and JSON body for the record
// matching the profile type. A missing record yields an empty table name.
func detailsPayload(p model.Profile) (string, []byte, error) {
	var v any
	switch p.UserType {
	case model.TypePlayer:
		if p.Player != nil {
			v = p.Player
		}
	case model.TypeCoach:
		if p.Coach != nil {
			v = p.Coach
		}
	case model.TypeClub:
		if p.Club != nil {
			v = p.Club
		}
	case model.TypeAgent:
		if p.Agent != nil {
			v = p.Agent
		}
	case model.TypeSponsor:
		if p.Sponsor != nil {
			v = p.Sponsor
		}
	case model.TypeEquipmentSupplier:
		if p.EquipmentSupplier != nil {
			v = p.EquipmentSupplier
		}
	}
	if v == nil {
		return "", nil, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("encode details for %s: %w", p.ID, err)
	}
	for _, d := range detailsTables {
		if d.t == p.UserType {
			return d.table, body, nil
		}
	}
	return "", nil, nil
}
