package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/voxa-app/voxa-api/internal/data/pgxutil"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	apperrors "github.com/voxa-app/voxa-api/internal/errors"
	"github.com/voxa-app/voxa-api/internal/ports"
)

const profileColumns = `id, name, email, plan, attributes, created_at, updated_at`

// ProfileRepo persists user profiles in the profiles table.
type ProfileRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
}

var _ ports.ProfileRepository = (*ProfileRepo)(nil)

// NewProfileRepo creates a new ProfileRepo instance with the given database connection.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a ProfileRepo with a custom clock for testing.
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{db: db, timeProvider: tp}
}

// profileRow mirrors the profiles table for pgx.RowToStructByName.
type profileRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Plan       string    `db:"plan"`
	Attributes []byte    `db:"attributes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r profileRow) toDomain() (domainauth.Profile, error) {
	p := domainauth.Profile{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Plan:      domainauth.Plan(r.Plan),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Attributes) > 0 {
		if err := json.Unmarshal(r.Attributes, &p.Attributes); err != nil {
			return domainauth.Profile{}, fmt.Errorf("decode attributes for %s: %w", r.ID, err)
		}
	}
	return p, nil
}

// Create inserts a new profile. The plan defaults to free when unset; a second
// insert for the same id returns domainauth.ErrProfileExists.
func (r *ProfileRepo) Create(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error) {
	if p.ID == "" {
		return domainauth.Profile{}, apperrors.Validation("profile id is required")
	}
	if p.Plan == "" {
		p.Plan = domainauth.PlanFree
	}
	if !p.Plan.Valid() {
		return domainauth.Profile{}, apperrors.Validation(fmt.Sprintf("unknown plan %q", p.Plan))
	}

	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("encode attributes: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	query := `
		INSERT INTO profiles (id, name, email, plan, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + profileColumns

	var created domainauth.Profile
	err = pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, query, p.ID, p.Name, p.Email, string(p.Plan), attrsJSON, now)
		if qerr != nil {
			return qerr
		}
		row, cerr := pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		if cerr != nil {
			return cerr
		}
		created, cerr = row.toDomain()
		return cerr
	})
	if err != nil {
		return domainauth.Profile{}, mapProfileError("create profile", err)
	}
	return created, nil
}

// GetByID returns the profile for an identity UID or domainauth.ErrProfileNotFound.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (domainauth.Profile, error) {
	if id == "" {
		return domainauth.Profile{}, domainauth.ErrProfileNotFound
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var p domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, query, id)
		if qerr != nil {
			return qerr
		}
		row, cerr := pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		if cerr != nil {
			return cerr
		}
		p, cerr = row.toDomain()
		return cerr
	})
	if err != nil {
		return domainauth.Profile{}, mapProfileError("get profile", err)
	}
	return p, nil
}

// SetPlan sets the plan in a single statement. Setting the current plan again is a
// no-op that leaves updated_at untouched; an unknown id returns domainauth.ErrProfileNotFound.
func (r *ProfileRepo) SetPlan(ctx context.Context, id string, plan domainauth.Plan) error {
	if !plan.Valid() {
		return apperrors.Validation(fmt.Sprintf("unknown plan %q", plan))
	}

	query := `
		UPDATE profiles
		SET plan = $2,
			updated_at = CASE WHEN plan = $2 THEN updated_at ELSE $3 END
		WHERE id = $1`

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		tag, eerr := conn.Exec(ctx, query, id, string(plan), r.timeProvider.Now().UTC())
		if eerr != nil {
			return eerr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return mapProfileError("set plan", err)
	}
	if affected == 0 {
		return domainauth.ErrProfileNotFound
	}
	return nil
}

// mapProfileError translates database failures into the account taxonomy.
func mapProfileError(op string, err error) error {
	mapped := apperrors.MapDBError(err)
	switch {
	case apperrors.IsNotFound(mapped):
		return domainauth.ErrProfileNotFound
	case apperrors.IsConflict(mapped) && apperrors.GetField(mapped) == "id":
		return fmt.Errorf("%s: %w", op, domainauth.ErrProfileExists)
	}
	var appErr *apperrors.AppError
	if errors.As(mapped, &appErr) {
		return fmt.Errorf("%s: %w", op, appErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}
