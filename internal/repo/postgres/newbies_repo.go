package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexus-club/site-api/internal/domain/newbie"
	"github.com/nexus-club/site-api/internal/observability"
)

type NewbiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNewbiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NewbiesRepo {
	return &NewbiesRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *NewbiesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Insert stores a normalized signup and returns the created row. The store
// assigns created_at and the initial 'pending' status; the caller never sets
// either. RETURNING is limited to the columns the API is allowed to echo.
func (repo *NewbiesRepo) Insert(ctx context.Context, req newbie.SignupRequest) (n newbie.Newbie, err error) {
	id := uuid.NewString()

	err = repo.observe("newbies.insert", func() error {
		return repo.pool.QueryRow(ctx, `
		INSERT INTO newbies (
			id, nom, prenom, num, email, instagram, discord,
			classe, hobbies, motivation, additional_notes, created_at, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), 'pending')
		RETURNING id, nom, prenom, num, email, instagram, discord, classe, created_at, status
	`,
			id, req.Nom, req.Prenom, req.Num, req.Email, req.Instagram, req.Discord,
			req.Classe, req.Hobbies, req.Motivation, req.AdditionalNotes,
		).Scan(
			&n.ID, &n.Nom, &n.Prenom, &n.Num, &n.Email, &n.Instagram, &n.Discord,
			&n.Classe, &n.CreatedAt, &n.Status,
		)
	})

	if err != nil {
		err = translateErr(err)
		return
	}

	return
}

// Now reports the store's current time. Used by the connectivity probe only.
func (repo *NewbiesRepo) Now(ctx context.Context) (t time.Time, err error) {
	err = repo.observe("newbies.now", func() error {
		return repo.pool.QueryRow(ctx, `SELECT NOW()`).Scan(&t)
	})

	if err != nil {
		err = translateErr(err)
		return
	}

	return
}
