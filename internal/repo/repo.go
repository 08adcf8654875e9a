package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"Sixfoot/internal/calc/clearance"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	SaveCalculation(ctx context.Context, userID int, in clearance.Input, res clearance.Result) (Calculation, error)
	ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error)
	GetCalculation(ctx context.Context, userID, id int) (Calculation, error)
	DeleteCalculation(ctx context.Context, userID, id int) error
}

type Calculation struct {
	ID        int              `json:"id"`
	UserID    int              `json:"user_id"`
	Input     clearance.Input  `json:"input"`
	Result    clearance.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS calculations (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	category TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	outer_versine DOUBLE PRECISION NOT NULL,
	outer_cant DOUBLE PRECISION NOT NULL,
	inner_versine DOUBLE PRECISION NOT NULL,
	inner_cant DOUBLE PRECISION NOT NULL,
	outer_radius INTEGER NOT NULL,
	inner_radius INTEGER NOT NULL,
	base_clearance_mm INTEGER NOT NULL,
	centre_throw_mm INTEGER NOT NULL,
	end_throw_mm INTEGER NOT NULL,
	cant_effect_mm INTEGER NOT NULL,
	final_clearance_mm INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS calculations_user_created ON calculations (user_id, created_at DESC);
`

const calcColumns = `id, user_id, category, location, outer_versine, outer_cant, inner_versine, inner_cant,
	outer_radius, inner_radius, base_clearance_mm, centre_throw_mm, end_throw_mm, cant_effect_mm, final_clearance_mm, created_at`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetBylogin returns the user id and password hash, or ErrNotFound.
func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) SaveCalculation(ctx context.Context, userID int, in clearance.Input, res clearance.Result) (Calculation, error) {
	query := `INSERT INTO calculations (user_id, category, location, outer_versine, outer_cant, inner_versine, inner_cant,
		outer_radius, inner_radius, base_clearance_mm, centre_throw_mm, end_throw_mm, cant_effect_mm, final_clearance_mm)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`
	c := Calculation{UserID: userID, Input: in, Result: res}
	err := r.db.QueryRowContext(ctx, query, userID, string(in.Category), in.Location,
		in.OuterVersine, in.OuterCant, in.InnerVersine, in.InnerCant,
		res.OuterRadius, res.InnerRadius, res.BaseClearanceMM, res.CentreThrowMM, res.EndThrowMM, res.CantEffectMM, res.FinalClearanceMM,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Calculation{}, err
	}
	return c, nil
}

func (r *PostgresUserRepository) ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error) {
	query := "SELECT " + calcColumns + " FROM calculations WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2"
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Calculation{}
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepository) GetCalculation(ctx context.Context, userID, id int) (Calculation, error) {
	query := "SELECT " + calcColumns + " FROM calculations WHERE id=$1 AND user_id=$2"
	c, err := scanCalculation(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Calculation{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresUserRepository) DeleteCalculation(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calculations WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (Calculation, error) {
	var c Calculation
	var category string
	err := s.Scan(&c.ID, &c.UserID, &category, &c.Input.Location,
		&c.Input.OuterVersine, &c.Input.OuterCant, &c.Input.InnerVersine, &c.Input.InnerCant,
		&c.Result.OuterRadius, &c.Result.InnerRadius, &c.Result.BaseClearanceMM,
		&c.Result.CentreThrowMM, &c.Result.EndThrowMM, &c.Result.CantEffectMM, &c.Result.FinalClearanceMM,
		&c.CreatedAt)
	if err != nil {
		return Calculation{}, err
	}
	c.Input.Category = clearance.Category(category)
	c.Result.Notes = clearance.Note(c.Input.Category)
	return c, nil
}
