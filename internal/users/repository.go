package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Repository handles user and profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, database.Translate(err)
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername returns a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetProfile returns the profile of a user.
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	const q = `SELECT id, user_id, COALESCE(full_name,''), COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''),
		COALESCE(occupation,''), COALESCE(education,''), COALESCE(birth_date,''), COALESCE(gender,'')
		FROM user_profiles WHERE user_id = $1`
	var p models.UserProfile
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.Address,
		&p.Occupation, &p.Education, &p.BirthDate, &p.Gender)
	if err != nil {
		return nil, database.Translate(err)
	}
	return &p, nil
}

// Create inserts a user and its profile in one transaction.
func (r *Repository) Create(ctx context.Context, u *models.User, p *models.UserProfile) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertUser = `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertUser, u.Username, u.Password, string(u.Role)).
			Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		const insertProfile = `INSERT INTO user_profiles (user_id, full_name, email, phone, address, occupation, education, birth_date, gender)
			VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), NULLIF($9,''))
			RETURNING id`
		p.UserID = u.ID
		return tx.QueryRow(ctx, insertProfile, u.ID, p.FullName, p.Email, p.Phone, p.Address,
			p.Occupation, p.Education, p.BirthDate, p.Gender).Scan(&p.ID)
	})
	return database.Translate(err)
}

// List returns all users ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update writes username and role.
func (r *Repository) Update(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET username = $2, role = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	return database.Translate(r.pool.QueryRow(ctx, q, u.ID, u.Username, string(u.Role)).Scan(&u.UpdatedAt))
}

// Delete removes a user; profile and responses cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListManagement returns users with their completed survey count.
func (r *Repository) ListManagement(ctx context.Context) ([]models.UserManagement, error) {
	const q = `SELECT u.id, u.username, u.role, COUNT(sr.id)
		FROM users u
		LEFT JOIN survey_responses sr ON sr.user_id = u.id
		GROUP BY u.id, u.username, u.role
		ORDER BY u.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserManagement
	for rows.Next() {
		var m models.UserManagement
		if err := rows.Scan(&m.ID, &m.Username, &m.Role, &m.SurveysCompleted); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListProfileSummaries returns every profile with response count and the last completion time.
func (r *Repository) ListProfileSummaries(ctx context.Context) ([]models.UserProfileSummary, error) {
	const q = `SELECT u.id, u.username, COALESCE(p.full_name,''), COALESCE(p.email,''), COALESCE(p.phone,''),
		COALESCE(p.address,''), COALESCE(p.occupation,''), COALESCE(p.education,''), COALESCE(p.birth_date,''),
		COALESCE(p.gender,''), u.role, COUNT(sr.id), MAX(sr.completed_at)
		FROM user_profiles p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN survey_responses sr ON sr.user_id = u.id
		GROUP BY u.id, u.username, p.id
		ORDER BY u.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserProfileSummary
	for rows.Next() {
		var s models.UserProfileSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Email, &s.Phone, &s.Address, &s.Occupation,
			&s.Education, &s.BirthDate, &s.Gender, &s.Role, &s.SurveysCompleted, &s.LastActive); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
