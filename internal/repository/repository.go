package repository

import (
	"database/sql"
	"errors"

	"rabbit-admin/internal/models"
)

// ErrNotFound is returned when no user row matches the given id.
var ErrNotFound = errors.New("user not found")

// Users provides CRUD access to the users table.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(username, passwordHash string) (*models.User, error) {
	u := models.User{Username: username, Password: passwordHash}
	err := r.db.QueryRow(`
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, username, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Users) Get(id int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		SELECT id, username, password, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes username and/or password hash; an empty string leaves the
// column untouched.
func (r *Users) Update(id int64, username, passwordHash string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		UPDATE users
		SET username = COALESCE(NULLIF($2, ''), username),
		    password = COALESCE(NULLIF($3, ''), password)
		WHERE id = $1
		RETURNING id, username, password, created_at
	`, id, username, passwordHash).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Users) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
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
