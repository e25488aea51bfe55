package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

const userColumns = `id, name, age, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID, &user.Name, &user.Age, &user.Email,
		&user.PasswordHash, &role, &user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (r *userRepository) FindByID(id string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, domain.WrapStore(fmt.Errorf("select user: %w", err))
	}
	return user, nil
}

func (r *userRepository) FindByEmail(email string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, domain.WrapStore(fmt.Errorf("select user by email: %w", err))
	}
	return user, nil
}

func (r *userRepository) Insert(user domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, age, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		user.ID, user.Name, user.Age, user.Email,
		user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return domain.WrapStore(fmt.Errorf("insert user: %w", err))
	}

	return nil
}

func (r *userRepository) Update(user domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, age = $3, email = $4, role = $5
		WHERE id = $1
	`, user.ID, user.Name, user.Age, user.Email, string(user.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return domain.WrapStore(fmt.Errorf("update user: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for user update: %w", err))
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("delete user: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for user delete: %w", err))
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) List() ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at, id
	`)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select users: %w", err))
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan user: %w", err))
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate users: %w", err))
	}

	return result, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
