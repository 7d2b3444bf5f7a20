package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return checkAffected(result, "user")
}

// DeleteUser removes the account row; the per-role profile tables
// cascade on user delete.
func (r *userRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return checkAffected(result, "user")
	})
}

func (r *userRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, role, created_at)
		VALUES ($1, $2, $3)
	`

	profile.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, profile.UserID, profile.Role, profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("profile already exists")
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	query := `SELECT * FROM profiles WHERE user_id = $1`

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("profile")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) CreateParentProfile(ctx context.Context, profile *model.ParentProfile) error {
	query := `
		INSERT INTO parents (user_id, full_name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.Phone,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create parent profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetParentProfile(ctx context.Context, userID uuid.UUID) (*model.ParentProfile, error) {
	query := `SELECT * FROM parents WHERE user_id = $1`

	var profile model.ParentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("parent profile")
		}
		return nil, fmt.Errorf("failed to get parent profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) UpdateParentProfile(ctx context.Context, profile *model.ParentProfile) error {
	query := `
		UPDATE parents
		SET full_name = $1, phone = $2, updated_at = NOW()
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, profile.FullName, profile.Phone, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to update parent profile: %w", err)
	}
	return checkAffected(result, "parent profile")
}

func (r *userRepository) CreateAdminProfile(ctx context.Context, profile *model.AdminProfile) error {
	query := `
		INSERT INTO admins (admin_id, full_name, created_at)
		VALUES ($1, $2, $3)
	`

	profile.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, profile.AdminID, profile.FullName, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetAdminProfile(ctx context.Context, adminID uuid.UUID) (*model.AdminProfile, error) {
	query := `SELECT * FROM admins WHERE admin_id = $1`

	var profile model.AdminProfile
	if err := r.db.GetContext(ctx, &profile, query, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("admin profile")
		}
		return nil, fmt.Errorf("failed to get admin profile: %w", err)
	}
	return &profile, nil
}
