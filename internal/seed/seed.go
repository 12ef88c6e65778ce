// Package seed creates the default data a fresh deployment needs.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/repositories"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/auth"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

const (
	defaultSuperAdminEmail    = "superadmin@admitflow.io"
	defaultSuperAdminPassword = "ChangeMe!2024"
)

// CreateDefaultData seeds the super admin account and a starter program
// catalog. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool) error {
	repos := repositories.NewContainer(pool)

	if err := seedSuperAdmin(ctx, repos.Users); err != nil {
		return err
	}
	return seedPrograms(ctx, pool)
}

func seedSuperAdmin(ctx context.Context, users *repositories.UserRepository) error {
	_, err := users.GetByEmail(ctx, defaultSuperAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	passwordHash, err := auth.HashPassword(defaultSuperAdminPassword)
	if err != nil {
		return err
	}

	id, err := users.Create(ctx, &models.User{
		Email:        defaultSuperAdminEmail,
		PasswordHash: passwordHash,
		FirstName:    "Super",
		LastName:     "Admin",
		Role:         models.RoleSuperAdmin,
		Active:       true,
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("userID", id).Str("email", defaultSuperAdminEmail).Msg("Default super admin created, change the password after first login")
	return nil
}

func seedPrograms(ctx context.Context, pool *pgxpool.Pool) error {
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	programs := []struct {
		name, university, level, country, currency string
		fee                                        float64
	}{
		{"MSc Computer Science", "University of Manchester", "MASTER", "United Kingdom", "GBP", 24000},
		{"BSc Business Administration", "University of Toronto", "BACHELOR", "Canada", "CAD", 45000},
		{"PhD Data Science", "Technical University of Munich", "PHD", "Germany", "EUR", 0},
		{"Diploma in Hospitality Management", "Le Cordon Bleu", "DIPLOMA", "Australia", "AUD", 18000},
	}

	for _, p := range programs {
		_, err := pool.Exec(ctx,
			`INSERT INTO programs (name, university_name, degree_level, country, tuition_fee, currency) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.name, p.university, p.level, p.country, p.fee, p.currency,
		)
		if err != nil {
			return err
		}
	}

	logger.Info().Int("count", len(programs)).Msg("Starter program catalog seeded")
	return nil
}
