package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ProfileRepository manages the singleton profile row
type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the profile, or a NotFound error when none is stored yet
func (r *ProfileRepository) Get(ctx context.Context) (*model.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, `
		SELECT gender, birth_date, height_cm, weight_kg, activity_level, goal,
			body_fat_percent, lean_body_mass_kg, updated_at
		FROM profile
		WHERE id = 1
	`))
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to load profile", zap.Error(err))
		}
		return nil, translateError(err, "profile", "load profile")
	}
	return p, nil
}

// Upsert stores the profile, replacing any existing one
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profile (
			id, gender, birth_date, height_cm, weight_kg, activity_level, goal,
			body_fat_percent, lean_body_mass_kg, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			gender = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			body_fat_percent = EXCLUDED.body_fat_percent,
			lean_body_mass_kg = EXCLUDED.lean_body_mass_kg,
			updated_at = EXCLUDED.updated_at
	`,
		string(p.Gender),
		p.BirthDate,
		p.HeightCM,
		p.WeightKG,
		string(p.ActivityLevel),
		string(p.Goal),
		p.BodyFatPercent,
		p.LeanBodyMassKG,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save profile", zap.Error(err))
		return translateError(err, "profile", "save profile")
	}
	return nil
}
