package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnector/internal/model"
)

// ProfileRepository defines profile persistence operations.
// Reads join the owning user's name and avatar.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	// Update merges upd into the profile owned by userID under a row lock
	// and returns the stored result without the joined user.
	Update(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func withUserSummary(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "avatar")
	})
}

// FindByUserID finds the profile owned by userID.
func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := withUserSummary(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns every profile, oldest first.
func (r *profileRepository) List(ctx context.Context) ([]model.Profile, error) {
	profiles := []model.Profile{}
	if err := withUserSummary(r.db.WithContext(ctx)).
		Order("created_at").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create inserts a new profile. A second profile for the same user fails
// with gorm.ErrDuplicatedKey.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

// Update performs a locked read-merge-write.
func (r *profileRepository) Update(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&profile).Error; err != nil {
			return err
		}
		upd.Apply(&profile)
		return tx.Omit(clause.Associations).Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
