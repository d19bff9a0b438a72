package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devconnector/internal/cache"
	apperrors "devconnector/internal/errors"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

// A read racing an upsert may re-cache the row it loaded before the upsert
// deleted the key. Such an entry is served until profileCacheTTL expires.
const (
	profileCacheTTL     = time.Minute
	profileListCacheKey = "profiles:all"
)

// ProfileService exposes profile operations.
type ProfileService interface {
	// GetCurrent returns the caller's profile.
	GetCurrent(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// Upsert creates the caller's profile or merges upd into the existing one.
	Upsert(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	// GetByUserID looks a profile up by an untrusted user id string.
	GetByUserID(ctx context.Context, rawUserID string) (*model.Profile, error)
}

type profileService struct {
	repo  repository.ProfileRepository
	cache *cache.Client
	log   logrus.FieldLogger
}

// NewProfileService builds a ProfileService. cache may be nil.
func NewProfileService(repo repository.ProfileRepository, cache *cache.Client, log logrus.FieldLogger) ProfileService {
	return &profileService{repo: repo, cache: cache, log: log}
}

func (s *profileService) cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:user:%s", userID.String())
}

func (s *profileService) GetCurrent(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	var profile *model.Profile
	_, err := s.repo.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		profile, err = s.repo.Update(ctx, userID, upd)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		s.log.WithField("user_id", userID).Info("profile updated")
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile, err = s.create(ctx, userID, upd)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("find profile: %w", err)
	}

	s.cache.Delete(ctx, s.cacheKey(userID), profileListCacheKey)
	return profile, nil
}

func (s *profileService) create(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	profile := &model.Profile{UserID: userID}
	upd.Apply(profile)

	err := s.repo.Create(ctx, profile)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race against a concurrent first save for this user.
		s.log.WithField("user_id", userID).Debug("profile created concurrently, updating instead")
		profile, err = s.repo.Update(ctx, userID, upd)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return profile, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.log.WithField("user_id", userID).Info("profile created")
	return profile, nil
}

func (s *profileService) List(ctx context.Context) ([]model.Profile, error) {
	var cached []model.Profile
	if s.cache.GetJSON(ctx, profileListCacheKey, &cached) {
		return cached, nil
	}

	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	s.cache.SetJSON(ctx, profileListCacheKey, profiles, profileCacheTTL)
	return profiles, nil
}

func (s *profileService) GetByUserID(ctx context.Context, rawUserID string) (*model.Profile, error) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, apperrors.ErrMalformedID
	}

	var cached model.Profile
	if s.cache.GetJSON(ctx, s.cacheKey(userID), &cached) {
		return &cached, nil
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(userID), profile, profileCacheTTL)
	return profile, nil
}
