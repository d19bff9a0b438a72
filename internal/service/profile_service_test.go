package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "devconnector/internal/errors"
	"devconnector/internal/model"
)

func newTestProfileService(repo *MockProfileRepository) ProfileService {
	logger, _ := logtest.NewNullLogger()
	return NewProfileService(repo, nil, logger)
}

func TestProfileService_Upsert(t *testing.T) {
	userID := uuid.New()
	upd := model.ProfileUpdate{
		Status: model.OptionalString("Developer"),
		Skills: model.ParseSkills("node, react , mongo"),
	}

	tests := []struct {
		name          string
		setupMock     func(*MockProfileRepository)
		expectedError error
		noCreate      bool
	}{
		{
			name: "creates when absent",
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
					return p.UserID == userID && p.Status == "Developer"
				})).Return(nil)
			},
		},
		{
			name: "updates when present",
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(&model.Profile{UserID: userID, Status: "Student"}, nil)
				m.On("Update", mock.Anything, userID, upd).Return(&model.Profile{
					UserID: userID,
					Status: "Developer",
					Skills: []string{"node", "react", "mongo"},
				}, nil)
			},
			noCreate: true,
		},
		{
			name: "falls back to update after concurrent create",
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Profile")).Return(gorm.ErrDuplicatedKey)
				m.On("Update", mock.Anything, userID, upd).Return(&model.Profile{
					UserID: userID,
					Status: "Developer",
					Skills: []string{"node", "react", "mongo"},
				}, nil)
			},
		},
		{
			name: "store failure on lookup",
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(nil, errors.New("connection reset"))
			},
			expectedError: errors.New("find profile: connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProfileRepository)
			tt.setupMock(mockRepo)

			svc := newTestProfileService(mockRepo)
			profile, err := svc.Upsert(context.Background(), userID, upd)

			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, profile)
				assert.Equal(t, http.StatusInternalServerError, apperrors.MapErrorToHTTP(err).StatusCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, userID, profile.UserID)
				assert.Equal(t, "Developer", profile.Status)
				assert.Equal(t, []string{"node", "react", "mongo"}, profile.Skills)
			}
			if tt.noCreate {
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProfileService_UpsertKeepsOneProfilePerUser(t *testing.T) {
	repo := newMemoryProfileRepository()
	logger, _ := logtest.NewNullLogger()
	svc := NewProfileService(repo, nil, logger)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Upsert(ctx, userID, model.ProfileUpdate{
		Status:  model.OptionalString("Developer"),
		Skills:  []string{"go"},
		Company: model.OptionalString("Acme"),
	})
	require.NoError(t, err)
	assert.Equal(t, userID, first.UserID)

	second, err := svc.Upsert(ctx, userID, model.ProfileUpdate{
		Status: model.OptionalString("Senior Developer"),
		Skills: []string{"go", "sql"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Senior Developer", second.Status)
	assert.Equal(t, "Acme", second.Company)
	assert.Equal(t, 1, repo.creates)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileService_ConcurrentFirstUpserts(t *testing.T) {
	repo := newMemoryProfileRepository()
	logger, _ := logtest.NewNullLogger()
	svc := NewProfileService(repo, nil, logger)
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upsert(context.Background(), userID, model.ProfileUpdate{
				Status: model.OptionalString("Developer"),
				Skills: []string{"go"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, repo.creates)
}

func TestProfileService_GetCurrent(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockProfileRepository)
		want := &model.Profile{UserID: userID, Status: "Developer", User: &model.User{ID: userID, Name: "Jane"}}
		mockRepo.On("FindByUserID", mock.Anything, userID).Return(want, nil)

		got, err := newTestProfileService(mockRepo).GetCurrent(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing", func(t *testing.T) {
		mockRepo := new(MockProfileRepository)
		mockRepo.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		_, err := newTestProfileService(mockRepo).GetCurrent(context.Background(), userID)
		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})
}

func TestProfileService_GetByUserID(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		rawID     string
		setupMock func(*MockProfileRepository)
		wantErr   error
	}{
		{
			name:      "malformed id never reaches the store",
			rawID:     "not-an-id",
			setupMock: func(m *MockProfileRepository) {},
			wantErr:   apperrors.ErrMalformedID,
		},
		{
			name:  "well-formed but absent",
			rawID: userID.String(),
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrProfileNotFound,
		},
		{
			name:  "found",
			rawID: userID.String(),
			setupMock: func(m *MockProfileRepository) {
				m.On("FindByUserID", mock.Anything, userID).Return(&model.Profile{UserID: userID, Status: "Developer"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProfileRepository)
			tt.setupMock(mockRepo)

			profile, err := newTestProfileService(mockRepo).GetByUserID(context.Background(), tt.rawID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, profile)
			} else {
				require.NoError(t, err)
				assert.Equal(t, userID, profile.UserID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProfileService_List(t *testing.T) {
	t.Run("empty store yields empty slice", func(t *testing.T) {
		mockRepo := new(MockProfileRepository)
		mockRepo.On("List", mock.Anything).Return(nil, nil)

		profiles, err := newTestProfileService(mockRepo).List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo := new(MockProfileRepository)
		mockRepo.On("List", mock.Anything).Return(nil, errors.New("timeout"))

		_, err := newTestProfileService(mockRepo).List(context.Background())
		assert.EqualError(t, err, "list profiles: timeout")
	})
}
