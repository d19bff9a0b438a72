package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devconnector/internal/auth"
	"devconnector/internal/model"
	"devconnector/internal/service"
)

// ProfileHandler handles profile endpoints.
// Errors are returned as-is and rendered by the router's error handler.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRequest is the create-or-update payload. Skills is comma separated.
type ProfileRequest struct {
	Company        string `json:"company" form:"company"`
	Website        string `json:"website" form:"website"`
	Location       string `json:"location" form:"location"`
	Bio            string `json:"bio" form:"bio"`
	Status         string `json:"status" form:"status" validate:"required"`
	GitHubUsername string `json:"githubusername" form:"githubusername"`
	Skills         string `json:"skills" form:"skills" validate:"required"`
	YouTube        string `json:"youtube" form:"youtube"`
	Facebook       string `json:"facebook" form:"facebook"`
	Twitter        string `json:"twitter" form:"twitter"`
	Instagram      string `json:"instagram" form:"instagram"`
	LinkedIn       string `json:"linkedin" form:"linkedin"`
}

// Update builds the partial update from the non-empty fields of r.
func (r ProfileRequest) Update() model.ProfileUpdate {
	upd := model.ProfileUpdate{
		Company:        model.OptionalString(r.Company),
		Website:        model.OptionalString(r.Website),
		Location:       model.OptionalString(r.Location),
		Bio:            model.OptionalString(r.Bio),
		Status:         model.OptionalString(r.Status),
		GitHubUsername: model.OptionalString(r.GitHubUsername),
		Social: model.Social{
			YouTube:   r.YouTube,
			Facebook:  r.Facebook,
			Twitter:   r.Twitter,
			Instagram: r.Instagram,
			LinkedIn:  r.LinkedIn,
		},
	}
	if r.Skills != "" {
		upd.Skills = model.ParseSkills(r.Skills)
	}
	return upd
}

// GetCurrent godoc
// @Summary Get current user's profile
// @Tags profile
// @Produce json
// @Security AuthToken
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 500 {string} string "Server Error"
// @Router /profile/me [get]
func (h *ProfileHandler) GetCurrent(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
	}

	profile, err := h.profileService.GetCurrent(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Upsert godoc
// @Summary Create or update current user's profile
// @Tags profile
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Security AuthToken
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ValidationErrorResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 500 {string} string "Server Error"
// @Router /profile [post]
func (h *ProfileHandler) Upsert(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.profileService.Upsert(c.Request().Context(), userID, req.Update())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// List godoc
// @Summary List all profiles
// @Tags profile
// @Produce json
// @Success 200 {array} model.Profile
// @Failure 500 {string} string "Server Error"
// @Router /profile [get]
func (h *ProfileHandler) List(c echo.Context) error {
	profiles, err := h.profileService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetByUserID godoc
// @Summary Get profile by user id
// @Tags profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.MessageResponse
// @Failure 500 {string} string "Server Error"
// @Router /profile/user/{user_id} [get]
func (h *ProfileHandler) GetByUserID(c echo.Context) error {
	profile, err := h.profileService.GetByUserID(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
