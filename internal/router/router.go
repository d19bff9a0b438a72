package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"devconnector/internal/auth"
	"devconnector/internal/config"
	apperrors "devconnector/internal/errors"
	"devconnector/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *logrus.Logger,
	profileHandler *handler.ProfileHandler,
) {
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	if cfg.Web.Dir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:    cfg.Web.Dir,
			HTML5:   true,
			Skipper: isServerPath,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := auth.Middleware(cfg.Auth.JWTSecret)

	profiles := api.Group("/profile")
	profiles.GET("/me", profileHandler.GetCurrent, requireAuth)
	profiles.POST("", profileHandler.Upsert, requireAuth)
	profiles.GET("", profileHandler.List)
	profiles.GET("/user/:user_id", profileHandler.GetByUserID)
}

// isServerPath keeps the SPA fallback away from server routes.
func isServerPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/api" || strings.HasPrefix(p, "/api/") ||
		strings.HasPrefix(p, "/swagger/") ||
		p == "/healthz"
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("request")
			return nil
		},
	})
}

// NewErrorHandler renders every error returned by a handler or middleware.
// Server errors are logged and answered with an opaque text body.
func NewErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			writeJSON(c, he.Code, apperrors.MessageResponse{Msg: msg})
			return
		}

		httpErr := apperrors.MapErrorToHTTP(err)
		if !httpErr.Internal() {
			writeJSON(c, httpErr.StatusCode, httpErr.Body())
			return
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).Error("request failed")
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.StatusCode)
			return
		}
		_ = c.String(httpErr.StatusCode, apperrors.MsgServerError)
	}
}

func writeJSON(c echo.Context, status int, body interface{}) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. Every violated rule is
// reported in one *errors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]apperrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, apperrors.FieldError{
			Value:    fe.Value(),
			Msg:      fieldMessage(fe),
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return &apperrors.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	if fe.Tag() == "required" {
		return label + " is required"
	}
	return label + " is invalid"
}
