package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/protechlab/labdesk/docs"
	"github.com/protechlab/labdesk/internal/app"
	"github.com/protechlab/labdesk/pkg/common"
)

const (
	// ApiPrefix is the mount point of every JSON route
	ApiPrefix = "/api/v1"

	AppContextKey = "appctx"
	sessionName   = "labdesk_session"
)

var server *AdminServer

type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
	public map[string]bool
}

// Init builds the global admin server used by the route registration helpers.
func Init(appCtx app.AppContext) {
	server = NewAdminServer(appCtx)
}

// NewAdminServer configures echo with the middleware chain shared by all routes.
func NewAdminServer(appCtx app.AppContext) *AdminServer {
	s := &AdminServer{appCtx: appCtx, public: map[string]bool{}}
	cfg := appCtx.Config()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: common.UUID}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Debug("http request", fields...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	e.GET("/health", s.health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	s.root = e
	s.api = e.Group(ApiPrefix, s.requireDB, echojwt.WithConfig(s.jwtConfig()), withAuth)
	return s
}

func (s *AdminServer) requireDB(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.appCtx.DB() == nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database unavailable", Code: "DATABASE_ERROR"})
		}
		return next(c)
	}
}

func (s *AdminServer) isPublic(c echo.Context) bool {
	return s.public[c.Request().Method+" "+c.Path()]
}

func (s *AdminServer) health(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if db := s.appCtx.DB(); db == nil || db.Exec("SELECT 1").Error != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{"status": status, "time": time.Now().Format(time.RFC3339)})
}

// errorHandler turns errors escaping the handlers into the JSON error envelope.
func (s *AdminServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = strings.ToLower(http.StatusText(status))
		}
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("unhandled request error",
			zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, ErrorResponse{Error: message, Code: StatusCode(status)})
	}
	if werr != nil {
		zap.L().Error("write error response", zap.Error(werr))
	}
}

// StatusCode maps an http status to the machine readable error code.
func StatusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "REQUEST_FAILED"
	}
}

// Handler exposes the router, mostly for httptest.
func Handler() http.Handler {
	return server.root
}

// Listen blocks serving the admin api until Shutdown is called.
func Listen() error {
	cfg := server.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("admin api listening on %s", addr)
	err := server.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func Shutdown(ctx context.Context) error {
	if server == nil {
		return nil
	}
	return server.root.Shutdown(ctx)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// PublicGET registers an api route that skips token validation.
func PublicGET(path string, h echo.HandlerFunc) {
	server.public[http.MethodGet+" "+ApiPrefix+path] = true
	server.api.GET(path, h)
}

// PublicPOST registers an api route that skips token validation.
func PublicPOST(path string, h echo.HandlerFunc) {
	server.public[http.MethodPost+" "+ApiPrefix+path] = true
	server.api.POST(path, h)
}
