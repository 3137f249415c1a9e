package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
)

const (
	AuthContextKey  = "auth"
	tokenContextKey = "user"
	sessionTokenKey = "token"
)

// Claims are carried by every issued token. Subject holds the user id.
type Claims struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext is the authenticated caller, available to handlers via GetAuth.
type AuthContext struct {
	UserID int64           `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
}

func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == domain.RoleAdmin
}

// IssueToken signs an HS256 token for the user valid for ttl.
func IssueToken(secret string, ttl time.Duration, user *domain.SysUser, now time.Time) (string, error) {
	claims := &Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(common.UUIDint64(), 10),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    "labdesk",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

func (s *AdminServer) jwtConfig() echojwt.Config {
	return echojwt.Config{
		Skipper:     s.isPublic,
		SigningKey:  []byte(s.appCtx.Config().Web.Secret),
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		TokenLookupFuncs: []middleware.ValuesExtractor{
			sessionToken,
		},
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
		},
	}
}

func sessionToken(c echo.Context) ([]string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil, err
	}
	token, ok := sess.Values[sessionTokenKey].(string)
	if !ok || token == "" {
		return nil, errors.New("no token in session")
	}
	return []string{token}, nil
}

// withAuth exposes the validated claims as an AuthContext.
func withAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return next(c)
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
		}
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
		}
		c.Set(AuthContextKey, &AuthContext{UserID: id, Name: claims.Name, Email: claims.Email, Role: claims.Role})
		return next(c)
	}
}

// GetAuth returns the caller, nil on public routes.
func GetAuth(c echo.Context) *AuthContext {
	a, _ := c.Get(AuthContextKey).(*AuthContext)
	return a
}

// RequireRole rejects callers whose role is not listed with 403.
func RequireRole(roles ...domain.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := GetAuth(c)
			if a == nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
			}
			for _, r := range roles {
				if a.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions", Code: "FORBIDDEN"})
		}
	}
}

// SaveSessionToken keeps the token in an HttpOnly cookie session so browser
// clients do not need to send the Authorization header.
func SaveSessionToken(c echo.Context, token string, ttl time.Duration) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[sessionTokenKey] = token
	return errors.Wrap(sess.Save(c.Request(), c.Response()), "save session")
}

func ClearSessionToken(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	delete(sess.Values, sessionTokenKey)
	return errors.Wrap(sess.Save(c.Request(), c.Response()), "clear session")
}
