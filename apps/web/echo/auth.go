package echoweb

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
)

const (
	authCookieName   = "mm_session"
	claimsContextKey = "userToken"
	contextUserKey   = "user"
)

// Claims represents the authorization claims carried by the session cookie.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UserID parses the claims subject back into a user ID.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}

func (s *server) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(s.deps.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		TokenLookup:   "cookie:" + authCookieName,
		Claims:        new(Claims),
		ErrorHandlerWithContext: func(_ error, ctx echo.Context) error {
			// anonymous or expired session; back to the login page
			s.addFlash(ctx, "Please log in to access this page.")
			return ctx.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(ctx.Request().RequestURI))
		},
	}
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.FormatInt(usr.ID, 10),
			ExpiresAt: now.Add(conf.SessionExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Email:    usr.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func authenticate(ctx echo.Context, uname, pwd string, svc user.Service) (user.User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx.Request().Context(), uname)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	usr, err = svc.SetLastLogin(ctx.Request().Context(), usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// logIn issues a session token for usr and sets it as an HttpOnly cookie.
func (s *server) logIn(ctx echo.Context, usr user.User) error {
	token, err := GenerateToken(GetUserClaims(usr, s.deps.Conf), s.deps.Conf)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.deps.Conf.SessionExpirationDelta),
		HttpOnly: true,
		Secure:   !s.deps.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *server) logOut(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.deps.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser loads the authenticated user lazily and caches it on the
// request context. Anonymous requests return errUnauthorized.
func (s *server) getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		// public routes skip the JWT middleware; fall back to the cookie
		// so the nav still knows who is browsing
		if claims, err = s.cookieClaims(ctx); err != nil {
			return user.User{}, err
		}
	}
	id, err := claims.UserID()
	if err != nil {
		return user.User{}, err
	}

	usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func (s *server) cookieClaims(ctx echo.Context) (Claims, error) {
	cookie, err := ctx.Cookie(authCookieName)
	if err != nil {
		return Claims{}, errUnauthorized
	}
	token, err := jwt.ParseWithClaims(cookie.Value, new(Claims), func(*jwt.Token) (interface{}, error) {
		return []byte(s.deps.Conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, errUnauthorized
	}
	return *claims, nil
}
