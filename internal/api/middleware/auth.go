package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/logging"
)

const (
	settingsKeyJWTSecret = "jwt_secret"
	callerKey            = "caller"
	tokenIssuer          = "printq"
)

type Claims struct {
	jwt.RegisteredClaims
	Rank string `json:"rank"`
}

// Accounts is the part of the user directory the auth endpoints need.
type Accounts interface {
	Register(ctx context.Context, caller core.Caller, reg core.Registration) (*db.User, error)
	Authenticate(ctx context.Context, email, password string) (*db.User, error)
	ByUUID(ctx context.Context, id string) (*db.User, error)
}

// SecretStore persists the signing key across restarts.
type SecretStore interface {
	GetOrCreateSetting(ctx context.Context, key, value string, encrypted bool) (string, error)
}

type AuthConfig struct {
	CookieName   string
	TokenTTL     time.Duration
	SecureCookie bool
}

type AuthMiddleware struct {
	accounts Accounts
	secret   []byte
	cfg      AuthConfig
	logger   *zap.Logger
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token,omitempty"`
	User    *db.User `json:"user,omitempty"`
}

type StatusResponse struct {
	Authenticated bool     `json:"authenticated"`
	User          *db.User `json:"user,omitempty"`
}

func NewAuthMiddleware(ctx context.Context, secrets SecretStore, accounts Accounts, cfg AuthConfig, logger *zap.Logger) (*AuthMiddleware, error) {
	if cfg.CookieName == "" {
		cfg.CookieName = "printq_auth"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &AuthMiddleware{
		accounts: accounts,
		cfg:      cfg,
		logger:   logger.Named("auth"),
	}

	secret, err := loadOrCreateSecret(ctx, secrets)
	if err != nil {
		return nil, err
	}
	a.secret = secret
	return a, nil
}

func loadOrCreateSecret(ctx context.Context, secrets SecretStore) ([]byte, error) {
	fresh := make([]byte, 32)
	if _, err := rand.Read(fresh); err != nil {
		return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	value, err := secrets.GetOrCreateSetting(ctx, settingsKeyJWTSecret, hex.EncodeToString(fresh), false)
	if err != nil {
		return nil, fmt.Errorf("failed to load jwt secret: %w", err)
	}
	secret, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("stored jwt secret is corrupt: %w", err)
	}
	return secret, nil
}

func (a *AuthMiddleware) generateToken(u *db.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.UUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
			Issuer:    tokenIssuer,
		},
		Rank: u.Rank,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func (a *AuthMiddleware) getTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(a.cfg.CookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func (a *AuthMiddleware) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cfg.CookieName, token, int(a.cfg.TokenTTL.Seconds()), "/", "", a.cfg.SecureCookie, true)
}

func (a *AuthMiddleware) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cfg.CookieName, "", -1, "/", "", a.cfg.SecureCookie, true)
}

// resolve returns the account behind the request's session. A missing or
// stale token yields a nil user and a nil error; only storage failures are
// returned.
func (a *AuthMiddleware) resolve(c *gin.Context) (*db.User, error) {
	token := a.getTokenFromRequest(c)
	if token == "" {
		return nil, nil
	}
	claims, err := a.validateToken(token)
	if err != nil {
		logging.FromContext(c.Request.Context()).Debug("rejected auth token", zap.Error(err))
		return nil, nil
	}

	u, err := a.accounts.ByUUID(c.Request.Context(), claims.Subject)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (a *AuthMiddleware) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	u, err := a.accounts.Register(c.Request.Context(), CallerFromContext(c), core.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration received, an administrator has to approve the account",
		"user":    u,
	})
}

func (a *AuthMiddleware) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Success: false, Message: "Invalid request"})
		return
	}

	u, err := a.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, LoginResponse{Success: false, Message: "Invalid credentials or account not approved"})
			return
		}
		logging.FromContext(c.Request.Context()).Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, LoginResponse{Success: false, Message: "Server error"})
		return
	}

	token, err := a.generateToken(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{Success: false, Message: "Failed to generate token"})
		return
	}

	a.setAuthCookie(c, token)
	a.logger.Info("user logged in", zap.Int64("user_id", u.ID))
	c.JSON(http.StatusOK, LoginResponse{Success: true, Token: token, User: u})
}

func (a *AuthMiddleware) LogoutHandler(c *gin.Context) {
	a.clearAuthCookie(c)
	c.JSON(http.StatusOK, LoginResponse{Success: true, Message: "Logged out"})
}

func (a *AuthMiddleware) StatusHandler(c *gin.Context) {
	u, err := a.resolve(c)
	if err != nil || u == nil {
		c.JSON(http.StatusOK, StatusResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Authenticated: true, User: u})
}

// RequireAuth rejects requests without a valid session. The account is
// reloaded on every request so moderation takes effect immediately.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.resolve(c)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("failed to resolve caller", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		SetCaller(c, core.CallerFor(u, c.ClientIP()))
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid session is present and an
// anonymous caller otherwise.
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.resolve(c)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("failed to resolve caller", zap.Error(err))
		}
		SetCaller(c, core.CallerFor(u, c.ClientIP()))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (a *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CallerFromContext(c).RequireAdmin(); err != nil {
			status := http.StatusForbidden
			if !errors.Is(err, core.ErrForbidden) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "Administrator rank required"})
			return
		}
		c.Next()
	}
}

func (a *AuthMiddleware) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("auth request failed", zap.Error(err))
		message = "Server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func SetCaller(c *gin.Context, caller core.Caller) {
	c.Set(callerKey, caller)
}

// CallerFromContext returns the caller attached by the auth middleware, or an
// anonymous caller when none was attached.
func CallerFromContext(c *gin.Context) core.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(core.Caller); ok {
			return caller
		}
	}
	return core.Anonymous(c.ClientIP())
}
