package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig carries the admin credential material. The password is only
// ever stored as a bcrypt hash and verified server-side; clients hold a
// short-lived signed token, never an authenticated flag of their own.
type AuthConfig struct {
	PasswordHash string
	TokenSecret  []byte
	TokenTTL     time.Duration
}

type AuthHandler struct {
	cfg AuthConfig
	log *zap.SugaredLogger
}

func NewAuthHandler(cfg AuthConfig, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		cfg: cfg,
		log: log,
	}
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

var errInvalidCredentials = errors.New("invalid credentials")

// Login verifies the admin password and issues a signed token. Failures
// carry no detail about what was wrong.
func (ah AuthHandler) Login(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decode(r, &req); err != nil {
		ah.log.Errorw("Login", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ah.cfg.PasswordHash), []byte(req.Password)); err != nil {
		ah.log.Errorw("Login", "error", "password mismatch")
		respondErr(ctx, rw, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ah.cfg.TokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString(ah.cfg.TokenSecret)
	if err != nil {
		ah.log.Errorw("Login", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, errors.New("could not issue token"))
		return
	}

	respond(ctx, rw, http.StatusOK, map[string]string{
		"token":     signed,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

// RequireAdmin guards the admin endpoints. It accepts only a bearer token
// this service issued: HS256, unexpired, with the admin role claim.
func (ah AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authorization := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			respondErr(ctx, rw, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		raw := strings.TrimPrefix(authorization, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return ah.cfg.TokenSecret, nil
		})
		if err != nil || !token.Valid {
			respondErr(ctx, rw, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}

		if role, _ := claims["role"].(string); role != "admin" {
			respondErr(ctx, rw, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}

		next.ServeHTTP(rw, r)
	})
}
