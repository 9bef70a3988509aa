package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/config"
	"sitecrew/model"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
	ctxClaims = "claims"
)

type AccessClaims struct {
	UserID string      `json:"userId"`
	Role   access.Role `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HMAC-signed access and refresh tokens.
type Tokens struct {
	env config.AuthEnv
	now func() time.Time
}

func NewTokens(env config.AuthEnv) *Tokens {
	return &Tokens{env: env, now: time.Now}
}

func (t *Tokens) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		Issuer:    t.env.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (t *Tokens) CreateAccessToken(u *model.User) (string, error) {
	claims := &AccessClaims{
		UserID:           u.ID,
		Role:             u.Role,
		RegisteredClaims: t.registered(u.ID, t.env.AccessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.env.AccessSecret))
}

func (t *Tokens) CreateRefreshToken(u *model.User) (string, error) {
	claims := &RefreshClaims{
		UserID:           u.ID,
		RegisteredClaims: t.registered(u.ID, t.env.RefreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.env.RefreshSecret))
}

func (t *Tokens) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(raw, t.env.AccessSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no userId")
	}
	return claims, nil
}

func (t *Tokens) ParseRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(raw, t.env.RefreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no userId")
	}
	return claims, nil
}

func (t *Tokens) parse(raw, secret string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(t.env.Issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	return err
}

func bearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("authorization header is missing")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errors.New("invalid token format")
	}
	return token, nil
}

func unauthorized(c *gin.Context, msg string, cause error) {
	apperr.Respond(c, apperr.New(apperr.Unauthorized, msg, cause))
}

func AccessTokenMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			unauthorized(c, err.Error(), nil)
			return
		}
		claims, err := tokens.ParseAccessToken(raw)
		if err != nil {
			unauthorized(c, "token is expired or invalid", err)
			return
		}
		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func RefreshTokenMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			unauthorized(c, err.Error(), nil)
			return
		}
		claims, err := tokens.ParseRefreshToken(raw)
		if err != nil {
			unauthorized(c, "invalid refresh token", err)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// Require rejects requests whose role fails pred. It must run after
// AccessTokenMiddleware.
func Require(pred access.Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !pred(Role(c)) {
			apperr.Respond(c, apperr.Forbiddenf("your role may not perform this action"))
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return Require(access.CanManageUsers)
}

func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func Role(c *gin.Context) access.Role {
	r, _ := c.Get(ctxRole)
	role, _ := r.(access.Role)
	return role
}
