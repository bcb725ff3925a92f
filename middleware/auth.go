package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
	ctxClaims = "claims"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed bearer tokens.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

func NewTokens(secret []byte, ttl time.Duration, revoker Revoker) *Tokens {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Tokens{secret: secret, ttl: ttl, revoker: revoker}
}

// GenerateToken creates a signed JWT for a given user
func (t *Tokens) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

var errRevoked = errors.New("token revoked")

// Parse verifies signature, expiry and revocation.
func (t *Tokens) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, err
	}
	revoked, err := t.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errRevoked
	}
	return claims, nil
}

// Revoke blocks the token until it would have expired anyway.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	until := time.Now().Add(t.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return t.revoker.Revoke(ctx, claims.ID, until)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, string(claims.Role))
	c.Set(ctxClaims, claims)
}

// AuthRequired validates the JWT and injects claims into context
func AuthRequired(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.Error(apperr.Unauthorized("Authorization header required (Bearer <token>)"))
			c.Abort()
			return
		}
		claims, err := tokens.Parse(c.Request.Context(), tokenStr)
		if err != nil {
			c.Error(apperr.Unauthorized("Invalid or expired token"))
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := tokens.Parse(c.Request.Context(), tokenStr)
		if err != nil {
			c.Error(apperr.Unauthorized("Invalid or expired token"))
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ctxRole)
		if !exists {
			c.Error(apperr.Forbidden("Role not found in context"))
			c.Abort()
			return
		}
		callerRole := models.UserRole(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.Error(apperr.Forbidden("Access denied. Required role(s): %s", rolesString(roles)))
		c.Abort()
	}
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(ctxUserID)
	return val.(uint)
}

// CurrentUserID is GetUserID for routes behind OptionalAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	val, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	return val.(uint), true
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	return models.UserRole(val.(string))
}

func GetClaims(c *gin.Context) *Claims {
	val, _ := c.Get(ctxClaims)
	claims, _ := val.(*Claims)
	return claims
}
