package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accountIDKey = "accountID"

// Claims carry only the account id; roles are always read from the store
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Auth issues and verifies bearer tokens
type Auth struct {
	secret []byte
	ttl    time.Duration
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed JWT for an account
func (a *Auth) GenerateToken(accountID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken verifies a token and returns the account id it was issued for
func (a *Auth) ParseToken(tokenStr string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	return uuid.Parse(claims.AccountID)
}

// AuthRequired validates the JWT and injects the account id into context
func (a *Auth) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		accountID, err := a.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// Require enforces a role-only action against the caller's current stored role
func Require(e *access.Evaluator, action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := e.Check(c.Request.Context(), GetAccountID(c), action, 0); err != nil {
			if apperr.CodeOf(err) == apperr.CodeInfra {
				log.Printf("access check %s: %v", action, err)
			}
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAccountID extracts caller account ID from context
func GetAccountID(c *gin.Context) uuid.UUID {
	val, _ := c.Get(accountIDKey)
	id, _ := val.(uuid.UUID)
	return id
}
