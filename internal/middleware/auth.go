package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// LedgerClaims are the JWT claims the ledger API expects. The subject is the acting user.
type LedgerClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID acting in tenantID.
func IssueToken(userID, tenantID, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	if userID == "" || tenantID == "" {
		return "", errors.New("user and tenant are required")
	}
	now := time.Now()
	claims := LedgerClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// An empty issuer disables the issuer check.
func AuthMiddleware(jwtSecret string, issuer string) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims := &LedgerClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		}, parserOpts...)

		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		if !token.Valid || claims.Subject == "" || claims.TenantID == "" {
			logger.Warn("Token lacks subject or tenant", slog.Bool("valid", token.Valid))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		enrichedLogger := logger.With(
			slog.String("user_id", claims.Subject),
			slog.String("tenant_id", claims.TenantID),
		)
		ctx := WithActor(c.Request.Context(), claims.TenantID, claims.Subject)
		c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))

		c.Next()
	}
}
