package handler

import (
	"net/http"
	"strings"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityContextKey = "identity"

// JWTClaims структура claims для JWT токена
type JWTClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// AuthMiddleware проверяет JWT токен и кладет Identity запроса в контекст Gin.
// Identity живет ровно один запрос: состояние сессии на сервере не хранится.
type AuthMiddleware struct {
	jwtSecret string
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate проверяет JWT токен и добавляет Identity в контекст Gin
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(m.jwtSecret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set(identityContextKey, &entity.Identity{
			ID:          claims.UserID,
			Role:        entity.Role(claims.Role),
			DisplayName: claims.DisplayName,
			Email:       claims.Email,
		})

		c.Next()
	}
}

// CurrentIdentity достает Identity запроса из контекста Gin.
// Возвращает nil, если запрос не прошел аутентификацию.
func CurrentIdentity(c *gin.Context) *entity.Identity {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil
	}

	identity, ok := value.(*entity.Identity)
	if !ok {
		return nil
	}

	return identity
}
