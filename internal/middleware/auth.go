package middleware

import (
	"net/http"
	"strings"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "auth_claims"

// JWTClaims are the identity facts carried by every access token.
type JWTClaims struct {
	UserID   string
	Username string
	Rol      string
}

// JWTAuth validates the Bearer token and stores its claims on the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token de autenticação ausente"))
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}
		claims := JWTClaims{}
		if v, ok := mapClaims["user_id"].(string); ok {
			claims.UserID = v
		}
		if v, ok := mapClaims["username"].(string); ok {
			claims.Username = v
		}
		if v, ok := mapClaims["rol"].(string); ok {
			claims.Rol = v
		}
		if claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole allows only the listed roles past this point.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permissão insuficiente para esta operação"))
			return
		}
		c.Next()
	}
}

// GetClaims extracts the authenticated identity set by JWTAuth.
func GetClaims(c *gin.Context) (JWTClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return JWTClaims{}, false
	}
	claims, ok := v.(JWTClaims)
	return claims, ok
}
