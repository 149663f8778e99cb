package auth

import "github.com/gin-gonic/gin"

const claimsKey = "authClaims"

// GetClaims returns the claims stored by AuthRequired, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated subject or empty string.
func GetUserID(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// HasRole reports whether the authenticated user carries role.
func HasRole(c *gin.Context, role string) bool {
	claims := GetClaims(c)
	return claims != nil && claims.HasRole(role)
}
