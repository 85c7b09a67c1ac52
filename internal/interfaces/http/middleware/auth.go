package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/pkg/jwt"
)

const claimsContextKey = "auth_claims"

// Auth validates the bearer token and stores the claims on the gin context
func Auth(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{Success: false, Error: "Authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{Success: false, Error: "Invalid authorization header"})
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			msg := "Invalid token"
			if err == jwt.ErrExpiredToken {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{Success: false, Error: msg})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects non-admin actors (e.g. impersonated partner tokens)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || claims.ActorType != jwt.ActorAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Response{Success: false, Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin restricts a route to super_admin accounts
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || claims.AdminType != string(entities.AdminTypeSuper) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Response{Success: false, Error: "Super admin access required"})
			return
		}
		c.Next()
	}
}

// RequireDepartment gates a route on a department. super_admin bypasses the
// check; a sub_admin needs the department or the "all" sentinel.
func RequireDepartment(department string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{Success: false, Error: "Authentication required"})
			return
		}
		if claims.AdminType == string(entities.AdminTypeSuper) {
			c.Next()
			return
		}
		for _, d := range claims.Departments {
			if d == entities.DepartmentAll || d == department {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Response{Success: false, Error: "Department access denied"})
	}
}

// RequirePartner restricts a route to partner-scoped tokens
func RequirePartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || claims.ActorType != jwt.ActorPartner {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Response{Success: false, Error: "Partner access required"})
			return
		}
		c.Next()
	}
}

// GetClaims returns the validated token claims from the gin context
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetAdminID returns the authenticated admin's ID
func GetAdminID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(c)
	if !ok || claims.ActorType != jwt.ActorAdmin {
		return uuid.Nil, false
	}
	return claims.SubjectID, true
}

// GetPartnerID returns the acting partner's ID from a partner-scoped token
func GetPartnerID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(c)
	if !ok || claims.ActorType != jwt.ActorPartner {
		return uuid.Nil, false
	}
	return claims.SubjectID, true
}
