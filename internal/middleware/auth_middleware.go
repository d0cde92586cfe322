package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/app/models/dto"
	"github.com/emre/scolaris/internal/pkg/auth"
)

// Context keys set by JWTAuth for downstream handlers
const (
	ContextUserID      = "userID"
	ContextSchoolID    = "schoolID"
	ContextRoleType    = "roleType"
	ContextPermissions = "permissions"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Swagger UI sometimes passes the token as a query parameter
		if authHeader == "" {
			authHeader = c.Query("authorization")
		}
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		var tokenString string
		if strings.Count(authHeader, ".") == 2 && !strings.HasPrefix(authHeader, "Bearer ") {
			// Raw JWT without the Bearer prefix
			tokenString = authHeader
		} else {
			var err error
			tokenString, err = auth.ExtractBearerToken(authHeader)
			if err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
					WithDetails("Invalid token format")
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
				return
			}
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}
			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").
				WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSchoolID, claims.SchoolID)
		c.Set(ContextRoleType, claims.RoleType)
		c.Set(ContextPermissions, claims.Permissions)

		c.Next()
	}
}

// AdminRequired restricts a route to admin users
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleType := c.GetString(ContextRoleType)
		if roleType != string(models.RoleAdmin) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Admin access required")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// PermissionRequired restricts a route to users holding the named permission.
// Admins pass implicitly.
func (m *AuthMiddleware) PermissionRequired(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleType) == string(models.RoleAdmin) {
			c.Next()
			return
		}
		perms, _ := c.Get(ContextPermissions)
		if held, ok := perms.([]string); ok {
			for _, p := range held {
				if p == perm {
					c.Next()
					return
				}
			}
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission required").
			WithDetails(perm)
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// SchoolScoped verifies the token's school matches the schoolId in the path.
// A record in one school must be unreachable with another school's token.
func (m *AuthMiddleware) SchoolScoped() gin.HandlerFunc {
	return func(c *gin.Context) {
		pathSchoolID := c.Param("schoolId")
		tokenSchoolID := c.GetString(ContextSchoolID)
		if pathSchoolID != "" && tokenSchoolID != "" && pathSchoolID != tokenSchoolID {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Token is not valid for this school")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
