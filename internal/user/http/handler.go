package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/explore-grabby/booking-backend/internal/auth"
	"github.com/explore-grabby/booking-backend/internal/pkg/response"
	"github.com/explore-grabby/booking-backend/internal/user"
)

const userKey = "provisionedUser"

type UserHandler struct {
	userService user.Service
}

func NewHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// identityOf converts the token claims into a provisioning request.
func identityOf(claims *auth.Claims) user.Identity {
	return user.Identity{
		Subject:    claims.Subject,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
	}
}

// RequireProvisioned upserts the authenticated caller before the wrapped
// handler runs. It must be used after auth.AuthRequired.
func RequireProvisioned(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.Provision(c.Request.Context(), identityOf(claims))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// Me returns the caller's user record. It runs behind RequireProvisioned, so
// the record always exists.
func (h *UserHandler) Me(c *gin.Context) {
	v, _ := c.Get(userKey)
	u, ok := v.(*user.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roles := auth.GetClaims(c).Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u), Roles: roles})
}

// List returns every provisioned user. Access Control: admin only.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Get returns one user by subject. Access Control: admin only.
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(u))
}
