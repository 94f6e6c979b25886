package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		s.recordActivity(c, "user.login_failed", "user", "", map[string]any{
			"email": email,
		})
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "user.login", "user", result.User.ID.String(), map[string]any{
		"email": email,
	})
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) Me(c *gin.Context) {
	user, err := s.authsvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	perms, err := s.authzSvc.Permissions(string(user.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user":        user,
		"permissions": perms,
	}})
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	userID, _ := c.Get(contextUserIDKey)
	targetID, _ := userID.(string)
	s.recordActivity(c, "user.change_password", "user", targetID, nil)
	c.Status(http.StatusNoContent)
}
