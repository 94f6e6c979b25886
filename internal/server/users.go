package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
)

func (s *Server) ListUsers(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	users, err := s.authsvc.ListUsers(c.Request.Context(), authdomain.ListUsersRequest{
		Role:   strings.TrimSpace(c.Query("role")),
		Active: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req authdomain.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "user.create", "user", user.ID.String(), map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req authdomain.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	user, err := s.authsvc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metadata := map[string]any{}
	if req.Role != nil {
		metadata["role"] = string(user.Role)
	}
	if req.Active != nil {
		metadata["active"] = user.Active
	}
	if req.Password != nil {
		metadata["password_reset"] = true
	}
	s.recordActivity(c, "user.update", "user", id, metadata)
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) DeleteUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.authsvc.DeleteUser(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "user.deactivate", "user", id, nil)
	c.Status(http.StatusNoContent)
}
