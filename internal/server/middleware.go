package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/haccp/internal/observability/context"
	"github.com/smallbiznis/haccp/internal/usercontext"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "bearer "
	contextUserIDKey    = "user_id"
)

// AuthRequired resolves the bearer token into a principal stored on the
// request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader(headerAuthorization))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		userID, err := snowflake.ParseString(claims.UserID)
		if err != nil || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := usercontext.WithPrincipal(c.Request.Context(), usercontext.Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   string(claims.Role),
		})
		ctx = obscontext.WithActor(ctx, "user", userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, userID.String())
		c.Next()
	}
}

// authorize gates a route on the casbin policy for object/action.
func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := usercontext.UserIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), "user:"+userID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set("resource", object)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
