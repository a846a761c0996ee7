package handler

import (
	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/service"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID      = "user_id"
	ContextUser        = "user"
	ContextAccessToken = "access_token"
)

// AuthMiddleware authenticates the request from the access token cookie and
// loads the user into the context
func AuthMiddleware(authService service.AuthService, responder *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessTokenCookie)
		if err != nil || token == "" {
			responder.Error(c, domain.Unauthenticated(MsgUnauthorized))
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			responder.Error(c, err)
			return
		}

		user, err := authService.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				responder.Error(c, domain.Unauthenticated(MsgUnauthorized, err))
				return
			}
			responder.Error(c, err)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Set(ContextAccessToken, token)

		c.Next()
	}
}
