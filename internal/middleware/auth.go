// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"net/http"
	"strings"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/internal/service"
	"contenthub/pkg/log"
	"contenthub/pkg/token"

	"github.com/gin-gonic/gin"
)

// context keys
const (
	userKey   = "user"
	claimsKey = "claims"
	tokenKey  = "token"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": message, "data": nil})
}

// authenticator resolves the bearer token of a request into a user.
type authenticator struct {
	jwtManager  *token.JWTManager
	userService service.UserService
	blacklist   repository.TokenBlacklist
}

// authenticate returns ok=false after aborting the request. A request
// without an Authorization header yields a nil user.
func (a *authenticator) authenticate(c *gin.Context) (user *model.User, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		abort(c, http.StatusUnauthorized, "invalid authorization header format")
		return nil, false
	}
	tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

	claims, err := a.jwtManager.VerifyToken(tokenString)
	if err != nil || claims.Refresh {
		abort(c, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}

	revoked, err := a.blacklist.IsRevoked(c.Request.Context(), tokenString)
	if err != nil {
		log.Error("failed to check token blacklist", err)
		abort(c, http.StatusInternalServerError, "failed to verify token")
		return nil, false
	}
	if revoked {
		abort(c, http.StatusUnauthorized, "token has been revoked")
		return nil, false
	}

	// load the account so deleted users and role changes take effect at once
	user, err = a.userService.GetProfile(c.Request.Context(), service.Caller{Authenticated: true, UserID: claims.UserID})
	if err != nil {
		abort(c, http.StatusUnauthorized, "user does not exist")
		return nil, false
	}

	c.Set(userKey, user)
	c.Set(claimsKey, claims)
	c.Set(tokenKey, tokenString)
	return user, true
}

// AuthMiddleware requires a valid, unrevoked access token and stores the
// account in the gin context.
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService, blacklist repository.TokenBlacklist) gin.HandlerFunc {
	a := &authenticator{jwtManager: jwtManager, userService: userService, blacklist: blacklist}
	return func(c *gin.Context) {
		user, ok := a.authenticate(c)
		if !ok {
			return
		}
		if user == nil {
			abort(c, http.StatusUnauthorized, "authorization header is missing")
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through. A token that is
// present must still be valid.
func OptionalAuthMiddleware(jwtManager *token.JWTManager, userService service.UserService, blacklist repository.TokenBlacklist) gin.HandlerFunc {
	a := &authenticator{jwtManager: jwtManager, userService: userService, blacklist: blacklist}
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account stored by the auth middleware, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// CallerFrom builds the service caller for the request.
func CallerFrom(c *gin.Context) service.Caller {
	user, ok := CurrentUser(c)
	if !ok {
		return service.Anonymous
	}
	return service.Caller{
		Authenticated: true,
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
	}
}

// BearerToken returns the raw access token of an authenticated request.
func BearerToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
