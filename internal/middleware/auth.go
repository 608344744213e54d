package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key holding the *models.User.
const CurrentUserKey = "currentUser"

// bearerToken reads the token from the Authorization header, then from
// ?token= for downloads that cannot set headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// AuthMiddleware verifies the access token and stores the current user in
// the context. Accounts pending deletion must sign in again.
func AuthMiddleware(jwtSecret string, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr, util.AccessToken)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Given token not valid for any token type")
			c.Abort()
			return
		}

		user, err := st.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User not found")
			} else {
				util.Fail(c, err)
			}
			c.Abort()
			return
		}
		if user.DeletedAt != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User is inactive")
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
