package middleware

import (
	"context"
	"net/http"
	"strings"

	directoryRepo "vecindo/database/repository/directory"
	"vecindo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the bearer token and sets userID, userName and
// role in the request context. Subject existence is checked against the
// directory with a Redis cache in front so the hot path skips MongoDB.
func JWTAuthMiddleware(directory directoryRepo.UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		logger := utils.GetLogger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		userID, _ := claims["sub"].(string)
		userName, _ := claims["name"].(string)

		cacheKey := utils.AuthCachePrefix + userID
		authCache := utils.GetAuthCacheClient()

		cachedRole, err := authCache.Get(ctx, cacheKey).Result()
		if err == nil {
			_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
			c.Set("userID", userID)
			c.Set("userName", userName)
			c.Set("role", cachedRole)
			c.Next()
			return
		}
		if err != redis.Nil {
			logger.Warn("auth cache lookup failed, falling back to directory", zap.Error(err))
		}

		user, err := directory.GetByID(userID)
		if err != nil {
			logger.Error("failed to resolve authenticated user", zap.String("userId", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		_ = authCache.Set(ctx, cacheKey, user.Role, utils.AuthCacheTTL).Err()

		c.Set("userID", user.ID)
		c.Set("userName", user.Name)
		c.Set("role", user.Role)
		c.Next()
	}
}

// RequireRoles restricts a route to the given roles. Must run after
// JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
