package middleware

import (
	"errors"
	"net/http"
	"strings"

	"stagesight/internal/model"
	"stagesight/internal/repository"
	apperrors "stagesight/pkg/app_errors"
	"stagesight/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userKey    = "auth_user"
	profileKey = "auth_profile"
)

// Claims access token 內容，sub 為使用者 uuid
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth 解析 Bearer token 並把目前使用者放進 context。
// 沒有 Authorization header 視為訪客，token 無效則回 401。
func Auth(secret string, profiles repository.ProfileRepository) gin.HandlerFunc {
	log := logger.WithComponent("auth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		user, err := ParseToken(secret, raw)
		if err != nil {
			log.Debug("Invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		profile, err := profiles.FindByID(c, user.ID)
		switch {
		case err == nil:
			if profile.FirstName != nil {
				user.FirstName = *profile.FirstName
			}
			if profile.LastName != nil {
				user.LastName = *profile.LastName
			}
			c.Set(profileKey, profile)
		case errors.Is(err, apperrors.ErrProfileNotFound):
			// 尚未建立 profile 的帳號仍可結帳
		default:
			log.Error("Failed to load profile", zap.String("userID", user.ID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// ParseToken 驗證 HS256 簽章並取出使用者
func ParseToken(secret, raw string) (*model.AuthUser, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == model.GuestUserID {
		return nil, apperrors.ErrUnauthorized
	}

	return &model.AuthUser{ID: id, Email: claims.Email}, nil
}

// RequireAdmin 未登入回 401，profile 角色不是 admin 回 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		profile := CurrentProfile(c)
		if profile == nil || !profile.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 目前登入的使用者，訪客回傳 nil
func CurrentUser(c *gin.Context) *model.AuthUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.AuthUser)
	return user
}

func CurrentProfile(c *gin.Context) *model.Profile {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil
	}
	profile, _ := v.(*model.Profile)
	return profile
}
