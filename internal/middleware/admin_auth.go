package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"announcehub/internal/auth"
	"announcehub/internal/constants"
)

// RequireLevel 权限等级检查，需要在UserAuth之后使用
func RequireLevel(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentActor(c).Level < level {
			abort(c, http.StatusForbidden, constants.ErrInsufficientPermission)
			return
		}
		c.Next()
	}
}

// EditorAuth 审核员及以上
func EditorAuth() gin.HandlerFunc {
	return RequireLevel(auth.LevelEditor)
}

// AdminAuth 管理员
func AdminAuth() gin.HandlerFunc {
	return RequireLevel(auth.LevelAdmin)
}
