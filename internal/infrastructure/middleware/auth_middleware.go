package middleware

import (
	"net/http"

	"mingle_chat_server/internal/service"
	"mingle_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ContextUserKey 认证通过后请求方用户在 gin 上下文中的键
const ContextUserKey = "auth_user"

// AuthGate 请求方身份校验中间件
// 所有受保护路由的 :userId 路径参数必须对应一个真实存在的用户，
// 校验通过后将用户模型存入上下文供后续 Handler 使用
func AuthGate(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("userId")
		if userId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "缺少用户标识",
			})
			return
		}

		user, err := authSvc.Authenticate(c.Request.Context(), userId)
		if err != nil {
			code := errorx.GetCode(err)
			c.AbortWithStatusJSON(errorx.HTTPStatus(code), gin.H{
				"code": code,
				"msg":  "身份校验失败",
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
