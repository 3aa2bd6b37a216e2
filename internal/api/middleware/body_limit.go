package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

const mensajeBodyLimit = "El cuerpo de la solicitud es demasiado grande"

// BodyLimit 请求体大小限制
//
// JSON 请求使用 jsonMax；multipart 上传（PDF）使用 multipartMax，
// 文件本身的大小由上传 Handler 按 upload.max_size 精确校验。
// Content-Length 已知且超限时直接 413，不读取请求体。
func BodyLimit(jsonMax, multipartMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = multipartMax
		}
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, mensajeBodyLimit)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(e.Err, &mbe) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, mensajeBodyLimit)
				return
			}
		}
	}
}
