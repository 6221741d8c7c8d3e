// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/fashion-storefront/internal/utils"
)

// I18nMiddleware picks the response language from Accept-Language. Only the
// first preference is considered.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ContextKeyLang, parseLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

func parseLanguage(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	// "zh-TW,zh;q=0.9,en;q=0.8"
	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW", "zh":
		return "zh_TW"
	case "en", "en-US", "en-GB":
		return "en"
	default:
		return defaultLang
	}
}
