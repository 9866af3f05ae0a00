package middlewares

import "github.com/gin-gonic/gin"

// abortJSON stops the chain with the API error envelope.
func abortJSON(c *gin.Context, status int, message string) {
	body := gin.H{
		"success": false,
		"error":   message,
	}

	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
