package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
}

// MessageBody is the wire shape of confirmation-only responses
// (logout, delete).
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes data as the response body. Success payloads are bare
// resources (a task, a list, a stats object), not an envelope.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Error writes { "message": ... } with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Message: message})
}

// AbortError writes { "message": ... } and stops the handler chain.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message})
}

// Message writes { "message": ... } as a success body.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}
