// Package response defines the JSON envelope every endpoint returns.
package response

import "github.com/gin-gonic/gin"

// Envelope is the wire shape of every response. Success responses carry Data,
// failures carry Error.
type Envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Success writes {"ok":true,"data":...} with the given status
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{OK: true, Data: data})
}

// Error writes {"ok":false,"error":"..."} with the given status
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{OK: false, Error: message})
}
