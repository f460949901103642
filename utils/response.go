package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Application codes carried in the envelope. Zero is success; failures reuse
// the HTTP status followed by two digits.
const (
	CodeOK                  = 0
	CodeDatabaseUnavailable = 50300
)

// Envelope is the body of every JSON answer, currently only /health.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Respond writes env with the given HTTP status.
func Respond(ctx *gin.Context, status int, env Envelope) {
	ctx.JSON(status, env)
}

// Success answers 200 with data.
func Success(ctx *gin.Context, data any) {
	Respond(ctx, http.StatusOK, Envelope{Code: CodeOK, Message: "success", Data: data})
}

// Error answers status with an application code and no data.
func Error(ctx *gin.Context, status, code int, message string) {
	Respond(ctx, status, Envelope{Code: code, Message: message})
}
