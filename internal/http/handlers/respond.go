package handlers

import (
	"net/http"

	"github.com/Nikita7465/React-TS-server/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// The wire format is fixed by the clients that already consume this
// service: a flat message plus, on success, the token bundle.

type TokenBundle struct {
	JWT      string      `json:"jwt"`
	UserData user.Public `json:"userData"`
}

func RespondToken(ctx *gin.Context, message string, token string, data user.Public) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
		"user": TokenBundle{
			JWT:      token,
			UserData: data,
		},
	})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	body := gin.H{"message": message}

	if details != nil {
		body["fields"] = details
	}

	ctx.JSON(http.StatusBadRequest, body)
}

func RespondUnAuthorized(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusUnauthorized, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusInternalServerError, message)
}
