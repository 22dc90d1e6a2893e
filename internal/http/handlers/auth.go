package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Nikita7465/React-TS-server/internal/auth"
	"github.com/Nikita7465/React-TS-server/internal/config"
	"github.com/Nikita7465/React-TS-server/internal/domain/user"
	"github.com/Nikita7465/React-TS-server/internal/repo/sqlite"
	"github.com/Nikita7465/React-TS-server/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
}

type UserStore interface {
	UserReader
	UserWriter
}

type AuthHandler struct {
	users  UserStore
	issuer *auth.Issuer
	log    *slog.Logger
}

func NewAuthHandler(users UserStore, issuer *auth.Issuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		issuer: issuer,
		log:    log,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt is the slow part; budget for it
	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	// pre-check is a fast path for the friendly 400; the UNIQUE
	// constraint below is what actually guarantees one row per email
	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondBadRequest(ctx, "User already exists", nil)
		return
	}

	if !errors.Is(err, sqlite.ErrUserNotFound) {
		h.log.ErrorContext(ctx.Request.Context(), "register: lookup failed", "err", err)
		RespondInternal(ctx, "Failed to register user")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "register: hash failed", "err", err)
		RespondInternal(ctx, "Failed to register user")
		return
	}

	u, err := h.users.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		if errors.Is(err, sqlite.ErrEmailAlreadyUsed) {
			// lost the race against a concurrent registration
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "register: insert failed", "err", err)
		RespondInternal(ctx, "Failed to register user")
		return
	}

	token, _, err := h.issuer.Issue(u.Username, u.Email)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "register: token issue failed", "err", err)
		RespondInternal(ctx, "Failed to register user")
		return
	}

	RespondToken(ctx, "User successfully registered", token, u.Public())
}

func (h *AuthHandler) Authenticate(ctx *gin.Context) {
	var req AuthRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			// same response as a bad password, no account enumeration
			RespondUnAuthorized(ctx, "Incorrect email or password")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "auth: lookup failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "Incorrect email or password")
		return
	}

	token, _, err := h.issuer.Issue(foundUser.Username, foundUser.Email)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "auth: token issue failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	RespondToken(ctx, "User authenticated successfully", token, foundUser.Public())
}
