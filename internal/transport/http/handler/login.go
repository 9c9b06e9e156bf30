package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wpup/conauth/internal/domain"
	"github.com/wpup/conauth/internal/usecase"
)

// loginUsecaser is the subset of LoginUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type loginUsecaser interface {
	RequestLoginLink(ctx context.Context, rawEmail string) (*usecase.IssueResult, error)
	Redeem(ctx context.Context, rawToken string) (string, error)
}

type LoginHandler struct {
	login  loginUsecaser
	logger *slog.Logger
}

func NewLoginHandler(login loginUsecaser, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		login:  login,
		logger: logger.With("component", "login_handler"),
	}
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /auth/login
// Answers 200 with the same message whether or not the address is registered;
// only a delivery failure is reported distinctly, since that is an
// operational problem rather than bad input.
func (h *LoginHandler) RequestLoginLink(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.login.RequestLoginLink(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": msgDeliveryFailed})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "request login link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if result.Link != "" {
		// Couch mode: surface the link directly instead of emailing it.
		c.JSON(http.StatusOK, gin.H{"message": msgCheckInbox, "link": result.Link})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgCheckInbox})
}

// GET /auth/verify?token=<raw>
// A missing token is a no-op, not an error. Invalid and expired tokens both
// get the single "link expired" answer.
func (h *LoginHandler) Verify(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.Status(http.StatusNoContent)
		return
	}

	sessionToken, err := h.login.Redeem(c.Request.Context(), rawToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoToken):
			c.Status(http.StatusNoContent)
		case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgLinkExpired})
		default:
			h.logger.ErrorContext(c.Request.Context(), "redeem token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": sessionToken})
}
