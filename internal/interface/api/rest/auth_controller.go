package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/interface/api/rest/dto/auth"
	"cloudy/internal/interface/api/rest/dto/user"
	"cloudy/internal/interface/api/rest/middleware"
	"cloudy/internal/interface/api/rest/validator"
)

type AuthController struct {
	logger         *zap.Logger
	accountService ports.AccountService
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	accountService ports.AccountService,
	authMW gin.HandlerFunc,
) *AuthController {
	ac := &AuthController{
		logger:         logger,
		accountService: accountService,
	}

	r.POST(RouteOTP, ac.OTPHandler)
	r.POST(RouteVerify, ac.VerifyHandler)
	r.GET(RouteMe, authMW, ac.MeHandler)

	return ac
}

// OTPHandler creates the account when a full name is given and signs in
// otherwise. Either way a one-time secret goes out to the email.
func (ac *AuthController) OTPHandler(c *gin.Context) {
	var req auth.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if errs := validator.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	var (
		accountID string
		err       error
	)
	if req.FullName != "" {
		accountID, err = ac.accountService.CreateAccount(c.Request.Context(), req.FullName, req.Email)
	} else {
		accountID, err = ac.accountService.SignIn(c.Request.Context(), req.Email)
	}
	if err != nil {
		respondError(c, ac.logger, "request otp", err)
		return
	}

	c.JSON(http.StatusOK, auth.AccountResponse{AccountID: accountID})
}

func (ac *AuthController) VerifyHandler(c *gin.Context) {
	var req auth.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}
	req.Secret = strings.TrimSpace(req.Secret)

	if errs := validator.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	token, err := ac.accountService.VerifySecret(c.Request.Context(), req.AccountID, req.Secret)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired secret"})
			return
		}
		respondError(c, ac.logger, "verify secret", err)
		return
	}

	c.JSON(http.StatusOK, auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

func (ac *AuthController) MeHandler(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}
