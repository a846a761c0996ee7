package handler

import (
	"net/http"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/dto"
	"github.com/adeelchainz/base-server/internal/service"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

// ConfirmRegistrationPath is the route of ConfirmRegistration relative to the API root
const ConfirmRegistrationPath = "/registration/confirm/:token"

const (
	MsgUserRegistered   = "User registered"
	MsgAccountConfirmed = "Account confirmed"
	MsgLoginSuccessful  = "Login successful"
	MsgValidationFailed = "Validation failed"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	responder   *Responder
	cookies     *SessionCookies
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, responder *Responder, cookies *SessionCookies, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		responder:   responder,
		cookies:     cookies,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} Envelope{data=dto.AccountResponse}
// @Failure 422 {object} Envelope
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	req.Normalize()
	if !h.validate(c, req.Validate()) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	h.responder.Success(c, http.StatusCreated, MsgUserRegistered, response)
}

// ConfirmRegistration handles account confirmation
// @Summary Confirm a registered account
// @Tags auth
// @Produce json
// @Param token path string true "Confirmation token"
// @Param code query string true "Confirmation code"
// @Success 201 {object} Envelope{data=dto.AccountResponse}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /registration/confirm/{token} [patch]
func (h *AuthHandler) ConfirmRegistration(c *gin.Context) {
	response, err := h.authService.ConfirmRegistration(c.Request.Context(), c.Param("token"), c.Query("code"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	h.responder.Success(c, http.StatusCreated, MsgAccountConfirmed, response)
}

// Login handles user login
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} Envelope{data=dto.LoginResponse}
// @Failure 400 {object} Envelope
// @Failure 422 {object} Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	req.Normalize()
	if !h.validate(c, req.Validate()) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	h.cookies.Set(c, response.AccessToken, response.RefreshToken)

	h.responder.Success(c, http.StatusOK, MsgLoginSuccessful, response)
}

// Logout handles user logout
// @Summary Logout user
// @Tags auth
// @Produce json
// @Success 200 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /logout [put]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookie)

	if err := h.authService.Logout(c.Request.Context(), c.GetString(ContextAccessToken), refreshToken); err != nil {
		h.logger.Error("Logout cleanup failed",
			zap.String("user_id", c.GetString(ContextUserID)),
			zap.Error(err),
		)
	}

	h.cookies.Clear(c)

	h.responder.Success(c, http.StatusOK, MsgSuccess, nil)
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} Envelope{data=domain.User}
// @Failure 401 {object} Envelope
// @Router /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := c.Get(ContextUser)
	if !ok {
		h.responder.Error(c, domain.Unauthenticated(MsgUnauthorized))
		return
	}

	h.responder.Success(c, http.StatusOK, MsgSuccess, user)
}

func (h *AuthHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.responder.Error(c, domain.Validation(MsgInvalidBody, err))
		return false
	}
	return true
}

func (h *AuthHandler) validate(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}

	if errs, ok := err.(validation.Errors); ok {
		h.responder.ErrorWithData(c, domain.Validation(errs.Error(), err), errs)
		return false
	}

	h.responder.Error(c, domain.Validation(MsgValidationFailed, err))
	return false
}
