package handlers

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/arulyan/cfauth/services/auth"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/arulyan/cfauth/services/verification"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

//go:embed verified.html
var verifiedPage string

const (
	statusSuccess = "SUCCESS"
	statusPending = "PENDING"
	statusFailed  = "FAILED"
)

// Response is the uniform JSON envelope of every /user endpoint.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type UserHandler struct {
	auth         *auth.Service
	verification *verification.Service
	logger       *logging.Service
}

func NewUserHandler(authSvc *auth.Service, verificationSvc *verification.Service, logger *logging.Service) *UserHandler {
	return &UserHandler{
		auth:         authSvc,
		verification: verificationSvc,
		logger:       logger,
	}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/signup", h.SignUp)
	g.POST("/resendVerificationLink", h.ResendVerificationLink)
	g.GET("/verify/:userId/:uniqueString", h.Verify)
	g.GET("/verified", h.Verified)
	g.POST("/signin", h.SignIn)
	g.GET("/getUsers", h.GetUsers)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Handle   string `json:"handle"`
}

func (h *UserHandler) SignUp(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: "Invalid request body"})
	}

	result, err := h.auth.SignUp(c.Request().Context(), auth.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Handle:   req.Handle,
	})
	if err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: failureMessage(err)})
	}

	return c.JSON(http.StatusOK, Response{
		Status: statusPending,
		Message: fmt.Sprintf(
			"Verification email sent. Please change your Codeforces handle's last name to %s.",
			result.HandleNonce),
		Data: map[string]any{
			"userId":      result.UserID,
			"email":       result.Email,
			"handleNonce": result.HandleNonce,
		},
	})
}

type resendRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

func (h *UserHandler) ResendVerificationLink(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: "Invalid request body"})
	}

	if req.UserID == "" || req.Email == "" {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: "Empty user details are not allowed"})
	}

	userID, err := strconv.ParseUint(req.UserID, 10, 64)
	if err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: "Invalid user id"})
	}

	if _, err := h.verification.ResendChallenge(c.Request().Context(), uint(userID), req.Email); err != nil {
		return c.JSON(http.StatusOK, Response{
			Status:  statusFailed,
			Message: "Verification link resend error. " + failureMessage(err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Status:  statusPending,
		Message: "Verification email resent. Check your inbox.",
		Data: map[string]any{
			"userId": uint(userID),
			"email":  req.Email,
		},
	})
}

func (h *UserHandler) Verify(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return redirectVerified(c, "Invalid verification details passed. Check your inbox.")
	}

	result, err := h.verification.ConsumeProof(c.Request().Context(), uint(userID), c.Param("uniqueString"))
	if err != nil {
		h.logger.Error("verification lookup failed", zap.Error(err))
		return redirectVerified(c, "An error occurred while checking for existing user verification record")
	}

	switch result {
	case verification.ProofVerified:
		return c.Redirect(http.StatusSeeOther, "/user/verified")
	case verification.ProofExpired:
		return redirectVerified(c, "Link has expired. Please sign up again.")
	case verification.ProofInvalid:
		return redirectVerified(c, "Invalid verification details passed. Check your inbox.")
	default:
		return redirectVerified(c, "Account record doesn't exist or has been verified already. Please sign up or log in.")
	}
}

func redirectVerified(c echo.Context, message string) error {
	return c.Redirect(http.StatusSeeOther,
		"/user/verified?error=true&message="+url.QueryEscape(message))
}

func (h *UserHandler) Verified(c echo.Context) error {
	return c.HTML(http.StatusOK, verifiedPage)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) SignIn(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: "Invalid request body"})
	}

	user, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: failureMessage(err)})
	}

	return c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: "Signin successful",
		Data:    user,
	})
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	handles, err := h.auth.ListHandles(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list handles", zap.Error(err))
		return c.JSON(http.StatusOK, Response{Status: statusFailed, Message: failureMessage(err)})
	}

	return c.JSON(http.StatusOK, handles)
}

// failureMessage converts service errors to the user-facing message. Nothing
// else crosses the HTTP boundary.
func failureMessage(err error) string {
	var handleNotVerified *auth.HandleNotVerifiedError
	if errors.As(err, &handleNotVerified) {
		return fmt.Sprintf(
			"Codeforces handle not verified. Please change your Codeforces last name to %s. After logging in you can revert to your original last name.",
			handleNotVerified.ExpectedNonce)
	}

	switch {
	case errors.Is(err, auth.ErrEmptyFields):
		return "Empty input fields!"
	case errors.Is(err, auth.ErrInvalidName):
		return "Invalid name entered"
	case errors.Is(err, auth.ErrInvalidEmail):
		return "Invalid email entered"
	case errors.Is(err, auth.ErrInvalidHandle):
		return "Invalid handle entered"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "Password is too short!"
	case errors.Is(err, auth.ErrEmailTaken):
		return "User with the provided email already exists"
	case errors.Is(err, auth.ErrEmptyCredentials):
		return "Empty credentials supplied"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrNotVerified):
		return "Email hasn't been verified yet. Check your inbox."
	case errors.Is(err, auth.ErrInvalidPassword):
		return "Invalid password entered!"
	case errors.Is(err, auth.ErrOracleUnavailable):
		return "Couldn't reach Codeforces to verify your handle. Please try again."
	case errors.Is(err, verification.ErrNotifyFailed):
		return "Couldn't send verification email. Please try again."
	default:
		return "An error occurred while processing your request"
	}
}
