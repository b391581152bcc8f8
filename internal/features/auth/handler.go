package auth

// Swagger API metadata is defined globally in cmd/api/main.go

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/jwt"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

type Handler struct {
	repo             UserStore
	jwtConfig        *jwt.Config
	clock            clock.Clock
	allowAdminSignup bool
	log              *logger.Logger
}

func NewHandler(repo UserStore, jwtConfig *jwt.Config, clk clock.Clock, allowAdminSignup bool, log *logger.Logger) *Handler {
	return &Handler{
		repo:             repo,
		jwtConfig:        jwtConfig,
		clock:            clk,
		allowAdminSignup: allowAdminSignup,
		log:              logger.OrDefault(log).With("auth"),
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create an account. Registration does not log the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse{data=RegisterResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateRegister(&req); err != nil {
		response.FromError(c, err)
		return
	}

	if req.Role == RoleAdmin && !h.allowAdminSignup {
		response.Forbidden(c, "Admin accounts cannot be self-registered", "ADMIN_SIGNUP_DISABLED")
		return
	}

	// Check if user exists
	existing, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Error("lookup %s: %v", req.Email, err)
		response.InternalServerError(c, "Registration failed", "DATABASE_ERROR")
		return
	}
	if existing != nil {
		response.Conflict(c, "Email already registered", "EMAIL_TAKEN")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalServerError(c, "Failed to process password")
		return
	}

	user := &User{
		Email:        req.Email,
		FullName:     req.FullName,
		Mobile:       req.Mobile,
		Role:         req.Role,
		PasswordHash: string(hashedPassword),
	}

	if err := h.repo.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			response.Conflict(c, "Email already registered", "EMAIL_TAKEN")
			return
		}
		h.log.Error("create user %s: %v", req.Email, err)
		response.InternalServerError(c, "Registration failed", "DATABASE_ERROR")
		return
	}

	h.log.Info("registered %s as %s", user.ID.Hex(), user.Role)
	response.Created(c, RegisterResponse{User: user.ToIdentity()}, "Registration successful")
}

// Login godoc
// @Summary Login user
// @Description Authenticate with email and password and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "User login credentials"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateLogin(&req); err != nil {
		response.FromError(c, err)
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Error("lookup %s: %v", req.Email, err)
		response.InternalServerError(c, "Login failed", "DATABASE_ERROR")
		return
	}
	if user == nil {
		response.Unauthorized(c, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	token, err := jwt.GenerateTokenWithRole(user.ID.Hex(), user.Email, string(user.Role), h.clock.Now(), h.jwtConfig)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.Success(c, AuthResponse{
		Token: token,
		User:  user.ToIdentity(),
	})
}

// Me godoc
// @Summary Get current identity
// @Description Return the identity behind the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=RegisterResponse}
// @Failure 401 {object} response.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	c.JSON(http.StatusOK, response.APIResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Data:       RegisterResponse{User: *identity},
	})
}
