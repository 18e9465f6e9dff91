package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"bms_telemetry/internal/service"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var registerRequestSchema = z.Struct(z.Shape{
	"Name":     z.String().Min(1).Required(),
	"Email":    z.String().Email().Required(),
	"Password": z.String().Min(6).Required(),
})

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return false
	}
	return true
}

// invalidFields lists the payload fields that failed validation.
func invalidFields(issues z.ZogIssueMap) string {
	fields := make([]string, 0, len(issues))
	for k := range issues {
		if strings.HasPrefix(k, "$") {
			continue
		}
		fields = append(fields, strings.ToLower(k[:1])+k[1:])
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}

// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "name, email, password (min 6)"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/register [post]
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if issues := registerRequestSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		fields := invalidFields(issues)
		if h.log != nil {
			h.log.Infow("auth_register_invalid", "fields", fields)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fields: " + fields})
		return
	}

	u, err := h.services.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_register_failed", err, "email", req.Email)
		}
		return
	}

	c.JSON(http.StatusOK, userResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, u, err := h.services.GenerateToken(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_login_failed", "email", input.Email)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_login_error", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.Principal
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, principal(c))
}
