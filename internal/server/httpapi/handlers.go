package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/gin-gonic/gin"
)

// UserService is the account API the handlers call.
type UserService interface {
	SignUp(ctx context.Context, email, password, role string) (*models.Profile, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id string) (*models.Profile, error)
	ListUsers(ctx context.Context, page, limit int) ([]models.Profile, error)
	UpdateUser(ctx context.Context, actor *auth.Claims, id string, in models.UserUpdate) (*models.Profile, error)
	DeleteUser(ctx context.Context, actor *auth.Claims, id string) error
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signInResponse struct {
	AccessToken string `json:"accessToken"`
}

type meResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type handlers struct {
	users  UserService
	logger logging.Logger
}

func (h *handlers) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: "email and password are required"})
		return
	}

	p, err := h.users.SignUp(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateCredential) {
			c.JSON(http.StatusConflict, errorBody{Error: "conflict", Message: "email already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: "could not create user"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: "email and password are required"})
		return
	}

	token, err := h.users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredential) {
			c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthenticated", Message: "invalid email or password"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, signInResponse{AccessToken: token})
}

func (h *handlers) me(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		abortWith(c, rejectionForMissing())
		return
	}
	resp := meResponse{UserID: claims.UserID(), Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) getUser(c *gin.Context) {
	p, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, errorBody{Error: "not_found", Message: "user not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listUsers(c *gin.Context) {
	page, err1 := queryInt(c, "page")
	limit, err2 := queryInt(c, "limit")
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: "page and limit must be integers"})
		return
	}

	list, err := h.users.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) updateUser(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		abortWith(c, rejectionForMissing())
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: "malformed request body"})
		return
	}

	p, err := h.users.UpdateUser(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		h.changeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteUser(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		abortWith(c, rejectionForMissing())
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), claims, c.Param("id")); err != nil {
		h.changeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// changeError maps UpdateUser and DeleteUser failures.
func (h *handlers) changeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()})
	case errors.Is(err, common.ErrorMissingCredential), errors.Is(err, common.ErrorInsufficientRole):
		abortWith(c, gate.RejectionFor(err))
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "not_found", Message: "user not found"})
	case errors.Is(err, common.ErrorDuplicateCredential):
		c.JSON(http.StatusConflict, errorBody{Error: "conflict", Message: "email already registered"})
	default:
		h.internalError(c, err)
	}
}

func (h *handlers) internalError(c *gin.Context, err error) {
	h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
