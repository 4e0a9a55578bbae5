package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"art-assistant-backend/internal/apierror"
	"art-assistant-backend/internal/database"
	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UsersHandler struct {
	store     Store
	log       logrus.FieldLogger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUsersHandler(store Store, log logrus.FieldLogger, jwtSecret string, tokenTTL time.Duration) *UsersHandler {
	return &UsersHandler{
		store:     store,
		log:       log,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Insert godoc
// @Summary     Create a user
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body models.InsertUserRequest true "User"
// @Success     201 {object} models.User
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /users/insert [post]
func (h *UsersHandler) Insert(c *gin.Context) {
	var req models.InsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindingError(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "password cannot be hashed", err))
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), strings.TrimSpace(req.Email), string(hash))
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(c, h.log, apierror.Conflict("user_email is already registered", err))
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// List godoc
// @Summary     List users
// @Tags        users
// @Produce     json
// @Success     200 {array} models.User
// @Router      /users/get [get]
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) GetID(c *gin.Context) {
	var req models.UserLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindingError(err))
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, h.log, apierror.NotFound("no user with that email"))
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.UserIDResponse{UserID: user.ID})
}

// Login godoc
// @Summary     Exchange credentials for a bearer token
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body models.LoginRequest true "Credentials"
// @Success     200 {object} models.LoginResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /users/login [post]
func (h *UsersHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindingError(err))
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, h.log, apierror.Unauthorized("invalid email or password"))
			return
		}
		respondError(c, h.log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, h.log, apierror.Unauthorized("invalid email or password"))
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		respondError(c, h.log, apierror.Unavailable("login is not configured"))
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, UserID: user.ID})
}
