package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"usersvc/internal/domain"
	"usersvc/internal/repository"
	"usersvc/internal/service"
)

// Handler wires the /users resource to the user service. Every request runs
// inside the transactional scope opened by the Transaction middleware.
type Handler struct {
	users  service.UserService
	store  repository.UserStore
	logger *logrus.Logger
}

func NewHandler(users service.UserService, store repository.UserStore, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/users")
	users.POST("/", Transaction(h.store, h.logger), h.createUser)

	// the id segment is digits-only; anything else never reaches a handler
	byID := users.Group("/:id", requireNumericID(), Transaction(h.store, h.logger))
	byID.GET("", h.getUser)
	byID.PATCH("", h.updateUser)
	byID.DELETE("", h.deleteUser)
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CreationTime int64  `json:"creation_time"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}

	tx := txFromContext(c)
	user, err := h.users.Create(c.Request.Context(), tx, req.Name, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := tx.Commit(c.Request.Context()); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), txFromContext(c), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	tx := txFromContext(c)
	user, err := h.users.Update(c.Request.Context(), tx, id, service.UserUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := tx.Commit(c.Request.Context()); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	tx := txFromContext(c)
	user, err := h.users.Delete(c.Request.Context(), tx, id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := tx.Commit(c.Request.Context()); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}

// userID parses the digits-only id segment. An id too large for int64 cannot
// name an existing row, so overflow renders the same 404 as a missing user.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return 0, false
	}
	return id, true
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Name:         user.Name,
		CreationTime: user.CreationTime.Unix(),
	}
}

// renderError maps domain outcomes to transport status codes. Anything
// unexpected becomes an opaque 500 so storage details never leak.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
