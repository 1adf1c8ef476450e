package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/mw"
	"loom-downtime-backend/internal/store"
)

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     int    `json:"role" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *int    `json:"role"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, password and role are required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(c, "name must not be blank")
		return
	}
	if !auth.Role(req.Role).Valid() {
		badRequest(c, "role must be between 1 and 6")
		return
	}

	u := model.User{Name: req.Name, PasswordHash: h.hasher.Hash(req.Password), Role: req.Role}
	if err := h.store.CreateUser(c.Request.Context(), &u); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	var up store.UserUpdate
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			badRequest(c, "name must not be blank")
			return
		}
		up.Name = req.Name
	}
	if req.Password != nil && *req.Password != "" {
		hash := h.hasher.Hash(*req.Password)
		up.PasswordHash = &hash
	}
	if req.Role != nil {
		if !auth.Role(*req.Role).Valid() {
			badRequest(c, "role must be between 1 and 6")
			return
		}
		up.Role = req.Role
	}

	u, err := h.store.UpdateUser(c.Request.Context(), id, up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteUser removes an account. Users cannot delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	if me, _ := mw.CurrentUser(c); me.ID == id {
		badRequest(c, "cannot delete the current user")
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
