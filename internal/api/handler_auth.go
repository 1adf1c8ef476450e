package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/mw"
	"loom-downtime-backend/internal/store"
)

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Role     int    `json:"role"`
	RoleName string `json:"role_name"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Role: u.Role, RoleName: auth.Role(u.Role).String()}
}

// Login checks the credentials and issues a session token. Legacy
// plaintext passwords are replaced by their hash on success.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and password are required")
		return
	}

	u, err := h.store.FindUserByName(c.Request.Context(), req.Name)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !h.hasher.Verify(req.Password, u.PasswordHash)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if !auth.IsHash(u.PasswordHash) {
		hash := h.hasher.Hash(req.Password)
		if _, err := h.store.UpdateUser(c.Request.Context(), u.ID, store.UserUpdate{PasswordHash: &hash}); err != nil {
			h.log.Warn().Err(err).Int64("user", u.ID).Msg("failed to rehash legacy password")
		} else {
			h.log.Info().Int64("user", u.ID).Msg("legacy password rehashed")
		}
	}

	token, err := h.store.CreateSession(c.Request.Context(), u.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(u)})
}

// Me returns the authenticated user and what it may access.
func (h *Handler) Me(c *gin.Context) {
	u, _ := mw.CurrentUser(c)
	role := auth.Role(u.Role)
	c.JSON(http.StatusOK, gin.H{
		"user":       toUserResponse(u),
		"can_record": role.CanRecord(),
		"shift":      role.Shift(),
	})
}
