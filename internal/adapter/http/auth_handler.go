package http

import (
	"net/http"

	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *usecase.Auth
}

func NewAuthHandler(auth *usecase.Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": u.ID})
}

// Login only checks credentials; no session or token is issued.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "username": u.Username, "role": u.Role})
}
