package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/mw"
)

// LoginPage describes the login form. A caller that already holds a live
// session is pointed at its dashboard.
func (h *Handler) LoginPage(c *gin.Context) {
	resp := gin.H{
		"roles":  laundry.Roles,
		"fields": []string{"username", "password", "role"},
	}
	if s, err := h.sessions.Get(mw.Token(c)); err == nil {
		resp["redirect"] = s.Role.DashboardPath()
	}
	c.JSON(http.StatusOK, resp)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Login starts a session for the chosen role.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		h.handleError(c, err)
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.SessionCookie, s.Token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":    s.Token,
		"role":     s.Role,
		"redirect": s.Role.DashboardPath(),
	})
}

// Logout ends the caller's session, if any, and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token := mw.Token(c); token != "" {
		h.sessions.Logout(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}
