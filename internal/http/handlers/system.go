package handlers

import (
	"net/http"

	intconfig "nganya/internal/config"
	"nganya/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h Handlers) Health(c *gin.Context) {
	payload := gin.H{"status": "ok", "message": "dispatch backend running"}
	if h.Realtime != nil {
		payload["sessions"] = h.Realtime.Hub.SessionCount()
	}
	if h.Presence != nil {
		payload["liveDrivers"] = h.Presence.LiveCount()
	}
	c.JSON(http.StatusOK, payload)
}

func (h Handlers) DBCheck(c *gin.Context) {
	if err := intconfig.PingDB(c.Request.Context()); err != nil {
		RespondError(c, http.StatusInternalServerError, "database unavailable: "+err.Error())
		return
	}
	var count int
	if err := intconfig.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM drivers").Scan(&count); err != nil {
		RespondError(c, http.StatusInternalServerError, "database query failed: "+err.Error())
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "database connection OK", "drivers_in_db": count})
}

// GET /api/me resolves the bearer token to its account.
func (h Handlers) Me(c *gin.Context) {
	role, id, _ := middleware.AuthIdentity(c)
	acc, err := h.Identity.FindAccount(c.Request.Context(), role, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"account": acc})
}
