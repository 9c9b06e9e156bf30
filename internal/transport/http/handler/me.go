package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /me
// Echoes the identity carried by the session JWT. Mostly a smoke test that
// redeemed links produce working sessions.
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    c.GetString("accountID"),
		"login": c.GetString("accountLogin"),
		"email": c.GetString("accountEmail"),
	})
}
