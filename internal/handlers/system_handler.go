package handlers

import (
	"net/http"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetSystemStatus reports the register identity and datastore health for
// the admin dashboard's status widget.
func GetSystemStatus(c *gin.Context) {
	dbStatus := "online"
	if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "offline"
	}

	c.JSON(http.StatusOK, gin.H{
		"register_id": utils.GetRegisterID(),
		"database":    dbStatus,
	})
}
