package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"astra/internal/dialog"
	"astra/internal/lead"
)

type DialogRequest struct {
	ClientID  uint   `json:"client_id"`
	UserInput string `json:"user_input"`
}

// POST /dialog/request
func DialogRequestHandler(engine *dialog.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DialogRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing client_id"}})
			return
		}
		if strings.TrimSpace(req.UserInput) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Empty user_input"}})
			return
		}
		answer, err := engine.ProcessTurn(c.Request.Context(), req.ClientID, req.UserInput)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Dialog turn failed"}})
			return
		}
		history, err := engine.History(c.Request.Context(), req.ClientID)
		if err != nil {
			history = nil
		}
		c.JSON(http.StatusOK, gin.H{
			"response": answer,
			"history":  history,
		})
	}
}

type DialogClearRequest struct {
	ClientID uint `json:"client_id"`
}

// POST /dialog/clear
func DialogClearHandler(engine *dialog.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DialogClearRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing client_id"}})
			return
		}
		if err := engine.ClearDialog(c.Request.Context(), req.ClientID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Clear failed"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Dialog cleared"})
	}
}

// GET /dialog/history/:client_id
func DialogHistoryHandler(engine *dialog.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id64, err := strconv.ParseUint(c.Param("client_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid client_id"}})
			return
		}
		history, err := engine.History(c.Request.Context(), uint(id64))
		if err != nil {
			if errors.Is(err, lead.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Client not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "History read failed"}})
			return
		}
		if history == nil {
			history = []dialog.Turn{}
		}
		c.JSON(http.StatusOK, gin.H{
			"client_id": id64,
			"history":   history,
		})
	}
}
