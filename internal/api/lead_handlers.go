package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"astra/internal/lead"
)

type LeadRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Log     *string `json:"log"`
}

func leadPayload(l *lead.Lead) gin.H {
	return gin.H{
		"id":        l.ID,
		"name":      l.Name,
		"contact":   l.Contact,
		"log":       l.Log,
		"timestamp": l.Timestamp,
	}
}

// POST /lead
func CreateLeadHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		l := lead.Lead{Name: req.Name, Contact: req.Contact, Log: "[]"}
		if req.Log != nil {
			l.Log = *req.Log
		}
		if err := leads.Create(c.Request.Context(), &l); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": l.ID})
	}
}

// GET /lead
func ListLeadsHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		all, err := leads.List(c.Request.Context(), offset, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		result := make([]gin.H, 0, len(all))
		for i := range all {
			result = append(result, leadPayload(&all[i]))
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /lead/:id
func GetLeadHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		l, err := leads.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Lead not found"}})
			return
		}
		c.JSON(http.StatusOK, leadPayload(l))
	}
}

// PUT /lead/:id
func UpdateLeadHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req LeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		fields := map[string]interface{}{}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.Contact != nil {
			fields["contact"] = *req.Contact
		}
		if req.Log != nil {
			fields["log"] = *req.Log
		}
		if len(fields) == 0 {
			l, err := leads.Get(c.Request.Context(), id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Lead not found"}})
				return
			}
			c.JSON(http.StatusOK, leadPayload(l))
			return
		}
		l, err := leads.Update(c.Request.Context(), id, fields)
		if err != nil {
			if errors.Is(err, lead.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Lead not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Update error"}})
			return
		}
		c.JSON(http.StatusOK, leadPayload(l))
	}
}

// DELETE /lead/:id
func DeleteLeadHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		if err := leads.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, lead.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Lead not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Delete error"}})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
		return 0, false
	}
	return uint(id64), true
}
