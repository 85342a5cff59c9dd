package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"astra/internal/knowledge"
	"astra/internal/llm"
)

// GET /base/document
func DocumentHandler(base *knowledge.Base) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, err := base.Document()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to read document"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"document": text})
	}
}

type ChunksRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// POST /base/chunks
func ChunksHandler(base *knowledge.Base) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChunksRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing query"}})
			return
		}
		if req.K <= 0 {
			req.K = 5
		}
		results, err := base.Search(c.Request.Context(), req.Query, req.K)
		if err != nil {
			if errors.Is(err, knowledge.ErrNoIndex) {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Index not built"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Search failed"}})
			return
		}
		chunks := make([]gin.H, 0, len(results))
		for _, r := range results {
			chunks = append(chunks, gin.H{
				"content":  r.Content,
				"metadata": r.Metadata,
				"score":    r.Score,
			})
		}
		c.JSON(http.StatusOK, gin.H{"chunks": chunks})
	}
}

// POST /base/rebuild  [admin only]
func RebuildHandler(base *knowledge.Base) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := base.Rebuild(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": fmt.Sprintf("Rebuild failed: %v", err)}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Index rebuilt"})
	}
}

type AskRequest struct {
	Query string `json:"query"`
}

// POST /base/ask answers one question from the knowledge base alone:
// search for fragments, then a single completion over them. No dialog
// history is involved and nothing is persisted.
func AskHandler(base *knowledge.Base, completer *llm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing query"}})
			return
		}
		results, err := base.Search(c.Request.Context(), req.Query, 5)
		if err != nil && !errors.Is(err, knowledge.ErrNoIndex) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Search failed"}})
			return
		}

		var fragments []string
		for _, r := range results {
			fragments = append(fragments, r.Content)
		}
		context := "Релевантные фрагменты не найдены."
		if len(fragments) > 0 {
			context = strings.Join(fragments, "\n\n")
		}

		messages := []llm.Message{
			{Role: llm.RoleSystem, Content: "Ты — консультант интернет-магазина товаров для животных. Отвечай кратко, только по приведённым фрагментам базы знаний. Если ответа в них нет, скажи об этом."},
			{Role: llm.RoleSystem, Content: fmt.Sprintf("Фрагменты базы знаний:\n\n%s", context)},
			{Role: llm.RoleUser, Content: req.Query},
		}
		answer, err := completer.Complete(c.Request.Context(), messages)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Completion failed"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"answer": answer})
	}
}

// GET /base/faq  [admin only]
func GetFAQHandler(base *knowledge.Base) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, err := base.FAQ(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to read FAQ"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"faq": text})
	}
}

type FAQRequest struct {
	Text string `json:"text"`
}

// PUT /base/faq  [admin only]
func PutFAQHandler(base *knowledge.Base) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FAQRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if err := base.SaveFAQ(req.Text); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to save FAQ"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "FAQ saved"})
	}
}
