package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"astra/internal/auth"
	"astra/internal/config"
	"astra/internal/dialog"
	"astra/internal/knowledge"
	"astra/internal/lead"
	"astra/internal/llm"
	"astra/internal/order"
)

// Deps carries the wired services the handlers close over.
type Deps struct {
	Cfg    *config.Config
	RDB    *redis.Client
	Leads  *lead.Store
	Orders *order.Store
	Base   *knowledge.Base
	LLM    *llm.Client
	Engine *dialog.Engine
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	authed := auth.Middleware(d.Cfg, d.RDB, false)
	admin := auth.Middleware(d.Cfg, d.RDB, true)

	group := r.Group(d.Cfg.Server.Subpath)
	{
		group.GET("/health", healthHandler)

		// Auth and account management
		group.POST("/auth/token", TokenHandler(d.Cfg, d.RDB, d.Leads))
		group.POST("/auth/logout", authed, LogoutHandler(d.RDB))
		group.POST("/auth/register", RegisterHandler(d.Leads))
		group.POST("/auth/users", authed, CreateUserHandler(d.Leads))
		group.GET("/auth/users", admin, ListUsersHandler(d.Leads))
		group.GET("/auth/users/:id", authed, GetUserHandler(d.Leads))
		group.PUT("/auth/users/:id", authed, UpdateUserHandler(d.Leads))
		group.DELETE("/auth/users/:id", authed, DeleteUserHandler(d.Leads))

		// Leads
		group.POST("/lead", authed, CreateLeadHandler(d.Leads))
		group.GET("/lead", authed, ListLeadsHandler(d.Leads))
		group.GET("/lead/:id", authed, GetLeadHandler(d.Leads))
		group.PUT("/lead/:id", authed, UpdateLeadHandler(d.Leads))
		group.DELETE("/lead/:id", authed, DeleteLeadHandler(d.Leads))

		// Orders
		group.POST("/order", authed, CreateOrderHandler(d.Orders))
		group.GET("/order", authed, ListOrdersHandler(d.Orders))
		group.GET("/order/:id", authed, GetOrderHandler(d.Orders))
		group.PUT("/order/:id", authed, UpdateOrderHandler(d.Orders))
		group.DELETE("/order/:id", authed, DeleteOrderHandler(d.Orders))

		// Knowledge base
		group.GET("/base/document", authed, DocumentHandler(d.Base))
		group.POST("/base/chunks", authed, ChunksHandler(d.Base))
		group.POST("/base/rebuild", admin, RebuildHandler(d.Base))
		group.POST("/base/ask", authed, AskHandler(d.Base, d.LLM))
		group.GET("/base/faq", admin, GetFAQHandler(d.Base))
		group.PUT("/base/faq", admin, PutFAQHandler(d.Base))

		// Dialog
		group.POST("/dialog/request", authed, DialogRequestHandler(d.Engine))
		group.POST("/dialog/clear", authed, DialogClearHandler(d.Engine))
		group.GET("/dialog/history/:client_id", authed, DialogHistoryHandler(d.Engine))
	}
	return r
}

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
