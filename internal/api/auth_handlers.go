package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"astra/internal/auth"
	"astra/internal/config"
	"astra/internal/lead"
)

type TokenRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
type TokenResponse struct {
	Token   string `json:"token"`
	UserID  uint   `json:"userId"`
	Login   string `json:"login"`
	IsAdmin bool   `json:"isAdmin"`
}

// POST /auth/token
func TokenHandler(cfg *config.Config, rdb *redis.Client, leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing login or password"}})
			return
		}
		u, err := leads.GetByLogin(c.Request.Context(), req.Login)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid login or password"}})
			return
		}
		if err := lead.CheckPassword(u.Password, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid login or password"}})
			return
		}
		ttl := time.Duration(cfg.Server.TokenExpireMinutes) * time.Minute
		token, err := auth.GenerateJWT(cfg.Server.JWTSecret, u.ID, req.Login, u.IsAdmin, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to generate token"}})
			return
		}
		_ = auth.SetSession(rdb, u.ID, token, ttl)
		c.JSON(http.StatusOK, TokenResponse{
			Token:   token,
			UserID:  u.ID,
			Login:   req.Login,
			IsAdmin: u.IsAdmin,
		})
	}
}

// POST /auth/logout
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Not authenticated"}})
			return
		}
		_ = auth.DeleteSession(rdb, userId.(uint))
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

type RegisterRequest struct {
	Login    string  `json:"login"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Contact  *string `json:"contact"`
}

// POST /auth/register. Self-registration never grants admin.
func RegisterHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing login or password"}})
			return
		}
		pwHash, err := lead.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Password hash failed"}})
			return
		}
		u := lead.Lead{
			Login:    &req.Login,
			Password: pwHash,
			Name:     req.Name,
			Contact:  req.Contact,
			Log:      "[]",
		}
		if err := leads.Create(c.Request.Context(), &u); err != nil {
			if errors.Is(err, lead.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Login already taken"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, userPayload(&u))
	}
}

type CreateUserRequest struct {
	Login    string  `json:"login"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Contact  *string `json:"contact"`
	IsAdmin  bool    `json:"is_admin"`
}

// POST /auth/users. Only an admin caller may mint another admin.
func CreateUserHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing login or password"}})
			return
		}
		isAdmin, _ := c.Get("isAdmin")
		if req.IsAdmin && isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
			return
		}
		pwHash, err := lead.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Password hash failed"}})
			return
		}
		u := lead.Lead{
			Login:    &req.Login,
			Password: pwHash,
			Name:     req.Name,
			Contact:  req.Contact,
			IsAdmin:  req.IsAdmin,
			Log:      "[]",
		}
		if err := leads.Create(c.Request.Context(), &u); err != nil {
			if errors.Is(err, lead.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Login already taken"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, userPayload(&u))
	}
}

// GET /auth/users  [admin only]
func ListUsersHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := leads.List(c.Request.Context(), 0, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		result := make([]gin.H, 0)
		for i := range all {
			if all[i].Login == nil {
				continue // dialog-only lead, not an account
			}
			result = append(result, userPayload(&all[i]))
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /auth/users/:id  [self or admin]
func GetUserHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireSelfOrAdmin(c)
		if !ok {
			return
		}
		u, err := leads.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
			return
		}
		c.JSON(http.StatusOK, userPayload(u))
	}
}

type UpdateUserRequest struct {
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Contact  *string `json:"contact"`
	IsAdmin  *bool   `json:"is_admin"`
}

// PUT /auth/users/:id  [self or admin; only an admin may change is_admin]
func UpdateUserHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireSelfOrAdmin(c)
		if !ok {
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		isAdmin, _ := c.Get("isAdmin")
		if req.IsAdmin != nil && isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
			return
		}
		fields := map[string]interface{}{}
		if req.Password != nil && *req.Password != "" {
			pwHash, err := lead.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Password hash failed"}})
				return
			}
			fields["password"] = pwHash
		}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.Contact != nil {
			fields["contact"] = *req.Contact
		}
		if req.IsAdmin != nil {
			fields["is_admin"] = *req.IsAdmin
		}
		if len(fields) == 0 {
			u, err := leads.Get(c.Request.Context(), id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
				return
			}
			c.JSON(http.StatusOK, userPayload(u))
			return
		}
		u, err := leads.Update(c.Request.Context(), id, fields)
		if err != nil {
			if errors.Is(err, lead.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
				return
			}
			if errors.Is(err, lead.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Login already taken"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Update error"}})
			return
		}
		c.JSON(http.StatusOK, userPayload(u))
	}
}

// DELETE /auth/users/:id  [self or admin]
func DeleteUserHandler(leads *lead.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requireSelfOrAdmin(c)
		if !ok {
			return
		}
		if err := leads.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, lead.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Delete error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

func userPayload(u *lead.Lead) gin.H {
	login := ""
	if u.Login != nil {
		login = *u.Login
	}
	return gin.H{
		"id":        u.ID,
		"login":     login,
		"name":      u.Name,
		"contact":   u.Contact,
		"is_admin":  u.IsAdmin,
		"timestamp": u.Timestamp,
	}
}

// requireSelfOrAdmin parses the :id param and rejects callers targeting
// another account unless they are admins.
func requireSelfOrAdmin(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
		return 0, false
	}
	id := uint(id64)
	userId, _ := c.Get("userId")
	isAdmin, _ := c.Get("isAdmin")
	if isAdmin != true && userId != id {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Forbidden"}})
		return 0, false
	}
	return id, true
}
