package api

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"astra/internal/lead"
	"astra/internal/order"
)

// setupStores opens the shared in-memory sqlite database, migrates the
// models and wipes any rows left over from earlier tests.
func setupStores(t *testing.T) (*lead.Store, *order.Store) {
	t.Helper()
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&lead.Lead{}, &order.Order{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{"leads", "orders"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
	return lead.NewStore(dbConn), order.NewStore(dbConn)
}

// testRouter wires handlers behind a middleware that plants the auth
// context keys, so handlers can be exercised without redis.
func testRouter(userId uint, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userId)
		c.Set("login", "tester")
		c.Set("isAdmin", isAdmin)
		c.Next()
	})
	return r
}

// unreachableRedis returns a client whose commands fail fast. Session
// writes are fire-and-forget, so login handlers tolerate it.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
	})
}
