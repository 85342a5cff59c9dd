package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"astra/internal/api"
	"astra/internal/config"
	"astra/internal/db"
	"astra/internal/dialog"
	"astra/internal/knowledge"
	"astra/internal/lead"
	"astra/internal/llm"
	"astra/internal/order"
	redisdb "astra/internal/redis"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	qdrantClient, err := knowledge.NewQdrantClient(cfg.Qdrant.URL, cfg.Qdrant.APIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Qdrant error: %v\n", err)
		os.Exit(1)
	}
	embedder := knowledge.NewEmbedder(cfg.Embedding.URL, cfg.Embedding.Model, cfg.Embedding.APIKey)
	base := knowledge.NewBase(qdrantClient, embedder, cfg.Qdrant.Collection,
		cfg.Knowledge.DocumentPath, cfg.Knowledge.FAQPath)

	// A missing or unreachable index degrades search, it does not block
	// the server. An admin can POST /base/rebuild once qdrant is up.
	if err := base.Rebuild(context.Background()); err != nil {
		log.Printf("[Main] WARNING: knowledge index unavailable: %v", err)
	} else {
		log.Printf("[Main] Knowledge index ready")
	}

	leads := lead.NewStore(db.DB)
	orders := order.NewStore(db.DB)
	completer := llm.NewClient(cfg.LLM.URL, cfg.LLM.Model, cfg.LLM.APIKey)
	engine := dialog.NewEngine(leads, orders, base, completer, db.NewExecutor(db.DB))

	r := api.SetupRouter(api.Deps{
		Cfg:    cfg,
		RDB:    rdb,
		Leads:  leads,
		Orders: orders,
		Base:   base,
		LLM:    completer,
		Engine: engine,
	})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
