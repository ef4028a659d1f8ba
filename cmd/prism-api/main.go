package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/prismchat/prism/internal/adapters/http"
	"github.com/prismchat/prism/internal/adapters/llm"
	"github.com/prismchat/prism/internal/app/chat"
	"github.com/prismchat/prism/internal/app/orchestrator"
	"github.com/prismchat/prism/internal/config"
	"github.com/prismchat/prism/internal/domain"
	"github.com/prismchat/prism/internal/store"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var (
		provider domain.Provider
		err      error
	)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK provider")
		provider = llm.NewMockProvider()
	} else {
		log.Println("[LLM] Using Gemini provider")
		provider, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:     cfg.APIKey,
			ChatModel:  cfg.ChatModel,
			VideoModel: cfg.VideoModel,
		})
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
	}

	convLog := store.NewLog()
	orch := orchestrator.New(provider, convLog, orchestrator.Config{
		PollInterval: cfg.VideoPollInterval,
		MaxPolls:     cfg.VideoMaxPolls,
	})
	svc := chat.NewService(convLog, orch)

	handler := httpadapter.NewServer(svc)

	addr := ":" + cfg.Port
	log.Println("Prism API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
