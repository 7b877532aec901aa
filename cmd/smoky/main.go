package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lojasmm/smoky/internal/api"
	"github.com/lojasmm/smoky/internal/bot"
	"github.com/lojasmm/smoky/internal/config"
	"github.com/lojasmm/smoky/internal/dialogflow"
	"github.com/lojasmm/smoky/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	agent := dialogflow.NewClient(cfg.AgentBaseURL, cfg.AgentTimeout)
	sessions := session.NewManager(cfg.RateLimitPerMinute, cfg.Profile.Welcome)

	// Periodic eviction of idle sessions; transcripts live only in memory
	go func() {
		ticker := time.NewTicker(cfg.SessionTTL / 2)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.Cleanup(cfg.SessionTTL); n > 0 {
				log.Printf("smoky: evicted %d idle sessions", n)
			}
		}
	}()

	botHandler := bot.NewHandler(agent, sessions)
	apiHandler := api.NewHandler(botHandler, sessions, cfg.Profile)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(apiHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AgentTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("smoky: listening on :%s", cfg.Port)
		log.Printf("smoky: agent at %s", cfg.AgentBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("smoky: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("smoky: stopped")
}
