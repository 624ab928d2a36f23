package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/shihaotian/ai-legal-assistant/internal/ai"
	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/config"
	"github.com/shihaotian/ai-legal-assistant/internal/database"
	"github.com/shihaotian/ai-legal-assistant/internal/handler"
	"github.com/shihaotian/ai-legal-assistant/internal/middleware"
	"github.com/shihaotian/ai-legal-assistant/internal/queue"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
	"github.com/shihaotian/ai-legal-assistant/internal/router"
	"github.com/shihaotian/ai-legal-assistant/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions live in Redis; without it no conversation can work.
		log.Fatal("redis: connection failed")
	}
	defer rdb.Close()

	aiClient, err := ai.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("ai gateway: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cases := repository.NewCaseRepo(db)
	lessons := repository.NewLessonRepo(db)
	lawyers := repository.NewLawyerRepo(db)

	sessions := cache.NewSessionStore(rdb, time.Duration(cfg.SessionTTLSec)*time.Second)

	conv := service.NewConversation(cases, lessons, sessions, aiClient)
	matcher := service.NewLawyerMatcher(cases, lawyers, aiClient)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	assistantH := handler.NewAssistantHandler(conv, matcher, aiClient)
	learnH := handler.NewLearnHandler(lessons)

	go func() {
		if err := queue.StartCaseConsumer(); err != nil {
			log.Printf("case-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.Register(e, authH, assistantH, learnH, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
