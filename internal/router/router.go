// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shihaotian/ai-legal-assistant/internal/handler"
	"github.com/shihaotian/ai-legal-assistant/internal/middleware"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// Register wires every route of the service.
//
//   - /healthz is public.
//   - /v1/auth/* issues and exchanges tokens without an existing session;
//     logout also works with a bearer token so it sits behind optional auth.
//   - everything else under /v1 requires a valid access token and a known
//     role; the /v1/ai group additionally goes through the Redis token
//     bucket because every request there can fan out to the AI gateway.
func Register(e *echo.Echo, a *handler.AuthHandler, as *handler.AssistantHandler,
	le *handler.LearnHandler, jwtSecret string, limiter echo.MiddlewareFunc) {

	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleGuest, model.RoleSubscriber, model.RoleAdmin))

	v1.GET("/user/info", a.UserInfo)
	// Authenticated variant of logout: revokes every session of the caller.
	v1.POST("/logout", a.Logout)

	learn := v1.Group("/learn")
	learn.GET("/lessons", le.ListLessons)
	learn.GET("/lessons/:id", le.GetLesson)

	aiGroup := v1.Group("/ai")
	if limiter != nil {
		aiGroup.Use(limiter)
	}
	aiGroup.POST("/case/init", as.InitCase)
	aiGroup.POST("/lesson/init", as.InitLesson)
	aiGroup.POST("/chat", as.Chat)
	aiGroup.POST("/lesson/quiz", as.LessonQuiz)
	aiGroup.GET("/cases", as.ListCases)
	aiGroup.GET("/cases/:id", as.GetCase)
	aiGroup.DELETE("/cases/:id", as.DeleteCase)
	aiGroup.POST("/lawyer/recommend", as.RecommendLawyer)
	aiGroup.POST("/speech-to-text", as.SpeechToText)
	aiGroup.POST("/text-to-speech", as.TextToSpeech)
	aiGroup.POST("/document-analysis", as.AnalyzeDocument)
}
