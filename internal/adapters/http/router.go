// Package http is the request/response surface: account auth, room
// CRUD, workspace files, share links and the execution proxy.
package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/auth"
	"github.com/pairpad/pairpad/internal/config"
	"github.com/pairpad/pairpad/internal/exec"
	"github.com/pairpad/pairpad/internal/metrics"
	"github.com/pairpad/pairpad/internal/store"
)

// ClientTokenMiddleware tags every browser with a stable cookie token,
// used for rate-limit bookkeeping on anonymous traffic.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, db *store.Postgres, runner *exec.Client, jwt *auth.JWT) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PairpadSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	log.Info().Str("module", "adapters.http").Msg("router setup")

	limiter := NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	api := r.Group("/api")
	api.Use(limiter.Middleware())

	authAPI := &AuthAPI{DB: db, JWT: jwt, TokenTTL: cfg.TokenTTL}
	api.POST("/auth/register", authAPI.Register)
	api.POST("/auth/login", authAPI.Login)
	api.GET("/auth/me", RequireAuth(jwt), authAPI.Me)

	roomAPI := &RoomAPI{DB: db}
	api.POST("/rooms/create", roomAPI.Create)
	api.GET("/rooms/:roomId", roomAPI.Get)

	fileAPI := &FileAPI{DB: db}
	api.GET("/files", fileAPI.List)
	api.POST("/files", fileAPI.Create)
	api.PUT("/files/:id", fileAPI.Save)
	api.DELETE("/files/:id", fileAPI.Delete)

	shareAPI := &ShareAPI{DB: db}
	api.POST("/share/generate", shareAPI.Generate)
	api.GET("/share/:id", shareAPI.Get)

	codeAPI := &CodeAPI{Runner: runner}
	api.POST("/code/execute", codeAPI.Execute)

	return r
}
