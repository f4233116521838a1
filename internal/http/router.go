package http

import (
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc reportService) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, log, svc)

    r.GET("/healthz", h.Healthz)
    api := r.Group("/api")
    api.GET("/teams", h.Teams)
    api.GET("/sprints", h.Sprints)
    api.POST("/reports/summary", h.Summary)
    api.POST("/reports/detailed", h.Detailed)
    api.POST("/reports/comparison", h.Comparison)

    return r
}
