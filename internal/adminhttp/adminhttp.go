// Package adminhttp is the operator-facing introspection surface
// alongside the RESP listener: health, a metrics-ish keyspace summary,
// and a debug key browser. Grounded on the teacher's cmd/zmux-server
// main.go gin wiring (zap-logged gin.Engine, CORS gated to dev, trusted
// proxy of 127.0.0.1 only) — the same middleware stack, pointed at a
// different handler set.
package adminhttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nimbusdb/nimbusdb/internal/config"
	"github.com/nimbusdb/nimbusdb/internal/pattern"
	"github.com/nimbusdb/nimbusdb/internal/persistence"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

// ZapLogger is the teacher's request-logging gin middleware, unchanged
// in shape: method/route/status/latency at Info, escalating to
// Warn/Error on 4xx/5xx.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}
		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// New builds the admin HTTP handler. devMode mirrors the teacher's
// `os.Getenv("ENV") == "dev"` gate around enabling CORS for a local
// frontend dev server.
func New(st *store.Store, persist *persistence.Recorder, cfg *config.Config, log *zap.Logger, devMode bool) http.Handler {
	log = log.Named("adminhttp")
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})
	r.Use(gin.Recovery())

	if devMode {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(ZapLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", func(c *gin.Context) {
		dbs := make([]gin.H, 0, st.NumDatabases())
		for i := 0; i < st.NumDatabases(); i++ {
			db, ok := st.Select(i)
			if !ok {
				continue
			}
			if n := db.Size(); n > 0 {
				dbs = append(dbs, gin.H{"db": i, "keys": n})
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"databases":          dbs,
			"last_save_unixtime": persist.LastSave(),
			"bgsave_in_progress": persist.InProgress(),
		})
	})

	r.GET("/debug/keys", func(c *gin.Context) {
		idx := 0
		if s := c.Query("db"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				idx = n
			}
		}
		db, ok := st.Select(idx)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "db index out of range"})
			return
		}
		match := c.DefaultQuery("match", "*")
		c.Header("X-Total-Count", strconv.Itoa(db.Size()))
		c.JSON(http.StatusOK, db.Keys(match))
	})

	r.GET("/debug/config", func(c *gin.Context) {
		glob := c.DefaultQuery("match", "*")
		pairs := cfg.Match(pattern.Match, glob)
		out := make(gin.H, len(pairs))
		for _, p := range pairs {
			out[p[0]] = p[1]
		}
		c.JSON(http.StatusOK, out)
	})

	return r
}
