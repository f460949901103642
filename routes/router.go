package routes

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/controllers"
	"github.com/Sosuo3773/openlab-mini/middleware"
	"github.com/Sosuo3773/openlab-mini/utils"
	"github.com/Sosuo3773/openlab-mini/views"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, log *zap.Logger, blog *controllers.BlogController) (*gin.Engine, error) {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// category names may contain an escaped slash
	r.UseRawPath = true
	r.HandleMethodNotAllowed = true

	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// access log goes to its own rolling file when configured
	accessLog := log.Named("http")
	if cfg.Log.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.Log.GinPath, cfg.Log)
		if err != nil {
			log.Warn("falling back to application logger for access log", zap.Error(err))
		} else {
			accessLog = gl
		}
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Ginzap(accessLog, time.RFC3339, true))
	r.Use(middleware.RecoveryWithZap(accessLog, true))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/", blog.Index)
	r.GET("/category/:name", blog.Category)
	r.GET("/post/:id", blog.ShowPost)
	r.POST("/post/:id", blog.CreateComment)
	r.GET("/new", blog.NewPostForm)
	r.POST("/new", blog.CreatePost)
	r.GET("/health", blog.Health)

	r.NoRoute(blog.NotFound)
	r.NoMethod(blog.MethodNotAllowed)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
