package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Controller struct {
	Handler *Handler

	engine      *gin.Engine
	apiKey      string
	corsOrigins []string
}

// NewController собирает маршруты читающего фасада. Мутирующие маршруты
// закрыты API-ключом; пустой список origins разрешает любые источники.
func NewController(handler *Handler, apiKey string, corsOrigins []string) *Controller {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	c := &Controller{
		Handler:     handler,
		engine:      router,
		apiKey:      apiKey,
		corsOrigins: corsOrigins,
	}

	api := router.Group("/api")
	{
		api.GET("/vehicles", handler.GetVehicles)
		api.GET("/vehicles/:vehicleId/track", handler.GetTrackByVehicle)
		api.GET("/devices/:id", handler.GetDevice)
		api.GET("/devices/:id/track", handler.GetTrackByDevice)
		api.GET("/telemetry/latest", handler.GetLatest)
		api.GET("/stream/latest", handler.StreamLatest)
		api.GET("/health", handler.Health)
		api.POST("/devices", requireApiKey(apiKey), handler.RegisterDevice)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return c
}

func (c *Controller) Run(port int32) error {
	origins := c.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsWrapper := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "x-api-key"},
		MaxAge:         86400,
	})

	return http.ListenAndServe(fmt.Sprintf(":%d", port), corsWrapper.Handler(c.engine))
}

// Engine возвращает роутер без CORS-обёртки (используется в тестах).
func (c *Controller) Engine() http.Handler {
	return c.engine
}

func requireApiKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "API key not configured"})
			return
		}
		got := c.GetHeader("x-api-key")
		if got == "" {
			got = c.Query("key")
		}
		if got != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
