package handlers

import (
	_ "air_purifier/docs"
	"air_purifier/internal/logger"
	"air_purifier/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// snapshot stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.controllerAuth)
	{
		h.registerPurifierRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerPurifierRoutes(api *gin.RouterGroup) {
	purifier := api.Group("/purifier")
	{
		purifier.GET("/state", h.getState)
		purifier.GET("/characteristics", h.listCharacteristics)
		purifier.GET("/characteristics/:name", h.getCharacteristic)
		// Body example: {"value":true} or {"value":0}
		purifier.PUT("/characteristics/:name", h.setCharacteristic)
		purifier.POST("/identify", h.identify)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
