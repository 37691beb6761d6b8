package gateway

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the service routes onto router. authMW may be nil;
// when set it gates POST /generate only, status reads stay open.
func RegisterRoutes(router *gin.Engine, h *Handler, streamer *StatusStreamer, authMW gin.HandlerFunc) {
	generate := []gin.HandlerFunc{h.Generate}
	if authMW != nil {
		generate = []gin.HandlerFunc{authMW, h.Generate}
	}
	router.POST("/generate", generate...)

	router.GET("/status/:generation_id", h.GetStatus)
	router.POST("/generations/:generation_id/cancel", h.CancelGeneration)
	router.GET("/projects/:project_id/files", h.ListProjectFiles)
	router.GET("/projects/:project_id/download", h.DownloadProject)
	router.GET("/ws/generations/:generation_id", streamer.StreamGeneration)
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
