package gateway

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aiteam/saas-devgen/codegen-service/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking for production
		return true
	},
}

// StatusStreamer pushes generation status snapshots over WebSocket so
// clients don't have to poll.
type StatusStreamer struct {
	store    status.Store
	interval time.Duration
	tracer   trace.Tracer
}

// NewStatusStreamer creates a StatusStreamer over store.
func NewStatusStreamer(store status.Store) *StatusStreamer {
	return &StatusStreamer{
		store:    store,
		interval: time.Second,
		tracer:   otel.Tracer("status-streamer"),
	}
}

// StreamGeneration handles WebSocket /ws/generations/:generation_id
// @Summary Stream generation progress
// @Description WebSocket endpoint streaming status snapshots until the generation reaches a terminal state
// @Tags generation
// @Param generation_id path string true "Generation ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} map[string]string
// @Router /ws/generations/{generation_id} [get]
func (s *StatusStreamer) StreamGeneration(c *gin.Context) {
	_, span := s.tracer.Start(c.Request.Context(), "status_streamer.stream_generation")
	defer span.End()

	id := c.Param("generation_id")
	span.SetAttributes(attribute.String("generation_id", id))

	if _, ok := s.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found", "generation_id": id})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		log.Printf(`{"level":"error","message":"WebSocket upgrade failed","generation_id":"%s","error":"%v"}`, id, err)
		return
	}
	defer conn.Close()

	// Drain client frames so close handshakes are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastUpdated string
	for {
		st, ok := s.store.Get(id)
		if !ok {
			return
		}
		if st.UpdatedAt != lastUpdated {
			lastUpdated = st.UpdatedAt
			if err := conn.WriteJSON(st); err != nil {
				return
			}
		}
		if status.IsTerminal(st.Status) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, st.Status))
			return
		}

		select {
		case <-ticker.C:
		case <-clientGone:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
