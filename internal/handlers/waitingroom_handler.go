package handlers

import (
	"net/http"

	"clinic-backoffice-api/internal/waitingroom"

	"github.com/gin-gonic/gin"
)

// WaitingRoomSnapshot returns the current waiting-room state for dashboards
// that poll over REST instead of holding a socket. Same data as the
// initial_state frame.
// GET /api/waitingroom
func WaitingRoomSnapshot(store *waitingroom.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := store.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"waitingRoom": snapshot,
			"count":       len(snapshot),
		})
	}
}
