package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-backoffice-api/internal/waitingroom"
	"clinic-backoffice-api/pkg/protocol"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestWaitingRoomSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := waitingroom.NewStore(0)
	store.Arrive(protocol.PatientArrivedPayload{
		AppointmentID: 11,
		CustomerID:    901,
		CustomerName:  "Jane Doe",
		AssignedTo:    42,
	})

	r := gin.New()
	r.GET("/api/waitingroom", WaitingRoomSnapshot(store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/waitingroom", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		WaitingRoom []protocol.WaitingPatient `json:"waitingRoom"`
		Count       int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, protocol.StatusArrived, resp.WaitingRoom[0].Status)
}
