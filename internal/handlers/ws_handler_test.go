package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-backoffice-api/internal/registry"
	"clinic-backoffice-api/internal/router"
	"clinic-backoffice-api/internal/waitingroom"
	"clinic-backoffice-api/pkg/protocol"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startWSServer(t *testing.T) (*router.Router, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rt := router.New(waitingroom.NewStore(50*time.Millisecond), registry.New())
	r := gin.New()
	r.GET("/api/ws", WebSocket(rt))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return rt, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func dialAndRegister(t *testing.T, url, role string, employeeID int, name string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	sendFrame(t, conn, protocol.TypeRegister, protocol.RegisterPayload{
		Role: role, EmployeeID: employeeID, EmployeeName: name,
	})

	frame := readFrame(t, conn)
	require.Equal(t, protocol.TypeInitialState, frame.Type)
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	frame, err := protocol.NewFrame(msgType, payload)
	require.NoError(t, err)
	data, err := frame.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	frame, err := protocol.Decode(data)
	require.NoError(t, err)
	return frame
}

func TestWebSocket_ArrivalReachesAssignedPractitioner(t *testing.T) {
	rt, url := startWSServer(t)

	reception := dialAndRegister(t, url, "reception", 1, "Front Desk")
	practitioner := dialAndRegister(t, url, "practitioner", 42, "Dr. Smith")

	sendFrame(t, reception, protocol.TypePatientArrived, protocol.PatientArrivedPayload{
		AppointmentID:    11,
		CustomerID:       901,
		CustomerName:     "Jane Doe",
		CustomerInitials: "JD",
		ScheduledTime:    "10:15",
		AssignedTo:       42,
		AssignedToName:   "Dr. Smith",
	})

	frame := readFrame(t, practitioner)
	require.Equal(t, protocol.TypePatientArrived, frame.Type)
	require.Equal(t, "reception", frame.SenderRole)

	var notice protocol.PatientNoticePayload
	require.NoError(t, json.Unmarshal(frame.Payload, &notice))
	require.Equal(t, 11, notice.Patient.AppointmentID)

	require.Eventually(t, func() bool { return rt.Store().Len() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocket_ReconnectReceivesSnapshot(t *testing.T) {
	_, url := startWSServer(t)

	reception := dialAndRegister(t, url, "reception", 1, "Front Desk")
	sendFrame(t, reception, protocol.TypePatientArrived, protocol.PatientArrivedPayload{
		AppointmentID: 11, CustomerID: 901, CustomerName: "Jane Doe", AssignedTo: 42,
	})

	// Practitioner connects, drops, reconnects: the snapshot replays the
	// entry that existed at disconnect time.
	first := dialAndRegister(t, url, "practitioner", 42, "Dr. Smith")
	first.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	sendFrame(t, conn, protocol.TypeRegister, protocol.RegisterPayload{
		Role: "practitioner", EmployeeID: 42, EmployeeName: "Dr. Smith",
	})

	frame := readFrame(t, conn)
	require.Equal(t, protocol.TypeInitialState, frame.Type)
	var snap protocol.InitialStatePayload
	require.NoError(t, json.Unmarshal(frame.Payload, &snap))
	require.Len(t, snap.WaitingRoom, 1)
	require.Equal(t, 11, snap.WaitingRoom[0].AppointmentID)
}

func TestWebSocket_NonRegisterFirstFrameClosesConnection(t *testing.T) {
	_, url := startWSServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	sendFrame(t, conn, protocol.TypePing, nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err) // server closed the socket
}

func TestWebSocket_PingPong(t *testing.T) {
	_, url := startWSServer(t)

	conn := dialAndRegister(t, url, "admin", 9, "Ops")
	sendFrame(t, conn, protocol.TypePing, nil)
	frame := readFrame(t, conn)
	require.Equal(t, protocol.TypePong, frame.Type)
}
