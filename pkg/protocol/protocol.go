// Package protocol defines the wire frames exchanged between the waiting-room
// coordinator and its clients. Frames are JSON text messages.
package protocol

import (
	"encoding/json"
	"time"
)

// Message types exchanged over the socket.
const (
	TypeRegister            = "register"
	TypePatientArrived      = "patient_arrived"
	TypePatientWaiting      = "patient_waiting"
	TypeConsultationStarted = "consultation_started"
	TypeConsultationEnded   = "consultation_ended"
	TypeStatusUpdate        = "status_update"
	TypePing                = "ping"
	TypePong                = "pong"
	TypeInitialState        = "initial_state"
)

// Status is the waiting-room state of a patient entry.
type Status string

const (
	StatusArrived    Status = "arrived"
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// WaitingPatient is one tracked patient, keyed by appointment id. It is both
// the server-held entry and the payload shape clients receive.
type WaitingPatient struct {
	AppointmentID    int       `json:"appointmentId"`
	CustomerID       int       `json:"customerId"`
	CustomerName     string    `json:"customerName"`
	CustomerInitials string    `json:"customerInitials"`
	ScheduledTime    string    `json:"scheduledTime"`
	ArrivedAt        time.Time `json:"arrivedAt"`
	Status           Status    `json:"status"`
	AssignedTo       int       `json:"assignedTo"`
	AssignedToName   string    `json:"assignedToName"`
}

// Frame is the envelope for every message on the wire. SenderID and
// SenderRole are only set on server-to-client frames.
type Frame struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	SenderID   int             `json:"senderId,omitempty"`
	SenderRole string          `json:"senderRole,omitempty"`
}

// RegisterPayload binds a connection to an employee identity. It must be the
// first frame a client sends.
type RegisterPayload struct {
	Role         string `json:"role"`
	EmployeeID   int    `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
}

// PatientArrivedPayload announces a patient at the reception desk.
type PatientArrivedPayload struct {
	AppointmentID    int    `json:"appointmentId"`
	CustomerID       int    `json:"customerId"`
	CustomerName     string `json:"customerName"`
	CustomerInitials string `json:"customerInitials"`
	ScheduledTime    string `json:"scheduledTime"`
	AssignedTo       int    `json:"assignedTo"`
	AssignedToName   string `json:"assignedToName"`
}

// AppointmentRefPayload references an existing entry by appointment id.
type AppointmentRefPayload struct {
	AppointmentID int `json:"appointmentId"`
}

// StatusUpdatePayload overwrites an entry's status. NewStatus is deliberately
// a free string: admin corrections may use values outside the usual four.
type StatusUpdatePayload struct {
	AppointmentID int    `json:"appointmentId"`
	NewStatus     string `json:"newStatus"`
}

// PatientNoticePayload carries the updated entry in server notifications.
// Alert asks the receiving UI to play an audible signal.
type PatientNoticePayload struct {
	Patient WaitingPatient `json:"patient"`
	Alert   bool           `json:"alert,omitempty"`
}

// InitialStatePayload is the full snapshot sent once per registration.
type InitialStatePayload struct {
	WaitingRoom []WaitingPatient `json:"waitingRoom"`
}

// NewFrame builds a frame of the given type, marshalling payload if non-nil.
func NewFrame(msgType string, payload any) (Frame, error) {
	f := Frame{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		f.Payload = raw
	}
	return f, nil
}

// Encode serializes the frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// Decode parses a wire frame.
func Decode(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
