// Package router is the single inbound entry point for waiting-room frames.
// It validates the registration handshake, dispatches state-mutating
// handlers and fans the resulting notifications out through the registry.
//
// Delivery is best-effort, fire-and-forget: unresolved targets and failed
// writes are skipped, never reported back to the sender.
package router

import (
	"encoding/json"
	"log"
	"sync"

	"clinic-backoffice-api/internal/models"
	"clinic-backoffice-api/internal/registry"
	"clinic-backoffice-api/internal/waitingroom"
	"clinic-backoffice-api/pkg/protocol"
)

// targetKind selects how a delivery is resolved against the registry.
type targetKind int

const (
	targetPractitioner targetKind = iota
	targetRole
	targetAll
)

// Target selects the connections a notification goes to.
type Target struct {
	kind           targetKind
	practitionerID int
	role           models.Role
}

// ToPractitioner addresses exactly one practitioner connection.
func ToPractitioner(id int) Target { return Target{kind: targetPractitioner, practitionerID: id} }

// ToRole addresses every connection of one role.
func ToRole(role models.Role) Target { return Target{kind: targetRole, role: role} }

// ToAll addresses every registered connection.
func ToAll() Target { return Target{kind: targetAll} }

// Delivery pairs a resolved-later target with an outbound frame.
type Delivery struct {
	Target Target
	Frame  protocol.Frame
}

// Router owns the presence store and connection registry mutation path.
// A single mutex serializes whole frames: every inbound frame is handled to
// completion, fan-out included, before the next one starts.
type Router struct {
	mu    sync.Mutex
	store *waitingroom.Store
	reg   *registry.Registry
}

// New wires a router to its store and registry. Both are owned by the
// caller and passed in explicitly; there is no ambient singleton.
func New(store *waitingroom.Store, reg *registry.Registry) *Router {
	return &Router{store: store, reg: reg}
}

// Store exposes the presence store for read-only REST snapshots.
func (r *Router) Store() *waitingroom.Store {
	return r.store
}

// Registry exposes the connection registry for the liveness monitor.
func (r *Router) Registry() *registry.Registry {
	return r.reg
}

// Session is the per-connection protocol state. One session exists per
// accepted socket; the ws handler feeds it every received text frame.
type Session struct {
	router     *Router
	conn       registry.Conn
	registered bool
	role       models.Role
	employeeID int
	name       string
}

// NewSession prepares protocol handling for a freshly accepted connection.
// The connection is not registered until its first frame arrives.
func (r *Router) NewSession(conn registry.Conn) *Session {
	return &Session{router: r, conn: conn}
}

// Close unregisters the session's connection and closes the socket. Safe to
// call for sessions that never completed registration.
func (s *Session) Close() {
	s.router.reg.Unregister(s.conn)
	s.conn.Close()
}

// HandleMessage processes one inbound frame. It returns false when the
// connection must be closed (registration protocol violation); every other
// failure is logged and swallowed, keeping the connection open.
func (s *Session) HandleMessage(data []byte) bool {
	s.router.mu.Lock()
	defer s.router.mu.Unlock()

	frame, err := protocol.Decode(data)
	if err != nil {
		if !s.registered {
			// The first frame must be a parsable register frame.
			log.Printf("router: closing %s: malformed frame before registration", s.conn.ID())
			return false
		}
		log.Printf("router: dropping malformed frame from %s: %v", s.conn.ID(), err)
		return true
	}

	if !s.registered {
		if frame.Type != protocol.TypeRegister {
			log.Printf("router: closing %s: first frame was %q, want register", s.conn.ID(), frame.Type)
			return false
		}
		return s.handleRegister(frame)
	}

	var deliveries []Delivery
	switch frame.Type {
	case protocol.TypeRegister:
		// Re-registration: rebind identity and replay the snapshot.
		return s.handleRegister(frame)
	case protocol.TypePatientArrived:
		deliveries = s.handlePatientArrived(frame)
	case protocol.TypePatientWaiting:
		deliveries = s.handlePatientWaiting(frame)
	case protocol.TypeConsultationStarted:
		deliveries = s.handleConsultationStarted(frame)
	case protocol.TypeConsultationEnded:
		deliveries = s.handleConsultationEnded(frame)
	case protocol.TypeStatusUpdate:
		deliveries = s.handleStatusUpdate(frame)
	case protocol.TypePing:
		s.reply(protocol.TypePong, nil)
	default:
		log.Printf("router: unknown message type %q from %s", frame.Type, s.conn.ID())
	}

	s.router.dispatch(deliveries)
	return true
}

func (s *Session) handleRegister(frame protocol.Frame) bool {
	var p protocol.RegisterPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: closing %s: bad register payload: %v", s.conn.ID(), err)
		return false
	}
	role := models.Role(p.Role)
	if !models.ValidRole(role) {
		log.Printf("router: closing %s: unknown role %q", s.conn.ID(), p.Role)
		return false
	}

	if s.registered {
		s.router.reg.Unregister(s.conn)
	}
	s.role = role
	s.employeeID = p.EmployeeID
	s.name = p.EmployeeName
	s.registered = true
	s.router.reg.Register(role, p.EmployeeID, s.conn)

	// Snapshot replay: this is how reconnecting clients catch up.
	s.reply(protocol.TypeInitialState, protocol.InitialStatePayload{
		WaitingRoom: s.router.store.Snapshot(),
	})
	return true
}

func (s *Session) handlePatientArrived(frame protocol.Frame) []Delivery {
	var p protocol.PatientArrivedPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: dropping patient_arrived with bad payload: %v", err)
		return nil
	}
	entry := s.router.store.Arrive(p)

	notice := protocol.PatientNoticePayload{Patient: entry}
	return []Delivery{
		{Target: ToPractitioner(entry.AssignedTo), Frame: s.outbound(protocol.TypePatientArrived, notice)},
		{Target: ToRole(models.RoleAdmin), Frame: s.outbound(protocol.TypePatientArrived, notice)},
	}
}

func (s *Session) handlePatientWaiting(frame protocol.Frame) []Delivery {
	var p protocol.AppointmentRefPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: dropping patient_waiting with bad payload: %v", err)
		return nil
	}
	entry, ok := s.router.store.MarkWaiting(p.AppointmentID)
	if !ok {
		log.Printf("router: patient_waiting for unknown appointment %d", p.AppointmentID)
		return nil
	}
	return []Delivery{{
		Target: ToPractitioner(entry.AssignedTo),
		Frame:  s.outbound(protocol.TypePatientWaiting, protocol.PatientNoticePayload{Patient: entry, Alert: true}),
	}}
}

func (s *Session) handleConsultationStarted(frame protocol.Frame) []Delivery {
	var p protocol.AppointmentRefPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: dropping consultation_started with bad payload: %v", err)
		return nil
	}
	entry, ok := s.router.store.StartConsultation(p.AppointmentID)
	if !ok {
		log.Printf("router: consultation_started for unknown appointment %d", p.AppointmentID)
		return nil
	}
	return []Delivery{{
		Target: ToRole(models.RoleReception),
		Frame:  s.outbound(protocol.TypeConsultationStarted, protocol.PatientNoticePayload{Patient: entry}),
	}}
}

func (s *Session) handleConsultationEnded(frame protocol.Frame) []Delivery {
	var p protocol.AppointmentRefPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: dropping consultation_ended with bad payload: %v", err)
		return nil
	}
	entry, ok := s.router.store.EndConsultation(p.AppointmentID)
	if !ok {
		log.Printf("router: consultation_ended for unknown appointment %d", p.AppointmentID)
		return nil
	}
	return []Delivery{{
		Target: ToRole(models.RoleReception),
		Frame:  s.outbound(protocol.TypeConsultationEnded, protocol.PatientNoticePayload{Patient: entry}),
	}}
}

func (s *Session) handleStatusUpdate(frame protocol.Frame) []Delivery {
	var p protocol.StatusUpdatePayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		log.Printf("router: dropping status_update with bad payload: %v", err)
		return nil
	}
	entry, ok := s.router.store.SetStatus(p.AppointmentID, protocol.Status(p.NewStatus))
	if !ok {
		log.Printf("router: status_update for unknown appointment %d", p.AppointmentID)
		return nil
	}
	return []Delivery{{
		Target: ToAll(),
		Frame:  s.outbound(protocol.TypeStatusUpdate, protocol.PatientNoticePayload{Patient: entry}),
	}}
}

// outbound builds a server-to-client frame stamped with the sender identity.
func (s *Session) outbound(msgType string, payload any) protocol.Frame {
	frame, err := protocol.NewFrame(msgType, payload)
	if err != nil {
		log.Printf("router: encode %s: %v", msgType, err)
		return protocol.Frame{Type: msgType}
	}
	frame.SenderID = s.employeeID
	frame.SenderRole = string(s.role)
	return frame
}

// reply writes a frame straight back to the session's own connection.
func (s *Session) reply(msgType string, payload any) {
	frame, err := protocol.NewFrame(msgType, payload)
	if err != nil {
		log.Printf("router: encode %s: %v", msgType, err)
		return
	}
	data, err := frame.Encode()
	if err != nil {
		log.Printf("router: encode %s: %v", msgType, err)
		return
	}
	s.conn.Send(data)
}

// dispatch resolves each delivery's target and writes the frame to every
// resolved connection. Unresolved targets and failed writes are skipped.
func (r *Router) dispatch(deliveries []Delivery) {
	for _, d := range deliveries {
		data, err := d.Frame.Encode()
		if err != nil {
			log.Printf("router: encode %s: %v", d.Frame.Type, err)
			continue
		}
		switch d.Target.kind {
		case targetPractitioner:
			c, ok := r.reg.LookupPractitioner(d.Target.practitionerID)
			if !ok {
				// Practitioner not connected: expected steady state, the
				// entry reaches them via initial_state when they register.
				continue
			}
			c.Send(data)
		case targetRole:
			r.reg.ForEach(d.Target.role, func(c registry.Conn) {
				c.Send(data)
			})
		case targetAll:
			r.reg.ForEachAll(func(c registry.Conn) {
				c.Send(data)
			})
		}
	}
}
