// Package waitingroom holds the authoritative in-memory state of every
// patient currently moving through the practice. Nothing here is persisted:
// a process restart means an empty waiting room.
package waitingroom

import (
	"sort"
	"sync"
	"time"

	"clinic-backoffice-api/pkg/protocol"
)

// DefaultGrace is how long a completed entry stays visible before it is
// purged, so late UI updates still find it.
const DefaultGrace = 5 * time.Second

// Store tracks waiting patients keyed by appointment id. All methods are
// safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	patients map[int]*protocol.WaitingPatient
	timers   map[int]*time.Timer
	grace    time.Duration
}

// NewStore creates an empty store. grace <= 0 falls back to DefaultGrace.
func NewStore(grace time.Duration) *Store {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Store{
		patients: make(map[int]*protocol.WaitingPatient),
		timers:   make(map[int]*time.Timer),
		grace:    grace,
	}
}

// Arrive creates the entry for an announced patient. An existing entry under
// the same appointment id is overwritten, last writer wins; any pending
// grace-period removal for it is cancelled.
func (s *Store) Arrive(p protocol.PatientArrivedPayload) protocol.WaitingPatient {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[p.AppointmentID]; ok {
		t.Stop()
		delete(s.timers, p.AppointmentID)
	}

	entry := &protocol.WaitingPatient{
		AppointmentID:    p.AppointmentID,
		CustomerID:       p.CustomerID,
		CustomerName:     p.CustomerName,
		CustomerInitials: p.CustomerInitials,
		ScheduledTime:    p.ScheduledTime,
		ArrivedAt:        time.Now().UTC(),
		Status:           protocol.StatusArrived,
		AssignedTo:       p.AssignedTo,
		AssignedToName:   p.AssignedToName,
	}
	s.patients[p.AppointmentID] = entry
	return *entry
}

// MarkWaiting moves an entry to the waiting status. Returns false if no
// entry exists for the appointment id.
func (s *Store) MarkWaiting(appointmentID int) (protocol.WaitingPatient, bool) {
	return s.setStatus(appointmentID, protocol.StatusWaiting)
}

// StartConsultation moves an entry to in_progress so reconnecting clients
// see the consultation state in their snapshot.
func (s *Store) StartConsultation(appointmentID int) (protocol.WaitingPatient, bool) {
	return s.setStatus(appointmentID, protocol.StatusInProgress)
}

// EndConsultation marks the entry completed and schedules its removal after
// the grace period. Safe to call again for an already completed entry; the
// removal is simply rescheduled.
func (s *Store) EndConsultation(appointmentID int) (protocol.WaitingPatient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.patients[appointmentID]
	if !ok {
		return protocol.WaitingPatient{}, false
	}
	entry.Status = protocol.StatusCompleted

	if t, ok := s.timers[appointmentID]; ok {
		t.Stop()
	}
	s.timers[appointmentID] = time.AfterFunc(s.grace, func() {
		s.Remove(appointmentID)
	})
	return *entry, true
}

// SetStatus overwrites the status unconditionally. Any value is accepted,
// including ones outside the usual four; admin corrections rely on that.
func (s *Store) SetStatus(appointmentID int, status protocol.Status) (protocol.WaitingPatient, bool) {
	return s.setStatus(appointmentID, status)
}

func (s *Store) setStatus(appointmentID int, status protocol.Status) (protocol.WaitingPatient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.patients[appointmentID]
	if !ok {
		return protocol.WaitingPatient{}, false
	}
	entry.Status = status
	return *entry, true
}

// Remove deletes an entry and its pending removal timer. Idempotent.
func (s *Store) Remove(appointmentID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[appointmentID]; ok {
		t.Stop()
		delete(s.timers, appointmentID)
	}
	delete(s.patients, appointmentID)
}

// Get returns a copy of the entry for the appointment id.
func (s *Store) Get(appointmentID int) (protocol.WaitingPatient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.patients[appointmentID]
	if !ok {
		return protocol.WaitingPatient{}, false
	}
	return *entry, true
}

// Snapshot returns all current entries ordered by arrival time. This is the
// payload of the initial_state frame.
func (s *Store) Snapshot() []protocol.WaitingPatient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]protocol.WaitingPatient, 0, len(s.patients))
	for _, entry := range s.patients {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArrivedAt.Equal(out[j].ArrivedAt) {
			return out[i].AppointmentID < out[j].AppointmentID
		}
		return out[i].ArrivedAt.Before(out[j].ArrivedAt)
	})
	return out
}

// Len returns the number of tracked patients.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}
