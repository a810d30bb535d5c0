// Package registry tracks live websocket connections partitioned by role.
package registry

import (
	"sync"

	"clinic-backoffice-api/internal/models"
)

// Conn abstracts a single websocket connection. The network conn itself is
// managed by the ws handler; the liveness monitor drives the alive flag.
type Conn interface {
	ID() string
	Send(message []byte) bool
	// Probe writes a liveness probe to the peer; false means the write failed.
	Probe() bool
	Alive() bool
	SetAlive(alive bool)
	Close()
}

type member struct {
	role           models.Role
	practitionerID int
}

// Registry holds practitioner connections keyed uniquely by practitioner id
// and reception/admin connections as unordered sets. All methods are safe
// for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	practitioners map[int]Conn
	reception     map[Conn]struct{}
	admins        map[Conn]struct{}
	members       map[Conn]member
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		practitioners: make(map[int]Conn),
		reception:     make(map[Conn]struct{}),
		admins:        make(map[Conn]struct{}),
		members:       make(map[Conn]member),
	}
}

// Register inserts the connection under its role. A practitioner replaces
// any prior connection under the same id without closing it; the old socket
// is left to fail its next liveness probe.
func (r *Registry) Register(role models.Role, practitionerID int, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch role {
	case models.RolePractitioner:
		if old, ok := r.practitioners[practitionerID]; ok {
			delete(r.members, old)
		}
		r.practitioners[practitionerID] = c
	case models.RoleAdmin:
		r.admins[c] = struct{}{}
	default:
		r.reception[c] = struct{}{}
	}
	r.members[c] = member{role: role, practitionerID: practitionerID}
}

// Unregister removes the connection from whichever structure holds it.
// Idempotent: unknown connections (including replaced practitioner sockets)
// are ignored.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[c]
	if !ok {
		return
	}
	delete(r.members, c)

	switch m.role {
	case models.RolePractitioner:
		// Only remove the slot if it still points at this connection.
		if cur, ok := r.practitioners[m.practitionerID]; ok && cur == c {
			delete(r.practitioners, m.practitionerID)
		}
	case models.RoleAdmin:
		delete(r.admins, c)
	default:
		delete(r.reception, c)
	}
}

// LookupPractitioner returns the live connection for a practitioner id.
func (r *Registry) LookupPractitioner(practitionerID int) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.practitioners[practitionerID]
	return c, ok
}

// ForEach invokes fn for every connection of the given role. fn runs outside
// the registry lock, so it may unregister connections.
func (r *Registry) ForEach(role models.Role, fn func(Conn)) {
	for _, c := range r.connsForRole(role) {
		fn(c)
	}
}

// ForEachAll invokes fn for every registered connection across all roles.
func (r *Registry) ForEachAll(fn func(Conn)) {
	for _, c := range r.Connections() {
		fn(c)
	}
}

// Connections returns a snapshot of every registered connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Conn, 0, len(r.members))
	for c := range r.members {
		out = append(out, c)
	}
	return out
}

func (r *Registry) connsForRole(role models.Role) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Conn
	switch role {
	case models.RolePractitioner:
		for _, c := range r.practitioners {
			out = append(out, c)
		}
	case models.RoleAdmin:
		for c := range r.admins {
			out = append(out, c)
		}
	default:
		for c := range r.reception {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the total number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
