package registry

import (
	"testing"

	"clinic-backoffice-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     string
	alive  bool
	closed bool
	sent   [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.NewString(), alive: true}
}

func (f *fakeConn) ID() string            { return f.id }
func (f *fakeConn) Send(msg []byte) bool  { f.sent = append(f.sent, msg); return true }
func (f *fakeConn) Probe() bool           { return !f.closed }
func (f *fakeConn) Alive() bool           { return f.alive }
func (f *fakeConn) SetAlive(alive bool)   { f.alive = alive }
func (f *fakeConn) Close()                { f.closed = true }

func TestRegistry_PractitionerReplacedOnReregister(t *testing.T) {
	r := New()
	first := newFakeConn()
	second := newFakeConn()

	r.Register(models.RolePractitioner, 42, first)
	r.Register(models.RolePractitioner, 42, second)

	c, ok := r.LookupPractitioner(42)
	require.True(t, ok)
	require.Same(t, second, c)
	require.Equal(t, 1, r.Count())

	// The replaced socket was not closed; liveness reaps it later.
	require.False(t, first.closed)

	// Unregistering the stale connection must not evict the replacement.
	r.Unregister(first)
	c, ok = r.LookupPractitioner(42)
	require.True(t, ok)
	require.Same(t, second, c)
}

func TestRegistry_RoleSetsAllowConcurrentConnections(t *testing.T) {
	r := New()
	a, b := newFakeConn(), newFakeConn()
	r.Register(models.RoleReception, 0, a)
	r.Register(models.RoleReception, 0, b)
	require.Equal(t, 2, r.Count())

	seen := 0
	r.ForEach(models.RoleReception, func(Conn) { seen++ })
	require.Equal(t, 2, seen)
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := New()
	c := newFakeConn()
	r.Register(models.RoleAdmin, 0, c)
	r.Unregister(c)
	r.Unregister(c)
	require.Equal(t, 0, r.Count())
}

func TestRegistry_ForEachAllCoversEveryRole(t *testing.T) {
	r := New()
	r.Register(models.RoleReception, 0, newFakeConn())
	r.Register(models.RolePractitioner, 7, newFakeConn())
	r.Register(models.RoleAdmin, 0, newFakeConn())

	seen := 0
	r.ForEachAll(func(Conn) { seen++ })
	require.Equal(t, 3, seen)
}

func TestRegistry_ForEachMayUnregister(t *testing.T) {
	r := New()
	a, b := newFakeConn(), newFakeConn()
	r.Register(models.RoleAdmin, 0, a)
	r.Register(models.RoleAdmin, 0, b)

	// Must not deadlock against the registry lock.
	r.ForEachAll(func(c Conn) { r.Unregister(c) })
	require.Equal(t, 0, r.Count())
}

func TestRegistry_LookupUnknownPractitioner(t *testing.T) {
	r := New()
	_, ok := r.LookupPractitioner(42)
	require.False(t, ok)
}
