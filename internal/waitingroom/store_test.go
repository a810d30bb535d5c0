package waitingroom

import (
	"testing"
	"time"

	"clinic-backoffice-api/pkg/protocol"

	"github.com/stretchr/testify/require"
)

func arrival(appointmentID int) protocol.PatientArrivedPayload {
	return protocol.PatientArrivedPayload{
		AppointmentID:    appointmentID,
		CustomerID:       100 + appointmentID,
		CustomerName:     "Jane Doe",
		CustomerInitials: "JD",
		ScheduledTime:    "09:30",
		AssignedTo:       42,
		AssignedToName:   "Dr. Smith",
	}
}

func TestStore_FullLifecycle(t *testing.T) {
	s := NewStore(50 * time.Millisecond)

	entry := s.Arrive(arrival(1))
	require.Equal(t, protocol.StatusArrived, entry.Status)
	require.False(t, entry.ArrivedAt.IsZero())

	entry, ok := s.MarkWaiting(1)
	require.True(t, ok)
	require.Equal(t, protocol.StatusWaiting, entry.Status)

	entry, ok = s.StartConsultation(1)
	require.True(t, ok)
	require.Equal(t, protocol.StatusInProgress, entry.Status)

	entry, ok = s.EndConsultation(1)
	require.True(t, ok)
	require.Equal(t, protocol.StatusCompleted, entry.Status)

	// Still visible within the grace period.
	_, ok = s.Get(1)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := s.Get(1)
		return !ok
	}, time.Second, 10*time.Millisecond)

	// Removing again must not blow up.
	s.Remove(1)
	require.Equal(t, 0, s.Len())
}

func TestStore_MarkWaitingUnknownIsNoop(t *testing.T) {
	s := NewStore(0)
	_, ok := s.MarkWaiting(999)
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestStore_ArriveOverwritesExisting(t *testing.T) {
	s := NewStore(time.Minute)
	s.Arrive(arrival(5))
	_, ok := s.MarkWaiting(5)
	require.True(t, ok)

	p := arrival(5)
	p.AssignedTo = 7
	p.AssignedToName = "Dr. Jones"
	entry := s.Arrive(p)

	// Last writer wins, including a reset back to arrived.
	require.Equal(t, protocol.StatusArrived, entry.Status)
	require.Equal(t, 7, entry.AssignedTo)
	require.Equal(t, 1, s.Len())
}

func TestStore_ArriveCancelsPendingRemoval(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	s.Arrive(arrival(2))
	_, ok := s.EndConsultation(2)
	require.True(t, ok)

	// Re-announcing before the grace period elapses keeps the new entry.
	s.Arrive(arrival(2))
	time.Sleep(100 * time.Millisecond)
	entry, ok := s.Get(2)
	require.True(t, ok)
	require.Equal(t, protocol.StatusArrived, entry.Status)
}

func TestStore_SetStatusIsPermissive(t *testing.T) {
	s := NewStore(0)
	s.Arrive(arrival(3))

	entry, ok := s.SetStatus(3, protocol.Status("no_show"))
	require.True(t, ok)
	require.Equal(t, protocol.Status("no_show"), entry.Status)

	stored, ok := s.Get(3)
	require.True(t, ok)
	require.Equal(t, protocol.Status("no_show"), stored.Status)
}

func TestStore_SnapshotOrderedByArrival(t *testing.T) {
	s := NewStore(0)
	s.Arrive(arrival(10))
	time.Sleep(2 * time.Millisecond)
	s.Arrive(arrival(11))
	time.Sleep(2 * time.Millisecond)
	s.Arrive(arrival(12))

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, 10, snap[0].AppointmentID)
	require.Equal(t, 11, snap[1].AppointmentID)
	require.Equal(t, 12, snap[2].AppointmentID)
}
