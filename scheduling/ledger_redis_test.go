package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	mr.SetTime(time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC))
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLedger(client), mr
}

func TestRedisLedgerReserveRelease(t *testing.T) {
	ledger, mr := newTestRedisLedger(t)
	ctx := context.Background()
	key := SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: "10:00"}

	require.NoError(t, ledger.Reserve(ctx, key, "a1"))
	assert.ErrorIs(t, ledger.Reserve(ctx, key, "a2"), ErrSlotTaken)

	held, err := ledger.Held(ctx, "doc-1", "2024-05-07")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10:00": "a1"}, held)

	hash := "healthsphere:slots:doc-1:2024-05-07"
	assert.Equal(t, 64*time.Hour, mr.TTL(hash))

	// Another appointment cannot free the slot.
	require.NoError(t, ledger.Release(ctx, key, "a2"))
	held, err = ledger.Held(ctx, "doc-1", "2024-05-07")
	require.NoError(t, err)
	assert.Equal(t, "a1", held["10:00"])

	require.NoError(t, ledger.Release(ctx, key, "a1"))
	require.NoError(t, ledger.Release(ctx, key, "a1"))
	held, err = ledger.Held(ctx, "doc-1", "2024-05-07")
	require.NoError(t, err)
	assert.Empty(t, held)

	require.NoError(t, ledger.Reserve(ctx, key, "a3"))
}

func TestRedisLedgerConcurrentReserve(t *testing.T) {
	ledger, _ := newTestRedisLedger(t)
	ctx := context.Background()
	key := SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: "10:00"}

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- ledger.Reserve(ctx, key, string(rune('a'+i)))
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, wins)
}

func TestRedisLedgerReservedBetween(t *testing.T) {
	ledger, mr := newTestRedisLedger(t)
	ctx := context.Background()
	base := time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)

	reserveAt := func(at time.Time, slot, id string) {
		t.Helper()
		ledger.now = func() time.Time { return at }
		require.NoError(t, ledger.Reserve(ctx, SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: slot}, id))
	}
	reserveAt(base.Add(-2*time.Hour), "09:00", "old")
	reserveAt(base.Add(-30*time.Minute), "09:30", "a1")
	reserveAt(base, "10:00", "a2")

	got, err := ledger.ReservedBetween(ctx, base.Add(-time.Hour), base.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: "09:30"}, got[0].Key)
	assert.Equal(t, "a1", got[0].AppointmentID)
	assert.True(t, got[0].ReservedAt.Equal(base.Add(-30*time.Minute)))

	// Entries before the window are pruned from the index, not from the hash.
	members, err := mr.ZMembers("healthsphere:slots:reservations")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	held, err := ledger.Held(ctx, "doc-1", "2024-05-07")
	require.NoError(t, err)
	assert.Equal(t, "old", held["09:00"])

	require.NoError(t, ledger.Release(ctx, SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: "09:30"}, "a1"))
	got, err = ledger.ReservedBetween(ctx, base.Add(-time.Hour), base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].AppointmentID)
}

func TestRedisLedgerLostRaceDoesNotIndex(t *testing.T) {
	ledger, mr := newTestRedisLedger(t)
	ctx := context.Background()
	key := SlotKey{DoctorID: "doc-1", Date: "2024-05-07", Time: "10:00"}

	require.NoError(t, ledger.Reserve(ctx, key, "a1"))
	assert.ErrorIs(t, ledger.Reserve(ctx, key, "a2"), ErrSlotTaken)

	members, err := mr.ZMembers("healthsphere:slots:reservations")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
