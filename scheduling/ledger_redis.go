package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// reserveScript claims the slot field, sets the day's expiry and indexes the
// reservation by time in one step.
var reserveScript = redis.NewScript(`
if redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call("EXPIREAT", KEYS[1], ARGV[3])
redis.call("ZADD", KEYS[2], ARGV[4], ARGV[5])
return 1
`)

// releaseScript deletes the field only while it still names the releasing appointment.
var releaseScript = redis.NewScript(`
redis.call("ZREM", KEYS[2], ARGV[3])
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call("HDEL", KEYS[1], ARGV[1])
end
return 0
`)

// RedisLedger stores a doctor's held slots for one day in a hash whose fields
// are slot times. HSETNX is the atomic insert-if-absent. A sorted set scored
// by reservation time lets the reconciler find reservations whose appointment
// was never written.
type RedisLedger struct {
	client *redis.Client
	prefix string
	// retention past the end of the slot's date before the hash expires
	retention time.Duration
	now       func() time.Time
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	if client == nil {
		panic("scheduling: redis client required")
	}
	return &RedisLedger{client: client, prefix: "healthsphere:slots", retention: 48 * time.Hour, now: time.Now}
}

func (l *RedisLedger) hashKey(doctorID, date string) string {
	return fmt.Sprintf("%s:%s:%s", l.prefix, doctorID, date)
}

func (l *RedisLedger) indexKey() string {
	return l.prefix + ":reservations"
}

type indexMember struct {
	DoctorID      string `json:"d"`
	Date          string `json:"dt"`
	Time          string `json:"t"`
	AppointmentID string `json:"a"`
}

func encodeMember(key SlotKey, appointmentID string) string {
	raw, _ := json.Marshal(indexMember{DoctorID: key.DoctorID, Date: key.Date, Time: key.Time, AppointmentID: appointmentID})
	return string(raw)
}

func (l *RedisLedger) Reserve(ctx context.Context, key SlotKey, appointmentID string) error {
	day, err := time.Parse(DateLayout, key.Date)
	if err != nil {
		return fmt.Errorf("ledger: reserve %s: %w", key, err)
	}

	won, err := reserveScript.Run(ctx, l.client,
		[]string{l.hashKey(key.DoctorID, key.Date), l.indexKey()},
		key.Time, appointmentID,
		day.Add(l.retention).Unix(),
		l.now().UnixMilli(), encodeMember(key, appointmentID),
	).Int()
	if err != nil {
		return fmt.Errorf("ledger: reserve %s: %w", key, err)
	}
	if won == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (l *RedisLedger) Release(ctx context.Context, key SlotKey, appointmentID string) error {
	err := releaseScript.Run(ctx, l.client,
		[]string{l.hashKey(key.DoctorID, key.Date), l.indexKey()},
		key.Time, appointmentID, encodeMember(key, appointmentID),
	).Err()
	if err != nil {
		return fmt.Errorf("ledger: release %s: %w", key, err)
	}
	return nil
}

func (l *RedisLedger) Held(ctx context.Context, doctorID, date string) (map[string]string, error) {
	held, err := l.client.HGetAll(ctx, l.hashKey(doctorID, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: held slots for %s on %s: %w", doctorID, date, err)
	}
	return held, nil
}

// ReservedBetween also drops index entries older than from, so the index only
// grows with the reconciler's lookback.
func (l *RedisLedger) ReservedBetween(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	idx := l.indexKey()
	members, err := l.client.ZRangeByScoreWithScores(ctx, idx, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: reservations between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	if err := l.client.ZRemRangeByScore(ctx, idx, "-inf", "("+strconv.FormatInt(from.UnixMilli(), 10)).Err(); err != nil {
		return nil, fmt.Errorf("ledger: prune reservation index: %w", err)
	}

	out := make([]Reservation, 0, len(members))
	for _, z := range members {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var m indexMember
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		out = append(out, Reservation{
			Key:           SlotKey{DoctorID: m.DoctorID, Date: m.Date, Time: m.Time},
			AppointmentID: m.AppointmentID,
			ReservedAt:    time.UnixMilli(int64(z.Score)),
		})
	}
	return out, nil
}
