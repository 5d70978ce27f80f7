package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

// Checks every seat lock and acquires all of them only when none is owned
// by another user. Re-acquiring one's own lock is allowed; that is how a
// hold is replaced or refreshed. Returns the indices of contested keys,
// empty on success.
var claimSeatsScript = redis.NewScript(`
	local conflicts = {}

	for i = 1, #KEYS do
		local owner = redis.call("GET", KEYS[i])
		if owner and owner ~= ARGV[1] then
			table.insert(conflicts, i)
		end
	end

	if #conflicts > 0 then
		return conflicts
	end

	for i = 1, #KEYS do
		redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
	end

	return {}
`)

// Deletes only the locks still owned by the caller, so a lock that expired
// and was claimed by someone else is left alone. KEYS[1] is the hold
// document, KEYS[2] the per-show seat set, the rest are lock keys; ARGV[1]
// is the owner and ARGV[i-1] the seat id matching KEYS[i].
var releaseSeatsScript = redis.NewScript(`
	for i = 3, #KEYS do
		if redis.call("GET", KEYS[i]) == ARGV[1] then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", KEYS[2], ARGV[i - 1])
		end
	end

	return redis.call("DEL", KEYS[1])
`)

// Walks the per-show seat set and drops members whose lock key has
// expired, returning only the seats still locked.
var liveSeatsScript = redis.NewScript(`
	local result = {}
	local cursor = "0"

	repeat
		local scan = redis.call("SSCAN", KEYS[1], cursor)
		cursor = scan[1]

		for _, seat in ipairs(scan[2]) do
			if redis.call("EXISTS", ARGV[1] .. seat) == 1 then
				table.insert(result, seat)
			else
				redis.call("SREM", KEYS[1], seat)
			end
		end
	until cursor == "0"

	return result
`)

// RedisHoldStore keeps one JSON hold document per (show, user) plus one
// lock key per held seat, all expiring via TTL. The TTL is cleanup only;
// ExpiresAt inside the document is what callers trust.
type RedisHoldStore struct {
	client redis.UniversalClient
	clock  clock.Clock
}

func NewRedisHoldStore(client redis.UniversalClient, clk clock.Clock) *RedisHoldStore {
	return &RedisHoldStore{
		client: client,
		clock:  clk,
	}
}

func holdKey(showID, userID int64) string {
	return fmt.Sprintf("hold:%d:%d", showID, userID)
}

func seatLockKey(showID, seatID int64) string {
	return fmt.Sprintf("seat_hold:%d:%d", showID, seatID)
}

func seatLockPrefix(showID int64) string {
	return fmt.Sprintf("seat_hold:%d:", showID)
}

func seatSetKey(showID int64) string {
	return fmt.Sprintf("seat_holds:%d", showID)
}

func (s *RedisHoldStore) CreateOrReplace(ctx context.Context, hold *domain.SeatHold, ttl time.Duration) error {
	existing, err := s.Get(ctx, hold.ShowID, hold.UserID)
	if err != nil && !errors.Is(err, domain.ErrHoldNotFound) {
		return err
	}

	err = s.claimSeats(ctx, hold, ttl)
	if err != nil {
		return err
	}

	hold.ExpiresAt = s.clock.Now().UTC().Add(ttl)

	payload, err := json.Marshal(hold)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()

	if existing != nil {
		for _, seatID := range staleSeats(existing.SeatIDs, hold.SeatIDs) {
			pipe.Del(ctx, seatLockKey(hold.ShowID, seatID))
			pipe.SRem(ctx, seatSetKey(hold.ShowID), seatID)
		}
	}

	for _, seatID := range hold.SeatIDs {
		pipe.SAdd(ctx, seatSetKey(hold.ShowID), seatID)
	}

	pipe.Set(ctx, holdKey(hold.ShowID, hold.UserID), payload, ttl)

	_, err = pipe.Exec(ctx)

	return err
}

func (s *RedisHoldStore) claimSeats(ctx context.Context, hold *domain.SeatHold, ttl time.Duration) error {
	keys := make([]string, len(hold.SeatIDs))
	for i, seatID := range hold.SeatIDs {
		keys[i] = seatLockKey(hold.ShowID, seatID)
	}

	owner := fmt.Sprintf("%d", hold.UserID)
	ttlSeconds := int(ttl / time.Second)

	conflicts, err := claimSeatsScript.Run(ctx, s.client, keys, owner, ttlSeconds).Int64Slice()
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		contested := make([]int64, len(conflicts))
		for i, idx := range conflicts {
			contested[i] = hold.SeatIDs[idx-1]
		}

		return &domain.SeatConflictError{ShowID: hold.ShowID, SeatIDs: contested}
	}

	return nil
}

func staleSeats(previous, current []int64) []int64 {
	kept := make(map[int64]bool, len(current))
	for _, seatID := range current {
		kept[seatID] = true
	}

	var stale []int64
	for _, seatID := range previous {
		if !kept[seatID] {
			stale = append(stale, seatID)
		}
	}

	return stale
}

func (s *RedisHoldStore) Get(ctx context.Context, showID, userID int64) (*domain.SeatHold, error) {
	payload, err := s.client.Get(ctx, holdKey(showID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, err
	}

	var hold domain.SeatHold

	err = json.Unmarshal(payload, &hold)
	if err != nil {
		return nil, err
	}

	if hold.Expired(s.clock.Now()) {
		return nil, domain.ErrHoldNotFound
	}

	return &hold, nil
}

func (s *RedisHoldStore) Refresh(ctx context.Context, showID, userID int64, ttl time.Duration) (*domain.SeatHold, error) {
	hold, err := s.Get(ctx, showID, userID)
	if err != nil {
		return nil, err
	}

	err = s.claimSeats(ctx, hold, ttl)
	if err != nil {
		return nil, err
	}

	hold.ExpiresAt = s.clock.Now().UTC().Add(ttl)

	payload, err := json.Marshal(hold)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()

	for _, seatID := range hold.SeatIDs {
		pipe.SAdd(ctx, seatSetKey(showID), seatID)
	}

	pipe.Set(ctx, holdKey(showID, userID), payload, ttl)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return nil, err
	}

	return hold, nil
}

func (s *RedisHoldStore) Release(ctx context.Context, showID, userID int64) error {
	payload, err := s.client.Get(ctx, holdKey(showID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return err
	}

	var hold domain.SeatHold

	err = json.Unmarshal(payload, &hold)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(hold.SeatIDs)+2)
	keys = append(keys, holdKey(showID, userID), seatSetKey(showID))

	args := make([]any, 0, len(hold.SeatIDs)+1)
	args = append(args, fmt.Sprintf("%d", userID))

	for _, seatID := range hold.SeatIDs {
		keys = append(keys, seatLockKey(showID, seatID))
		args = append(args, seatID)
	}

	return releaseSeatsScript.Run(ctx, s.client, keys, args...).Err()
}

func (s *RedisHoldStore) HeldSeats(ctx context.Context, showID int64) ([]int64, error) {
	seats, err := liveSeatsScript.Run(ctx, s.client,
		[]string{seatSetKey(showID)},
		seatLockPrefix(showID),
	).Int64Slice()

	if err != nil {
		return nil, err
	}

	return seats, nil
}
