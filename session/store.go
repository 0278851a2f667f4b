package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSecretMismatch is returned when a presented secret hash does not match
// the stored hash. The store has already deleted the session when this is
// returned: a mismatch means either a stale retry after a completed rotation
// or a replayed stolen secret, and in both cases the session must not remain
// usable.
var ErrSecretMismatch = errors.New("session secret mismatch")

// ErrSessionExpired is returned when the target session's expiry has passed.
// The store deletes the row as a side effect.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionCorrupt is returned when a stored session blob fails decoding.
var ErrSessionCorrupt = errors.New("session record corrupt")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	rotateStatusNotFound    int64 = 0
	rotateStatusExpired     int64 = 1
	rotateStatusMismatch    int64 = 2
	rotateStatusRotated     int64 = 3
	rotateStatusInvalidBlob int64 = 4
)

// rotateScript performs the whole read-compare-swap sequence server-side so
// two concurrent rotation attempts against the same session are linearized
// by Redis: exactly one observes the current hash and wins, the other sees
// the already-swapped hash and trips the mismatch path. Expiry only ever
// moves forward.
const rotateScript = `
local function read_be64(s, i)
  local v = 0
  for off = 0, 7 do
    local b = string.byte(s, i + off)
    if not b then
      return nil
    end
    v = v * 256 + b
  end
  return v
end

local function write_be64(n)
  local bytes = {}
  for i = 8, 1, -1 do
    bytes[i] = n % 256
    n = math.floor(n / 256)
  end
  return string.char(bytes[1], bytes[2], bytes[3], bytes[4],
                     bytes[5], bytes[6], bytes[7], bytes[8])
end

local function parse_session(data)
  local version = string.byte(data, 1)
  if version ~= 1 then
    return nil
  end

  local idx = 2
  local user_len = string.byte(data, idx)
  if not user_len then
    return nil
  end
  idx = idx + 1
  if #data < idx + user_len - 1 then
    return nil
  end
  local user_id = string.sub(data, idx, idx + user_len - 1)
  idx = idx + user_len

  for field = 1, 3 do
    local len = string.byte(data, idx)
    if not len then
      return nil
    end
    idx = idx + 1 + len
  end

  -- secretHash(32) + createdAt(8) + updatedAt(8) + expiresAt(8)
  if #data ~= idx + 55 then
    return nil
  end

  return {
    user_id = user_id,
    hash_offset = idx,
    secret_hash = string.sub(data, idx, idx + 31),
    created_raw = string.sub(data, idx + 32, idx + 39),
    expires_at = read_be64(data, idx + 48)
  }
end

local session_key = KEYS[1]
local session_id = ARGV[1]
local user_prefix = ARGV[2]
local provided_hash = ARGV[3]
local next_hash = ARGV[4]
local now_unix = tonumber(ARGV[5])
local next_expires = tonumber(ARGV[6])

local data = redis.call("GET", session_key)
if not data then
  return {0}
end

local parsed = parse_session(data)
if not parsed then
  return {4}
end

local user_key = user_prefix .. parsed.user_id

if parsed.secret_hash ~= provided_hash then
  redis.call("DEL", session_key)
  redis.call("SREM", user_key, session_id)
  return {2}
end

if parsed.expires_at <= now_unix then
  redis.call("DEL", session_key)
  redis.call("SREM", user_key, session_id)
  return {1}
end

if next_expires < parsed.expires_at then
  next_expires = parsed.expires_at
end

local prefix = string.sub(data, 1, parsed.hash_offset - 1)
local updated = prefix .. next_hash .. parsed.created_raw ..
                write_be64(now_unix) .. write_be64(next_expires)

redis.call("SET", session_key, updated, "EX", next_expires - now_unix)
redis.call("SADD", user_key, session_id)

return {3, updated}
`

var rotateLua = redis.NewScript(rotateScript)

// Store is the Redis-backed credential store: one row per login, indexed per
// user for bulk revocation, with atomic secret rotation.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix namespaces all keys written by this store.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "lw"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

func (s *Store) userKeyPrefix() string {
	return s.prefix + ":u:"
}

// Save persists a new session row and registers it in the owner's index set.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl <= 0 {
		return ErrSessionExpired
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.SessionID), data, ttl)
		pipe.SAdd(ctx, s.userKey(sess.UserID), sess.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves a session by ID. A missing row returns redis.Nil; a row past
// its expiry is deleted best-effort and reported as [ErrSessionExpired].
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, ErrSessionCorrupt
	}
	sess.SessionID = sessionID

	if time.Now().Unix() >= sess.ExpiresAt {
		_ = s.Delete(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Rotate atomically swaps the stored secret hash for nextHash, provided the
// row still holds providedHash and is unexpired. Mismatch and expiry both
// delete the row inside the same script invocation. On success the returned
// session reflects the post-rotation state.
func (s *Store) Rotate(
	ctx context.Context,
	sessionID string,
	providedHash [32]byte,
	nextHash [32]byte,
	now time.Time,
	nextExpiry time.Time,
) (*Session, error) {
	res, err := rotateLua.Run(ctx, s.redis,
		[]string{s.key(sessionID)},
		sessionID,
		s.userKeyPrefix(),
		string(providedHash[:]),
		string(nextHash[:]),
		now.Unix(),
		nextExpiry.Unix(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) == 0 {
		return nil, ErrSessionCorrupt
	}
	status, ok := reply[0].(int64)
	if !ok {
		return nil, ErrSessionCorrupt
	}

	switch status {
	case rotateStatusNotFound:
		return nil, redis.Nil
	case rotateStatusExpired:
		return nil, ErrSessionExpired
	case rotateStatusMismatch:
		return nil, ErrSecretMismatch
	case rotateStatusInvalidBlob:
		return nil, ErrSessionCorrupt
	case rotateStatusRotated:
		if len(reply) < 2 {
			return nil, ErrSessionCorrupt
		}
		blob, ok := reply[1].(string)
		if !ok {
			return nil, ErrSessionCorrupt
		}
		sess, err := Decode([]byte(blob))
		if err != nil {
			return nil, ErrSessionCorrupt
		}
		sess.SessionID = sessionID
		return sess, nil
	default:
		return nil, ErrSessionCorrupt
	}
}

// Delete removes a session row and its index entry. Deleting a missing
// session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		// Corrupt row: still remove the key so it cannot wedge the session.
		if delErr := s.redis.Del(ctx, s.key(sessionID)).Err(); delErr != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, delErr)
		}
		return nil
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.SRem(ctx, s.userKey(sess.UserID), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// DeleteAllForUser removes every session owned by a user.
//
// ATOMICITY NOTE: the member read and the deletes are separate round trips.
// A session created between them survives this call; it expires naturally or
// is caught by the next revocation. This matches the best-effort contract of
// bulk revocation.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)

	sessionIDs, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, sessionID := range sessionIDs {
			pipe.Del(ctx, s.key(sessionID))
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// ActiveSessionIDs returns the tracked session IDs for a user. IDs of rows
// that have already expired may still appear until the next write touches
// the index.
func (s *Store) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ids, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
