package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
)

// KEYS[1] last reserved nonce; ARGV[1] chain pending nonce; ARGV[2] ttl ms.
var reserveScript = goredis.NewScript(`
local next = tonumber(ARGV[1])
local last = redis.call('GET', KEYS[1])
if last then
  local candidate = tonumber(last) + 1
  if candidate > next then next = candidate end
end
redis.call('SET', KEYS[1], string.format('%d', next), 'PX', ARGV[2])
return next
`)

// KEYS[1] last reserved nonce; ARGV[1] nonce being given back.
var rewindScript = goredis.NewScript(`
local last = redis.call('GET', KEYS[1])
if not last or last ~= ARGV[1] then return 0 end
local n = tonumber(ARGV[1])
if n == 0 then
  redis.call('DEL', KEYS[1])
  return 1
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], string.format('%d', n - 1), 'PX', ttl)
else
  redis.call('SET', KEYS[1], string.format('%d', n - 1))
end
return 1
`)

// NonceTracker implements ports.NonceTracker so several gateway replicas
// share one high-water mark per sender. Entries expire after staleAfter of
// inactivity, after which the chain's pending nonce is trusted again.
type NonceTracker struct {
	client     goredis.Scripter
	prefix     string
	staleAfter time.Duration
}

func NewNonceTracker(client goredis.Scripter, staleAfter time.Duration) *NonceTracker {
	if staleAfter <= 0 {
		staleAfter = 2 * time.Minute
	}
	return &NonceTracker{client: client, prefix: "nonce:", staleAfter: staleAfter}
}

func (t *NonceTracker) Reserve(ctx context.Context, address common.Address, chainNonce uint64) (uint64, error) {
	n, err := reserveScript.Run(ctx, t.client, []string{t.key(address)},
		strconv.FormatUint(chainNonce, 10), t.staleAfter.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis reserve nonce: %w", err)
	}
	return uint64(n), nil
}

func (t *NonceTracker) Rewind(ctx context.Context, address common.Address, nonce uint64) error {
	if err := rewindScript.Run(ctx, t.client, []string{t.key(address)}, strconv.FormatUint(nonce, 10)).Err(); err != nil {
		return fmt.Errorf("redis rewind nonce: %w", err)
	}
	return nil
}

func (t *NonceTracker) key(address common.Address) string {
	return t.prefix + strings.ToLower(address.Hex())
}
