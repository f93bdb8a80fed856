// Package notify delivers ledger notifications. RedisQueue enqueues signed
// envelopes, Worker drains them into a sender, and LogNotifier is the sender
// used when no mail relay is configured.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrBadSignature is returned by Dequeue for envelopes that fail verification.
var ErrBadSignature = errors.New("notify: envelope signature mismatch")

// Envelope is the queued wire format.
type Envelope struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// RedisQueue implements ports.Notifier by pushing onto a Redis list.
type RedisQueue struct {
	client goredis.UniversalClient
	key    string
	signer ports.SignatureService
	secret string
}

// NewRedisQueue creates a queue on list key. Payloads are signed with secret.
func NewRedisQueue(client goredis.UniversalClient, key string, signer ports.SignatureService, secret string) *RedisQueue {
	return &RedisQueue{
		client: client,
		key:    key,
		signer: signer,
		secret: secret,
	}
}

// Notify enqueues n. Delivery happens in the Worker.
func (q *RedisQueue) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	env := Envelope{
		ID:        uuid.New().String(),
		Payload:   payload,
		Signature: q.signer.Sign(q.secret, string(payload)),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", q.key, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the oldest envelope. It returns
// (nil, nil) when the queue stays empty.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Notification, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis brpop %s: %w", q.key, err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("redis brpop %s: unexpected reply length %d", q.key, len(res))
	}

	var env Envelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !q.signer.Verify(q.secret, string(env.Payload), env.Signature) {
		return nil, fmt.Errorf("%w: envelope %s", ErrBadSignature, env.ID)
	}

	var n domain.Notification
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		return nil, fmt.Errorf("decode notification %s: %w", env.ID, err)
	}
	return &n, nil
}

// Len reports the number of queued envelopes.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
