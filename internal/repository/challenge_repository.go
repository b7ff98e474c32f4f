package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// ErrChallengeNotFound is returned for unknown, expired or already used nonces.
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeRepository stores single-use login nonces.
type ChallengeRepository interface {
	Save(ctx context.Context, challenge *domain.Challenge) error
	// Consume returns and deletes the challenge so it cannot be replayed.
	Consume(ctx context.Context, nonce string) (*domain.Challenge, error)
}

type redisChallengeRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeRepository keeps challenges in Redis with a TTL matching ExpiresAt.
func NewRedisChallengeRepository(client *redis.Client, prefix string) ChallengeRepository {
	return &redisChallengeRepository{client: client, prefix: prefix + "challenge:"}
}

type storedChallenge struct {
	Address   domain.Identity `json:"address"`
	PublicKey []byte          `json:"public_key"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (r *redisChallengeRepository) Save(ctx context.Context, challenge *domain.Challenge) error {
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return errors.New("challenge already expired")
	}
	raw, err := json.Marshal(storedChallenge{
		Address:   challenge.Address,
		PublicKey: challenge.PublicKey,
		ExpiresAt: challenge.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+challenge.Nonce, raw, ttl).Err()
}

func (r *redisChallengeRepository) Consume(ctx context.Context, nonce string) (*domain.Challenge, error) {
	raw, err := r.client.GetDel(ctx, r.prefix+nonce).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	var stored storedChallenge
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &domain.Challenge{
		Address:   stored.Address,
		PublicKey: stored.PublicKey,
		Nonce:     nonce,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

type memoryChallengeRepository struct {
	mu         sync.Mutex
	challenges map[string]domain.Challenge
	now        func() time.Time
}

// NewMemoryChallengeRepository is used when Redis is not configured.
func NewMemoryChallengeRepository() ChallengeRepository {
	return &memoryChallengeRepository{
		challenges: make(map[string]domain.Challenge),
		now:        time.Now,
	}
}

func (r *memoryChallengeRepository) Save(_ context.Context, challenge *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictExpired()
	r.challenges[challenge.Nonce] = *challenge
	return nil
}

func (r *memoryChallengeRepository) Consume(_ context.Context, nonce string) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	challenge, ok := r.challenges[nonce]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	delete(r.challenges, nonce)
	if !r.now().Before(challenge.ExpiresAt) {
		return nil, ErrChallengeNotFound
	}
	return &challenge, nil
}

func (r *memoryChallengeRepository) evictExpired() {
	now := r.now()
	for nonce, c := range r.challenges {
		if !now.Before(c.ExpiresAt) {
			delete(r.challenges, nonce)
		}
	}
}
