package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"registro/internal/contact/models"
	"registro/pkg/platform/sentinel"
)

// insertScript adds the id to the index set and writes the hash only if the
// id was new, so a duplicate never overwrites an existing record.
var insertScript = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], unpack(ARGV, 2))
return 1
`)

// RedisStore keeps one hash per contact at "{<prefix>}:contact:<id>" and an
// index set "{<prefix>}:ids" whose cardinality is the record count. The
// braces are a cluster hash tag: the insert script touches both keys, so they
// must share a slot.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) keyTag() string {
	return "{" + s.prefix + "}"
}

func (s *RedisStore) idsKey() string {
	return s.keyTag() + ":ids"
}

func (s *RedisStore) contactKey(id uuid.UUID) string {
	return s.keyTag() + ":contact:" + id.String()
}

func (s *RedisStore) Insert(ctx context.Context, contact *models.Contact) error {
	id := contact.ID.String()
	added, err := insertScript.Run(ctx, s.client,
		[]string{s.idsKey(), s.contactKey(contact.ID)},
		id,
		"id", id,
		"names", contact.Names,
		"surname", contact.Surname,
		"email", contact.Email,
		"phone", contact.Phone,
		"interest", contact.Interest,
		"createdAt", models.FormatTimestamp(contact.CreatedAt),
	).Int()
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("contact %s: %w", id, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.idsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return int(n), nil
}

// Get loads a stored contact.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	fields, err := s.client.HGetAll(ctx, s.contactKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("contact %s: %w", id, sentinel.ErrNotFound)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	return &models.Contact{
		ID:        id,
		Names:     fields["names"],
		Surname:   fields["surname"],
		Email:     fields["email"],
		Phone:     fields["phone"],
		Interest:  fields["interest"],
		CreatedAt: createdAt,
	}, nil
}
