package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRedisKeysShareClusterSlot(t *testing.T) {
	s := NewRedis(nil, "ContactosCampiclouders")
	id := uuid.MustParse("9b2f7a10-0000-4000-8000-000000000001")

	assert.Equal(t, "{ContactosCampiclouders}:ids", s.idsKey())
	assert.Equal(t, "{ContactosCampiclouders}:contact:9b2f7a10-0000-4000-8000-000000000001", s.contactKey(id))
}
