package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/shopassist/internal/adapters/storage/memory"
	"github.com/PabloGalante/shopassist/internal/domain"
)

func TestSessionStore(t *testing.T) {
	s := memory.NewSessionStore()
	now := time.Now()

	sess := &domain.Session{ID: "s1", CreatedAt: now, UpdatedAt: now, Filters: domain.DefaultFilters()}
	require.NoError(t, s.CreateSession(sess))
	assert.Error(t, s.CreateSession(sess))

	got, err := s.GetSession("s1")
	require.NoError(t, err)
	got.Filters.SetMinPrice("10")

	// the store keeps its own copy
	again, err := s.GetSession("s1")
	require.NoError(t, err)
	assert.Nil(t, again.Filters.MinPrice)

	require.NoError(t, s.UpdateSession(got))
	again, err = s.GetSession("s1")
	require.NoError(t, err)
	require.NotNil(t, again.Filters.MinPrice)
	assert.Equal(t, 10.0, *again.Filters.MinPrice)

	_, err = s.GetSession("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, s.UpdateSession(&domain.Session{ID: "missing"}), domain.ErrSessionNotFound)
}

func TestSessionStoreListOldestFirst(t *testing.T) {
	s := memory.NewSessionStore()
	base := time.Now()

	require.NoError(t, s.CreateSession(&domain.Session{ID: "b", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, s.CreateSession(&domain.Session{ID: "a", CreatedAt: base}))
	require.NoError(t, s.CreateSession(&domain.Session{ID: "c", CreatedAt: base.Add(2 * time.Second)}))

	all, err := s.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.SessionID("a"), all[0].ID)
	assert.Equal(t, domain.SessionID("c"), all[2].ID)

	two, err := s.ListSessions(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestMessageStore(t *testing.T) {
	s := memory.NewMessageStore()

	for _, id := range []domain.MessageID{"1", "2", "3"} {
		require.NoError(t, s.AppendMessage(&domain.Message{ID: id, SessionID: "s"}))
	}

	all, err := s.GetMessagesBySession("s", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.MessageID("1"), all[0].ID)

	last, err := s.GetMessagesBySession("s", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, domain.MessageID("2"), last[0].ID)

	require.NoError(t, s.ReplaceMessages("s", &domain.Message{ID: "g", SessionID: "s"}))
	after, err := s.GetMessagesBySession("s", 0)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, domain.MessageID("g"), after[0].ID)

	// earlier reads are unaffected
	assert.Len(t, all, 3)

	empty, err := s.GetMessagesBySession("other", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
