package conversation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/shopassist/internal/adapters/catalog"
	"github.com/PabloGalante/shopassist/internal/adapters/storage/memory"
	"github.com/PabloGalante/shopassist/internal/app/conversation"
	"github.com/PabloGalante/shopassist/internal/app/intent"
	"github.com/PabloGalante/shopassist/internal/app/schedule"
	"github.com/PabloGalante/shopassist/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// swappableCatalog lets a test replace the catalog between replies.
type swappableCatalog struct {
	mu    sync.Mutex
	items []domain.Item
}

func (c *swappableCatalog) Items() []domain.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

func (c *swappableCatalog) set(items []domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

type fixture struct {
	svc   *conversation.Service
	clock *schedule.Manual
	cat   *swappableCatalog
	id    domain.SessionID
}

func newFixture(t *testing.T, opts conversation.Options) *fixture {
	t.Helper()

	cat := &swappableCatalog{items: catalog.DefaultItems()}
	clock := schedule.NewManual()
	svc := conversation.NewService(cat, memory.NewSessionStore(), memory.NewMessageStore(), clock, opts)
	t.Cleanup(svc.Close)

	session, welcome, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, welcome)

	return &fixture{svc: svc, clock: clock, cat: cat, id: session.ID}
}

func (f *fixture) timeline(t *testing.T) *conversation.Timeline {
	t.Helper()
	tl, err := f.svc.GetSessionTimeline(context.Background(), f.id, 0)
	require.NoError(t, err)
	return tl
}

func TestStartSession(t *testing.T) {
	f := newFixture(t, conversation.DefaultOptions())

	tl := f.timeline(t)
	require.Len(t, tl.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, tl.Messages[0].Author)
	assert.Equal(t, domain.WelcomeText, tl.Messages[0].Text)
	assert.Empty(t, tl.Messages[0].Items)
	assert.False(t, tl.Pending)
	assert.Equal(t, domain.DefaultFilters(), tl.Session.Filters)
}

func TestSubmitAndReply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	userMsg, err := f.svc.SubmitUtterance(ctx, f.id, "headphones")
	require.NoError(t, err)
	require.NotNil(t, userMsg)
	assert.Equal(t, domain.RoleUser, userMsg.Author)

	tl := f.timeline(t)
	require.Len(t, tl.Messages, 2)
	assert.True(t, tl.Pending)

	f.clock.Advance(conversation.DefaultReplyDelay - time.Millisecond)
	assert.True(t, f.svc.Pending(f.id))
	assert.Len(t, f.timeline(t).Messages, 2)

	f.clock.Advance(time.Millisecond)
	tl = f.timeline(t)
	require.Len(t, tl.Messages, 3)
	assert.False(t, tl.Pending)

	reply := tl.Messages[2]
	assert.Equal(t, domain.RoleAssistant, reply.Author)
	assert.Equal(t, "I found 1 product matching your search. Take a look:", reply.Text)
	require.Len(t, reply.Items, 1)
	assert.Equal(t, "Wireless Bluetooth Headphones", reply.Items[0].Name)
}

func TestBlankUtteranceIsIgnored(t *testing.T) {
	f := newFixture(t, conversation.DefaultOptions())

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := f.svc.SubmitUtterance(context.Background(), f.id, text)
		require.NoError(t, err)
		assert.Nil(t, msg)
	}

	assert.Len(t, f.timeline(t).Messages, 1)
	assert.False(t, f.svc.Pending(f.id))
	assert.Zero(t, f.clock.Pending())
}

func TestSecondSubmissionRejectedWhilePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, f.id, "watch")
	require.NoError(t, err)

	_, err = f.svc.SubmitUtterance(ctx, f.id, "stand")
	assert.ErrorIs(t, err, conversation.ErrReplyPending)
	assert.Len(t, f.timeline(t).Messages, 2)
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(conversation.DefaultReplyDelay)

	_, err = f.svc.SubmitUtterance(ctx, f.id, "stand")
	require.NoError(t, err)
	f.clock.Advance(conversation.DefaultReplyDelay)

	msgs := f.timeline(t).Messages
	require.Len(t, msgs, 5)
	want := []domain.Role{domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant}
	for i, m := range msgs {
		assert.Equal(t, want[i], m.Author, "message %d", i)
	}
}

func TestLiveFiltersReadWhenReplyIsComposed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, f.id, "cable")
	require.NoError(t, err)

	_, err = f.svc.SetInStockOnly(ctx, f.id, true)
	require.NoError(t, err)

	f.clock.Advance(conversation.DefaultReplyDelay)

	msgs := f.timeline(t).Messages
	assert.Equal(t, intent.NoMatchText, msgs[len(msgs)-1].Text)
	assert.Empty(t, msgs[len(msgs)-1].Items)
}

func TestSnapshotFiltersReadAtSubmission(t *testing.T) {
	ctx := context.Background()
	opts := conversation.DefaultOptions()
	opts.FilterRead = domain.FilterReadSnapshot
	f := newFixture(t, opts)

	_, err := f.svc.SubmitUtterance(ctx, f.id, "cable")
	require.NoError(t, err)

	_, err = f.svc.SetInStockOnly(ctx, f.id, true)
	require.NoError(t, err)

	f.clock.Advance(conversation.DefaultReplyDelay)

	msgs := f.timeline(t).Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, "I found 1 product matching your search. Take a look:", last.Text)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "USB-C Cable", last.Items[0].Name)
}

func TestCategoryFilterKeepsCatalogOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SetCategory(ctx, f.id, "Accessories")
	require.NoError(t, err)

	// blank utterances never reach the matcher, "u" appears in both accessories
	_, err = f.svc.SubmitUtterance(ctx, f.id, "u")
	require.NoError(t, err)
	f.clock.Advance(conversation.DefaultReplyDelay)

	msgs := f.timeline(t).Messages
	last := msgs[len(msgs)-1]
	require.Len(t, last.Items, 2)
	assert.Equal(t, "USB-C Cable", last.Items[0].Name)
	assert.Equal(t, "Laptop Stand", last.Items[1].Name)
	assert.Equal(t, "I found 2 products matching your search. Take a look:", last.Text)
}

func TestResetIsDestructive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	for _, u := range []string{"help", "watch"} {
		_, err := f.svc.SubmitUtterance(ctx, f.id, u)
		require.NoError(t, err)
		f.clock.Advance(conversation.DefaultReplyDelay)
	}
	require.Len(t, f.timeline(t).Messages, 5)

	greeting, err := f.svc.Reset(ctx, f.id)
	require.NoError(t, err)

	msgs := f.timeline(t).Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, greeting.ID, msgs[0].ID)
	assert.Equal(t, domain.RoleAssistant, msgs[0].Author)
	assert.Equal(t, domain.WelcomeText, msgs[0].Text)
}

func TestResetKeepsPendingReplyByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, f.id, "watch")
	require.NoError(t, err)

	_, err = f.svc.Reset(ctx, f.id)
	require.NoError(t, err)
	assert.True(t, f.svc.Pending(f.id))

	f.clock.Advance(conversation.DefaultReplyDelay)

	msgs := f.timeline(t).Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.WelcomeText, msgs[0].Text)
	assert.Equal(t, "I found 1 product matching your search. Take a look:", msgs[1].Text)
	assert.False(t, f.svc.Pending(f.id))
}

func TestResetCancelsPendingReplyWhenConfigured(t *testing.T) {
	ctx := context.Background()
	opts := conversation.DefaultOptions()
	opts.CancelPendingOnReset = true
	f := newFixture(t, opts)

	_, err := f.svc.SubmitUtterance(ctx, f.id, "watch")
	require.NoError(t, err)

	_, err = f.svc.Reset(ctx, f.id)
	require.NoError(t, err)
	assert.False(t, f.svc.Pending(f.id))
	assert.Zero(t, f.clock.Pending())

	f.clock.Advance(conversation.DefaultReplyDelay)
	assert.Len(t, f.timeline(t).Messages, 1)

	// a new submission is accepted straight away
	_, err = f.svc.SubmitUtterance(ctx, f.id, "stand")
	assert.NoError(t, err)
}

func TestMessageIDsIncrease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	for _, u := range []string{"a", "b", "c"} {
		_, err := f.svc.SubmitUtterance(ctx, f.id, u)
		require.NoError(t, err)
		f.clock.Advance(conversation.DefaultReplyDelay)
	}

	msgs := f.timeline(t).Messages
	require.Len(t, msgs, 7)
	for i := 1; i < len(msgs); i++ {
		assert.Less(t, string(msgs[i-1].ID), string(msgs[i].ID))
	}
}

func TestRepliesSnapshotItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, f.id, "watch")
	require.NoError(t, err)
	f.clock.Advance(conversation.DefaultReplyDelay)

	renamed := catalog.DefaultItems()
	renamed[1].Name = "Smart Watch v2"
	renamed[1].Price = 249.99
	f.cat.set(renamed)

	msgs := f.timeline(t).Messages
	last := msgs[len(msgs)-1]
	require.Len(t, last.Items, 1)
	assert.Equal(t, "Smart Watch", last.Items[0].Name)
	assert.Equal(t, 199.99, last.Items[0].Price)
}

func TestFilterOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	got, err := f.svc.SetMinPrice(ctx, f.id, "20")
	require.NoError(t, err)
	require.NotNil(t, got.MinPrice)
	assert.Equal(t, 20.0, *got.MinPrice)

	got, err = f.svc.SetMaxPrice(ctx, f.id, "lots")
	require.NoError(t, err)
	assert.Nil(t, got.MaxPrice)

	got, err = f.svc.ClearFilters(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFilters(), got)

	stored, err := f.svc.Filters(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFilters(), stored)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, "nope", "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.svc.Reset(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.svc.GetSessionTimeline(ctx, "nope", 0)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.svc.SetCategory(ctx, "nope", "Electronics")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = f.svc.Subscribe(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSubscribeReceivesEventsInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	events, cancel, err := f.svc.Subscribe(ctx, f.id)
	require.NoError(t, err)
	defer cancel()

	_, err = f.svc.SubmitUtterance(ctx, f.id, "hello")
	require.NoError(t, err)
	f.clock.Advance(conversation.DefaultReplyDelay)
	_, err = f.svc.SetInStockOnly(ctx, f.id, true)
	require.NoError(t, err)
	_, err = f.svc.Reset(ctx, f.id)
	require.NoError(t, err)

	var got []conversation.EventType
	for len(got) < 6 {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
			if ev.Type == conversation.EventMessage && ev.Message.Author == domain.RoleAssistant {
				assert.Equal(t, intent.GreetingText, ev.Message.Text)
			}
		case <-time.After(time.Second):
			require.FailNow(t, "missing events", "got %v", got)
		}
	}

	assert.Equal(t, []conversation.EventType{
		conversation.EventMessage,
		conversation.EventPending,
		conversation.EventMessage,
		conversation.EventPending,
		conversation.EventFilters,
		conversation.EventReset,
	}, got)
}

func TestSubscriptionClosedByCancel(t *testing.T) {
	f := newFixture(t, conversation.DefaultOptions())

	events, cancel, err := f.svc.Subscribe(context.Background(), f.id)
	require.NoError(t, err)

	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
}

func TestWatchSnapshotThenEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	_, err := f.svc.SubmitUtterance(ctx, f.id, "watch")
	require.NoError(t, err)

	tl, events, cancel, err := f.svc.Watch(ctx, f.id)
	require.NoError(t, err)
	defer cancel()

	require.Len(t, tl.Messages, 2)
	assert.True(t, tl.Pending)
	assert.Empty(t, events, "events before the snapshot must not be replayed")

	f.clock.Advance(conversation.DefaultReplyDelay)

	ev := <-events
	assert.Equal(t, conversation.EventMessage, ev.Type)
	assert.Equal(t, domain.RoleAssistant, ev.Message.Author)
	ev = <-events
	assert.Equal(t, conversation.EventPending, ev.Type)
	assert.False(t, ev.Pending)

	_, _, _, err = f.svc.Watch(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestClosedServiceRejectsNewWork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, conversation.DefaultOptions())

	f.svc.Close()

	msg, err := f.svc.SubmitUtterance(ctx, f.id, "headphones")
	assert.ErrorIs(t, err, conversation.ErrClosed)
	assert.Nil(t, msg)
	assert.Zero(t, f.clock.Pending())
	assert.False(t, f.svc.Pending(f.id))

	tl := f.timeline(t)
	assert.Len(t, tl.Messages, 1)

	_, _, err = f.svc.StartSession(ctx)
	assert.ErrorIs(t, err, conversation.ErrClosed)
}
