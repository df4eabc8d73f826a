package trips_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagehq/quote-engine/client"
	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/trips"
)

// =============================================================================
// PUSH REDUCER TESTS
// =============================================================================

func TestPushNotification_PrependsWithoutReplacing(t *testing.T) {
	// GIVEN: A listed notification window [5, 4]
	// WHEN: A new notification 6 is pushed
	// THEN: The cache reads [6, 5, 4]; nothing is replaced

	svc := trips.NewService(nil)
	svc.Notifications.Dispatch(generic.Action[trips.Notification]{
		Kind: generic.ActionListSuccess,
		Page: generic.Page[trips.Notification]{Data: []trips.Notification{
			{ID: 5, Message: "five"},
			{ID: 4, Message: "four"},
		}},
	})

	svc.PushNotification(trips.Notification{ID: 6, Message: "six"})

	items := svc.Notifications.View().Items
	require.Len(t, items, 3)
	assert.Equal(t, int64(6), items[0].ID)
	assert.Equal(t, int64(5), items[1].ID)
	assert.Equal(t, int64(4), items[2].ID)
}

func TestUnreadCount(t *testing.T) {
	now := time.Now()
	svc := trips.NewService(nil)
	svc.PushNotification(trips.Notification{ID: 1})
	svc.PushNotification(trips.Notification{ID: 2, ReadAt: &now})
	svc.PushNotification(trips.Notification{ID: 3})

	assert.Equal(t, 2, svc.UnreadCount())
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_Poll_PushesOnlyNewEntries(t *testing.T) {
	// GIVEN: A feed serving [2,1], later [4,3,2,1]
	// WHEN: Polling twice
	// THEN: The first poll only primes; the second pushes 3 then 4

	var mu sync.Mutex
	feed := []trips.Notification{{ID: 2}, {ID: 1}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": feed})
	}))
	defer srv.Close()

	svc := trips.NewService(client.New(srv.URL, nil))
	watcher := trips.NewWatcher(svc)
	ctx := context.Background()

	require.NoError(t, watcher.Poll(ctx))
	assert.Empty(t, svc.Notifications.View().Items, "first poll must only prime the high-water mark")

	mu.Lock()
	feed = []trips.Notification{{ID: 4}, {ID: 3}, {ID: 2}, {ID: 1}}
	mu.Unlock()

	require.NoError(t, watcher.Poll(ctx))
	items := svc.Notifications.View().Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(4), items[0].ID, "newest pushed entry ends up first")
	assert.Equal(t, int64(3), items[1].ID)

	// A third poll with no changes pushes nothing.
	require.NoError(t, watcher.Poll(ctx))
	assert.Len(t, svc.Notifications.View().Items, 2)
}
