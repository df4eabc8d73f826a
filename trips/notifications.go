/*
notifications.go - Notification feed: push reducer and background watcher

PURPOSE:
  Notifications are the one resource that arrives outside the fetch
  lifecycle: the watcher polls the feed and PUSHES new entries to the
  front of the cache without replacing the listed window. The push is a
  custom action handled by this package's extra reducer; the generic
  lifecycle (list replaces, item upserts) is untouched.

DESIGN:
  - Runs a background goroutine with a configurable poll interval
  - Remembers the newest id it has seen; only newer entries are pushed
  - The first poll only primes the high-water mark, so a fresh session
    does not replay the whole feed as "new"

USAGE:
  watcher := trips.NewWatcher(svc)
  watcher.Start()
  // ... on teardown
  watcher.Stop()

SEE ALSO:
  - generic/reducer.go: Extra reducer dispatch
  - api/handlers.go: The notifications endpoints
*/
package trips

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/voyagehq/quote-engine/client"
	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// CUSTOM ACTIONS
// =============================================================================

const actionPushNotification = "notifications/push"

// notificationReducer handles the push action; everything else falls
// through untouched.
func notificationReducer(s generic.State[Notification], a generic.Action[Notification]) generic.State[Notification] {
	if a.Kind == generic.ActionCustom && a.Name == actionPushNotification {
		if n, ok := a.Payload.(Notification); ok {
			s.Cache = s.Cache.Prepend(n)
		}
	}
	return s
}

// PushNotification prepends a freshly arrived notification.
func (s *Service) PushNotification(n Notification) {
	s.Notifications.DispatchCustom(actionPushNotification, n)
}

// UnreadCount counts cached notifications without a read timestamp.
func (s *Service) UnreadCount() int {
	count := 0
	for _, n := range s.Notifications.View().Items {
		if n.Unread() {
			count++
		}
	}
	return count
}

// LoadNotifications fetches one page of the feed.
func (s *Service) LoadNotifications(ctx context.Context, page int) error {
	return s.Notifications.FetchList(ctx, func(ctx context.Context) (generic.Page[Notification], error) {
		return client.List[Notification](ctx, s.client, "/notifications", url.Values{"page": {fmt.Sprint(page)}})
	})
}

// MarkRead marks one notification read on the backend and upserts the
// stored copy.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	var envelope struct {
		Data Notification `json:"data"`
	}
	err := s.client.Do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/read", id), nil, nil, &envelope)
	if err != nil {
		return err
	}
	s.Notifications.Dispatch(generic.Action[Notification]{Kind: generic.ActionItemSuccess, Item: envelope.Data})
	return nil
}

// =============================================================================
// WATCHER - feed polling
// =============================================================================

// Watcher polls the notification feed and pushes new entries into the
// store. One watcher per session.
type Watcher struct {
	Service      *Service
	PollInterval time.Duration

	mu       sync.Mutex
	lastSeen int64
	primed   bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewWatcher(svc *Service) *Watcher {
	return &Watcher{
		Service:      svc,
		PollInterval: 30 * time.Second,
	}
}

// Start launches the polling goroutine. Idempotent while running.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.wg.Add(1)
	go w.run(w.stop)
}

// Stop halts polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	w.wg.Wait()
}

func (w *Watcher) run(stop chan struct{}) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.Poll(context.Background()); err != nil && !generic.IsStale(err) {
				log.Printf("notification poll failed: %v", err)
			}
		}
	}
}

// Poll fetches the newest page of the feed once and pushes entries newer
// than the high-water mark. Exported so tests and manual refresh buttons
// can poll without the ticker.
func (w *Watcher) Poll(ctx context.Context) error {
	page, err := client.List[Notification](ctx, w.Service.client, "/notifications", url.Values{"page": {"1"}})
	if err != nil {
		return err
	}

	w.mu.Lock()
	primed := w.primed
	last := w.lastSeen
	for _, n := range page.Data {
		if n.ID > w.lastSeen {
			w.lastSeen = n.ID
		}
	}
	w.primed = true
	w.mu.Unlock()

	if !primed {
		return nil
	}
	// Feed is newest-first; push oldest new entry first so the newest
	// ends up at the front of the cache.
	for i := len(page.Data) - 1; i >= 0; i-- {
		if page.Data[i].ID > last {
			w.Service.PushNotification(page.Data[i])
		}
	}
	return nil
}
