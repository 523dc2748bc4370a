// Package watch periodically re-resolves a watchlist and fans the resulting
// snapshots out to subscribers such as the websocket hub and the CLI.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seenimoa/marketdata/pkg/models"
)

// DefaultSchedule refreshes the watchlist once a minute.
const DefaultSchedule = "@every 1m"

// Resolver resolves a batch of symbols in input order.
type Resolver interface {
	CompareSnapshots(ctx context.Context, symbols []string) []*models.Snapshot
}

// Update is one refresh of the whole watchlist.
type Update struct {
	At        time.Time          `json:"at"`
	Snapshots []*models.Snapshot `json:"snapshots"`
}

// Watcher runs scheduled watchlist refreshes.
type Watcher struct {
	resolver Resolver
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	symbols []string
	subs    map[int]chan Update
	nextID  int
	ctx     context.Context
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithClock sets the clock used to stamp updates.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// New creates a Watcher for symbols. Call Schedule and Start to run it.
func New(r Resolver, symbols []string, opts ...Option) *Watcher {
	w := &Watcher{
		resolver: r,
		logger:   slog.Default(),
		now:      time.Now,
		symbols:  Dedupe(symbols),
		subs:     make(map[int]chan Update),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(w)
	}

	logger := cronLogger{w.logger}
	w.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return w
}

// Schedule registers the refresh job. spec is a standard five-field cron
// expression or a descriptor such as "@every 30s".
func (w *Watcher) Schedule(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := w.cron.AddFunc(spec, func() { w.refresh(w.context()) }); err != nil {
		return fmt.Errorf("schedule watchlist refresh %q: %w", spec, err)
	}
	return nil
}

// Start starts the scheduler. Scheduled refreshes use ctx.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	w.cron.Start()
	w.logger.Info("watchlist refresher started", "symbols", len(w.Symbols()))
}

// Stop stops the scheduler, waits for a running refresh to finish and closes
// every subscription.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()

	w.mu.Lock()
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
	w.mu.Unlock()
	w.logger.Info("watchlist refresher stopped")
}

// RunOnce refreshes the watchlist immediately and publishes the result.
func (w *Watcher) RunOnce(ctx context.Context) Update {
	return w.refresh(ctx)
}

// Symbols returns a copy of the current watchlist.
func (w *Watcher) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.symbols...)
}

// SetSymbols replaces the watchlist; the next refresh uses it.
func (w *Watcher) SetSymbols(symbols []string) {
	w.mu.Lock()
	w.symbols = Dedupe(symbols)
	w.mu.Unlock()
}

// Subscribe returns a channel receiving every update and a function that
// ends the subscription. Updates are dropped for a subscriber whose buffer
// is full.
func (w *Watcher) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = ch
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if _, ok := w.subs[id]; ok {
				close(ch)
				delete(w.subs, id)
			}
		})
	}
}

func (w *Watcher) refresh(ctx context.Context) Update {
	symbols := w.Symbols()
	start := time.Now()

	update := Update{At: w.now(), Snapshots: []*models.Snapshot{}}
	if len(symbols) > 0 {
		update.Snapshots = w.resolver.CompareSnapshots(ctx, symbols)
	}

	live := 0
	for _, s := range update.Snapshots {
		if s.DataQuality == models.QualityLive {
			live++
		}
	}
	w.logger.Info("watchlist refreshed",
		"symbols", len(symbols), "live", live, "latency", time.Since(start))

	w.publish(update)
	return update
}

func (w *Watcher) publish(u Update) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, ch := range w.subs {
		select {
		case ch <- u:
		default:
			w.logger.Warn("watch subscriber lagging, update dropped", "subscriber", id)
		}
	}
}

func (w *Watcher) context() context.Context {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ctx
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if err == nil {
		err = errors.New("unknown")
	}
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
