// Package dashboard is the console's state reducer. It owns every piece of
// dashboard state and mutates it on a single goroutine: public operations,
// push events, REST completions and timers are all serialized onto that loop.
package dashboard

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/metrics"
	"rfid-console/internal/usecase/stream"
)

const opQueueSize = 64

// Reducer owns the dashboard state.
type Reducer struct {
	api     domain.InventoryAPI
	cfg     config.DashboardConfig
	sched   Scheduler
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string

	ops     chan func()
	done    chan struct{}
	started atomic.Bool
	ctx     context.Context

	obsMu     sync.Mutex
	observers []func(Cell)

	// Loop-owned below.
	st        State
	loading   map[Cell]bool
	gens      map[Cell]uint64
	inflight  map[ConfirmKind]map[int64]struct{}
	pending   *Confirmation
	cart      Cart
	searching bool
	selling   bool
	searchGen uint64

	productFormGen uint64
	shelfFormGen   uint64

	banner   notice[Banner]
	toast    notice[Toast]
	saleInfo notice[string]
	saleErr  notice[string]
}

// Option customises a Reducer.
type Option func(*Reducer)

// WithScheduler replaces the wall-clock timer source.
func WithScheduler(s Scheduler) Option {
	return func(r *Reducer) { r.sched = s }
}

// WithMetrics counts toasts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reducer) { r.metrics = m }
}

// WithIDGenerator replaces the ULID source for toast and confirmation IDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reducer) { r.newID = fn }
}

// New creates a Reducer. Call Start before using it from several goroutines.
func New(api domain.InventoryAPI, cfg config.DashboardConfig, logger *slog.Logger, opts ...Option) *Reducer {
	r := &Reducer{
		api:      api,
		cfg:      cfg,
		sched:    SystemScheduler{},
		logger:   logger,
		newID:    func() string { return ulid.Make().String() },
		ops:      make(chan func(), opQueueSize),
		done:     make(chan struct{}),
		ctx:      context.Background(),
		loading:  make(map[Cell]bool),
		gens:     make(map[Cell]uint64),
		inflight: make(map[ConfirmKind]map[int64]struct{}),
	}
	r.st.View = ViewHome
	r.st.ProductForm.Phase = PhaseClosed
	r.st.ShelfForm.Phase = PhaseClosed
	r.st.Sale.Quantity = 1
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start runs the loop until ctx ends and issues the initial load.
func (r *Reducer) Start(ctx context.Context) {
	if r.started.Swap(true) {
		return
	}
	r.ctx = ctx
	go r.loop(ctx)
	r.post(r.refresh)
}

// Done is closed once the loop has exited.
func (r *Reducer) Done() <-chan struct{} { return r.done }

func (r *Reducer) loop(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case fn := <-r.ops:
			fn()
		case <-ctx.Done():
			r.banner.cancel()
			r.toast.cancel()
			r.saleInfo.cancel()
			r.saleErr.cancel()
			return
		}
	}
}

// post queues fn on the loop without waiting.
func (r *Reducer) post(fn func()) {
	select {
	case r.ops <- fn:
	case <-r.done:
	}
}

// exec runs fn on the loop and waits for it. Before Start it runs inline.
func (r *Reducer) exec(fn func()) {
	if !r.started.Load() {
		fn()
		return
	}
	ran := make(chan struct{})
	select {
	case r.ops <- func() { fn(); close(ran) }:
	case <-r.done:
		return
	}
	select {
	case <-ran:
	case <-r.done:
	}
}

// after schedules fn on the loop after d.
func (r *Reducer) after(d time.Duration, fn func()) func() bool {
	return r.sched.AfterFunc(d, func() { r.post(fn) })
}

// spawn runs call off the loop and hands its error back to it.
func (r *Reducer) spawn(call func(ctx context.Context) error, then func(err error)) {
	ctx := r.ctx
	go func() {
		err := call(ctx)
		r.post(func() { then(err) })
	}()
}

// OnChange registers fn, called on the loop with the name of every cell that
// changed. fn must not block or call back into the Reducer synchronously.
func (r *Reducer) OnChange(fn func(Cell)) {
	r.obsMu.Lock()
	r.observers = append(r.observers, fn)
	r.obsMu.Unlock()
}

func (r *Reducer) changed(c Cell) {
	r.obsMu.Lock()
	observers := r.observers
	r.obsMu.Unlock()
	for _, fn := range observers {
		fn(c)
	}
}

// Attach feeds the push streams into the loop until ctx ends.
func (r *Reducer) Attach(ctx context.Context, rfid *stream.Stream[domain.RfidMessage], alerts *stream.Stream[domain.Alert]) {
	rfid.SubscribeContext(ctx, func(_ context.Context, m domain.RfidMessage) {
		r.post(func() { r.handleRfid(m) })
	})
	alerts.SubscribeContext(ctx, func(_ context.Context, a domain.Alert) {
		r.post(func() { r.handleAlert(a) })
	})
}

// Snapshot returns a copy of every cell that shares nothing mutable with the
// Reducer.
func (r *Reducer) Snapshot() State {
	var s State
	r.exec(func() { s = r.snapshot() })
	return s
}

func (r *Reducer) snapshot() State {
	s := r.st
	if r.st.Stats != nil {
		stats := *r.st.Stats
		s.Stats = &stats
	}
	s.Events = slices.Clone(r.st.Events)
	s.StoreStock = slices.Clone(r.st.StoreStock)
	s.Products = slices.Clone(r.st.Products)
	s.Shelves = slices.Clone(r.st.Shelves)
	s.Alerts = slices.Clone(r.st.Alerts)
	s.ProductForm.Errors = maps.Clone(r.st.ProductForm.Errors)
	s.ShelfForm.Errors = maps.Clone(r.st.ShelfForm.Errors)

	s.Banner = r.banner.ptr()
	s.Toast = r.toast.ptr()
	if r.pending != nil {
		c := *r.pending
		s.Confirm = &c
	}

	if r.st.Sale.Found != nil {
		p := *r.st.Sale.Found
		s.Sale.Found = &p
	}
	s.Sale.Cart = r.cart.Lines()
	s.Sale.Total = r.cart.Total()
	s.Sale.Info, _ = r.saleInfo.get()
	s.Sale.Error, _ = r.saleErr.get()

	s.Busy = Busy{
		Stats:            r.loading[CellStats],
		Events:           r.loading[CellEvents],
		StoreStock:       r.loading[CellStoreStock],
		Products:         r.loading[CellProducts],
		Shelves:          r.loading[CellShelves],
		Alerts:           r.loading[CellAlerts],
		SearchingProduct: r.searching,
		ProcessingSale:   r.selling,
		DeletingProducts: r.inflightIDs(ConfirmDeleteProduct),
		DeletingShelves:  r.inflightIDs(ConfirmDeleteShelf),
		DeletingEvents:   r.inflightIDs(ConfirmDeleteEvent),
		ResolvingAlerts:  r.inflightIDs(ConfirmResolveAlert),
	}
	return s
}

func (r *Reducer) inflightIDs(k ConfirmKind) []int64 {
	set := r.inflight[k]
	if len(set) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}
