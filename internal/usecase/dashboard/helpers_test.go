package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
	"rfid-console/internal/usecase/stream"
)

// fakeAPI is an in-memory InventoryAPI. A call named "Op" waits on
// gates["Op"], gates["Op/<id>"] or gates["Op#<n>"] (n-th call) when present.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
	errs  map[string]error

	stats      domain.DashboardStats
	events     []domain.RfidEventWithProduct
	eventsFn   func(call int) []domain.RfidEventWithProduct
	storeStock []domain.StoreStockWithDetails
	products   []domain.ProductWithStock
	shelves    []domain.Shelf
	alerts     []domain.Alert
	byBarcode  map[string]domain.ProductWithStock

	limits   []int
	sales    [][]domain.SaleItem
	created  []domain.ProductRegisterRequest
	shelfReq []domain.ShelfRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:     make(map[string]int),
		gates:     make(map[string]chan struct{}),
		errs:      make(map[string]error),
		byBarcode: make(map[string]domain.ProductWithStock),
	}
}

func (f *fakeAPI) enter(ctx context.Context, op string, id any) (int, error) {
	f.mu.Lock()
	f.calls[op]++
	n := f.calls[op]
	var gates []chan struct{}
	for _, key := range []string{op, fmt.Sprintf("%s/%v", op, id), fmt.Sprintf("%s#%d", op, n)} {
		if g, ok := f.gates[key]; ok {
			gates = append(gates, g)
		}
	}
	f.mu.Unlock()

	for _, g := range gates {
		select {
		case <-g:
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[fmt.Sprintf("%s/%v", op, id)]; err != nil {
		return n, err
	}
	return n, f.errs[op]
}

func (f *fakeAPI) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[key] = g
	return g
}

func (f *fakeAPI) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
	f.limits = nil
}

func (f *fakeAPI) Stats(ctx context.Context) (domain.DashboardStats, error) {
	_, err := f.enter(ctx, "Stats", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, err
}

func (f *fakeAPI) RecentEvents(ctx context.Context, limit int) ([]domain.RfidEventWithProduct, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.mu.Unlock()
	n, err := f.enter(ctx, "RecentEvents", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventsFn != nil {
		return f.eventsFn(n), err
	}
	return slices.Clone(f.events), err
}

func (f *fakeAPI) DeleteEvent(ctx context.Context, id int64) error {
	_, err := f.enter(ctx, "DeleteEvent", id)
	return err
}

func (f *fakeAPI) StoreStock(ctx context.Context) ([]domain.StoreStockWithDetails, error) {
	_, err := f.enter(ctx, "StoreStock", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.storeStock), err
}

func (f *fakeAPI) ProductsWithStock(ctx context.Context) ([]domain.ProductWithStock, error) {
	_, err := f.enter(ctx, "ProductsWithStock", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.products), err
}

func (f *fakeAPI) ProductByBarcode(ctx context.Context, barcode string) (domain.ProductWithStock, error) {
	if _, err := f.enter(ctx, "ProductByBarcode", barcode); err != nil {
		return domain.ProductWithStock{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byBarcode[barcode]
	if !ok {
		return domain.ProductWithStock{}, &domain.APIError{Op: "Backend.ProductByBarcode", Status: 404}
	}
	return p, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, req domain.ProductRegisterRequest) (domain.Product, error) {
	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()
	_, err := f.enter(ctx, "CreateProduct", nil)
	return domain.Product{ID: 99, Name: req.Name}, err
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, req domain.ProductRegisterRequest) (domain.Product, error) {
	_, err := f.enter(ctx, "UpdateProduct", id)
	return domain.Product{ID: id, Name: req.Name}, err
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error {
	_, err := f.enter(ctx, "DeleteProduct", id)
	return err
}

func (f *fakeAPI) Shelves(ctx context.Context) ([]domain.Shelf, error) {
	_, err := f.enter(ctx, "Shelves", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.shelves), err
}

func (f *fakeAPI) CreateShelf(ctx context.Context, req domain.ShelfRequest) (domain.Shelf, error) {
	f.mu.Lock()
	f.shelfReq = append(f.shelfReq, req)
	f.mu.Unlock()
	_, err := f.enter(ctx, "CreateShelf", nil)
	return domain.Shelf{ID: 1, Name: req.Name}, err
}

func (f *fakeAPI) UpdateShelf(ctx context.Context, id int64, req domain.ShelfRequest) (domain.Shelf, error) {
	_, err := f.enter(ctx, "UpdateShelf", id)
	return domain.Shelf{ID: id, Name: req.Name}, err
}

func (f *fakeAPI) DeleteShelf(ctx context.Context, id int64) error {
	_, err := f.enter(ctx, "DeleteShelf", id)
	return err
}

func (f *fakeAPI) OpenAlerts(ctx context.Context) ([]domain.Alert, error) {
	_, err := f.enter(ctx, "OpenAlerts", nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.alerts), err
}

func (f *fakeAPI) ResolveAlert(ctx context.Context, id int64) error {
	_, err := f.enter(ctx, "ResolveAlert", id)
	return err
}

func (f *fakeAPI) RecordSales(ctx context.Context, items []domain.SaleItem) error {
	f.mu.Lock()
	f.sales = append(f.sales, items)
	f.mu.Unlock()
	_, err := f.enter(ctx, "RecordSales", nil)
	return err
}

// manualScheduler fires timers only when Advance moves its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at   time.Duration
	f    func()
	done bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.done {
			return false
		}
		t.done = true
		return true
	}
}

// Advance moves the clock and runs every timer that came due, in order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.done && t.at <= s.now {
			t.done = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *manualTimer) int { return int(a.at - b.at) })
	for _, t := range due {
		t.f()
	}
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type harness struct {
	r      *Reducer
	api    *fakeAPI
	sched  *manualScheduler
	rfid   *stream.Stream[domain.RfidMessage]
	alerts *stream.Stream[domain.Alert]
	ctx    context.Context
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	sched := &manualScheduler{}
	seq := 0
	r := New(api, config.Defaults().Dashboard, logger.Discard(),
		WithScheduler(sched),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})

	h := &harness{
		r:      r,
		api:    api,
		sched:  sched,
		rfid:   stream.New[domain.RfidMessage]("rfid", logger.Discard(), nil),
		alerts: stream.New[domain.Alert]("alerts", logger.Discard(), nil),
		ctx:    ctx,
	}
	r.Attach(ctx, h.rfid, h.alerts)
	r.Start(ctx)
	h.settle(t)
	api.resetCalls()
	return h
}

// settle waits until no load, lookup, sale or deletion is in flight.
func (h *harness) settle(t *testing.T) State {
	t.Helper()
	var s State
	require.Eventually(t, func() bool {
		s = h.r.Snapshot()
		return idle(s.Busy)
	}, 2*time.Second, 2*time.Millisecond)
	return s
}

func (h *harness) waitFor(t *testing.T, cond func(State) bool) State {
	t.Helper()
	var s State
	require.Eventually(t, func() bool {
		s = h.r.Snapshot()
		return cond(s)
	}, 2*time.Second, 2*time.Millisecond)
	return s
}

// advance fires due timers and waits for their callbacks to run on the loop.
func (h *harness) advance(d time.Duration) State {
	h.sched.Advance(d)
	return h.r.Snapshot()
}

func idle(b Busy) bool {
	return !b.Stats && !b.Events && !b.StoreStock && !b.Products && !b.Shelves && !b.Alerts &&
		!b.SearchingProduct && !b.ProcessingSale &&
		len(b.DeletingProducts) == 0 && len(b.DeletingShelves) == 0 &&
		len(b.DeletingEvents) == 0 && len(b.ResolvingAlerts) == 0
}

func product(id int64, name string, stock int) domain.ProductWithStock {
	return domain.ProductWithStock{
		Product:       domain.Product{ID: id, Name: name, Barcode: fmt.Sprintf("BC%d", id)},
		StockQuantity: stock,
	}
}
