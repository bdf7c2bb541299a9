package dashboard

import (
	"context"

	"rfid-console/internal/domain"
)

// load fetches one projection. Only the response to the latest request for a
// cell is applied; older ones are dropped and leave the loading flag alone.
// Failures are logged and keep the previous value.
func load[T any](r *Reducer, cell Cell, fetch func(ctx context.Context) (T, error), apply func(T)) {
	r.gens[cell]++
	gen := r.gens[cell]
	if !r.loading[cell] {
		r.loading[cell] = true
		r.changed(CellBusy)
	}

	var v T
	r.spawn(func(ctx context.Context) error {
		var err error
		v, err = fetch(ctx)
		return err
	}, func(err error) {
		if r.gens[cell] != gen {
			r.logger.Debug("stale response dropped", "cell", cell)
			return
		}
		r.loading[cell] = false
		r.changed(CellBusy)
		if err != nil {
			r.logger.Warn("load failed", "cell", cell, "error", err)
			return
		}
		apply(v)
		r.changed(cell)
	})
}

func (r *Reducer) loadStats() {
	load(r, CellStats, r.api.Stats, func(s domain.DashboardStats) {
		r.st.Stats = &s
	})
}

func (r *Reducer) loadRecentEvents() {
	limit := r.cfg.RecentEventsLimit
	load(r, CellEvents, func(ctx context.Context) ([]domain.RfidEventWithProduct, error) {
		return r.api.RecentEvents(ctx, limit)
	}, func(events []domain.RfidEventWithProduct) {
		r.st.Events = events
	})
}

// loadEventsAt fetches a wider window and keeps only events seen at loc.
func (r *Reducer) loadEventsAt(loc domain.Location) {
	limit := r.cfg.LocationEventsLimit
	load(r, CellEvents, func(ctx context.Context) ([]domain.RfidEventWithProduct, error) {
		events, err := r.api.RecentEvents(ctx, limit)
		if err != nil {
			return nil, err
		}
		filtered := make([]domain.RfidEventWithProduct, 0, len(events))
		for _, e := range events {
			if e.Location == loc {
				filtered = append(filtered, e)
			}
		}
		return filtered, nil
	}, func(events []domain.RfidEventWithProduct) {
		r.st.Events = events
	})
}

// loadEvents refetches the events list the current view shows.
func (r *Reducer) loadEvents() {
	switch r.st.View {
	case ViewStock:
		r.loadEventsAt(domain.LocationStock)
	case ViewStore:
		r.loadEventsAt(domain.LocationStore)
	default:
		r.loadRecentEvents()
	}
}

func (r *Reducer) loadStoreStock() {
	load(r, CellStoreStock, r.api.StoreStock, func(s []domain.StoreStockWithDetails) {
		r.st.StoreStock = s
	})
}

func (r *Reducer) loadProducts() {
	load(r, CellProducts, r.api.ProductsWithStock, func(p []domain.ProductWithStock) {
		r.st.Products = p
	})
}

func (r *Reducer) loadShelves() {
	load(r, CellShelves, r.api.Shelves, func(s []domain.Shelf) {
		r.st.Shelves = s
	})
}

func (r *Reducer) loadAlerts() {
	load(r, CellAlerts, r.api.OpenAlerts, func(a []domain.Alert) {
		r.st.Alerts = a
		r.st.OpenAlerts = len(a)
	})
}

// Refresh reloads stats, the current events list and open alerts.
func (r *Reducer) Refresh() { r.exec(r.refresh) }

func (r *Reducer) refresh() {
	r.loadStats()
	r.loadEvents()
	r.loadAlerts()
}

// Reload is Refresh plus the list the current view displays.
func (r *Reducer) Reload() {
	r.exec(func() {
		r.refresh()
		switch r.st.View {
		case ViewStore:
			r.loadStoreStock()
		case ViewProducts:
			r.loadProducts()
		case ViewShelves:
			r.loadShelves()
		}
	})
}
