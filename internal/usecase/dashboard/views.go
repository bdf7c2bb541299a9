package dashboard

import (
	"fmt"

	"rfid-console/internal/domain"
)

// SelectView switches view and fetches only what that view shows.
func (r *Reducer) SelectView(v View) error {
	if _, ok := ParseView(string(v)); !ok {
		return domain.NewDomainError("SelectView", domain.ErrInvalidInput, fmt.Sprintf("unknown view %q", v))
	}
	r.exec(func() { r.selectView(v) })
	return nil
}

// GoHome returns to the home view without fetching.
func (r *Reducer) GoHome() {
	r.exec(func() { r.setView(ViewHome) })
}

func (r *Reducer) setView(v View) {
	if r.st.View != v {
		r.st.View = v
		r.changed(CellView)
	}
}

func (r *Reducer) selectView(v View) {
	r.setView(v)
	r.prefetch(v)
	if v == ViewSales {
		r.resetSale()
	}
}

// prefetch issues the loads view v depends on.
func (r *Reducer) prefetch(v View) {
	switch v {
	case ViewHome:
	case ViewStock:
		r.loadEventsAt(domain.LocationStock)
	case ViewStore:
		r.loadStoreStock()
	default:
		r.loadRecentEvents()
	}
	switch v {
	case ViewProducts:
		r.loadProducts()
	case ViewShelves:
		r.loadShelves()
	case ViewAlerts:
		r.loadAlerts()
	}
}
