package dashboard

import (
	"context"
	"fmt"

	"rfid-console/internal/domain"
)

// action describes what a confirmed destructive request does.
type action struct {
	call     func(ctx context.Context, id int64) error
	success  string
	fallback string
	refresh  func()
}

func (r *Reducer) actionFor(k ConfirmKind) action {
	switch k {
	case ConfirmDeleteProduct:
		return action{
			call:     r.api.DeleteProduct,
			success:  "product deleted",
			fallback: "could not delete product",
			refresh:  func() { r.loadProducts(); r.loadStats() },
		}
	case ConfirmDeleteShelf:
		return action{
			call:     r.api.DeleteShelf,
			success:  "shelf deleted",
			fallback: "could not delete shelf",
			refresh:  r.loadShelves,
		}
	case ConfirmDeleteEvent:
		return action{
			call:     r.api.DeleteEvent,
			success:  "event deleted",
			fallback: "could not delete event",
			refresh:  func() { r.loadEvents(); r.loadStats() },
		}
	default:
		return action{
			call:     r.api.ResolveAlert,
			success:  "alert resolved",
			fallback: "could not resolve alert",
			refresh:  r.loadAlerts,
		}
	}
}

// RequestDeleteProduct asks the operator to confirm deleting a product.
func (r *Reducer) RequestDeleteProduct(id int64, name string) {
	r.request(ConfirmDeleteProduct, id, fmt.Sprintf("delete product %q?", name))
}

// RequestDeleteShelf asks the operator to confirm deleting a shelf.
func (r *Reducer) RequestDeleteShelf(id int64, name string) {
	r.request(ConfirmDeleteShelf, id, fmt.Sprintf("delete shelf %q?", name))
}

// RequestDeleteEvent asks the operator to confirm deleting an RFID event.
func (r *Reducer) RequestDeleteEvent(id int64) {
	r.request(ConfirmDeleteEvent, id, "delete this event?")
}

// RequestResolveAlert asks the operator to confirm resolving an alert.
func (r *Reducer) RequestResolveAlert(id int64, shelfName string) {
	r.request(ConfirmResolveAlert, id, fmt.Sprintf("mark alert %q as resolved?", shelfName))
}

func (r *Reducer) request(k ConfirmKind, id int64, prompt string) {
	r.exec(func() {
		r.pending = &Confirmation{ID: r.newID(), Kind: k, TargetID: id, Prompt: prompt}
		r.changed(CellConfirm)
	})
}

// Cancel drops the pending confirmation.
func (r *Reducer) Cancel() {
	r.exec(func() {
		if r.pending != nil {
			r.pending = nil
			r.changed(CellConfirm)
		}
	})
}

// Confirm issues the pending request. Requests for different entities may
// run concurrently; a second request for an entity already in flight is
// refused with ErrBusy.
func (r *Reducer) Confirm() error {
	var err error
	r.exec(func() { err = r.confirm() })
	return err
}

func (r *Reducer) confirm() error {
	c := r.pending
	if c == nil {
		return domain.NewDomainError("Confirm", domain.ErrInvalidInput, "nothing to confirm")
	}
	r.pending = nil
	r.changed(CellConfirm)

	set := r.inflight[c.Kind]
	if set == nil {
		set = make(map[int64]struct{})
		r.inflight[c.Kind] = set
	}
	if _, busy := set[c.TargetID]; busy {
		return domain.NewDomainError("Confirm", domain.ErrBusy, fmt.Sprintf("%s %d already in progress", c.Kind, c.TargetID))
	}
	set[c.TargetID] = struct{}{}
	r.changed(CellBusy)

	act, kind, id := r.actionFor(c.Kind), c.Kind, c.TargetID
	r.spawn(func(ctx context.Context) error {
		return act.call(ctx, id)
	}, func(err error) {
		delete(r.inflight[kind], id)
		r.changed(CellBusy)
		if err != nil {
			r.logger.Warn("request failed", "action", kind, "id", id, "error", err)
			flash(r, &r.banner, CellBanner, Banner{Kind: BannerError, Text: domain.MessageOf(err, act.fallback)}, r.cfg.MessageClearDelay)
			return
		}
		flash(r, &r.banner, CellBanner, Banner{Kind: BannerSuccess, Text: act.success}, r.cfg.MessageClearDelay)
		act.refresh()
	})
	return nil
}
