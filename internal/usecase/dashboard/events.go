package dashboard

import (
	"fmt"
	"slices"

	"rfid-console/internal/domain"
)

func (r *Reducer) handleRfid(m domain.RfidMessage) {
	r.logger.Debug("rfid event", "type", m.Type, "tag", m.RfidTag, "location", m.Location)

	if m.Type == domain.RfidNewProduct && m.Location == domain.LocationStock {
		r.openProductForm(ModeNewFromEvent, 0, m.Location, ProductFields{
			RfidTag:    m.RfidTag,
			UnitWeight: minUnitWeight,
		})
	}
	r.loadEvents()
	if m.WeightAffecting() {
		r.loadStats()
		r.loadShelves()
	}
}

func (r *Reducer) handleAlert(a domain.Alert) {
	r.logger.Debug("alert event", "id", a.ID, "type", a.AlertType, "shelf", a.ShelfName)

	// A re-pushed alert moves to the front without being counted twice.
	if i := slices.IndexFunc(r.st.Alerts, func(x domain.Alert) bool { return x.ID == a.ID }); i >= 0 {
		r.st.Alerts = slices.Delete(slices.Clone(r.st.Alerts), i, i+1)
	} else {
		r.st.OpenAlerts++
	}
	r.st.Alerts = append([]domain.Alert{a}, r.st.Alerts...)
	r.changed(CellAlerts)

	r.showToast(a)
	if a.InvalidatesShelves() {
		r.loadShelves()
	}
}

func toastMessage(a domain.Alert) string {
	if a.AlertType == domain.AlertLowWeight {
		return fmt.Sprintf("refill shelf %s", a.ShelfName)
	}
	return fmt.Sprintf("new alert: %s", a.AlertType)
}

func (r *Reducer) showToast(a domain.Alert) {
	flash(r, &r.toast, CellToast, Toast{
		ID:      r.newID(),
		Message: toastMessage(a),
		Alert:   a,
	}, r.cfg.ToastDuration)
	r.metrics.ToastShown()
}

// DismissToast hides the toast and cancels its timer.
func (r *Reducer) DismissToast() {
	r.exec(func() { drop(r, &r.toast, CellToast) })
}

// OpenAlertsFromToast dismisses the toast and switches to the alerts view.
func (r *Reducer) OpenAlertsFromToast() {
	r.exec(func() {
		drop(r, &r.toast, CellToast)
		r.selectView(ViewAlerts)
	})
}
