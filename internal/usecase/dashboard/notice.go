package dashboard

import "time"

// notice is a slot holding at most one transient value and one clear timer.
// gen moves on every change so a clear that fired but is still queued on the
// loop can tell it is out of date.
type notice[T any] struct {
	value T
	set   bool
	gen   uint64
	stop  func() bool
}

func (n *notice[T]) get() (T, bool) { return n.value, n.set }

func (n *notice[T]) ptr() *T {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

func (n *notice[T]) show(v T) uint64 {
	n.cancel()
	n.value = v
	n.set = true
	n.gen++
	return n.gen
}

func (n *notice[T]) clear() {
	n.cancel()
	var zero T
	n.value = zero
	n.set = false
	n.gen++
}

func (n *notice[T]) cancel() {
	if n.stop != nil {
		n.stop()
		n.stop = nil
	}
}

// flash shows v in n and clears it after d unless something replaced it.
func flash[T any](r *Reducer, n *notice[T], cell Cell, v T, d time.Duration) {
	gen := n.show(v)
	n.stop = r.after(d, func() {
		if n.gen != gen {
			return
		}
		n.stop = nil
		n.clear()
		r.changed(cell)
	})
	r.changed(cell)
}

// hold shows v in n until something replaces or clears it.
func hold[T any](r *Reducer, n *notice[T], cell Cell, v T) {
	n.show(v)
	r.changed(cell)
}

// drop clears n, reporting the change only if it held something.
func drop[T any](r *Reducer, n *notice[T], cell Cell) {
	wasSet := n.set
	n.clear()
	if wasSet {
		r.changed(cell)
	}
}
