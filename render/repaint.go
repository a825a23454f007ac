package render

// RepaintSignal is the edge-triggered wakeup named in spec.md §6
// ("notify-render-repaint... spurious signals are harmless") and given a
// concrete shape in SPEC_FULL.md §12: a buffered channel of capacity one,
// written to with a non-blocking send. The bitmap cache's worker completion
// callback calls Notify; the game loop calls Drain once per frame. Neither
// side ever blocks on the other.
type RepaintSignal struct {
	ch chan struct{}
}

// NewRepaintSignal creates a ready-to-use signal.
func NewRepaintSignal() *RepaintSignal {
	return &RepaintSignal{ch: make(chan struct{}, 1)}
}

// Notify marks a repaint as pending. A pending repaint already queued is
// left as-is: this implements bitmapcache.RepaintNotifier.
func (r *RepaintSignal) Notify() {
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// Drain reports whether a repaint was signaled since the last Drain call,
// consuming the signal if so.
func (r *RepaintSignal) Drain() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}
