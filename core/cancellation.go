package orchestration

import "sync/atomic"

// CancellationToken is shared by one playback pass and the editor it drives.
// Once cancelled it stays cancelled; a new pass gets a new token.
type CancellationToken struct {
	cancelled atomic.Bool
}

func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

func (t *CancellationToken) RequestCancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
}

// IsCancelled reports whether cancel was requested. A nil token is never
// cancelled.
func (t *CancellationToken) IsCancelled() bool {
	return t != nil && t.cancelled.Load()
}
