package console

import (
	"context"

	"github.com/Togather-Foundation/promotions-console/internal/promoapi"
)

// Outcome is the result of one operation as the user sees it.
type Outcome struct {
	Operation promoapi.Operation
	// Flash is the message the operation put in the flash slot.
	Flash string
	// Err is the failure, or nil on success.
	Err error
}

// Succeeded reports whether the operation succeeded.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Pending is an operation that has been dispatched. The view state has been
// updated by the time Done is closed.
type Pending struct {
	op      promoapi.Operation
	done    chan struct{}
	outcome Outcome
}

func newPending(op promoapi.Operation) *Pending {
	return &Pending{op: op, done: make(chan struct{})}
}

func (p *Pending) resolve() {
	close(p.done)
}

// Operation returns the dispatched operation.
func (p *Pending) Operation() promoapi.Operation {
	return p.op
}

// Done is closed when the operation has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation completes or ctx is done. Giving up on
// the wait does not cancel the operation.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
