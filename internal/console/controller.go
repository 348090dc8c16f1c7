// Package console drives the promotion form: it turns user actions into
// service calls and writes each result back into the shared view state.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/Togather-Foundation/promotions-console/internal/metrics"
	"github.com/Togather-Foundation/promotions-console/internal/promoapi"
	"github.com/Togather-Foundation/promotions-console/internal/view"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Flash messages shown on success.
const (
	MsgSuccess     = "Success"
	MsgDeleted     = "Promotion has been Deleted!"
	MsgActivated   = "Promotion has been activated!"
	MsgDeactivated = "Promotion has been deactivated!"
)

// ErrUnknownOperation is returned by Start for an operation name it does not know.
var ErrUnknownOperation = errors.New("unknown operation")

// Dispatcher performs the service calls. *promoapi.Client implements it.
type Dispatcher interface {
	Create(ctx context.Context, payload promotions.CreatePayload) (promotions.Promotion, error)
	Update(ctx context.Context, id string, payload promotions.UpdatePayload) (promotions.Promotion, error)
	Get(ctx context.Context, id string) (promotions.Promotion, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) (promotions.Promotion, error)
	Deactivate(ctx context.Context, id string) (promotions.Promotion, error)
	Search(ctx context.Context, filters promotions.Filters) ([]promotions.Promotion, error)
}

// Controller owns the view state. Operations run concurrently and are not
// queued: each completion overwrites the shared state, so the last one to
// finish wins.
type Controller struct {
	client Dispatcher
	logger zerolog.Logger

	mu    sync.Mutex
	state view.State

	inflight errgroup.Group
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller with an empty form.
func New(client Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// EditForm changes form fields the way a user typing into them would.
func (c *Controller) EditForm(edit func(*promotions.Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	edit(&c.state.Form)
}

// ClearForm empties every form field, including the ID.
func (c *Controller) ClearForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Reset()
}

// Wait blocks until every dispatched operation has completed.
func (c *Controller) Wait() {
	_ = c.inflight.Wait()
}

// Create creates a promotion from the form.
func (c *Controller) Create(ctx context.Context) *Pending {
	form := c.formSnapshot()
	return c.dispatch(ctx, promoapi.OpCreate, func(ctx context.Context) (result, error) {
		created, err := c.client.Create(ctx, form.CreatePayload())
		return result{entity: created}, err
	})
}

// Update saves the form over the promotion whose ID is in the form.
func (c *Controller) Update(ctx context.Context) *Pending {
	form := c.formSnapshot()
	return c.dispatch(ctx, promoapi.OpUpdate, func(ctx context.Context) (result, error) {
		updated, err := c.client.Update(ctx, form.ID, form.UpdatePayload())
		return result{entity: updated}, err
	})
}

// Retrieve loads the promotion whose ID is in the form.
func (c *Controller) Retrieve(ctx context.Context) *Pending {
	id := c.formSnapshot().ID
	return c.dispatch(ctx, promoapi.OpRetrieve, func(ctx context.Context) (result, error) {
		found, err := c.client.Get(ctx, id)
		return result{entity: found}, err
	})
}

// Delete deletes the promotion whose ID is in the form.
func (c *Controller) Delete(ctx context.Context) *Pending {
	id := c.formSnapshot().ID
	return c.dispatch(ctx, promoapi.OpDelete, func(ctx context.Context) (result, error) {
		return result{}, c.client.Delete(ctx, id)
	})
}

// Activate activates the promotion whose ID is in the form.
func (c *Controller) Activate(ctx context.Context) *Pending {
	id := c.formSnapshot().ID
	return c.dispatch(ctx, promoapi.OpActivate, func(ctx context.Context) (result, error) {
		activated, err := c.client.Activate(ctx, id)
		return result{entity: activated}, err
	})
}

// Deactivate deactivates the promotion whose ID is in the form.
func (c *Controller) Deactivate(ctx context.Context) *Pending {
	id := c.formSnapshot().ID
	return c.dispatch(ctx, promoapi.OpDeactivate, func(ctx context.Context) (result, error) {
		deactivated, err := c.client.Deactivate(ctx, id)
		return result{entity: deactivated}, err
	})
}

// Search lists promotions matching the form's title, type and active fields.
func (c *Controller) Search(ctx context.Context) *Pending {
	filters := c.formSnapshot().Filters()
	return c.dispatch(ctx, promoapi.OpSearch, func(ctx context.Context) (result, error) {
		found, err := c.client.Search(ctx, filters)
		return result{list: found}, err
	})
}

// Start dispatches the named operation.
func (c *Controller) Start(ctx context.Context, op promoapi.Operation) (*Pending, error) {
	switch op {
	case promoapi.OpCreate:
		return c.Create(ctx), nil
	case promoapi.OpUpdate:
		return c.Update(ctx), nil
	case promoapi.OpRetrieve:
		return c.Retrieve(ctx), nil
	case promoapi.OpDelete:
		return c.Delete(ctx), nil
	case promoapi.OpActivate:
		return c.Activate(ctx), nil
	case promoapi.OpDeactivate:
		return c.Deactivate(ctx), nil
	case promoapi.OpSearch:
		return c.Search(ctx), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// Do dispatches the named operation and waits for it to complete.
func (c *Controller) Do(ctx context.Context, op promoapi.Operation) (Outcome, error) {
	pending, err := c.Start(ctx, op)
	if err != nil {
		return Outcome{}, err
	}
	return pending.Wait(ctx)
}

// formSnapshot copies the form as it is when the user triggers an operation.
func (c *Controller) formSnapshot() promotions.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Form.Clone()
}

// result carries whatever a successful call returned.
type result struct {
	entity promotions.Promotion
	list   []promotions.Promotion
}

func (c *Controller) dispatch(ctx context.Context, op promoapi.Operation, call func(context.Context) (result, error)) *Pending {
	pending := newPending(op)
	start := time.Now()
	metrics.OperationsInFlight.Inc()

	c.inflight.Go(func() error {
		defer pending.resolve()
		defer metrics.OperationsInFlight.Dec()

		res, err := call(ctx)
		metrics.RecordOperation(string(op), start, err)
		pending.outcome = c.complete(op, res, err)
		return nil
	})
	return pending
}

// complete applies one finished call to the view state as a single update.
func (c *Controller) complete(op promoapi.Operation, res result, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		return c.fail(op, err)
	}

	switch op {
	case promoapi.OpDelete:
		c.state.Form.Clear()
		c.state.Flash.Show(MsgDeleted)
	case promoapi.OpSearch:
		first, ok := c.state.Table.Render(res.list)
		for _, row := range c.state.Table.Rows {
			if len(row.InvalidDates) > 0 {
				c.logger.Warn().Str("id", row.ID).Strs("fields", row.InvalidDates).Msg("search result has unparseable dates")
			}
		}
		if ok {
			c.applyEntity(op, first)
		}
		c.state.Flash.Show(MsgSuccess)
	default:
		c.applyEntity(op, res.entity)
		c.state.Flash.Show(successMessage(op))
	}

	c.logger.Debug().Str("operation", string(op)).Str("id", c.state.Form.ID).Msg("promotion operation succeeded")
	return Outcome{Operation: op, Flash: c.state.Flash.String()}
}

func (c *Controller) fail(op promoapi.Operation, err error) Outcome {
	message := promoapi.ErrorMessage(err)
	switch op {
	case promoapi.OpRetrieve:
		c.state.Form.Clear()
	case promoapi.OpDelete:
		// delete never shows the service's message
		message = promoapi.GenericErrorMessage
	}
	c.state.Flash.Show(message)

	c.logger.Warn().Err(err).Str("operation", string(op)).Str("flash", message).Msg("promotion operation failed")
	return Outcome{Operation: op, Flash: message, Err: err}
}

func (c *Controller) applyEntity(op promoapi.Operation, p promotions.Promotion) {
	if err := c.state.Form.Apply(p); err != nil {
		c.logger.Warn().Err(err).Str("operation", string(op)).Str("id", p.ID.String()).Msg("promotion has unparseable dates")
	}
}

func successMessage(op promoapi.Operation) string {
	switch op {
	case promoapi.OpActivate:
		return MsgActivated
	case promoapi.OpDeactivate:
		return MsgDeactivated
	default:
		return MsgSuccess
	}
}
