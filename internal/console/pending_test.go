package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/Togather-Foundation/promotions-console/internal/metrics"
	"github.com/Togather-Foundation/promotions-console/internal/promoapi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDispatcher answers Get from a function, so tests control when each
// call returns. The remaining methods fail.
type stubDispatcher struct {
	get func(ctx context.Context, id string) (promotions.Promotion, error)
}

var errStub = errors.New("not stubbed")

func (s *stubDispatcher) Create(context.Context, promotions.CreatePayload) (promotions.Promotion, error) {
	return promotions.Promotion{}, errStub
}

func (s *stubDispatcher) Update(context.Context, string, promotions.UpdatePayload) (promotions.Promotion, error) {
	return promotions.Promotion{}, errStub
}

func (s *stubDispatcher) Get(ctx context.Context, id string) (promotions.Promotion, error) {
	if s.get == nil {
		return promotions.Promotion{}, errStub
	}
	return s.get(ctx, id)
}

func (s *stubDispatcher) Delete(context.Context, string) error {
	return errStub
}

func (s *stubDispatcher) Activate(context.Context, string) (promotions.Promotion, error) {
	return promotions.Promotion{}, errStub
}

func (s *stubDispatcher) Deactivate(context.Context, string) (promotions.Promotion, error) {
	return promotions.Promotion{}, errStub
}

func (s *stubDispatcher) Search(context.Context, promotions.Filters) ([]promotions.Promotion, error) {
	return nil, errStub
}

func TestController_LastCompletionWins(t *testing.T) {
	release := map[string]chan struct{}{
		"1": make(chan struct{}),
		"2": make(chan struct{}),
	}
	stub := &stubDispatcher{get: func(ctx context.Context, id string) (promotions.Promotion, error) {
		<-release[id]
		return promotions.Promotion{
			ID:        promotions.ID(id),
			Title:     "promotion " + id,
			StartDate: promotions.NewWireDate("2024-01-01"),
			EndDate:   promotions.NewWireDate("2024-01-02"),
		}, nil
	}}
	c := New(stub)
	ctx := context.Background()

	c.EditForm(func(f *promotions.Form) { f.ID = "1" })
	first := c.Retrieve(ctx)
	c.EditForm(func(f *promotions.Form) { f.ID = "2" })
	second := c.Retrieve(ctx)

	// the later request finishes first
	close(release["2"])
	_, err := second.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "promotion 2", c.State().Form.Title)

	close(release["1"])
	_, err = first.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", c.State().Form.ID)
	assert.Equal(t, "promotion 1", c.State().Form.Title)

	c.Wait()
}

func TestController_SnapshotAtDispatch(t *testing.T) {
	release := make(chan struct{})
	requested := make(chan string, 1)
	stub := &stubDispatcher{get: func(ctx context.Context, id string) (promotions.Promotion, error) {
		requested <- id
		<-release
		return promotions.Promotion{}, errors.New("boom")
	}}
	c := New(stub)

	c.EditForm(func(f *promotions.Form) { f.ID = "5" })
	pending := c.Retrieve(context.Background())
	c.EditForm(func(f *promotions.Form) { f.ID = "6" })

	assert.Equal(t, "5", <-requested)
	close(release)
	outcome, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded())
	assert.Equal(t, promoapi.GenericErrorMessage, outcome.Flash)
}

func TestPending_WaitGivesUp(t *testing.T) {
	release := make(chan struct{})
	stub := &stubDispatcher{get: func(ctx context.Context, id string) (promotions.Promotion, error) {
		<-release
		return promotions.Promotion{ID: "1"}, nil
	}}
	c := New(stub)

	pending := c.Retrieve(context.Background())
	assert.Equal(t, promoapi.OpRetrieve, pending.Operation())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := pending.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	select {
	case <-pending.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not complete")
	}
	assert.Equal(t, "1", c.State().Form.ID)
}

func TestController_RecordsMetrics(t *testing.T) {
	c := New(&stubDispatcher{})
	failures := testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("delete", metrics.OutcomeFailure))

	outcome, err := c.Do(context.Background(), promoapi.OpDelete)
	require.NoError(t, err)
	assert.Equal(t, promoapi.GenericErrorMessage, outcome.Flash)

	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("delete", metrics.OutcomeFailure)))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.OperationsInFlight))
}
