package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/hookpress/internal/models"
)

func appendName(name string) Func {
	return func(_ context.Context, p Payload) (Payload, error) {
		order, _ := p.Data["order"].([]string)
		next := append(append([]string(nil), order...), name)
		p.Data = p.Data.With("order", next)
		return p, nil
	}
}

func TestRegistry_OrdersByPriorityThenRegistration(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(
		Hook{Point: PointBootstrap, Name: "low", Priority: 10, Run: appendName("low")},
		Hook{Point: PointBootstrap, Name: "first-default", Run: appendName("first-default")},
		Hook{Point: PointBootstrap, Name: "high", Priority: 90, Run: appendName("high")},
		Hook{Point: PointBootstrap, Name: "second-default", Run: appendName("second-default")},
	))

	data, err := r.RunBootstrap(context.Background(), models.Data{})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "first-default", "second-default", "low"}, data["order"])
}

func TestRegistry_RejectsInvalidHooks(t *testing.T) {
	r := NewRegistry()
	noop := func(_ context.Context, p Payload) (Payload, error) { return p, nil }

	assert.Error(t, r.Add(Hook{Point: "nope", Name: "x", Run: noop}))
	assert.Error(t, r.Add(Hook{Point: PointData, Name: "", Run: noop}))
	assert.Error(t, r.Add(Hook{Point: PointData, Name: "x", Priority: 101, Run: noop}))
	assert.Error(t, r.Add(Hook{Point: PointData, Name: "x"}))

	require.NoError(t, r.Add(Hook{Point: PointData, Name: "x", Run: noop}))
	assert.Error(t, r.Add(Hook{Point: PointData, Name: "x", Run: noop}), "duplicate name on same point")
	assert.NoError(t, r.Add(Hook{Point: PointHTML, Name: "x", Run: noop}), "same name on another point")
}

func TestRegistry_ErrorNamesHook(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Add(Hook{Point: PointData, Name: "exploder", Run: func(context.Context, Payload) (Payload, error) {
		return Payload{}, boom
	}}))

	_, err := r.RunData(context.Background(), models.Request{Slug: "a"}, nil, models.Data{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "data/exploder")
}

func TestRegistry_AllRequestsAppends(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Hook{Point: PointAllRequests, Name: "more", Run: func(_ context.Context, p Payload) (Payload, error) {
		p.AllRequests = append(append([]models.Request(nil), p.AllRequests...), models.Request{Slug: "b", Route: "blog"})
		return p, nil
	}}))

	in := []models.Request{{Slug: "a", Route: "simple"}}
	out, err := r.RunAllRequests(context.Background(), in, models.Data{})
	require.NoError(t, err)
	assert.Len(t, in, 1)
	assert.Equal(t, []models.Request{{Slug: "a", Route: "simple"}, {Slug: "b", Route: "blog"}}, out)
}

func TestRegistry_StopsOnCancelledContext(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Hook{Point: PointHTML, Name: "never", Run: func(context.Context, Payload) (Payload, error) {
		t.Fatal("hook ran after cancellation")
		return Payload{}, nil
	}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RunHTML(ctx, models.Request{}, models.Data{}, "<p></p>")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoints_Catalog(t *testing.T) {
	ps := Points()
	require.Len(t, ps, 4)
	assert.Equal(t, PointBootstrap, ps[0].Point)
	assert.True(t, Known(PointHTML))
	assert.False(t, Known("render"))
}
