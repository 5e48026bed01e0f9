package application

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	"github.com/wanderwalks/service-walks/internal/domain/session"
	"github.com/wanderwalks/service-walks/internal/geo"
)

func twoStopRoute() route.Route {
	return route.Route{
		Origin: route.Coordinate{Latitude: 52.5200, Longitude: 13.4050},
		Stops: []route.PointOfInterest{
			{ID: "node/1", Name: "Brandenburg Gate", Coordinate: route.Coordinate{Latitude: 52.5163, Longitude: 13.3777}},
			{ID: "node/2", Name: "Victory Column", Coordinate: route.Coordinate{Latitude: 52.5145, Longitude: 13.3501}},
		},
	}
}

// positionNear returns a fix a given number of meters north of the coordinate.
func positionNear(c route.Coordinate, meters float64) PositionUpdateRequest {
	return PositionUpdateRequest{
		Latitude:  c.Latitude + meters/geo.EarthRadiusMeters*180/math.Pi,
		Longitude: c.Longitude,
	}
}

// awaitEvent drains the channel until an event of the wanted type arrives.
func awaitEvent(t *testing.T, ch <-chan session.Event, want session.EventType) session.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt, ok := <-ch:
			require.True(t, ok, "event channel closed before %s", want)
			if evt.Type == want {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func newTestSessionService() *SessionService {
	return NewSessionService(nil, session.DefaultArrivalThresholdMeters, zap.NewNop())
}

func TestSessionLifecycle_ArrivalThroughFinish(t *testing.T) {
	svc := newTestSessionService()
	ctx := context.Background()
	userID := uuid.New()
	rt := twoStopRoute()

	dto, err := svc.Start(ctx, userID, StartSessionRequest{Route: rt})
	require.NoError(t, err)
	assert.Equal(t, 0, dto.ActiveIndex)
	assert.Equal(t, 2, dto.StopCount)

	events, cancel, err := svc.Subscribe(userID, dto.ID)
	require.NoError(t, err)
	defer cancel()

	// Two fixes inside the threshold of stop 0: exactly one arrival.
	_, err = svc.PushPosition(userID, dto.ID, positionNear(rt.Stops[0].Coordinate, 30))
	require.NoError(t, err)
	arrival := awaitEvent(t, events, session.EventArrival)
	assert.Equal(t, 0, arrival.StopIndex)

	_, err = svc.PushPosition(userID, dto.ID, positionNear(rt.Stops[0].Coordinate, 20))
	require.NoError(t, err)
	awaitEvent(t, events, session.EventProgress)

	state, err := svc.Get(userID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, state.Completed)
	assert.Equal(t, 1, state.CompletedCount)

	// Finish is rejected before the last stop is completed.
	_, err = svc.Finish(ctx, userID, dto.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	state, err = svc.Next(userID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ActiveIndex)

	_, err = svc.PushPosition(userID, dto.ID, positionNear(rt.Stops[1].Coordinate, 10))
	require.NoError(t, err)
	arrival = awaitEvent(t, events, session.EventArrival)
	assert.Equal(t, 1, arrival.StopIndex)

	final, err := svc.Finish(ctx, userID, dto.ID)
	require.NoError(t, err)
	assert.True(t, final.Finished)
	assert.InDelta(t, 1.0, final.Progress, 0.001)

	// The session is discarded after finishing.
	_, err = svc.Get(userID, dto.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestPushPosition_OwnershipEnforced(t *testing.T) {
	svc := newTestSessionService()
	userID := uuid.New()

	dto, err := svc.Start(context.Background(), userID, StartSessionRequest{Route: twoStopRoute()})
	require.NoError(t, err)

	_, err = svc.PushPosition(uuid.New(), dto.ID, positionNear(twoStopRoute().Stops[0].Coordinate, 10))
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestEnd_IsUnconditionalAndDiscardsSession(t *testing.T) {
	svc := newTestSessionService()
	ctx := context.Background()
	userID := uuid.New()

	dto, err := svc.Start(ctx, userID, StartSessionRequest{Route: twoStopRoute()})
	require.NoError(t, err)

	events, cancel, err := svc.Subscribe(userID, dto.ID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, svc.End(ctx, userID, dto.ID))
	awaitEvent(t, events, session.EventEnded)

	// No further deliveries: pushing a fix after End is rejected.
	_, err = svc.PushPosition(userID, dto.ID, positionNear(twoStopRoute().Stops[0].Coordinate, 10))
	assert.Error(t, err)

	_, err = svc.Get(userID, dto.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestNavigation_JumpKeepsCompletedSet(t *testing.T) {
	svc := newTestSessionService()
	ctx := context.Background()
	userID := uuid.New()
	rt := twoStopRoute()

	dto, err := svc.Start(ctx, userID, StartSessionRequest{Route: rt})
	require.NoError(t, err)

	events, cancel, err := svc.Subscribe(userID, dto.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = svc.PushPosition(userID, dto.ID, positionNear(rt.Stops[0].Coordinate, 10))
	require.NoError(t, err)
	awaitEvent(t, events, session.EventArrival)

	state, err := svc.JumpTo(userID, dto.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ActiveIndex)
	assert.Equal(t, []int{0}, state.Completed)

	_, err = svc.JumpTo(userID, dto.ID, 5)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	state, err = svc.Previous(userID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.ActiveIndex)

	// Previous at the first stop is a no-op, not an error.
	state, err = svc.Previous(userID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.ActiveIndex)
}

func TestReportSignalLost_KeepsSessionAlive(t *testing.T) {
	svc := newTestSessionService()
	ctx := context.Background()
	userID := uuid.New()
	rt := twoStopRoute()

	dto, err := svc.Start(ctx, userID, StartSessionRequest{Route: rt})
	require.NoError(t, err)

	events, cancel, err := svc.Subscribe(userID, dto.ID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, svc.ReportSignalLost(userID, dto.ID))
	awaitEvent(t, events, session.EventSignalLost)

	// Tracking resumes on the next valid fix.
	_, err = svc.PushPosition(userID, dto.ID, positionNear(rt.Stops[0].Coordinate, 10))
	require.NoError(t, err)
	awaitEvent(t, events, session.EventArrival)
}

func TestStart_RequiresStops(t *testing.T) {
	svc := newTestSessionService()
	_, err := svc.Start(context.Background(), uuid.New(), StartSessionRequest{Route: route.Route{}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestSubscribe_CancelIsIdempotent(t *testing.T) {
	svc := newTestSessionService()
	userID := uuid.New()

	dto, err := svc.Start(context.Background(), userID, StartSessionRequest{Route: twoStopRoute()})
	require.NoError(t, err)

	_, cancel, err := svc.Subscribe(userID, dto.ID)
	require.NoError(t, err)
	cancel()
	cancel()
}
