package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderwalks/service-walks/internal/domain/route"
)

func TestOSRMClient_Path(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"geometry": {
					"type": "LineString",
					"coordinates": [[13.4050,52.5200],[13.4010,52.5180],[13.3777,52.5163]]
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL, "test-agent", 5*time.Second)
	waypoints := []route.Coordinate{
		{Latitude: 52.5200, Longitude: 13.4050},
		{Latitude: 52.5163, Longitude: 13.3777},
	}
	path, err := client.Path(context.Background(), waypoints)
	require.NoError(t, err)

	require.Len(t, path, 3)
	assert.InDelta(t, 52.5200, path[0].Latitude, 0.0001)
	assert.InDelta(t, 13.4050, path[0].Longitude, 0.0001)
	assert.InDelta(t, 52.5163, path[2].Latitude, 0.0001)

	assert.Contains(t, gotPath, "/route/v1/foot/")
	assert.Contains(t, gotPath, "13.405000,52.520000;13.377700,52.516300")
}

func TestOSRMClient_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL, "test-agent", 5*time.Second)
	_, err := client.Path(context.Background(), []route.Coordinate{
		{Latitude: 52.52, Longitude: 13.40},
		{Latitude: 52.51, Longitude: 13.41},
	})
	assert.ErrorIs(t, err, route.ErrRoutingUnavailable)
}

func TestOSRMClient_RequiresTwoWaypoints(t *testing.T) {
	client := NewOSRMClient("http://localhost", "test-agent", time.Second)
	_, err := client.Path(context.Background(), []route.Coordinate{{Latitude: 52.52, Longitude: 13.40}})
	assert.Error(t, err)
}

func TestStraightLine(t *testing.T) {
	waypoints := []route.Coordinate{
		{Latitude: 52.52, Longitude: 13.40},
		{Latitude: 52.51, Longitude: 13.41},
	}
	line := StraightLine(waypoints)
	assert.Equal(t, waypoints, line)

	// The fallback is a copy, not an alias.
	line[0].Latitude = 0
	assert.InDelta(t, 52.52, waypoints[0].Latitude, 0.0001)
}
