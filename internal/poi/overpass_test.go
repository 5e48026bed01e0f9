package poi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverpassClient_Query(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		decoded, err := url.QueryUnescape(strings.TrimPrefix(string(body), "data="))
		require.NoError(t, err)
		gotQuery = decoded

		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"type":"node","id":1,"lat":52.5163,"lon":13.3777,"tags":{"name":"Brandenburg Gate","tourism":"attraction"}},
				{"type":"way","id":2,"center":{"lat":52.5192,"lon":13.3694},"tags":{"name":"Reichstag","historic":"building"}},
				{"type":"node","id":3,"tags":{"name":"No Coordinate"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewOverpassClient(server.URL, "test-agent", 5*time.Second)
	got, err := client.Query(context.Background(), 52.52, 13.405, 5400, "historic")
	require.NoError(t, err)

	require.Len(t, got, 2, "elements without a coordinate are dropped")
	assert.Equal(t, "node/1", got[0].ID)
	assert.Equal(t, "Brandenburg Gate", got[0].Name)
	assert.InDelta(t, 52.5163, got[0].Lat, 0.0001)

	// Way coordinates come from the center.
	assert.Equal(t, "way/2", got[1].ID)
	assert.InDelta(t, 52.5192, got[1].Lat, 0.0001)
	assert.InDelta(t, 13.3694, got[1].Lon, 0.0001)

	assert.Contains(t, gotQuery, "[out:json][timeout:25];")
	assert.Contains(t, gotQuery, `node["historic"](around:5400`)
	assert.Contains(t, gotQuery, `way["historic"](around:5400`)
	assert.Contains(t, gotQuery, "out center 50;")
}

func TestOverpassClient_UnionInterestExpandsSelectors(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery, _ = url.QueryUnescape(strings.TrimPrefix(string(body), "data="))
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	client := NewOverpassClient(server.URL, "test-agent", 5*time.Second)
	_, err := client.Query(context.Background(), 52.52, 13.405, 1000, "food")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, `"amenity"~"cafe|restaurant|bar|pub"`)
}

func TestOverpassClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer server.Close()

	client := NewOverpassClient(server.URL, "test-agent", 5*time.Second)
	_, err := client.Query(context.Background(), 52.52, 13.405, 1000, "historic")
	assert.Error(t, err)
}

func TestSelectorsFor_UnknownInterestDegrades(t *testing.T) {
	sels := selectorsFor("waterfalls")
	require.Len(t, sels, 1)
	assert.Equal(t, `["tourism"="waterfalls"]`, sels[0])
}
