package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"casework-backend/internal/geocode"

	"github.com/stretchr/testify/require"
)

func TestNominatimSearch(t *testing.T) {
	var gotQuery, gotCountry, gotLimit, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotCountry = r.URL.Query().Get("countrycodes")
		gotLimit = r.URL.Query().Get("limit")
		gotUA = r.Header.Get("User-Agent")

		w.Header().Set("Content-Type", "application/json")
		// Coordinates are numeric strings on the wire.
		w.Write([]byte(`[{"lat": "50.6404", "lon": "13.8245", "display_name": "Teplice"}]`))
	}))
	defer server.Close()

	client, err := geocode.NewNominatimClient(server.URL, "casework-backend/test", "cz", 5*time.Second)
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "Hrdinů 278, Teplice, Česká republika")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 50.6404, results[0].Latitude, 1e-9)
	require.InDelta(t, 13.8245, results[0].Longitude, 1e-9)

	require.Equal(t, "Hrdinů 278, Teplice, Česká republika", gotQuery)
	require.Equal(t, "cz", gotCountry)
	require.Equal(t, "1", gotLimit)
	require.Equal(t, "casework-backend/test", gotUA)
}

func TestNominatimSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := geocode.NewNominatimClient(server.URL, "casework-backend/test", "cz", 5*time.Second)
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestNominatimSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := geocode.NewNominatimClient(server.URL, "casework-backend/test", "cz", 5*time.Second)
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "anything")
	require.Error(t, err)
}

func TestNominatimReverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"lat": "50.6404", "lon": "13.8245",
			"address": {"road": "Hrdinů", "town": "Teplice", "postcode": "415 01", "state": "Ústecký kraj"}
		}`))
	}))
	defer server.Close()

	client, err := geocode.NewNominatimClient(server.URL, "casework-backend/test", "cz", 5*time.Second)
	require.NoError(t, err)

	addr, err := client.Reverse(context.Background(), 50.6404, 13.8245)
	require.NoError(t, err)
	require.Equal(t, "Hrdinů", addr.Street)
	require.Equal(t, "Teplice", addr.City)
	require.Equal(t, "415 01", addr.Zip)
	require.Equal(t, "Ústecký kraj", addr.Region)
}

func TestNominatimRequiresUserAgent(t *testing.T) {
	_, err := geocode.NewNominatimClient("https://example.org", "", "cz", time.Second)
	require.ErrorIs(t, err, geocode.ErrNoUserAgent)
}
