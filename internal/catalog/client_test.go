package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/catalog/catalogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string, opts ...func(*catalog.Options)) *catalog.Client {
	t.Helper()
	o := catalog.Options{BaseURL: baseURL, Timeout: 2 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := catalog.NewClient(o)
	require.NoError(t, err)
	return c
}

func TestSearchReturnsProductsInOrder(t *testing.T) {
	srv := catalogtest.NewServer(t,
		catalogtest.Product("1", "Red Shirt", "Apparel", "Red"),
		catalogtest.Product("2", "Blue Jeans", "Apparel", "Blue"),
		catalogtest.Product("3", "Red Scarf", "Accessories", "Red"),
	)
	c := newClient(t, srv.URL)

	got, err := c.Search(context.Background(), "red")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, catalog.ProductID("1"), got[0].ID)
	assert.Equal(t, "Red Shirt", got[0].DisplayName)
	assert.Equal(t, "Apparel", got[0].Category)
	assert.Equal(t, "Red", got[0].Color)
	assert.Equal(t, "/image/1", got[0].Image)
	assert.Equal(t, catalog.ProductID("3"), got[1].ID)
}

func TestSearchSendsLiteralText(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	_, err := c.Search(context.Background(), "  shirts & ties ")
	require.NoError(t, err)
	assert.Equal(t, "  shirts & ties ", gotQuery)
}

func TestSearchEmptyQueryMakesNoRequest(t *testing.T) {
	srv := catalogtest.NewServer(t)
	c := newClient(t, srv.URL)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := c.Search(context.Background(), q)
		assert.ErrorIs(t, err, catalog.ErrEmptyQuery, "query %q", q)
	}
	assert.Zero(t, srv.Hits("/search"))
}

func TestSearchEmptyResultIsNotNil(t *testing.T) {
	srv := catalogtest.NewServer(t, catalogtest.Product("1", "Red Shirt", "Apparel", "Red"))
	c := newClient(t, srv.URL)

	got, err := c.Search(context.Background(), "nothing matches")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommendPassesID(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.SetRecommendations("15970",
		catalogtest.Product("2", "Navy Shirt", "Apparel", "Navy Blue"),
		catalogtest.Product("3", "Grey Shirt", "Apparel", "Grey"),
	)
	c := newClient(t, srv.URL)

	got, err := c.Recommend(context.Background(), "15970")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, catalog.ProductID("2"), got[0].ID)
	assert.Equal(t, catalog.ProductID("3"), got[1].ID)
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.SetStatus("/recommend", http.StatusInternalServerError)
	c := newClient(t, srv.URL)

	_, err := c.Recommend(context.Background(), "1")
	require.Error(t, err)

	var te *catalog.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "recommend", te.Op)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.True(t, catalog.IsTransport(err))
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"object instead of array", `{"id": 1}`},
		{"missing display name", `[{"id": 1, "masterCategory": "Apparel", "baseColour": "Red", "image": "r.jpg"}]`},
		{"missing image", `[{"id": 1, "productDisplayName": "Red Shirt", "masterCategory": "Apparel", "baseColour": "Red"}]`},
		{"null id", `[{"id": null, "productDisplayName": "Red Shirt", "masterCategory": "Apparel", "baseColour": "Red", "image": "r.jpg"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newClient(t, server.URL)
			_, err := c.Search(context.Background(), "red")
			require.Error(t, err)
			assert.True(t, catalog.IsTransport(err), "want TransportError, got %T: %v", err, err)
		})
	}
}

func TestExtraFieldsIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "productDisplayName": "Red Shirt", "masterCategory": "Apparel",
			"baseColour": "Red", "image": "r.jpg", "articleType": "Shirts", "gender": "Men",
			"season": "Summer", "year": 2012.0, "usage": "Casual", "cluster": 4}]`))
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	got, err := c.Search(context.Background(), "red")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Shirts", "Men", "Summer", "2012", "Casual"}, got[0].Details())
}

func TestMistypedOptionalFieldsDoNotRejectResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "productDisplayName": "Red Shirt", "masterCategory": "Apparel",
			 "baseColour": "Red", "image": "r.jpg", "year": "2012", "gender": 0},
			{"id": 2, "productDisplayName": "Blue Jeans", "masterCategory": "Apparel",
			 "baseColour": "Blue", "image": "b.jpg", "season": null, "usage": ["Casual"],
			 "articleType": {"name": "Jeans"}}]`))
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	got, err := c.Search(context.Background(), "shirt")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"0", "2012"}, got[0].Details())
	assert.Empty(t, got[1].Details())
}

func TestOversizedBodyIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("["))
		w.Write(bytes.Repeat([]byte(" "), 10<<20))
		w.Write([]byte("]"))
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	_, err := c.Search(context.Background(), "red")
	require.Error(t, err)
	assert.True(t, catalog.IsTransport(err))
	assert.Contains(t, err.Error(), "response too large")
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newClient(t, url)
	_, err := c.Search(context.Background(), "red")
	require.Error(t, err)
	assert.True(t, catalog.IsTransport(err))
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newClient(t, server.URL, func(o *catalog.Options) { o.Timeout = 50 * time.Millisecond })

	start := time.Now()
	_, err := c.Search(context.Background(), "red")
	require.Error(t, err)
	assert.True(t, catalog.IsTransport(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestBreakerFailsFastWhenOpen(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.SetStatus("/search", http.StatusBadGateway)
	c := newClient(t, srv.URL, func(o *catalog.Options) {
		o.Breaker = catalog.BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenRequests: 1}
	})

	for i := 0; i < 2; i++ {
		_, err := c.Search(context.Background(), "red")
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())
	assert.Equal(t, 2, srv.Hits("/search"))

	_, err := c.Search(context.Background(), "red")
	require.Error(t, err)
	assert.True(t, catalog.IsTransport(err))
	assert.Equal(t, 2, srv.Hits("/search"), "open breaker should not reach the service")
}

func TestBreakerDisabledByDefault(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:5000")
	assert.Equal(t, "disabled", c.BreakerState())
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"ftp://example.com", "://bad", "localhost:5000"} {
		_, err := catalog.NewClient(catalog.Options{BaseURL: base})
		assert.Error(t, err, "base %q", base)
	}
}

func TestCancelledContext(t *testing.T) {
	srv := catalogtest.NewServer(t, catalogtest.Product("1", "Red Shirt", "Apparel", "Red"))
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "red")
	require.Error(t, err)
	assert.True(t, catalog.IsTransport(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
