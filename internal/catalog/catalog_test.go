package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"trip-booking/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLaunches = []map[string]interface{}{
	{
		"flight_number":    42,
		"mission_name":     "Starlink-7",
		"launch_date_unix": 1588908000,
		"launch_site":      map[string]interface{}{"site_name": "CCAFS SLC 40"},
		"links": map[string]interface{}{
			"mission_patch_small": "https://images.example/patch_small.png",
			"mission_patch":       "https://images.example/patch.png",
		},
		"rocket": map[string]interface{}{"rocket_id": "falcon9", "rocket_name": "Falcon 9"},
	},
	{
		"flight_number":    43,
		"mission_name":     "CRS-20",
		"launch_date_unix": 1589908000,
		"launch_site":      map[string]interface{}{"site_name": "KSC LC 39A"},
		"links":            map[string]interface{}{},
		"rocket":           map[string]interface{}{"rocket_id": "falcon9", "rocket_name": "Falcon 9"},
	},
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/launches":
			json.NewEncoder(w).Encode(testLaunches)
		case strings.HasPrefix(r.URL.Path, "/launches/"):
			id := strings.TrimPrefix(r.URL.Path, "/launches/")
			for _, l := range testLaunches {
				if strconv.Itoa(l["flight_number"].(int)) == id {
					json.NewEncoder(w).Encode(l)
					return
				}
			}
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetAll(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	c := New(server.URL, logger.NewNop())
	launches, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, launches, 2)

	assert.Equal(t, "42", launches[0].ID)
	assert.Equal(t, "42", launches[0].Cursor)
	assert.Equal(t, "Starlink-7", launches[0].Mission.Name)
	assert.Equal(t, "https://images.example/patch_small.png", launches[0].Mission.MissionPatchSmall)
	assert.Equal(t, "https://images.example/patch.png", launches[0].Mission.MissionPatchLarge)
	assert.Equal(t, "CCAFS SLC 40", launches[0].Site)
	assert.Equal(t, "Falcon 9", launches[0].Rocket.Name)
}

func TestGetByID(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	c := New(server.URL, logger.NewNop())

	launch, err := c.GetByID(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, launch)
	assert.Equal(t, "Starlink-7", launch.Mission.Name)
}

func TestGetByIDNotFound(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	c := New(server.URL, logger.NewNop())

	launch, err := c.GetByID(context.Background(), "999")
	require.NoError(t, err, "not found is a valid negative result, not an error")
	assert.Nil(t, launch)
}

func TestGetByIDsOmitsMissing(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	c := New(server.URL, logger.NewNop())

	launches, err := c.GetByIDs(context.Background(), []string{"42", "999", "43"})
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, "42", launches[0].ID)
	assert.Equal(t, "43", launches[1].ID)
}

func TestUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, logger.NewNop())

	_, err := c.GetAll(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = c.GetByID(context.Background(), "42")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := New(server.URL, logger.NewNop())

	_, err := c.GetAll(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
