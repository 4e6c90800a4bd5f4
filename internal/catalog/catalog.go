package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"trip-booking/internal/models"
	"trip-booking/pkg/logger"
)

// ErrCatalogUnavailable wraps network and upstream failures of the launch
// catalog. Callers surface it as an operation failure rather than
// substituting empty data.
var ErrCatalogUnavailable = errors.New("launch catalog unavailable")

// Service is the read-only view of the launch catalog.
type Service interface {
	GetAll(ctx context.Context) ([]models.Launch, error)
	// GetByID returns (nil, nil) when the catalog has no such launch.
	GetByID(ctx context.Context, id string) (*models.Launch, error)
	// GetByIDs returns whatever subset is resolvable; missing ids are
	// silently omitted.
	GetByIDs(ctx context.Context, ids []string) ([]models.Launch, error)
}

// Client talks to the remote SpaceX-style launches API.
type Client struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

func New(baseURL string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// launchRecord matches the catalog's wire format.
type launchRecord struct {
	FlightNumber   int    `json:"flight_number"`
	MissionName    string `json:"mission_name"`
	LaunchDateUnix int64  `json:"launch_date_unix"`
	LaunchSite     struct {
		SiteName string `json:"site_name"`
	} `json:"launch_site"`
	Links struct {
		MissionPatchSmall string `json:"mission_patch_small"`
		MissionPatch      string `json:"mission_patch"`
	} `json:"links"`
	Rocket struct {
		RocketID   string `json:"rocket_id"`
		RocketName string `json:"rocket_name"`
	} `json:"rocket"`
}

func (r launchRecord) toLaunch() models.Launch {
	id := strconv.Itoa(r.FlightNumber)
	return models.Launch{
		ID:     id,
		Cursor: id,
		Site:   r.LaunchSite.SiteName,
		Mission: models.Mission{
			Name:              r.MissionName,
			MissionPatchSmall: r.Links.MissionPatchSmall,
			MissionPatchLarge: r.Links.MissionPatch,
		},
		Rocket: models.Rocket{
			ID:   r.Rocket.RocketID,
			Name: r.Rocket.RocketName,
		},
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) GetAll(ctx context.Context) ([]models.Launch, error) {
	body, status, err := c.get(ctx, c.baseURL+"/launches")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned status %d", ErrCatalogUnavailable, status)
	}

	var records []launchRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	launches := make([]models.Launch, 0, len(records))
	for _, r := range records {
		launches = append(launches, r.toLaunch())
	}
	return launches, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*models.Launch, error) {
	body, status, err := c.get(ctx, c.baseURL+"/launches/"+id)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned status %d", ErrCatalogUnavailable, status)
	}

	var record launchRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	launch := record.toLaunch()
	return &launch, nil
}

func (c *Client) GetByIDs(ctx context.Context, ids []string) ([]models.Launch, error) {
	launches := make([]models.Launch, 0, len(ids))
	for _, id := range ids {
		launch, err := c.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if launch == nil {
			c.log.Warn("launch missing from catalog", "launch_id", id)
			continue
		}
		launches = append(launches, *launch)
	}
	return launches, nil
}
