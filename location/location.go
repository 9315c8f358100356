// Package location provides the geolocation collaborator for dispatch.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AkashSundaramoorthi/Haven/dispatch"
)

// HTTPLocator fetches the current position from a companion endpoint
// (typically the device shell or a local gpsd bridge) returning
// {"latitude": .., "longitude": ..} JSON. No timeout is imposed here -
// dispatch treats location as best-effort either way.
type HTTPLocator struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPLocator(endpoint string) *HTTPLocator {
	return &HTTPLocator{endpoint: endpoint, httpClient: http.DefaultClient}
}

func (l *HTTPLocator) CurrentPosition(ctx context.Context) (dispatch.Coordinates, error) {
	coordinates := dispatch.Coordinates{}

	if l.endpoint == "" {
		return coordinates, fmt.Errorf("no location endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return coordinates, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return coordinates, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return coordinates, fmt.Errorf("location endpoint returned %v", resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(&coordinates); err != nil {
		return coordinates, err
	}

	return coordinates, nil
}

// StaticLocator answers with fixed coordinates; used in tests & dev mode.
type StaticLocator struct {
	Coordinates dispatch.Coordinates
	Err         error
	Queries     int
}

func (l *StaticLocator) CurrentPosition(ctx context.Context) (dispatch.Coordinates, error) {
	l.Queries++
	return l.Coordinates, l.Err
}
