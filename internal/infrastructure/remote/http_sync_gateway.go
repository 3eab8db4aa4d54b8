package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"
)

var ErrMissingSyncRemoteURL = errors.New("missing FIELDOPS_SYNC_URL")

// HTTPSyncGateway pushes assignment snapshots to the remote system of
// record over HTTP. A 409 response means the remote copy diverged; its body
// carries the remote snapshot for conflict resolution.
//
// Mock mode (FIELDOPS_SYNC_MOCK=true) accepts every push without a network,
// which keeps fully offline development working end to end.
type HTTPSyncGateway struct {
	client   *http.Client
	baseURL  string
	mockMode bool
}

var _ interfaces.ISyncGateway = (*HTTPSyncGateway)(nil)

func NewHTTPSyncGateway(baseURL string) (*HTTPSyncGateway, error) {
	if isSyncMockEnabled() {
		return &HTTPSyncGateway{mockMode: true}, nil
	}
	if baseURL == "" {
		return nil, ErrMissingSyncRemoteURL
	}
	return &HTTPSyncGateway{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (g *HTTPSyncGateway) PushAssignment(ctx context.Context, a entities.Assignment) (interfaces.PushResult, error) {
	if g.mockMode {
		return interfaces.PushResult{}, nil
	}

	body, err := json.Marshal(a)
	if err != nil {
		return interfaces.PushResult{}, err
	}

	url := fmt.Sprintf("%s/assignments/%s", g.baseURL, a.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return interfaces.PushResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return interfaces.PushResult{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		var remote entities.Assignment
		if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
			return interfaces.PushResult{}, fmt.Errorf("decode conflict body: %w", err)
		}
		return interfaces.PushResult{Conflict: true, Remote: remote}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return interfaces.PushResult{}, nil
	default:
		return interfaces.PushResult{}, fmt.Errorf("remote returned status %d", resp.StatusCode)
	}
}

func isSyncMockEnabled() bool {
	return strings.EqualFold(os.Getenv("FIELDOPS_SYNC_MOCK"), "true")
}
