package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"droply/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Client resolves identities and named addresses from the external
// directory. The core only ever reads; registration and address books live
// in the directory service itself.
type Client interface {
	ResolveUser(ctx context.Context, id string) (*models.UserInfo, error)
	ResolveAddress(ctx context.Context, id string) (*models.AddressInfo, error)
}

const cacheTTL = 5 * time.Minute

// HTTPDirectory implements Client against the directory's REST API with a
// redis read-through cache.
type HTTPDirectory struct {
	BaseURL string
	Cache   *redis.Client
	Logger  *zap.Logger
	client  *http.Client
}

func NewHTTPDirectory(baseURL string, cache *redis.Client, logger *zap.Logger) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL: baseURL,
		Cache:   cache,
		Logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// ResolveUser returns the display record for a user id.
func (d *HTTPDirectory) ResolveUser(ctx context.Context, id string) (*models.UserInfo, error) {
	var user models.UserInfo
	if err := d.fetch(ctx, "users", id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveAddress returns the coordinates and text of a named address.
func (d *HTTPDirectory) ResolveAddress(ctx context.Context, id string) (*models.AddressInfo, error) {
	var addr models.AddressInfo
	if err := d.fetch(ctx, "addresses", id, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (d *HTTPDirectory) fetch(ctx context.Context, resource, id string, out interface{}) error {
	cacheKey := fmt.Sprintf("directory:%s:%s", resource, id)
	if d.Cache != nil {
		if data, err := d.Cache.Get(ctx, cacheKey).Result(); err == nil {
			if err := json.Unmarshal([]byte(data), out); err == nil {
				return nil
			}
			// Corrupt cache entry; fall through to the origin.
			d.Cache.Del(ctx, cacheKey)
		}
	}

	url := fmt.Sprintf("%s/api/%s/%s", d.BaseURL, resource, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory lookup failed for %s %s: %w", resource, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("directory has no %s with id %s", resource, id)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory returned status %d for %s %s", resp.StatusCode, resource, id)
	}

	body := json.NewDecoder(resp.Body)
	if err := body.Decode(out); err != nil {
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	if d.Cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := d.Cache.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
				d.Logger.Warn("failed to cache directory entry", zap.Error(err))
			}
		}
	}
	return nil
}
