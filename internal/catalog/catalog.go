// Package catalog holds the read-only portfolio of asset templates NFTs are
// minted from.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/store"
)

// ErrAssetNotFound is returned when no asset has the requested id.
var ErrAssetNotFound = errors.New("asset not found")

// Asset is one catalog template.
type Asset struct {
	AssetID     string   `json:"asset_id"`
	Title       string   `json:"title"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Catalog reads portfolio_catalog.json and can replace it from a source.
type Catalog struct {
	path   string
	client *http.Client
}

// New creates a catalog backed by the file at path.
func New(path string) *Catalog {
	return &Catalog{
		path:   path,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Path returns the catalog file location.
func (c *Catalog) Path() string { return c.path }

// Load returns every asset. A missing file is an empty catalog.
func (c *Catalog) Load() ([]Asset, error) {
	return store.Load[[]Asset](c.path)
}

// Get returns the asset with id.
func (c *Catalog) Get(id string) (*Asset, error) {
	assets, err := c.Load()
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if assets[i].AssetID == id {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
}

// Import reads a catalog from a local file or an http(s) URL, validates it
// and replaces the catalog file. It returns the number of assets written.
func (c *Catalog) Import(ctx context.Context, source string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, fmt.Errorf("no catalog source given")
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = c.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return 0, fmt.Errorf("reading catalog: %w", err)
	}

	var assets []Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return 0, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := Validate(assets); err != nil {
		return 0, err
	}

	unlock, err := store.Lock(c.path)
	if err != nil {
		return 0, err
	}
	defer unlock()
	if err := store.Write(c.path, assets); err != nil {
		return 0, err
	}
	logger.Log.Info("catalog imported", zap.String("source", source), zap.Int("assets", len(assets)))
	return len(assets), nil
}

// Validate checks that every asset has a unique, non-empty id and a title.
func Validate(assets []Asset) error {
	seen := make(map[string]bool, len(assets))
	for i, a := range assets {
		id := strings.TrimSpace(a.AssetID)
		if id == "" {
			return fmt.Errorf("asset %d: missing asset_id", i)
		}
		if seen[id] {
			return fmt.Errorf("asset %d: duplicate asset_id %q", i, id)
		}
		seen[id] = true
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("asset %q: missing title", id)
		}
	}
	return nil
}

func (c *Catalog) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}
