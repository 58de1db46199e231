// Package productsfeed downloads and parses the product feed files
// (products, property definitions, property values) and joins them into
// product entities for the catalog.
package productsfeed

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/beaverkiria/uptech-api/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

// Feed file names, relative to the configured base URL.
var feedFiles = map[string]string{
	"products":       "products.json",
	"properties":     "property.json",
	"propertyValues": "propertyValues.json",
}

// downloadFile fetches a single feed file and normalizes its encoding.
// Legacy feed exports come in windows-1251, newer ones in UTF-8.
func (fp *FeedParser) downloadFile(url string) ([]byte, error) {
	response, err := fp.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", response.StatusCode, url)
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", url, err)
	}

	if utf8.Valid(bodyBytes) {
		return bodyBytes, nil
	}

	decoded, err := io.ReadAll(charmap.Windows1251.NewDecoder().Reader(bytes.NewReader(bodyBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from windows-1251: %w", url, err)
	}

	return decoded, nil
}

// downloadAll fetches all feed files concurrently
func (fp *FeedParser) downloadAll() (map[string][]byte, error) {
	results := make(map[string][]byte, len(feedFiles))

	var g errgroup.Group
	var mu sync.Mutex

	for name, file := range feedFiles {
		name := name
		url := fp.baseURL + "/" + file
		g.Go(func() error {
			body, err := fp.downloadFile(url)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = body
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("feed download failed: %w", err)
	}

	return results, nil
}

// newFeedClient builds the HTTP client used for feed downloads
func newFeedClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
	}
}
