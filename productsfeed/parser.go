package productsfeed

import (
	"net/http"

	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
	"github.com/google/uuid"
)

// Compile-time check to ensure FeedParser implements the Parser interface
var _ interfaces.Parser = (*FeedParser)(nil)

// FeedParser downloads and joins the product feed files
type FeedParser struct {
	baseURL string
	limit   int
	client  *http.Client
}

// NewFeedParser creates a parser for the feed at baseURL, importing at most
// limit products per snapshot.
func NewFeedParser(baseURL string, limit int) *FeedParser {
	return &FeedParser{
		baseURL: baseURL,
		limit:   limit,
		client:  newFeedClient(),
	}
}

// ParseAllProducts implements the Parser interface: one full feed download
// and join, tagged with a fresh snapshot id for log correlation.
func (fp *FeedParser) ParseAllProducts() ([]entities.Product, string, error) {
	snapshotID := uuid.NewString()
	logging.Info("Starting feed import", "snapshot_id", snapshotID, "base_url", fp.baseURL)

	raw, err := fp.downloadAll()
	if err != nil {
		return nil, snapshotID, err
	}

	products, err := buildProducts(raw, fp.limit)
	if err != nil {
		return nil, snapshotID, err
	}

	logging.Info("Feed import completed", "snapshot_id", snapshotID, "product_count", len(products))
	return products, snapshotID, nil
}
