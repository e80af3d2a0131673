package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ErrProductNotFound marks an add-to-cart for a product the catalog does not
// know.
var ErrProductNotFound = errors.New("product not found")

// Product is the catalog's view of a product.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// CatalogClient resolves product names and prices for cart lines.
type CatalogClient interface {
	GetProduct(ctx context.Context, productID int64) (*Product, error)
}

type catalogClient struct {
	http *resty.Client
}

// NewCatalogClient builds the products service client.
func NewCatalogClient(baseURL string) CatalogClient {
	return &catalogClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(5 * time.Second),
	}
}

func (c *catalogClient) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	r := c.http.R().SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	resp, err := r.Get(fmt.Sprintf("/api/products/%d", productID))
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("products service returned %d", resp.StatusCode())
	}

	var product Product
	if err := json.Unmarshal(resp.Body(), &product); err != nil {
		return nil, fmt.Errorf("decoding product response: %w", err)
	}
	return &product, nil
}
