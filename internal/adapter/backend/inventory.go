package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"rfid-console/internal/domain"
)

var _ domain.InventoryAPI = (*Client)(nil)

func (c *Client) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var env domain.Envelope[domain.DashboardStats]
	err := c.do(ctx, "Stats", http.MethodGet, "/api/rfid/stats", nil, &env)
	return env.Data, err
}

func (c *Client) RecentEvents(ctx context.Context, limit int) ([]domain.RfidEventWithProduct, error) {
	var env domain.Envelope[[]domain.RfidEventWithProduct]
	path := fmt.Sprintf("/api/rfid/events/recent-with-product?limit=%d", limit)
	err := c.do(ctx, "RecentEvents", http.MethodGet, path, nil, &env)
	return env.Data, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, "DeleteEvent", http.MethodDelete, fmt.Sprintf("/api/rfid/%d", id), nil, nil)
}

func (c *Client) StoreStock(ctx context.Context) ([]domain.StoreStockWithDetails, error) {
	var env domain.Envelope[[]domain.StoreStockWithDetails]
	err := c.do(ctx, "StoreStock", http.MethodGet, "/api/store-stock", nil, &env)
	return env.Data, err
}

func (c *Client) ProductsWithStock(ctx context.Context) ([]domain.ProductWithStock, error) {
	var env domain.Envelope[[]domain.ProductWithStock]
	err := c.do(ctx, "ProductsWithStock", http.MethodGet, "/api/products/with-stock", nil, &env)
	return env.Data, err
}

// ProductByBarcode looks a product up for the sale workflow. A 2xx answer
// without data is reported as ErrNotFound.
func (c *Client) ProductByBarcode(ctx context.Context, barcode string) (domain.ProductWithStock, error) {
	var env domain.Envelope[*domain.ProductWithStock]
	err := c.do(ctx, "ProductByBarcode", http.MethodGet, "/api/products/barcode/"+url.PathEscape(barcode), nil, &env)
	if err != nil {
		return domain.ProductWithStock{}, err
	}
	if env.Data == nil {
		return domain.ProductWithStock{}, &domain.APIError{Op: "Backend.ProductByBarcode", Status: http.StatusNotFound, Message: env.Message}
	}
	return *env.Data, nil
}

// CreateProduct answers with the bare product, not an envelope.
func (c *Client) CreateProduct(ctx context.Context, req domain.ProductRegisterRequest) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, "CreateProduct", http.MethodPost, "/api/products", req, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req domain.ProductRegisterRequest) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, "UpdateProduct", http.MethodPut, fmt.Sprintf("/api/products/%d", id), req, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "DeleteProduct", http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
}

func (c *Client) Shelves(ctx context.Context) ([]domain.Shelf, error) {
	var env domain.Envelope[[]domain.Shelf]
	err := c.do(ctx, "Shelves", http.MethodGet, "/api/shelf", nil, &env)
	return env.Data, err
}

func (c *Client) CreateShelf(ctx context.Context, req domain.ShelfRequest) (domain.Shelf, error) {
	var env domain.Envelope[domain.Shelf]
	err := c.do(ctx, "CreateShelf", http.MethodPost, "/api/shelf", req, &env)
	return env.Data, err
}

func (c *Client) UpdateShelf(ctx context.Context, id int64, req domain.ShelfRequest) (domain.Shelf, error) {
	var env domain.Envelope[domain.Shelf]
	err := c.do(ctx, "UpdateShelf", http.MethodPut, fmt.Sprintf("/api/shelf/%d", id), req, &env)
	return env.Data, err
}

func (c *Client) DeleteShelf(ctx context.Context, id int64) error {
	return c.do(ctx, "DeleteShelf", http.MethodDelete, fmt.Sprintf("/api/shelf/%d", id), nil, nil)
}

// OpenAlerts answers with a bare array.
func (c *Client) OpenAlerts(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	err := c.do(ctx, "OpenAlerts", http.MethodGet, "/api/alerts/open", nil, &alerts)
	return alerts, err
}

func (c *Client) ResolveAlert(ctx context.Context, id int64) error {
	return c.do(ctx, "ResolveAlert", http.MethodPut, fmt.Sprintf("/api/alerts/%d/resolve", id), struct{}{}, nil)
}

func (c *Client) RecordSales(ctx context.Context, items []domain.SaleItem) error {
	body := struct {
		Items []domain.SaleItem `json:"items"`
	}{Items: items}
	return c.do(ctx, "RecordSales", http.MethodPost, "/api/sales/multiple", body, nil)
}
