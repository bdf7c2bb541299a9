package domain

import "context"

// InventoryAPI is the REST surface of the inventory backend.
type InventoryAPI interface {
	Stats(ctx context.Context) (DashboardStats, error)
	RecentEvents(ctx context.Context, limit int) ([]RfidEventWithProduct, error)
	DeleteEvent(ctx context.Context, id int64) error

	StoreStock(ctx context.Context) ([]StoreStockWithDetails, error)

	ProductsWithStock(ctx context.Context) ([]ProductWithStock, error)
	ProductByBarcode(ctx context.Context, barcode string) (ProductWithStock, error)
	CreateProduct(ctx context.Context, req ProductRegisterRequest) (Product, error)
	UpdateProduct(ctx context.Context, id int64, req ProductRegisterRequest) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	Shelves(ctx context.Context) ([]Shelf, error)
	CreateShelf(ctx context.Context, req ShelfRequest) (Shelf, error)
	UpdateShelf(ctx context.Context, id int64, req ShelfRequest) (Shelf, error)
	DeleteShelf(ctx context.Context, id int64) error

	OpenAlerts(ctx context.Context) ([]Alert, error)
	ResolveAlert(ctx context.Context, id int64) error

	RecordSales(ctx context.Context, items []SaleItem) error
}
