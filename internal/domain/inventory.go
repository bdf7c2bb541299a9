package domain

import "strings"

// RfidEventType classifies a tag movement reported by a reader.
type RfidEventType string

const (
	RfidNewProduct RfidEventType = "NEW_PRODUCT"
	RfidEntry      RfidEventType = "ENTRY"
	RfidExit       RfidEventType = "EXIT"
)

// Location is where a reader sits.
type Location string

const (
	LocationStock Location = "STOCK"
	LocationStore Location = "STORE"
)

// Alert types the console reacts to. Others are displayed verbatim.
const (
	AlertLowWeight = "LOW_WEIGHT"
	AlertOverload  = "OVERLOAD"
)

// Esp32Stock identifies the stock-room reader on product registration.
const Esp32Stock = "ESP32_STOCK"

// RfidMessage is the body of a /topic/rfid frame.
type RfidMessage struct {
	Type     RfidEventType `json:"type"`
	RfidTag  string        `json:"rfidTag"`
	Location Location      `json:"location"`
}

// Valid reports whether the message carries the fields every consumer needs.
func (m RfidMessage) Valid() bool {
	return strings.TrimSpace(string(m.Type)) != "" && strings.TrimSpace(m.RfidTag) != ""
}

// WeightAffecting reports whether the movement changes shelf weight and stats.
func (m RfidMessage) WeightAffecting() bool {
	return m.Type == RfidEntry || m.Type == RfidExit
}

// Alert is an open stock alert, both as pushed on /topic/alerts and as listed
// by the backend.
type Alert struct {
	ID          int64   `json:"id"`
	ShelfID     int64   `json:"shelfId"`
	ShelfName   string  `json:"shelfName"`
	ProductID   *int64  `json:"productId,omitempty"`
	ProductName *string `json:"productName,omitempty"`
	AlertType   string  `json:"alertType"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

// Valid reports whether the alert has an identity.
func (a Alert) Valid() bool { return a.ID != 0 }

// InvalidatesShelves reports whether the alert type implies shelf weights moved.
func (a Alert) InvalidatesShelves() bool {
	return a.AlertType == AlertLowWeight || a.AlertType == AlertOverload
}

type DashboardStats struct {
	TotalProducts   int64 `json:"totalProducts"`
	TotalStock      int64 `json:"totalStock"`
	TotalStoreStock int64 `json:"totalStoreStock"`
	TotalShelves    int64 `json:"totalShelves"`
}

// RfidEventWithProduct is a persisted tag movement joined with its product.
type RfidEventWithProduct struct {
	ID          int64         `json:"id"`
	ProductID   int64         `json:"productId"`
	ProductName string        `json:"productName"`
	EventType   RfidEventType `json:"eventType"`
	Location    Location      `json:"location"`
	Esp32ID     string        `json:"esp32Id"`
	CreatedAt   string        `json:"createdAt"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode"`
	RfidTag     string  `json:"rfidTag"`
	Description string  `json:"description"`
	UnitWeight  float64 `json:"unitWeight"`
	CreatedAt   string  `json:"createdAt"`
}

// ProductWithStock is a product with its stock-room quantity.
type ProductWithStock struct {
	Product
	StockQuantity int `json:"stockQuantity"`
}

// ProductRegisterRequest is the body of product create and update calls.
type ProductRegisterRequest struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode"`
	RfidTag     string  `json:"rfidTag"`
	Description string  `json:"description"`
	UnitWeight  float64 `json:"unitWeight"`
	Esp32ID     string  `json:"esp32Id,omitempty"`
}

type Shelf struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	MaxWeight     float64 `json:"maxWeight"`
	MinThreshold  float64 `json:"minThreshold"`
	CurrentWeight float64 `json:"currentWeight"`
}

type ShelfRequest struct {
	Name         string  `json:"name"`
	MaxWeight    float64 `json:"maxWeight"`
	MinThreshold float64 `json:"minThreshold"`
}

type StoreStock struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	ShelfID     int64  `json:"shelfId"`
	Quantity    int    `json:"quantity"`
	LastUpdated string `json:"lastUpdated"`
}

// StoreStockWithDetails is a store-stock row joined with product and shelf names.
type StoreStockWithDetails struct {
	StoreStock
	ProductName    string  `json:"productName"`
	ProductBarcode string  `json:"productBarcode"`
	ShelfName      string  `json:"shelfName"`
	UnitWeight     float64 `json:"unitWeight"`
}

type SaleItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Envelope is the wrapper most backend endpoints answer with.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
