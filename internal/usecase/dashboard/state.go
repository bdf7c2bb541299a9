package dashboard

import (
	"rfid-console/internal/domain"
)

// View is a dashboard screen.
type View string

const (
	ViewHome     View = "home"
	ViewStock    View = "stock"
	ViewStore    View = "store"
	ViewProducts View = "products"
	ViewShelves  View = "shelves"
	ViewAlerts   View = "alerts"
	ViewSales    View = "sales"
)

// Views lists every view in navigation order.
var Views = []View{ViewHome, ViewStock, ViewStore, ViewProducts, ViewShelves, ViewAlerts, ViewSales}

// ParseView resolves a view name.
func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Cell names an independently observable part of the state.
type Cell string

const (
	CellStats       Cell = "stats"
	CellEvents      Cell = "events"
	CellStoreStock  Cell = "storeStock"
	CellProducts    Cell = "products"
	CellShelves     Cell = "shelves"
	CellAlerts      Cell = "alerts"
	CellView        Cell = "view"
	CellProductForm Cell = "productForm"
	CellShelfForm   Cell = "shelfForm"
	CellBanner      Cell = "banner"
	CellToast       Cell = "toast"
	CellConfirm     Cell = "confirm"
	CellSale        Cell = "sale"
	CellBusy        Cell = "busy"
)

// FormMode says why a form was opened.
type FormMode string

const (
	ModeNewFromEvent FormMode = "new_from_event"
	ModeAdd          FormMode = "add"
	ModeEdit         FormMode = "edit"
)

// FormPhase is the form lifecycle position.
//
//	closed -> open -> submitting -> saved -> closed
//	                  submitting -> open (on error)
type FormPhase string

const (
	PhaseClosed     FormPhase = "closed"
	PhaseOpen       FormPhase = "open"
	PhaseSubmitting FormPhase = "submitting"
	PhaseSaved      FormPhase = "saved"
)

// ProductForm is the product registration/edit form.
type ProductForm struct {
	Seq       uint64 // changes every time the form is opened or closed
	Phase     FormPhase
	Mode      FormMode
	EditingID int64
	Location  domain.Location
	Fields    ProductFields
	Errors    FieldErrors
}

// Open reports whether the form is shown.
func (f ProductForm) Open() bool { return f.Phase != PhaseClosed }

// Saving reports whether a submit is in flight.
func (f ProductForm) Saving() bool { return f.Phase == PhaseSubmitting }

// ShelfForm is the shelf create/edit form.
type ShelfForm struct {
	Seq       uint64
	Phase     FormPhase
	Mode      FormMode
	EditingID int64
	Fields    ShelfFields
	Errors    FieldErrors
}

func (f ShelfForm) Open() bool   { return f.Phase != PhaseClosed }
func (f ShelfForm) Saving() bool { return f.Phase == PhaseSubmitting }

// BannerKind distinguishes success from error banners.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the page-level status message.
type Banner struct {
	Kind BannerKind
	Text string
}

// Toast is the transient alert notification.
type Toast struct {
	ID      string
	Message string
	Alert   domain.Alert
}

// ConfirmKind is the action awaiting confirmation.
type ConfirmKind string

const (
	ConfirmDeleteProduct ConfirmKind = "delete_product"
	ConfirmDeleteShelf   ConfirmKind = "delete_shelf"
	ConfirmDeleteEvent   ConfirmKind = "delete_event"
	ConfirmResolveAlert  ConfirmKind = "resolve_alert"
)

// Confirmation is a destructive action waiting for the operator.
type Confirmation struct {
	ID       string
	Kind     ConfirmKind
	TargetID int64
	Prompt   string
}

// SaleState is the sale workflow: lookup form, found product and cart.
type SaleState struct {
	Barcode  string
	Quantity int
	Found    *domain.ProductWithStock
	Cart     []CartLine
	Total    int
	Info     string
	Error    string
}

// Busy holds loading flags and per-entity in-flight markers.
type Busy struct {
	Stats      bool
	Events     bool
	StoreStock bool
	Products   bool
	Shelves    bool
	Alerts     bool

	SearchingProduct bool
	ProcessingSale   bool

	DeletingProducts []int64
	DeletingShelves  []int64
	DeletingEvents   []int64
	ResolvingAlerts  []int64
}

// State is a consistent copy of every cell.
type State struct {
	Stats      *domain.DashboardStats
	Events     []domain.RfidEventWithProduct
	StoreStock []domain.StoreStockWithDetails
	Products   []domain.ProductWithStock
	Shelves    []domain.Shelf
	Alerts     []domain.Alert
	OpenAlerts int

	View        View
	ProductForm ProductForm
	ShelfForm   ShelfForm
	Banner      *Banner
	Toast       *Toast
	Confirm     *Confirmation
	Sale        SaleState
	Busy        Busy
}
