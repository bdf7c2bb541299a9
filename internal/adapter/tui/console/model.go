// Package console is the terminal front end of the RFID console. It renders
// dashboard snapshots and turns key presses into reducer operations; the
// inventory rules live in the reducer.
package console

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rfid-console/internal/adapter/push"
	"rfid-console/internal/adapter/tui/components"
	"rfid-console/internal/adapter/tui/theme"
	"rfid-console/internal/adapter/tui/uxerror"
	"rfid-console/internal/domain"
	"rfid-console/internal/usecase/dashboard"
)

// Dashboard is the part of *dashboard.Reducer the console drives.
type Dashboard interface {
	Snapshot() dashboard.State
	SelectView(v dashboard.View) error
	GoHome()
	Reload()
	DismissToast()
	OpenAlertsFromToast()

	OpenAddProduct()
	OpenEditProduct(p domain.Product)
	CloseProductForm()
	SubmitProduct(f dashboard.ProductFields) error
	OpenAddShelf()
	OpenEditShelf(s domain.Shelf)
	CloseShelfForm()
	SubmitShelf(f dashboard.ShelfFields) error

	RequestDeleteProduct(id int64, name string)
	RequestDeleteShelf(id int64, name string)
	RequestDeleteEvent(id int64)
	RequestResolveAlert(id int64, shelfName string)
	Confirm() error
	Cancel()

	SearchProduct(barcode string) error
	AddToCart(qty int) error
	UpdateCartQuantity(productID int64, qty int) error
	RemoveFromCart(productID int64)
	ResetSale()
	SubmitSale() error
}

var _ Dashboard = (*dashboard.Reducer)(nil)

// Options configures the console.
type Options struct {
	// Changes wakes the UI up. Without it the screen only refreshes on input.
	Changes *Notifier
	// ConnState reports the push connection for the status bar.
	ConnState func() push.State
}

type saleFocus int

const (
	focusBarcode saleFocus = iota
	focusQty
	focusCart
)

var viewLabels = map[dashboard.View]string{
	dashboard.ViewHome:     "Home",
	dashboard.ViewStock:    "Stock room",
	dashboard.ViewStore:    "Store",
	dashboard.ViewProducts: "Products",
	dashboard.ViewShelves:  "Shelves",
	dashboard.ViewAlerts:   "Alerts",
	dashboard.ViewSales:    "Sales",
}

// Model is the root Bubble Tea model.
type Model struct {
	dash Dashboard
	opts Options
	ctx  context.Context

	st      dashboard.State
	tabs    components.TabBarModel
	spin    spinner.Model
	cursors map[dashboard.View]int

	productForm *components.FormModel
	productSeq  uint64
	shelfForm   *components.FormModel
	shelfSeq    uint64

	barcode   textinput.Model
	qty       textinput.Model
	saleFocus saleFocus

	flash    string
	flashErr bool
	help     bool

	width  int
	height int
}

var _ tea.Model = (*Model)(nil)

// New creates the console model. ctx bounds the background wait for changes.
func New(ctx context.Context, dash Dashboard, opts Options) *Model {
	tabs := make([]components.Tab, 0, len(dashboard.Views))
	for i, v := range dashboard.Views {
		tabs = append(tabs, components.Tab{ID: string(v), Label: viewLabels[v], Key: strconv.Itoa(i + 1)})
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.TextInfo

	bc := textinput.New()
	bc.Placeholder = "scan or type a barcode"
	bc.CharLimit = 64
	bc.Width = 30
	bc.Prompt = "barcode> "
	bc.PromptStyle = theme.InputPrompt

	qty := textinput.New()
	qty.Placeholder = "1"
	qty.CharLimit = 6
	qty.Width = 6
	qty.Prompt = "qty> "
	qty.PromptStyle = theme.InputPrompt
	qty.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	m := &Model{
		dash:    dash,
		opts:    opts,
		ctx:     ctx,
		tabs:    components.NewTabBar(tabs),
		spin:    s,
		cursors: make(map[dashboard.View]int),
		barcode: bc,
		qty:     qty,
	}
	m.sync()
	return m
}

// Init starts the spinner and the change listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitChange())
}

func (m *Model) waitChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	return m.opts.Changes.wait(m.ctx)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tabs.SetWidth(msg.Width)
		return m, nil

	case changedMsg:
		m.sync()
		return m, m.waitChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		cmd := m.handleKey(msg)
		m.sync()
		return m, cmd
	}
	return m, m.forward(msg)
}

// forward passes other messages, such as cursor blinks, to the live inputs.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch {
	case m.productForm != nil:
		*m.productForm, cmd = m.productForm.Update(msg)
		cmds = append(cmds, cmd)
	case m.shelfForm != nil:
		*m.shelfForm, cmd = m.shelfForm.Update(msg)
		cmds = append(cmds, cmd)
	case m.st.View == dashboard.ViewSales:
		m.barcode, cmd = m.barcode.Update(msg)
		cmds = append(cmds, cmd)
		m.qty, cmd = m.qty.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.st.Confirm != nil:
		m.handleConfirmKey(msg)
		return nil
	case m.productForm != nil:
		return m.handleProductFormKey(msg)
	case m.shelfForm != nil:
		return m.handleShelfFormKey(msg)
	case m.help:
		m.help = false
		return nil
	case m.st.View == dashboard.ViewSales && m.saleFocus != focusCart:
		return m.handleSaleInputKey(msg)
	}
	return m.handleGlobalKey(msg)
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Yes):
		m.report(m.dash.Confirm())
	case key.Matches(msg, keys.No):
		m.dash.Cancel()
	}
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	for i, b := range keys.Views {
		if key.Matches(msg, b) {
			m.report(m.dash.SelectView(dashboard.Views[i]))
			if dashboard.Views[i] == dashboard.ViewSales {
				m.clearSaleInputs()
				return m.focusSale(focusBarcode)
			}
			return nil
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.help = true
	case key.Matches(msg, keys.Home):
		m.dash.GoHome()
	case key.Matches(msg, keys.Reload):
		m.dash.Reload()
	case key.Matches(msg, keys.Toast) && m.st.Toast != nil:
		m.dash.OpenAlertsFromToast()
	case key.Matches(msg, keys.Escape):
		if m.st.Toast != nil {
			m.dash.DismissToast()
		} else {
			m.flash = ""
		}
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case m.st.View == dashboard.ViewSales:
		return m.handleCartKey(msg)
	case key.Matches(msg, keys.Add):
		m.add()
	case key.Matches(msg, keys.Edit):
		m.edit()
	case key.Matches(msg, keys.Delete):
		m.remove()
	}
	return nil
}

// report shows err in the status bar, or clears a previous error.
func (m *Model) report(err error) {
	if err == nil {
		if m.flashErr {
			m.flash = ""
			m.flashErr = false
		}
		return
	}
	m.flash = uxerror.Humanize(err).Short()
	m.flashErr = true
}

// sync takes a fresh snapshot and reconciles local widgets with it.
func (m *Model) sync() {
	m.st = m.dash.Snapshot()
	m.tabs.SetActiveID(string(m.st.View))
	m.tabs.SetBadge(string(dashboard.ViewAlerts), m.st.OpenAlerts)
	m.syncProductForm()
	m.syncShelfForm()
}

func (m *Model) moveCursor(d int) {
	n := m.rowCount()
	if n == 0 {
		return
	}
	m.cursors[m.st.View] = theme.Clamp(m.cursors[m.st.View]+d, 0, n-1)
}

func (m *Model) cursor() int {
	n := m.rowCount()
	if n == 0 {
		return 0
	}
	return theme.Clamp(m.cursors[m.st.View], 0, n-1)
}

func (m *Model) rowCount() int {
	switch m.st.View {
	case dashboard.ViewHome, dashboard.ViewStock:
		return len(m.st.Events)
	case dashboard.ViewStore:
		return len(m.st.StoreStock)
	case dashboard.ViewProducts:
		return len(m.st.Products)
	case dashboard.ViewShelves:
		return len(m.st.Shelves)
	case dashboard.ViewAlerts:
		return len(m.st.Alerts)
	case dashboard.ViewSales:
		return len(m.st.Sale.Cart)
	}
	return 0
}

func (m *Model) add() {
	switch m.st.View {
	case dashboard.ViewProducts:
		m.dash.OpenAddProduct()
	case dashboard.ViewShelves:
		m.dash.OpenAddShelf()
	}
}

func (m *Model) edit() {
	switch m.st.View {
	case dashboard.ViewProducts:
		if len(m.st.Products) > 0 {
			m.dash.OpenEditProduct(m.st.Products[m.cursor()].Product)
		}
	case dashboard.ViewShelves:
		if len(m.st.Shelves) > 0 {
			m.dash.OpenEditShelf(m.st.Shelves[m.cursor()])
		}
	}
}

func (m *Model) remove() {
	if m.rowCount() == 0 {
		return
	}
	i := m.cursor()
	switch m.st.View {
	case dashboard.ViewHome, dashboard.ViewStock:
		m.dash.RequestDeleteEvent(m.st.Events[i].ID)
	case dashboard.ViewProducts:
		p := m.st.Products[i]
		m.dash.RequestDeleteProduct(p.ID, p.Name)
	case dashboard.ViewShelves:
		s := m.st.Shelves[i]
		m.dash.RequestDeleteShelf(s.ID, s.Name)
	case dashboard.ViewAlerts:
		a := m.st.Alerts[i]
		m.dash.RequestResolveAlert(a.ID, a.ShelfName)
	}
}
