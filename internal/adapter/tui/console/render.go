package console

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/push"
	"rfid-console/internal/adapter/tui/components"
	"rfid-console/internal/adapter/tui/theme"
	"rfid-console/internal/domain"
	"rfid-console/internal/usecase/dashboard"
)

// View renders the screen.
func (m *Model) View() string {
	header := []string{m.tabs.View()}
	if b := m.st.Banner; b != nil {
		style := theme.BannerSuccess
		sym := theme.SymbolSuccess
		if b.Kind == dashboard.BannerError {
			style = theme.BannerError
			sym = theme.SymbolError
		}
		header = append(header, style.Render(sym+" "+b.Text))
	}
	if t := m.st.Toast; t != nil {
		header = append(header, theme.Toast.Render(theme.SymbolWarning+" "+t.Message+"  "+theme.Dim.Render("t: open  esc: dismiss")))
	}
	top := lipgloss.JoinVertical(lipgloss.Left, header...)
	status := m.statusBar()

	bodyHeight := m.height - lipgloss.Height(top) - lipgloss.Height(status)
	var body string
	switch {
	case m.st.Confirm != nil:
		d := components.NewDialog("Please confirm", m.st.Confirm.Prompt)
		d.SetSize(m.width, bodyHeight)
		body = d.View()
	case m.productForm != nil:
		body = m.productForm.View()
	case m.shelfForm != nil:
		body = m.shelfForm.View()
	case m.help:
		body = helpView()
	default:
		body = m.viewBody(bodyHeight)
	}
	if m.height > 0 && bodyHeight > 0 {
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body, status)
}

func (m *Model) viewBody(height int) string {
	tableHeight := height - 4
	switch m.st.View {
	case dashboard.ViewHome:
		return lipgloss.JoinVertical(lipgloss.Left, m.statCards(), m.eventsTable(tableHeight-4))
	case dashboard.ViewStock:
		return m.section("Stock room movements", m.st.Busy.Events, m.eventsTable(tableHeight))
	case dashboard.ViewStore:
		return m.section("Store stock", m.st.Busy.StoreStock, m.storeTable(tableHeight))
	case dashboard.ViewProducts:
		return m.section("Products", m.st.Busy.Products, m.productsTable(tableHeight))
	case dashboard.ViewShelves:
		return m.section("Shelves", m.st.Busy.Shelves, m.shelvesTable(tableHeight))
	case dashboard.ViewAlerts:
		title := fmt.Sprintf("Open alerts (%d)", m.st.OpenAlerts)
		return m.section(title, m.st.Busy.Alerts, m.alertsTable(tableHeight))
	case dashboard.ViewSales:
		return m.saleView(tableHeight)
	}
	return ""
}

func (m *Model) section(title string, loading bool, content string) string {
	if loading {
		title += " " + m.spin.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, theme.SectionTitle.Render(title), content)
}

func (m *Model) statCards() string {
	value := func(n int64) string {
		if m.st.Stats == nil {
			return "-"
		}
		return strconv.FormatInt(n, 10)
	}
	var s domain.DashboardStats
	if m.st.Stats != nil {
		s = *m.st.Stats
	}
	card := func(label, v string) string {
		return theme.StatCard.Render(theme.StatValue.Render(v) + "\n" + theme.StatLabel.Render(label))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("products", value(s.TotalProducts)),
		card("in stock room", value(s.TotalStock)),
		card("in store", value(s.TotalStoreStock)),
		card("shelves", value(s.TotalShelves)),
		card("open alerts", strconv.Itoa(m.st.OpenAlerts)),
	)
	if m.st.Busy.Stats {
		cards += " " + m.spin.View()
	}
	return cards
}

func (m *Model) table(columns []table.Column, rows []table.Row, height int) string {
	if len(rows) == 0 {
		return theme.TextMuted.Render("nothing to show")
	}
	return components.NewTable(columns, rows, height, m.cursor(), true).View()
}

func pending(ids []int64, id int64) string {
	if slices.Contains(ids, id) {
		return theme.SymbolEllipsis
	}
	return ""
}

func (m *Model) eventsTable(height int) string {
	cols := []table.Column{
		{Title: "When", Width: 20},
		{Title: "Type", Width: 12},
		{Title: "Where", Width: 6},
		{Title: "Product", Width: 28},
		{Title: "Reader", Width: 14},
		{Title: "", Width: 2},
	}
	rows := make([]table.Row, 0, len(m.st.Events))
	for _, e := range m.st.Events {
		rows = append(rows, table.Row{
			e.CreatedAt, string(e.EventType), string(e.Location),
			components.Truncate(e.ProductName, 28), e.Esp32ID,
			pending(m.st.Busy.DeletingEvents, e.ID),
		})
	}
	return m.table(cols, rows, height)
}

func (m *Model) storeTable(height int) string {
	cols := []table.Column{
		{Title: "Product", Width: 28},
		{Title: "Barcode", Width: 16},
		{Title: "Shelf", Width: 14},
		{Title: "Qty", Width: 6},
		{Title: "Updated", Width: 20},
	}
	rows := make([]table.Row, 0, len(m.st.StoreStock))
	for _, s := range m.st.StoreStock {
		rows = append(rows, table.Row{
			components.Truncate(s.ProductName, 28), s.ProductBarcode, s.ShelfName,
			strconv.Itoa(s.Quantity), s.LastUpdated,
		})
	}
	return m.table(cols, rows, height)
}

func (m *Model) productsTable(height int) string {
	cols := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Barcode", Width: 16},
		{Title: "RFID tag", Width: 18},
		{Title: "Weight", Width: 8},
		{Title: "Stock", Width: 6},
		{Title: "", Width: 2},
	}
	rows := make([]table.Row, 0, len(m.st.Products))
	for _, p := range m.st.Products {
		rows = append(rows, table.Row{
			components.Truncate(p.Name, 28), p.Barcode, components.Truncate(p.RfidTag, 18),
			strconv.FormatFloat(p.UnitWeight, 'f', -1, 64), strconv.Itoa(p.StockQuantity),
			pending(m.st.Busy.DeletingProducts, p.ID),
		})
	}
	return m.table(cols, rows, height)
}

func (m *Model) shelvesTable(height int) string {
	cols := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Current", Width: 10},
		{Title: "Max", Width: 10},
		{Title: "Minimum", Width: 10},
		{Title: "Fill", Width: 6},
		{Title: "", Width: 2},
	}
	rows := make([]table.Row, 0, len(m.st.Shelves))
	for _, s := range m.st.Shelves {
		fill := "-"
		if s.MaxWeight > 0 {
			fill = strconv.Itoa(int(s.CurrentWeight*100/s.MaxWeight)) + "%"
		}
		rows = append(rows, table.Row{
			s.Name, weight(s.CurrentWeight), weight(s.MaxWeight), weight(s.MinThreshold), fill,
			pending(m.st.Busy.DeletingShelves, s.ID),
		})
	}
	return m.table(cols, rows, height)
}

func weight(w float64) string { return strconv.FormatFloat(w, 'f', 2, 64) }

func (m *Model) alertsTable(height int) string {
	cols := []table.Column{
		{Title: "When", Width: 20},
		{Title: "Type", Width: 12},
		{Title: "Shelf", Width: 16},
		{Title: "Product", Width: 24},
		{Title: "Status", Width: 10},
		{Title: "", Width: 2},
	}
	rows := make([]table.Row, 0, len(m.st.Alerts))
	for _, a := range m.st.Alerts {
		product := ""
		if a.ProductName != nil {
			product = *a.ProductName
		}
		rows = append(rows, table.Row{
			a.CreatedAt, a.AlertType, a.ShelfName, components.Truncate(product, 24), a.Status,
			pending(m.st.Busy.ResolvingAlerts, a.ID),
		})
	}
	return m.table(cols, rows, height)
}

func (m *Model) saleView(height int) string {
	sale := m.st.Sale
	lookup := m.barcode.View() + "  " + m.qty.View()
	if m.st.Busy.SearchingProduct {
		lookup += " " + m.spin.View()
	}
	parts := []string{theme.SectionTitle.Render("Sale"), lookup}

	if p := sale.Found; p != nil {
		parts = append(parts, theme.TextInfo.Render(fmt.Sprintf("%s %s  (%s, %d in store)",
			theme.SymbolArrowR, p.Name, p.Barcode, p.StockQuantity)))
	}
	if sale.Error != "" {
		parts = append(parts, theme.TextError.Render(theme.SymbolError+" "+sale.Error))
	}
	if sale.Info != "" {
		parts = append(parts, theme.TextSuccess.Render(theme.SymbolSuccess+" "+sale.Info))
	}

	cols := []table.Column{
		{Title: "Product", Width: 28},
		{Title: "Barcode", Width: 16},
		{Title: "Qty", Width: 6},
		{Title: "Available", Width: 10},
	}
	rows := make([]table.Row, 0, len(sale.Cart))
	for _, l := range sale.Cart {
		rows = append(rows, table.Row{
			components.Truncate(l.Product.Name, 28), l.Product.Barcode,
			strconv.Itoa(l.Quantity), strconv.Itoa(l.Product.StockQuantity),
		})
	}
	cart := theme.TextMuted.Render("cart is empty")
	if len(rows) > 0 {
		cart = components.NewTable(cols, rows, height-len(parts)-3, m.cursor(), m.saleFocus == focusCart).View()
	}
	total := theme.Bold.Render(fmt.Sprintf("Total: %d item(s)", sale.Total))
	if m.st.Busy.ProcessingSale {
		total += " " + m.spin.View()
	}
	parts = append(parts, "", cart, total)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) statusBar() string {
	sb := components.NewStatusBar()
	sb.SetWidth(m.width)
	sb.Hints = m.hints()
	if m.opts.ConnState != nil {
		state := m.opts.ConnState()
		sb.Connected = state == push.StateConnected
		sb.ConnLabel = "live: " + state.String()
	}
	switch {
	case m.flash != "":
		sb.Extra = m.flash
		sb.ExtraErr = m.flashErr
	case m.loading():
		sb.Extra = m.spin.View() + " loading"
	}
	return sb.View()
}

func (m *Model) loading() bool {
	b := m.st.Busy
	return b.Stats || b.Events || b.StoreStock || b.Products || b.Shelves || b.Alerts
}

func (m *Model) hints() []components.KeyHint {
	h := func(k string, d string) components.KeyHint { return components.KeyHint{Key: k, Desc: d} }
	switch {
	case m.st.Confirm != nil:
		return []components.KeyHint{h("y", "confirm"), h("n", "cancel")}
	case m.productForm != nil, m.shelfForm != nil:
		return []components.KeyHint{h("tab", "next"), h("ctrl+s", "save"), h("esc", "close")}
	case m.help:
		return []components.KeyHint{h("any key", "close help")}
	}
	switch m.st.View {
	case dashboard.ViewProducts, dashboard.ViewShelves:
		return []components.KeyHint{h("1-7", "views"), h("a", "add"), h("e", "edit"), h("d", "delete"), h("?", "help")}
	case dashboard.ViewAlerts:
		return []components.KeyHint{h("1-7", "views"), h("d", "resolve"), h("?", "help")}
	case dashboard.ViewSales:
		if m.saleFocus != focusCart {
			return []components.KeyHint{h("enter", "search/add"), h("tab", "next"), h("ctrl+s", "record sale"), h("esc", "cart")}
		}
		return []components.KeyHint{h("/", "barcode"), h("+/-", "qty"), h("x", "remove"), h("ctrl+s", "record sale"), h("ctrl+n", "new")}
	}
	return []components.KeyHint{h("1-7", "views"), h("d", "delete event"), h("r", "reload"), h("?", "help"), h("q", "quit")}
}

var helpLines = [][2]string{
	{"1-7", "home, stock room, store, products, shelves, alerts, sales"},
	{"h / 0", "back to home"},
	{"r", "reload everything"},
	{"up/down", "move the selection"},
	{"a", "add a product or shelf"},
	{"e / enter", "edit the selected product or shelf"},
	{"d", "delete the selection, or resolve an alert"},
	{"t", "open alerts from the notification"},
	{"esc", "dismiss the notification"},
	{"/", "sales: focus the barcode input"},
	{"+ / - / x", "sales: change or remove the selected cart line"},
	{"ctrl+s", "save a form or record the sale"},
	{"ctrl+n", "sales: start over"},
	{"q", "quit"},
}

func helpView() string {
	var b strings.Builder
	for _, l := range helpLines {
		b.WriteString(theme.StatusKey.Render(fmt.Sprintf("%-12s", l[0])))
		b.WriteString(l[1])
		b.WriteString("\n")
	}
	return theme.BorderNormal.Padding(0, 1).Render(theme.SectionTitle.Render("Keys") + "\n" + b.String())
}
