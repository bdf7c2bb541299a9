package console

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rfid-console/internal/adapter/tui/components"
	"rfid-console/internal/usecase/dashboard"
)

func newProductForm(f dashboard.ProductForm) *components.FormModel {
	title := "Register product"
	switch f.Mode {
	case dashboard.ModeEdit:
		title = "Edit product"
	case dashboard.ModeNewFromEvent:
		title = "New tag detected in " + string(f.Location)
	}
	form := components.NewForm(title,
		components.NewTextField("name", "Name", "product name", 120),
		components.NewTextField("barcode", "Barcode", "EAN or internal code", 64),
		components.NewTextField("rfidTag", "RFID tag", "tag id", 128),
		components.NewTextField("description", "Description", "optional", 500),
		components.NewNumberField("unitWeight", "Unit weight", "kg per unit"),
	)
	form.Field("name").SetValue(f.Fields.Name)
	form.Field("barcode").SetValue(f.Fields.Barcode)
	form.Field("rfidTag").SetValue(f.Fields.RfidTag)
	form.Field("description").SetValue(f.Fields.Description)
	form.Field("unitWeight").SetFloat(f.Fields.UnitWeight)
	return &form
}

func newShelfForm(f dashboard.ShelfForm) *components.FormModel {
	title := "New shelf"
	if f.Mode == dashboard.ModeEdit {
		title = "Edit shelf"
	}
	form := components.NewForm(title,
		components.NewTextField("name", "Name", "shelf name", 50),
		components.NewNumberField("maxWeight", "Max weight", "kg"),
		components.NewNumberField("minThreshold", "Min threshold", "kg"),
	)
	form.Field("name").SetValue(f.Fields.Name)
	form.Field("maxWeight").SetFloat(f.Fields.MaxWeight)
	form.Field("minThreshold").SetFloat(f.Fields.MinThreshold)
	return &form
}

func formStatus(phase dashboard.FormPhase) string {
	switch phase {
	case dashboard.PhaseSubmitting:
		return "saving..."
	case dashboard.PhaseSaved:
		return "saved"
	}
	return ""
}

// syncProductForm rebuilds the local widget when the reducer opened a new
// form and drops it when the form closed. Typed input survives other changes.
func (m *Model) syncProductForm() {
	f := m.st.ProductForm
	if !f.Open() {
		m.productForm = nil
		m.productSeq = f.Seq
		return
	}
	if m.productForm == nil || m.productSeq != f.Seq {
		m.productForm = newProductForm(f)
		m.productSeq = f.Seq
	}
	m.productForm.SetErrors(f.Errors)
	m.productForm.Status = formStatus(f.Phase)
}

func (m *Model) syncShelfForm() {
	f := m.st.ShelfForm
	if !f.Open() {
		m.shelfForm = nil
		m.shelfSeq = f.Seq
		return
	}
	if m.shelfForm == nil || m.shelfSeq != f.Seq {
		m.shelfForm = newShelfForm(f)
		m.shelfSeq = f.Seq
	}
	m.shelfForm.SetErrors(f.Errors)
	m.shelfForm.Status = formStatus(f.Phase)
}

func productFields(form *components.FormModel) dashboard.ProductFields {
	return dashboard.ProductFields{
		Name:        form.Field("name").Value(),
		Barcode:     form.Field("barcode").Value(),
		RfidTag:     form.Field("rfidTag").Value(),
		Description: form.Field("description").Value(),
		UnitWeight:  form.Field("unitWeight").Float(),
	}
}

func shelfFields(form *components.FormModel) dashboard.ShelfFields {
	return dashboard.ShelfFields{
		Name:         form.Field("name").Value(),
		MaxWeight:    form.Field("maxWeight").Float(),
		MinThreshold: form.Field("minThreshold").Float(),
	}
}

// formKey is the shared key handling of both forms. It reports whether the
// form should be submitted or closed.
func formKey(form *components.FormModel, msg tea.KeyMsg) (cmd tea.Cmd, submit, closeForm bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		return nil, false, true
	case key.Matches(msg, keys.Save):
		return nil, true, false
	case key.Matches(msg, keys.Prev):
		return form.Prev(), false, false
	case key.Matches(msg, keys.Next):
		return form.Next(), false, false
	case key.Matches(msg, keys.Enter):
		if form.Focused() == len(form.Fields)-1 {
			return nil, true, false
		}
		return form.Next(), false, false
	}
	*form, cmd = form.Update(msg)
	return cmd, false, false
}

func (m *Model) handleProductFormKey(msg tea.KeyMsg) tea.Cmd {
	cmd, submit, closeForm := formKey(m.productForm, msg)
	switch {
	case closeForm:
		m.dash.CloseProductForm()
	case submit:
		m.report(m.dash.SubmitProduct(productFields(m.productForm)))
	}
	return cmd
}

func (m *Model) handleShelfFormKey(msg tea.KeyMsg) tea.Cmd {
	cmd, submit, closeForm := formKey(m.shelfForm, msg)
	switch {
	case closeForm:
		m.dash.CloseShelfForm()
	case submit:
		m.report(m.dash.SubmitShelf(shelfFields(m.shelfForm)))
	}
	return cmd
}

func (m *Model) focusSale(f saleFocus) tea.Cmd {
	m.saleFocus = f
	m.barcode.Blur()
	m.qty.Blur()
	switch f {
	case focusBarcode:
		return m.barcode.Focus()
	case focusQty:
		return m.qty.Focus()
	}
	return nil
}

func (m *Model) clearSaleInputs() {
	m.barcode.SetValue("")
	m.qty.SetValue("")
}

// quantity defaults to one; anything unparsable becomes zero so the reducer
// rejects it.
func (m *Model) quantity() int {
	v := m.qty.Value()
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// handleSaleInputKey drives the barcode and quantity inputs. Esc leaves the
// inputs so the cart and the global keys can be used.
func (m *Model) handleSaleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Escape):
		return m.focusSale(focusCart)
	case key.Matches(msg, keys.Next):
		if m.saleFocus == focusBarcode {
			return m.focusSale(focusQty)
		}
		return m.focusSale(focusCart)
	case key.Matches(msg, keys.Prev):
		if m.saleFocus == focusQty {
			return m.focusSale(focusBarcode)
		}
		return m.focusSale(focusCart)
	case key.Matches(msg, keys.Checkout):
		m.submitSale()
		return nil
	case key.Matches(msg, keys.Enter):
		if m.saleFocus == focusBarcode {
			m.report(m.dash.SearchProduct(m.barcode.Value()))
			return m.focusSale(focusQty)
		}
		if err := m.dash.AddToCart(m.quantity()); err != nil {
			m.report(err)
			return nil
		}
		m.report(nil)
		m.clearSaleInputs()
		return m.focusSale(focusBarcode)
	}

	var cmd tea.Cmd
	if m.saleFocus == focusBarcode {
		m.barcode, cmd = m.barcode.Update(msg)
	} else {
		m.qty, cmd = m.qty.Update(msg)
	}
	return cmd
}

// handleCartKey handles the sales view when no input is focused.
func (m *Model) handleCartKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Search):
		return m.focusSale(focusBarcode)
	case key.Matches(msg, keys.Checkout):
		m.submitSale()
		return nil
	case key.Matches(msg, keys.ResetBuy):
		m.dash.ResetSale()
		m.clearSaleInputs()
		return nil
	}

	cart := m.st.Sale.Cart
	if len(cart) == 0 {
		return nil
	}
	line := cart[m.cursor()]
	switch {
	case key.Matches(msg, keys.Inc):
		m.report(m.dash.UpdateCartQuantity(line.Product.ID, line.Quantity+1))
	case key.Matches(msg, keys.Dec):
		if line.Quantity > 1 {
			m.report(m.dash.UpdateCartQuantity(line.Product.ID, line.Quantity-1))
		}
	case key.Matches(msg, keys.Remove):
		m.dash.RemoveFromCart(line.Product.ID)
	}
	return nil
}

func (m *Model) submitSale() {
	if err := m.dash.SubmitSale(); err != nil {
		m.report(err)
		return
	}
	m.report(nil)
	m.clearSaleInputs()
}
