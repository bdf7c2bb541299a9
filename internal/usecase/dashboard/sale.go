package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rfid-console/internal/domain"
)

// SearchProduct looks up a product by barcode for the sale workflow.
func (r *Reducer) SearchProduct(barcode string) error {
	var err error
	r.exec(func() { err = r.searchProduct(barcode) })
	return err
}

func (r *Reducer) searchProduct(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	r.st.Sale.Barcode = barcode
	if barcode == "" {
		hold(r, &r.saleErr, CellSale, "enter a barcode")
		return domain.NewDomainError("SearchProduct", domain.ErrInvalidInput, "barcode is required")
	}

	r.searchGen++
	gen := r.searchGen
	r.searching = true
	r.st.Sale.Found = nil
	drop(r, &r.saleErr, CellSale)
	r.changed(CellSale)
	r.changed(CellBusy)

	var found domain.ProductWithStock
	r.spawn(func(ctx context.Context) error {
		var err error
		found, err = r.api.ProductByBarcode(ctx, barcode)
		return err
	}, func(err error) {
		if gen != r.searchGen {
			return
		}
		r.searching = false
		r.changed(CellBusy)
		if err != nil {
			r.logger.Debug("product lookup failed", "barcode", barcode, "error", err)
			r.st.Sale.Found = nil
			hold(r, &r.saleErr, CellSale, domain.MessageOf(err, "product not found or not available in store"))
			return
		}
		r.st.Sale.Found = &found
		drop(r, &r.saleErr, CellSale)
		r.changed(CellSale)
	})
	return nil
}

// AddToCart adds qty of the looked-up product to the cart.
func (r *Reducer) AddToCart(qty int) error {
	var err error
	r.exec(func() { err = r.addToCart(qty) })
	return err
}

func (r *Reducer) addToCart(qty int) error {
	p := r.st.Sale.Found
	if p == nil {
		hold(r, &r.saleErr, CellSale, "search for a product first")
		return domain.NewDomainError("AddToCart", domain.ErrNoProduct, "no product selected")
	}
	r.st.Sale.Quantity = qty
	if err := r.cart.Add(*p, qty); err != nil {
		msg := "quantity must be at least 1"
		if errors.Is(err, domain.ErrInsufficientStock) {
			msg = fmt.Sprintf("insufficient stock (available: %d)", p.StockQuantity)
		}
		hold(r, &r.saleErr, CellSale, msg)
		return err
	}

	name := p.Name
	r.st.Sale.Barcode = ""
	r.st.Sale.Quantity = 1
	r.st.Sale.Found = nil
	drop(r, &r.saleErr, CellSale)
	flash(r, &r.saleInfo, CellSale, name+" added to cart", r.cfg.CartMessageDelay)
	return nil
}

// UpdateCartQuantity sets the quantity of a cart line. Quantities below one
// are ignored.
func (r *Reducer) UpdateCartQuantity(productID int64, qty int) error {
	var err error
	r.exec(func() { err = r.updateCartQuantity(productID, qty) })
	return err
}

func (r *Reducer) updateCartQuantity(productID int64, qty int) error {
	if qty < 1 {
		return nil
	}
	line, ok := r.cart.Line(productID)
	if !ok {
		return domain.NewDomainError("UpdateCartQuantity", domain.ErrNotFound, fmt.Sprintf("product %d not in cart", productID))
	}
	if err := r.cart.SetQuantity(productID, qty); err != nil {
		flash(r, &r.saleErr, CellSale, fmt.Sprintf("insufficient stock for %s (available: %d)",
			line.Product.Name, line.Product.StockQuantity), r.cfg.CartErrorDelay)
		return err
	}
	r.changed(CellSale)
	return nil
}

// RemoveFromCart drops a cart line.
func (r *Reducer) RemoveFromCart(productID int64) {
	r.exec(func() {
		r.cart.Remove(productID)
		r.changed(CellSale)
	})
}

// ResetSale clears the lookup form, the cart and the sale messages.
func (r *Reducer) ResetSale() {
	r.exec(r.resetSale)
}

func (r *Reducer) resetSale() {
	r.searchGen++
	if r.searching {
		r.searching = false
		r.changed(CellBusy)
	}
	r.st.Sale = SaleState{Quantity: 1}
	r.cart.Reset()
	r.saleInfo.clear()
	r.saleErr.clear()
	r.changed(CellSale)
}

// SubmitSale records the whole cart as one sale.
func (r *Reducer) SubmitSale() error {
	var err error
	r.exec(func() { err = r.submitSale() })
	return err
}

func (r *Reducer) submitSale() error {
	if r.cart.Len() == 0 {
		hold(r, &r.saleErr, CellSale, "cart is empty, add products first")
		return domain.NewDomainError("SubmitSale", domain.ErrEmptyCart, "cart is empty")
	}
	if r.selling {
		return domain.NewDomainError("SubmitSale", domain.ErrBusy, "sale in progress")
	}

	r.selling = true
	r.changed(CellBusy)
	drop(r, &r.saleErr, CellSale)

	items, total, products := r.cart.Items(), r.cart.Total(), r.cart.Len()
	r.spawn(func(ctx context.Context) error {
		return r.api.RecordSales(ctx, items)
	}, func(err error) {
		r.selling = false
		r.changed(CellBusy)
		if err != nil {
			r.logger.Warn("sale failed", "items", total, "error", err)
			hold(r, &r.saleErr, CellSale, domain.MessageOf(err, "could not record sale"))
			return
		}
		r.logger.Info("sale recorded", "items", total, "products", products)
		r.resetSale()
		flash(r, &r.saleInfo, CellSale,
			fmt.Sprintf("sale recorded: %d item(s) of %d product(s)", total, products),
			r.cfg.SaleMessageDelay)
		r.loadStats()
		r.loadStoreStock()
	})
	return nil
}
