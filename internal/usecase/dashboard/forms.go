package dashboard

import (
	"context"

	"rfid-console/internal/domain"
)

// OpenAddProduct opens an empty product form.
func (r *Reducer) OpenAddProduct() {
	r.exec(func() {
		r.openProductForm(ModeAdd, 0, "", ProductFields{UnitWeight: minUnitWeight})
	})
}

// OpenEditProduct opens the product form pre-filled with p.
func (r *Reducer) OpenEditProduct(p domain.Product) {
	r.exec(func() {
		r.openProductForm(ModeEdit, p.ID, "", productFieldsOf(p))
	})
}

// CloseProductForm closes the product form. A pending save still completes
// but no longer touches the form.
func (r *Reducer) CloseProductForm() {
	r.exec(r.closeProductForm)
}

func (r *Reducer) openProductForm(mode FormMode, id int64, loc domain.Location, f ProductFields) {
	r.productFormGen++
	r.st.ProductForm = ProductForm{
		Seq:       r.productFormGen,
		Phase:     PhaseOpen,
		Mode:      mode,
		EditingID: id,
		Location:  loc,
		Fields:    f,
	}
	drop(r, &r.banner, CellBanner)
	r.changed(CellProductForm)
}

func (r *Reducer) closeProductForm() {
	if !r.st.ProductForm.Open() {
		return
	}
	r.productFormGen++
	r.st.ProductForm = ProductForm{Seq: r.productFormGen, Phase: PhaseClosed}
	drop(r, &r.banner, CellBanner)
	r.changed(CellProductForm)
}

// SubmitProduct validates f and, if it passes, creates or updates the
// product. It returns an ErrInvalidInput error when validation fails and
// ErrBusy while a previous submit is still being handled.
func (r *Reducer) SubmitProduct(f ProductFields) error {
	var err error
	r.exec(func() { err = r.submitProduct(f) })
	return err
}

func (r *Reducer) submitProduct(f ProductFields) error {
	form := &r.st.ProductForm
	switch form.Phase {
	case PhaseClosed:
		return domain.NewDomainError("SubmitProduct", domain.ErrInvalidInput, "form is closed")
	case PhaseSubmitting, PhaseSaved:
		return domain.NewDomainError("SubmitProduct", domain.ErrBusy, "save in progress")
	}

	f = f.trimmed()
	form.Fields = f
	form.Errors = ValidateProduct(f)
	if form.Errors != nil {
		r.changed(CellProductForm)
		return domain.NewDomainError("SubmitProduct", domain.ErrInvalidInput, form.Errors.Error())
	}

	form.Phase = PhaseSubmitting
	drop(r, &r.banner, CellBanner)
	r.changed(CellProductForm)

	gen, mode, id, req := r.productFormGen, form.Mode, form.EditingID, f.request()
	r.spawn(func(ctx context.Context) error {
		if mode == ModeEdit {
			_, err := r.api.UpdateProduct(ctx, id, req)
			return err
		}
		_, err := r.api.CreateProduct(ctx, req)
		return err
	}, func(err error) {
		r.productSaved(gen, mode, err)
	})
	return nil
}

func (r *Reducer) productSaved(gen uint64, mode FormMode, err error) {
	if gen != r.productFormGen {
		// The form was closed or reopened meanwhile.
		if err == nil {
			r.refreshAfterProductSave(mode)
		}
		return
	}

	form := &r.st.ProductForm
	if err != nil {
		r.logger.Warn("product save failed", "mode", mode, "error", err)
		form.Phase = PhaseOpen
		fallback := "could not register product"
		if mode == ModeEdit {
			fallback = "could not update product"
		}
		hold(r, &r.banner, CellBanner, Banner{Kind: BannerError, Text: domain.MessageOf(err, fallback)})
		r.changed(CellProductForm)
		return
	}

	form.Phase = PhaseSaved
	text := "product registered"
	if mode == ModeEdit {
		text = "product updated"
	}
	hold(r, &r.banner, CellBanner, Banner{Kind: BannerSuccess, Text: text})
	r.changed(CellProductForm)

	r.after(r.cfg.FormCloseDelay, func() {
		if gen != r.productFormGen {
			return
		}
		r.closeProductForm()
		r.refreshAfterProductSave(mode)
	})
}

func (r *Reducer) refreshAfterProductSave(mode FormMode) {
	if mode == ModeEdit {
		r.loadProducts()
		return
	}
	r.loadStats()
	r.loadEvents()
	if r.st.View == ViewProducts {
		r.loadProducts()
	}
}

// OpenAddShelf opens an empty shelf form.
func (r *Reducer) OpenAddShelf() {
	r.exec(func() { r.openShelfForm(ModeAdd, 0, ShelfFields{}) })
}

// OpenEditShelf opens the shelf form pre-filled with s.
func (r *Reducer) OpenEditShelf(s domain.Shelf) {
	r.exec(func() {
		r.openShelfForm(ModeEdit, s.ID, ShelfFields{
			Name:         s.Name,
			MaxWeight:    s.MaxWeight,
			MinThreshold: s.MinThreshold,
		})
	})
}

// CloseShelfForm closes the shelf form.
func (r *Reducer) CloseShelfForm() {
	r.exec(r.closeShelfForm)
}

func (r *Reducer) openShelfForm(mode FormMode, id int64, f ShelfFields) {
	r.shelfFormGen++
	r.st.ShelfForm = ShelfForm{
		Seq:       r.shelfFormGen,
		Phase:     PhaseOpen,
		Mode:      mode,
		EditingID: id,
		Fields:    f,
	}
	drop(r, &r.banner, CellBanner)
	r.changed(CellShelfForm)
}

func (r *Reducer) closeShelfForm() {
	if !r.st.ShelfForm.Open() {
		return
	}
	r.shelfFormGen++
	r.st.ShelfForm = ShelfForm{Seq: r.shelfFormGen, Phase: PhaseClosed}
	drop(r, &r.banner, CellBanner)
	r.changed(CellShelfForm)
}

// SubmitShelf validates f and creates or updates the shelf.
func (r *Reducer) SubmitShelf(f ShelfFields) error {
	var err error
	r.exec(func() { err = r.submitShelf(f) })
	return err
}

func (r *Reducer) submitShelf(f ShelfFields) error {
	form := &r.st.ShelfForm
	switch form.Phase {
	case PhaseClosed:
		return domain.NewDomainError("SubmitShelf", domain.ErrInvalidInput, "form is closed")
	case PhaseSubmitting, PhaseSaved:
		return domain.NewDomainError("SubmitShelf", domain.ErrBusy, "save in progress")
	}

	f = f.trimmed()
	form.Fields = f
	form.Errors = ValidateShelf(f)
	if form.Errors != nil {
		r.changed(CellShelfForm)
		return domain.NewDomainError("SubmitShelf", domain.ErrInvalidInput, form.Errors.Error())
	}

	form.Phase = PhaseSubmitting
	drop(r, &r.banner, CellBanner)
	r.changed(CellShelfForm)

	gen, mode, id, req := r.shelfFormGen, form.Mode, form.EditingID, f.request()
	r.spawn(func(ctx context.Context) error {
		if mode == ModeEdit {
			_, err := r.api.UpdateShelf(ctx, id, req)
			return err
		}
		_, err := r.api.CreateShelf(ctx, req)
		return err
	}, func(err error) {
		r.shelfSaved(gen, mode, err)
	})
	return nil
}

func (r *Reducer) shelfSaved(gen uint64, mode FormMode, err error) {
	if gen != r.shelfFormGen {
		if err == nil {
			r.loadShelves()
		}
		return
	}

	form := &r.st.ShelfForm
	if err != nil {
		r.logger.Warn("shelf save failed", "mode", mode, "error", err)
		form.Phase = PhaseOpen
		fallback := "could not create shelf"
		if mode == ModeEdit {
			fallback = "could not update shelf"
		}
		hold(r, &r.banner, CellBanner, Banner{Kind: BannerError, Text: domain.MessageOf(err, fallback)})
		r.changed(CellShelfForm)
		return
	}

	form.Phase = PhaseSaved
	text := "shelf created"
	if mode == ModeEdit {
		text = "shelf updated"
	}
	hold(r, &r.banner, CellBanner, Banner{Kind: BannerSuccess, Text: text})
	r.changed(CellShelfForm)

	r.after(r.cfg.FormCloseDelay, func() {
		if gen != r.shelfFormGen {
			return
		}
		r.closeShelfForm()
		r.loadShelves()
	})
}
