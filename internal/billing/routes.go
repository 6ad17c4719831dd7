package billing

import "github.com/go-chi/chi/v5"

// variantSlugs maps URL path segments to document variants.
var variantSlugs = []struct {
	slug string
	typ  DocType
}{
	{"delivery-notes", DocTypeDeliveryNote},
	{"vat-invoices", DocTypeVatInvoice},
	{"receipts", DocTypeReceipt},
	{"quotations", DocTypeQuotation},
}

func (h *Handler) MountRoutes(r chi.Router) {
	for _, v := range variantSlugs {
		r.Get("/"+v.slug, h.list(v.typ))
		r.Post("/"+v.slug, h.create(v.typ))
		r.Get("/"+v.slug+"/{id}", h.show(v.typ))
		r.Put("/"+v.slug+"/{id}", h.update(v.typ))
		r.Get("/"+v.slug+"/{id}/pdf", h.pdf(v.typ))
	}

	r.Get("/orders", h.list(DocTypeOrder))
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{id}", h.show(DocTypeOrder))
	r.Put("/orders/{id}", h.UpdateOrder)
	r.Get("/orders/{id}/pdf", h.pdf(DocTypeOrder))

	r.Post("/storefront/orders", h.CreateStorefrontOrder)
}
