package httpserver

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// apiAdminExport streams the catalog as an .xlsx workbook: one sheet with
// every product, one with the current sale listing.
func (s *Server) apiAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	_, username, err := s.bearerUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if _, ok := s.adminUsers[username]; !ok {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	products, err := s.catalog.ShopListing(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("export: shop listing")
		writeError(w, http.StatusInternalServerError, "failed to export catalog")
		return
	}
	sale, err := s.catalog.SaleListing(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("export: sale listing")
		writeError(w, http.StatusInternalServerError, "failed to export catalog")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const productsSheet = "Products"
	f.SetSheetName("Sheet1", productsSheet)
	header := []any{"ID", "Name", "Description", "Price", "Image"}
	_ = f.SetSheetRow(productsSheet, "A1", &header)
	for i, p := range products {
		img := ""
		if p.Image != nil {
			img = *p.Image
		}
		row := []any{p.ID, p.Name, p.Description, p.Price, img}
		_ = f.SetSheetRow(productsSheet, fmt.Sprintf("A%d", i+2), &row)
	}

	const saleSheet = "Sale"
	_, _ = f.NewSheet(saleSheet)
	saleHeader := []any{"ID", "Name", "Original Price", "Sale Price", "Discount", "Sale Category", "Featured", "Priority"}
	_ = f.SetSheetRow(saleSheet, "A1", &saleHeader)
	for i, sp := range sale {
		discount, category := "", ""
		if sp.Discount != nil {
			discount = *sp.Discount
		}
		if sp.SaleCategory != nil {
			category = *sp.SaleCategory
		}
		row := []any{sp.ID, sp.Name, sp.OriginalPrice, sp.SalePrice, discount, category, sp.Featured, sp.Priority}
		_ = f.SetSheetRow(saleSheet, fmt.Sprintf("A%d", i+2), &row)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("export: write workbook")
	}
}
