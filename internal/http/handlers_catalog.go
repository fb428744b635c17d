package http

import (
	"net/http"
)

type productJSON struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// handleCatalog lists the menu in file order.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	products, err := s.catalog.Load()
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]productJSON, len(products))
	for i, p := range products {
		out[i] = productJSON{Code: p.Code, Name: p.Name, Price: p.Price}
	}
	writeJSON(w, r, http.StatusOK, struct {
		Products []productJSON `json:"products"`
	}{Products: out})
}
