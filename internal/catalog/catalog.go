// Package catalog provides read-only access to the product reference
// data. The backing file is a flat CSV (product_code,product_name,price)
// owned by configuration, not by the engine; it is re-read on each
// query so edits are picked up without a restart.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"kasir/internal/core"
)

// Header is the expected column header of the catalog file.
var Header = []string{"product_code", "product_name", "price"}

type Catalog struct {
	path string
}

func New(path string) *Catalog {
	return &Catalog{path: path}
}

// Load reads the full catalog in source order. A missing or malformed
// file yields core.ErrDataUnavailable: unlike the ledger files the
// catalog has no sensible empty state.
func (c *Catalog) Load() ([]core.Product, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open catalog %s: %v", core.ErrDataUnavailable, c.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog %s: %v", core.ErrDataUnavailable, c.path, err)
	}
	if len(records) == 0 || len(records[0]) < len(Header) {
		return nil, fmt.Errorf("%w: catalog %s: missing header", core.ErrDataUnavailable, c.path)
	}
	for i, col := range Header {
		if strings.TrimSpace(records[0][i]) != col {
			return nil, fmt.Errorf("%w: catalog %s: unexpected header %q", core.ErrDataUnavailable, c.path, records[0][i])
		}
	}

	products := make([]core.Product, 0, len(records)-1)
	for _, rec := range records[1:] {
		// Plain integer parse: a zero price is valid reference data
		// (free item), unlike user-entered amounts.
		price, err := strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: catalog %s: bad price %q", core.ErrDataUnavailable, c.path, rec[2])
		}
		p := core.Product{
			Code:  strings.TrimSpace(rec[0]),
			Name:  strings.TrimSpace(rec[1]),
			Price: price,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: catalog %s: %v", core.ErrDataUnavailable, c.path, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// PriceOf returns the price for a product code. The match is exact and
// case sensitive; an unknown code yields core.ErrInvalidProductCode.
func (c *Catalog) PriceOf(code string) (int64, error) {
	products, err := c.Load()
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.Code == code {
			return p.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", core.ErrInvalidProductCode, code)
}

// PriceIndex returns the catalog as a code -> price lookup table.
func (c *Catalog) PriceIndex() (map[string]int64, error) {
	products, err := c.Load()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int64, len(products))
	for _, p := range products {
		idx[p.Code] = p.Price
	}
	return idx, nil
}

// Index returns the catalog as a code -> product lookup table, used for
// the left joins in reports.
func (c *Catalog) Index() (map[string]core.Product, error) {
	products, err := c.Load()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]core.Product, len(products))
	for _, p := range products {
		idx[p.Code] = p
	}
	return idx, nil
}
