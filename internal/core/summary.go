package core

// ProductSummary is one row of the grouped-by-product sales report.
// ProductName is empty when the product code no longer exists in the
// catalog; the row is still counted.
type ProductSummary struct {
	ProductCode string
	ProductName string
	Qty         int64
	Total       int64
}

// SalesReport is the grouped sales report plus grand totals over all
// included rows.
type SalesReport struct {
	Rows       []ProductSummary
	TotalQty   int64
	GrandTotal int64
}

// CategoryTotal is an expense amount aggregated by category.
type CategoryTotal struct {
	Category string
	Total    int64
}

// DetailedSale is a sale entry joined with the catalog for display:
// product name and the current catalog price alongside the captured
// total.
type DetailedSale struct {
	Date        Date
	ProductName string
	Price       int64
	Qty         int64
	Total       int64
}

// CashflowLine is one line of the cashflow statement. Line order is
// fixed and significant for display.
type CashflowLine struct {
	Description string
	Amount      int64
}

// Cashflow summarizes money movement inside a window: sales in,
// expenses out.
type Cashflow struct {
	Inflow  int64
	Outflow int64
	Net     int64
}
