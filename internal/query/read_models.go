package query

// OverviewRow is one product line of the admin order overview.
type OverviewRow struct {
	OrderID   string
	Type      string
	Kiosk     string
	Item      string
	Quantity  int
	Opmerking string
	Time      string
	Status    string
}

const overviewTimeLayout = "02-01-2006 15:04:05"
