package models

// SalesRecordRow is one row of the sales_records table.
type SalesRecordRow struct {
	ID            int64
	SaleDate      string
	Year          int
	EquipmentType string
	UnitsSold     float64
	Predictions   string
	Raw           string
}
