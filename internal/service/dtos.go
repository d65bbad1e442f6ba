package service

import "time"

// Selection is the user's choice of years, equipment type and model column.
// Model is only consulted by the views that show a single model's predictions.
type Selection struct {
	Years         []int  `validate:"required,min=1,dive,gt=0"`
	EquipmentType string `validate:"required"`
	Model         string
}

type FilterOptions struct {
	Years          []int    `json:"years"`
	DefaultYears   []int    `json:"default_years"`
	EquipmentTypes []string `json:"equipment_types"`
	Models         []string `json:"models"`
}

type SalesRow struct {
	Date          time.Time `json:"date"`
	EquipmentType string    `json:"equipment_type"`
	UnitsSold     float64   `json:"units_sold"`
	Predicted     float64   `json:"predicted"`
}

type SalesTable struct {
	Model         string     `json:"model"`
	EquipmentType string     `json:"equipment_type"`
	Rows          []SalesRow `json:"rows"`
}

// Empty reports whether the selection matched no records.
func (t SalesTable) Empty() bool {
	return len(t.Rows) == 0
}

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)
