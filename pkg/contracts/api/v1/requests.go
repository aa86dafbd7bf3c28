// Package api contains the request and response bodies of the HTTP API.
// Version v1 represents the current stable API version.
package api

// FilterCondition restricts Attribute to one of Values.
type FilterCondition struct {
	Attribute string   `json:"attribute" validate:"required,column"`
	Values    []string `json:"values" validate:"required,min=1"`
}

// ReportRequest is the body of POST /api/reports. Omitted options fall back
// to the server's configured defaults.
type ReportRequest struct {
	GroupBy     []string          `json:"group_by" validate:"required,min=1,dive,column"`
	Mode        string            `json:"mode,omitempty" validate:"omitempty,reportmode"`
	Filters     []FilterCondition `json:"filters,omitempty" validate:"omitempty,dive"`
	Format      string            `json:"format,omitempty" validate:"omitempty,oneof=xlsx csv"`
	LabelColumn string            `json:"label_column,omitempty" validate:"omitempty,column"`

	RetainGroupKey      *bool `json:"retain_group_key,omitempty"`
	RetainUnitArea      *bool `json:"retain_unit_area,omitempty"`
	IncludeCurrentMonth *bool `json:"include_current_month,omitempty"`
	AverageOverWindow   *bool `json:"average_over_window,omitempty"`
}

// ColumnsResponse lists the columns of the statistics table.
type ColumnsResponse struct {
	Columns []string `json:"columns"`
}

// ValuesResponse lists the distinct values of one column.
type ValuesResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}
