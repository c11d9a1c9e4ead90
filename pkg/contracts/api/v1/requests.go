// Package api contains the HTTP request contracts of the dashboard API.
// Version v1 represents the current stable API version.
package api

import "sprintdash/pkg/contracts/domain"

// ViewsRequest asks for derived views for a complete filter state.
// A nil YRange selects the configured default range.
type ViewsRequest struct {
	SelectedDevelopers []string       `json:"selected_developers" validate:"omitempty,dive,developer"`
	YRange             *domain.YRange `json:"y_range,omitempty"`
	ShowClicks         int            `json:"show_clicks" validate:"gte=0"`
	HideClicks         int            `json:"hide_clicks" validate:"gte=0"`
	Views              []string       `json:"views,omitempty" validate:"omitempty,dive,oneof=stats chart summary"`
}

// ExportRequest selects the export format.
type ExportRequest struct {
	Format     string   `json:"format" validate:"required,exportformat"`
	Developers []string `json:"developers,omitempty" validate:"omitempty,dive,developer"`
}

// ViewsResponse is the payload of the views endpoint.
type ViewsResponse struct {
	State domain.FilterState    `json:"state"`
	Views domain.DashboardViews `json:"views"`
}
