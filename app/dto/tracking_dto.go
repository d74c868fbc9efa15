package dto

import "time"

// LocationPoint is one tracked position of a researcher
type LocationPoint struct {
	ResearcherID string    `json:"researcherId"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Timestamp    time.Time `json:"timestamp"`
}

// LocationSampleRequest is one position reported by the device
type LocationSampleRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// GeolocationErrorRequest reports a device geolocation failure
type GeolocationErrorRequest struct {
	Code    int    `json:"code" validate:"gte=0"`
	Message string `json:"message,omitempty"`
}

// GeolocationErrorResponse tells the client whether to show guidance to the user
type GeolocationErrorResponse struct {
	Notify  bool   `json:"notify"`
	Message string `json:"message,omitempty"`
}

// TrackingStatusResponse reports whether tracking is active for the session
type TrackingStatusResponse struct {
	Active bool `json:"active"`
}

// RouteResponse is one researcher's route for a calendar day
type RouteResponse struct {
	ResearcherID string          `json:"researcherId"`
	Date         string          `json:"date"`
	Points       []LocationPoint `json:"points"`
	Start        *LocationPoint  `json:"start,omitempty"`
	End          *LocationPoint  `json:"end,omitempty"`
	Empty        bool            `json:"empty"`
	Message      string          `json:"message,omitempty"`
}
