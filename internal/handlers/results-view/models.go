// internal/handlers/results-view/models.go
package resultsview

import "trip-planner/internal/models"

// View states rendered by results.html.
const (
	StateOK         = "ok"
	StateNoData     = "no-data"
	StateParseError = "parse-error"
)

// MapZoom is the initial zoom level of the results map.
const MapZoom = 13

type Page struct {
	State    string
	HomePath string
	Plan     *models.PlanResult
	ShowMap  bool
	Map      *MapView
}

// MapView is the only data the map widget consumes.
type MapView struct {
	Center  LatLng   `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Marker struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Reason   string  `json:"reason"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// NewMapView centers on the first recommendation with one marker per recommendation, in order.
// It returns nil for a plan without recommendations.
func NewMapView(plan *models.PlanResult) *MapView {
	lat, lng, ok := plan.Center()
	if !ok {
		return nil
	}
	markers := make([]Marker, 0, len(plan.Recommendations))
	for _, r := range plan.Recommendations {
		markers = append(markers, Marker{
			Name:     r.PlaceName,
			Category: r.Category,
			Reason:   r.Reason,
			Address:  r.Address,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}
	return &MapView{
		Center:  LatLng{Lat: lat, Lng: lng},
		Zoom:    MapZoom,
		Markers: markers,
	}
}
