package render

import (
	"encoding/json"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/route-reconstructor/internal/domain"
)

// Viewport - положение камеры после ZoomToRoutes
type Viewport struct {
	BBox          domain.BoundingBox `json:"bbox"`
	PaddingPixels int                `json:"padding_px"`
}

// GeoJSONRenderer рисует маршруты как LineString фичи GeoJSON.
// Один экземпляр на сессию.
type GeoJSONRenderer struct {
	mu       sync.Mutex
	routes   []orb.LineString
	viewport *Viewport
}

// NewGeoJSONRenderer создает пустой рендерер
func NewGeoJSONRenderer() *GeoJSONRenderer {
	return &GeoJSONRenderer{}
}

// AddRoute добавляет полилинию маршрута
func (r *GeoJSONRenderer) AddRoute(geometry []domain.GeoCoordinate) {
	line := make(orb.LineString, len(geometry))
	for i, p := range geometry {
		line[i] = orb.Point{p.Longitude, p.Latitude}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, line)
}

// ZoomToRoutes подгоняет viewport под все маршруты. Без маршрутов ничего не делает.
func (r *GeoJSONRenderer) ZoomToRoutes(paddingPixels int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		bound orb.Bound
		found bool
	)
	for _, line := range r.routes {
		if len(line) == 0 {
			continue
		}
		if !found {
			bound = line.Bound()
			found = true
			continue
		}
		bound = bound.Union(line.Bound())
	}
	if !found {
		return
	}

	r.viewport = &Viewport{
		BBox: domain.BoundingBox{
			MinLat: bound.Min.Lat(),
			MinLon: bound.Min.Lon(),
			MaxLat: bound.Max.Lat(),
			MaxLon: bound.Max.Lon(),
		},
		PaddingPixels: paddingPixels,
	}
}

// RouteCount возвращает количество нарисованных маршрутов
func (r *GeoJSONRenderer) RouteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}

// Viewport возвращает текущий viewport или nil, если ZoomToRoutes не вызывался
func (r *GeoJSONRenderer) Viewport() *Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewport == nil {
		return nil
	}
	vp := *r.viewport
	return &vp
}

// FeatureCollection собирает всё нарисованное в GeoJSON
func (r *GeoJSONRenderer) FeatureCollection() *geojson.FeatureCollection {
	r.mu.Lock()
	defer r.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for i, line := range r.routes {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["index"] = i
		fc.Append(f)
	}

	if r.viewport != nil {
		bb := r.viewport.BBox
		fc.BBox = geojson.NewBBox(orb.Bound{
			Min: orb.Point{bb.MinLon, bb.MinLat},
			Max: orb.Point{bb.MaxLon, bb.MaxLat},
		})
		fc.ExtraMembers = geojson.Properties{
			"viewport": map[string]interface{}{
				"padding_px": r.viewport.PaddingPixels,
			},
		}
	}

	return fc
}

// MarshalJSON сериализует FeatureCollection
func (r *GeoJSONRenderer) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.FeatureCollection())
}
