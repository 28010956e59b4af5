package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// GeometryTypePoint is the only geometry type a listing may carry.
const GeometryTypePoint = "Point"

// PointGeometry is a GeoJSON point. Coordinates are ordered [longitude, latitude].
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewPoint builds a point from longitude and latitude.
func NewPoint(lng, lat float64) PointGeometry {
	return PointGeometry{Type: GeometryTypePoint, Coordinates: []float64{lng, lat}}
}

// Validate enforces type == "Point" and exactly two finite coordinates in range.
func (p PointGeometry) Validate() error {
	if p.Type != GeometryTypePoint {
		return fmt.Errorf("geometry: type must be %q, got %q", GeometryTypePoint, p.Type)
	}
	if len(p.Coordinates) != 2 {
		return fmt.Errorf("geometry: expected 2 coordinates, got %d", len(p.Coordinates))
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	for _, c := range p.Coordinates {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("geometry: coordinate is not finite")
		}
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("geometry: longitude %f out of range", lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("geometry: latitude %f out of range", lat)
	}
	return nil
}

// Lng returns the longitude or zero for a malformed point.
func (p PointGeometry) Lng() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude or zero for a malformed point.
func (p PointGeometry) Lat() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Value stores the point as JSON text so both jsonb (postgres) and text
// (sqlite) columns accept it under the simple query protocol.
func (p PointGeometry) Value() (driver.Value, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (p *PointGeometry) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = PointGeometry{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("geometry: unsupported scan type %T", value)
	}

	var decoded PointGeometry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("geometry: decode: %w", err)
	}
	*p = decoded
	return nil
}
