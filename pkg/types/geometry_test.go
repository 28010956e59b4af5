package types

import (
	"math"
	"testing"
)

func TestPointGeometryValidate(t *testing.T) {
	cases := []struct {
		name    string
		point   PointGeometry
		wantErr bool
	}{
		{name: "valid", point: NewPoint(77.209, 28.6139)},
		{name: "wrong type", point: PointGeometry{Type: "LineString", Coordinates: []float64{1, 2}}, wantErr: true},
		{name: "three coordinates", point: PointGeometry{Type: "Point", Coordinates: []float64{1, 2, 3}}, wantErr: true},
		{name: "one coordinate", point: PointGeometry{Type: "Point", Coordinates: []float64{1}}, wantErr: true},
		{name: "lng out of range", point: NewPoint(181, 0), wantErr: true},
		{name: "lat out of range", point: NewPoint(0, -91), wantErr: true},
		{name: "nan", point: NewPoint(math.NaN(), 0), wantErr: true},
	}

	for _, tc := range cases {
		err := tc.point.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestPointGeometryValueScan(t *testing.T) {
	p := NewPoint(-122.4194, 37.7749)
	v, err := p.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	raw, ok := v.(string)
	if !ok {
		t.Fatalf("expected string driver value, got %T", v)
	}

	var scanned PointGeometry
	if err := scanned.Scan([]byte(raw)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if scanned.Lng() != p.Lng() || scanned.Lat() != p.Lat() {
		t.Fatalf("round trip mismatch: %+v", scanned)
	}

	if _, err := (PointGeometry{Type: "Polygon"}).Value(); err == nil {
		t.Fatalf("expected invalid geometry to be rejected before write")
	}
}

func TestImageThumbnail(t *testing.T) {
	img := Image{URL: "https://cdn.example.com/listings/a.jpg", Filename: "listings/a.jpg"}
	if got := img.Thumbnail("w", 250); got != "https://cdn.example.com/listings/a.jpg?w=250" {
		t.Fatalf("unexpected thumbnail %q", got)
	}
	if got := img.Thumbnail("", 250); got != img.URL {
		t.Fatalf("expected original url without a resize parameter, got %q", got)
	}
	signed := Image{URL: "https://cdn.example.com/a.jpg?sig=1"}
	if got := signed.Thumbnail("width", 250); got != "https://cdn.example.com/a.jpg?sig=1&width=250" {
		t.Fatalf("unexpected thumbnail %q", got)
	}
	if (Image{}).Thumbnail("w", 250) != "" {
		t.Fatalf("empty image should have empty thumbnail")
	}
	if !(Image{}).IsZero() {
		t.Fatalf("expected zero image")
	}
}
