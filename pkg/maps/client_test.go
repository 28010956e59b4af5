package maps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
)

func TestGeocodeRequestAndMapping(t *testing.T) {
	var gotPath, gotKey, gotMask string
	var gotBody searchTextRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[
			{"id":"p1","formattedAddress":"Manali, Himachal Pradesh, India","location":{"latitude":32.2432,"longitude":77.1892}},
			{"id":"p2","formattedAddress":"Elsewhere","location":{"latitude":1,"longitude":2}}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", WithBaseURL(srv.URL+"/v1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	features, err := client.Geocode(context.Background(), "  Manali  ", 1)
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if gotPath != "/v1/places:searchText" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" || gotMask != searchTextFieldMask {
		t.Fatalf("unexpected headers key=%q mask=%q", gotKey, gotMask)
	}
	if gotBody.TextQuery != "Manali" || gotBody.PageSize != 1 {
		t.Fatalf("unexpected body %+v", gotBody)
	}
	if len(features) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(features))
	}
	f := features[0]
	if f.PlaceID != "p1" || f.Geometry.Type != "Point" {
		t.Fatalf("unexpected feature %+v", f)
	}
	if f.Geometry.Lng() != 77.1892 || f.Geometry.Lat() != 32.2432 {
		t.Fatalf("coordinates must be [lng, lat], got %v", f.Geometry.Coordinates)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient("k", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	features, err := client.Geocode(context.Background(), "nowhere-at-all", 1)
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if len(features) != 0 {
		t.Fatalf("expected no features, got %d", len(features))
	}
}

func TestGeocodeUpstreamFailureIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("k", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Geocode(context.Background(), "Paris", 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGeocodeValidatesInput(t *testing.T) {
	client, err := NewClient("k")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Geocode(context.Background(), "   ", 1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewClient(" "); err == nil {
		t.Fatal("expected missing api key to fail")
	}
	var nilClient *Client
	if _, err := nilClient.Geocode(context.Background(), "Paris", 1); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for nil client, got %v", err)
	}
}
