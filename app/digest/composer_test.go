package digest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

var testTowns = []string{"troy", "albany", "schenectady"}

func testListing(id string, images ...string) listing.Listing {
	return listing.Listing{
		Source:     listing.SourceApartments,
		ExternalID: id,
		Title:      "Unit " + id,
		Price:      1095,
		Bedrooms:   1,
		Location:   "Troy, NY",
		URL:        "https://www.apartments.com/unit/" + id + "/",
		ImageURLs:  images,
	}
}

func TestComposer_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegbytes"))
	}))
	defer server.Close()

	composer := NewComposer(server.Client(), "test-agent", testTowns)

	novel := []listing.Listing{
		testListing("a1", server.URL+"/a1.jpg"),
		testListing("b2", "https://images.example.com/b2.jpg"),
		testListing("c3"),
	}

	email, err := composer.Run(context.Background(), novel, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "[ApartmentBot] 3 new listing(s) — Troy, Albany, Schenectady"
	if email.Subject != want {
		t.Errorf("Expected subject %q, got %q", want, email.Subject)
	}

	if email.Inline == nil {
		t.Fatal("Expected the first listing's image to be embedded inline")
	}
	if email.Inline.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg inline, got %q", email.Inline.ContentType)
	}
	if string(email.Inline.Data) != "jpegbytes" {
		t.Errorf("Expected fetched image bytes, got %q", email.Inline.Data)
	}

	if !strings.Contains(email.HTML, "Found 3 new listing(s)") {
		t.Error("Expected the body to report the listing count")
	}
	if !strings.Contains(email.HTML, "cid:"+email.Inline.Name) {
		t.Error("Expected the body to reference the inline image by cid")
	}
	if !strings.Contains(email.HTML, `src="https://images.example.com/b2.jpg"`) {
		t.Error("Expected the second listing's image as a thumbnail reference")
	}
	for _, id := range []string{"a1", "b2", "c3"} {
		if !strings.Contains(email.HTML, "Unit "+id) {
			t.Errorf("Expected the body to include listing %s", id)
		}
	}
	if !strings.Contains(email.HTML, "$1095") {
		t.Error("Expected the body to include the price")
	}
}

func TestComposer_RunWithoutImages(t *testing.T) {
	composer := NewComposer(http.DefaultClient, "test-agent", testTowns)

	email, err := composer.Run(context.Background(), []listing.Listing{testListing("a1")}, time.Now())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if email.Inline != nil {
		t.Error("Expected no inline image for an imageless listing")
	}
	if strings.Contains(email.HTML, "cid:") || strings.Contains(email.HTML, "<img") {
		t.Error("Expected no image markup for imageless listings")
	}
}

func TestComposer_RunInlineFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	composer := NewComposer(server.Client(), "test-agent", testTowns)

	email, err := composer.Run(context.Background(), []listing.Listing{testListing("a1", server.URL+"/gone.jpg")}, time.Now())
	if err != nil {
		t.Fatalf("Expected the digest to survive an inline fetch failure, got: %v", err)
	}
	if email.Inline != nil {
		t.Error("Expected no inline attachment when the image is unreachable")
	}
	if strings.Contains(email.HTML, "cid:") {
		t.Error("Expected no cid reference when the inline fetch failed")
	}
}

func TestComposer_RunCapsEntries(t *testing.T) {
	composer := NewComposer(http.DefaultClient, "test-agent", testTowns)

	var novel []listing.Listing
	for i := 0; i < MaxEntries+5; i++ {
		novel = append(novel, testListing(fmt.Sprintf("u%02d", i)))
	}

	email, err := composer.Run(context.Background(), novel, time.Now())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(email.Subject, fmt.Sprintf("%d new listing(s)", len(novel))) {
		t.Error("Expected the subject to count every novel listing")
	}
	if !strings.Contains(email.HTML, fmt.Sprintf("Found %d new listing(s)", len(novel))) {
		t.Error("Expected the body headline to count every novel listing")
	}
	if count := strings.Count(email.HTML, "<h3"); count != MaxEntries {
		t.Errorf("Expected %d rendered entries, got %d", MaxEntries, count)
	}
}

func TestComposer_RunEmpty(t *testing.T) {
	composer := NewComposer(http.DefaultClient, "test-agent", testTowns)

	if _, err := composer.Run(context.Background(), nil, time.Now()); err == nil {
		t.Fatal("Expected an error when composing with no listings")
	}
}
