package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalogJSON = `[
  {"id": "57f25ead-b3ec-4c40-972d-d750ed2f5319", "name": "Stairs to Infinity", "set": "phop", "set_name": "Promotional Planes",
   "collector_number": "P1", "multiverse_ids": [198073], "artist": "Steven Belledin", "released_at": "2009-09-04"},
  {"id": "not-a-uuid", "name": "Broken", "set": "phop"},
  {"id": "00000000-0000-0000-0000-000000000001", "name": "Fire // Ice", "set": "apc", "collector_number": "128",
   "card_faces": [{"name": "Fire"}, {"name": "Ice"}], "released_at": "2001-06-04"}
]`

func TestDecodeCatalog(t *testing.T) {
	cards, err := DecodeCatalog(strings.NewReader(testCatalogJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards (invalid id skipped), got %d", len(cards))
	}

	stairs := cards[0]
	if stairs.ID != stairsID {
		t.Errorf("expected id %s, got %s", stairsID, stairs.ID)
	}
	if stairs.CollectorNumber != "P1" || stairs.Artist != "Steven Belledin" || stairs.SetCode != "phop" {
		t.Errorf("unexpected card %+v", stairs)
	}
	if len(stairs.MultiverseIDs) != 1 || stairs.MultiverseIDs[0] != 198073 {
		t.Errorf("unexpected multiverse ids %v", stairs.MultiverseIDs)
	}

	split := cards[1]
	if len(split.FaceNames) != 2 || split.FaceNames[0] != "Fire" || split.FaceNames[1] != "Ice" {
		t.Errorf("unexpected face names %v", split.FaceNames)
	}
}

func TestDecodeCatalog_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not an array", `{"id": "x"}`},
		{"truncated", `[{"id": "57f25ead-b3ec-4c40-972d-d750ed2f5319"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCatalog(strings.NewReader(tt.input)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestScryfallService_LoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(path, []byte(testCatalogJSON), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewScryfallService("")
	cards, err := s.LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(cards))
	}

	if _, err := s.LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestScryfallService_DownloadBulkData(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bulk-data/default_cards":
			json.NewEncoder(w).Encode(map[string]any{
				"type":         "default_cards",
				"download_uri": server.URL + "/file/default-cards.json",
				"updated_at":   "2024-01-01T00:00:00Z",
				"size":         len(testCatalogJSON),
			})
		case "/file/default-cards.json":
			w.Write([]byte(testCatalogJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewScryfallService(server.URL)
	dest := filepath.Join(t.TempDir(), "data", "default-cards.json")

	if err := s.DownloadBulkData(context.Background(), "", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cards, err := s.LoadCatalog(dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(cards))
	}

	t.Run("unknown kind leaves existing file alone", func(t *testing.T) {
		if err := s.DownloadBulkData(context.Background(), "nope", dest); err == nil {
			t.Fatal("expected an error")
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != testCatalogJSON {
			t.Error("expected previous catalog to be untouched")
		}
	})
}
