package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/codyseavey/mtgssm/internal/models"
)

const (
	scryfallBaseURL = "https://api.scryfall.com"

	// DefaultBulkDataKind is the bulk file holding every English printing.
	DefaultBulkDataKind = "default_cards"
)

// ScryfallService loads the card catalog from Scryfall bulk data files and
// downloads fresh copies of them on request.
type ScryfallService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewScryfallService(baseURL string) *ScryfallService {
	if baseURL == "" {
		baseURL = scryfallBaseURL
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		baseURL: baseURL,
		// Scryfall asks for 50-100ms between requests
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

type scryfallCard struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Set           string         `json:"set"`
	SetName       string         `json:"set_name"`
	CollectorNum  string         `json:"collector_number"`
	MultiverseIDs []int          `json:"multiverse_ids"`
	Artist        string         `json:"artist"`
	ReleasedAt    string         `json:"released_at"`
	CardFaces     []scryfallFace `json:"card_faces"`
}

type scryfallFace struct {
	Name string `json:"name"`
}

type scryfallBulkData struct {
	Type        string `json:"type"`
	DownloadURI string `json:"download_uri"`
	UpdatedAt   string `json:"updated_at"`
	Size        int64  `json:"size"`
}

// LoadCatalog reads a Scryfall bulk data file (a JSON array of cards).
func (s *ScryfallService) LoadCatalog(path string) ([]models.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	cards, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	log.Printf("Catalog loaded: %d cards from %s", len(cards), path)
	return cards, nil
}

// DecodeCatalog stream-decodes a JSON array of Scryfall cards. Entries with
// an unparseable id are skipped.
func DecodeCatalog(r io.Reader) ([]models.Card, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("catalog is not a JSON array")
	}

	var cards []models.Card
	for dec.More() {
		var sc scryfallCard
		if err := dec.Decode(&sc); err != nil {
			return nil, fmt.Errorf("failed to decode card %d: %w", len(cards), err)
		}
		card, err := convertToCard(sc)
		if err != nil {
			log.Printf("Warning: skipping catalog entry %q: %v", sc.Name, err)
			continue
		}
		cards = append(cards, card)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read end of catalog: %w", err)
	}
	return cards, nil
}

func convertToCard(sc scryfallCard) (models.Card, error) {
	id, err := uuid.Parse(sc.ID)
	if err != nil {
		return models.Card{}, fmt.Errorf("invalid id %q: %w", sc.ID, err)
	}

	var faceNames []string
	for _, face := range sc.CardFaces {
		if face.Name != "" {
			faceNames = append(faceNames, face.Name)
		}
	}

	return models.Card{
		ID:              id,
		Name:            sc.Name,
		FaceNames:       faceNames,
		SetCode:         sc.Set,
		SetName:         sc.SetName,
		CollectorNumber: sc.CollectorNum,
		MultiverseIDs:   sc.MultiverseIDs,
		Artist:          sc.Artist,
		ReleasedAt:      sc.ReleasedAt,
	}, nil
}

// DownloadBulkData fetches the current bulk data file of the given kind
// (e.g. "default_cards") and writes it to destPath.
func (s *ScryfallService) DownloadBulkData(ctx context.Context, kind, destPath string) error {
	if kind == "" {
		kind = DefaultBulkDataKind
	}

	var meta scryfallBulkData
	metaURL := fmt.Sprintf("%s/bulk-data/%s", s.baseURL, url.PathEscape(kind))
	if err := s.getJSON(ctx, metaURL, &meta); err != nil {
		return fmt.Errorf("failed to fetch bulk data info: %w", err)
	}
	if meta.DownloadURI == "" {
		return fmt.Errorf("bulk data %q has no download uri", kind)
	}
	log.Printf("Downloading %s bulk data (updated %s, %d bytes)", kind, meta.UpdatedAt, meta.Size)

	resp, err := s.get(ctx, meta.DownloadURI)
	if err != nil {
		return fmt.Errorf("failed to download bulk data: %w", err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	// Write to a temp file first so a failed download never clobbers a good catalog
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bulk data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write bulk data: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("failed to move bulk data into place: %w", err)
	}
	return nil
}

func (s *ScryfallService) getJSON(ctx context.Context, reqURL string, out any) error {
	resp, err := s.get(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return nil
}

// get issues a paced GET request. The caller must close the body.
func (s *ScryfallService) get(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mtgssm/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach scryfall: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}
	return resp, nil
}
