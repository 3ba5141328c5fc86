package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/config"
)

func sourceConfig(kind, path, url string) *config.ContractsConfig {
	return &config.ContractsConfig{Source: kind, Path: path, URL: url, TimeoutSeconds: 5}
}

const sampleDocument = `{
  "contracts": [
    {
      "id": "ct-001",
      "name": "Cloud Services Agreement",
      "parties": ["Acme Corp", "Initech"],
      "startDate": "2024-01-15",
      "expiryDate": "2025-01-14",
      "status": "active",
      "riskScore": 2.4,
      "value": 150000,
      "type": "Service Agreement",
      "clauses": [
        {"id": "cl-1", "title": "Termination", "summary": "30 days notice", "confidence": 0.92, "riskLevel": "medium"}
      ],
      "insights": [
        {"type": "risk", "severity": "high", "title": "Auto-renewal", "description": "Renews silently"}
      ],
      "evidence": [
        {"snippet": "either party may terminate", "relevance": 0.8, "page": 4, "section": "12.1"}
      ]
    },
    {
      "id": "ct-002",
      "name": "Broken Record",
      "parties": [],
      "startDate": "2024-01-15",
      "expiryDate": "2025-01-14",
      "status": "active",
      "riskScore": 1,
      "value": 0,
      "type": "NDA"
    },
    {
      "id": "ct-003",
      "name": "Office Lease",
      "parties": ["Globex"],
      "startDate": "2023-06-01",
      "expiryDate": "2026-05-31",
      "status": "expiring_soon",
      "riskScore": 3.9,
      "value": 0,
      "type": "Lease"
    },
    {
      "id": "ct-001",
      "name": "Duplicate",
      "parties": ["Someone"],
      "startDate": "2024-01-15",
      "expiryDate": "2025-01-14",
      "status": "active",
      "riskScore": 1,
      "value": 0,
      "type": "NDA"
    },
    {"id": 42}
  ]
}`

func TestDecodeContracts(t *testing.T) {
	contracts, err := DecodeContracts(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeContracts failed: %v", err)
	}

	got := ids(contracts)
	if len(got) != 2 || got[0] != "ct-001" || got[1] != "ct-003" {
		t.Fatalf("Expected [ct-001 ct-003], got %v", got)
	}

	first := contracts[0]
	if first.Name != "Cloud Services Agreement" {
		t.Errorf("Expected first record to win over duplicate, got %s", first.Name)
	}
	if len(first.Clauses) != 1 || first.Clauses[0].Confidence != 0.92 {
		t.Errorf("Expected nested clause to decode, got %+v", first.Clauses)
	}
	if len(first.Evidence) != 1 || first.Evidence[0].Page != 4 {
		t.Errorf("Expected nested evidence to decode, got %+v", first.Evidence)
	}
	if first.StartDate.String() != "2024-01-15" {
		t.Errorf("Expected start date 2024-01-15, got %s", first.StartDate)
	}
}

func TestDecodeContractsInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "<html>"},
		{name: "missing contracts", doc: `{"items": []}`},
		{name: "contracts not array", doc: `{"contracts": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContracts(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestDecodeContractsEmpty(t *testing.T) {
	contracts, err := DecodeContracts(strings.NewReader(`{"contracts": []}`))
	if err != nil {
		t.Fatalf("DecodeContracts failed: %v", err)
	}
	if len(contracts) != 0 {
		t.Errorf("Expected no contracts, got %d", len(contracts))
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	src := NewFileSource(path)
	contracts, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(contracts) != 2 {
		t.Errorf("Expected 2 contracts, got %d", len(contracts))
	}

	missing := NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := missing.Fetch(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contracts.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleDocument))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/contracts.json", 0)
	contracts, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(contracts) != 2 {
		t.Errorf("Expected 2 contracts, got %d", len(contracts))
	}

	notFound := NewHTTPSource(server.URL+"/missing.json", 0)
	_, err = notFound.Fetch(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Expected ErrFetchFailed for 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestHTTPSourceNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPSource(url, 0).Fetch(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Expected ErrFetchFailed, got %v", err)
	}
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(sourceConfig("file", "./contracts.json", ""))
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Errorf("Expected *FileSource, got %T", src)
	}

	src, err = NewSource(sourceConfig("http", "", "http://localhost/contracts.json"))
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Errorf("Expected *HTTPSource, got %T", src)
	}

	if _, err := NewSource(sourceConfig("ftp", "", "")); err == nil {
		t.Error("Expected error for unknown source")
	}
}
