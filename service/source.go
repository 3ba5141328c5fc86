package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/config"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
)

// ErrInvalidDocument is returned when the contracts document itself is malformed
var ErrInvalidDocument = errors.New("invalid contracts document")

// ErrFetchFailed is returned when a source answers with a non-success status
var ErrFetchFailed = errors.New("failed to fetch contracts")

// Source loads the full contract set from wherever the static document lives
type Source interface {
	Fetch(ctx context.Context) ([]*model.Contract, error)
	Name() string
}

type contractsDocument struct {
	Contracts *[]json.RawMessage `json:"contracts"`
}

// DecodeContracts parses a {"contracts": [...]} document. Records failing
// validation or repeating an earlier ID are dropped and logged; the rest
// keep their document order.
func DecodeContracts(r io.Reader) ([]*model.Contract, error) {
	var doc contractsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Contracts == nil {
		return nil, fmt.Errorf("%w: missing \"contracts\" array", ErrInvalidDocument)
	}

	raw := *doc.Contracts
	contracts := make([]*model.Contract, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, rec := range raw {
		var c model.Contract
		if err := json.Unmarshal(rec, &c); err != nil {
			slog.Warn("rejecting malformed contract record", "index", i, "error", err)
			continue
		}
		if err := c.Validate(); err != nil {
			slog.Warn("rejecting invalid contract record", "index", i, "id", c.ID, "error", err)
			continue
		}
		if _, dup := seen[c.ID]; dup {
			slog.Warn("rejecting duplicate contract record", "index", i, "id", c.ID)
			continue
		}
		seen[c.ID] = struct{}{}
		contracts = append(contracts, &c)
	}

	return contracts, nil
}

// FileSource reads the document from local disk
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

func (s *FileSource) Fetch(ctx context.Context) ([]*model.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read contracts file: %w", err)
	}
	return DecodeContracts(bytes.NewReader(data))
}

// HTTPSource fetches the document from a static URL
type HTTPSource struct {
	URL        string
	httpClient *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		URL: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSource) Name() string {
	return "http:" + s.URL
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]*model.Contract, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	return DecodeContracts(resp.Body)
}

// NewSource builds the Source selected by configuration
func NewSource(cfg *config.ContractsConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceFile:
		return NewFileSource(cfg.Path), nil
	case config.SourceHTTP:
		return NewHTTPSource(cfg.URL, cfg.Timeout()), nil
	case config.SourceMinio:
		return NewMinioSource(&cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown contracts source %q", cfg.Source)
	}
}
