package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/joripage/superorder/pkg/oms/model"
)

const DefaultMasterURL = "https://images.dhan.co/api-data/api-scrip-master-detailed.csv"

// Source supplies a full instrument table.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Instrument, error)
}

// Sink keeps a copy of a table that was loaded from another source.
type Sink interface {
	Name() string
	Save(ctx context.Context, rows []model.Instrument) error
}

type StaticSource []model.Instrument

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Fetch(context.Context) ([]model.Instrument, error) {
	out := make([]model.Instrument, len(s))
	copy(out, s)
	return out, nil
}

// FileSource reads the scrip master CSV from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(ctx context.Context) ([]model.Instrument, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDhanCSV(f)
}

// HTTPSource downloads the scrip master. When SavePath is set the raw CSV
// and a small metadata file are written next to each other so a FileSource
// can serve the next start.
type HTTPSource struct {
	URL        string
	Client     *http.Client
	SavePath   string
	MetaPath   string
	MaxRetries uint64

	now func() time.Time
}

type downloadMeta struct {
	DownloadedAt time.Time `json:"downloaded_at"`
	URL          string    `json:"url"`
	Rows         int       `json:"rows"`
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Instrument, error) {
	url := s.URL
	if url == "" {
		url = DefaultMasterURL
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	retries := s.MaxRetries
	if retries == 0 {
		retries = 3
	}

	var body []byte
	download := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("download %s: status %d", url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	boff := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	if err := backoff.Retry(download, boff); err != nil {
		return nil, err
	}

	rows, err := ParseDhanCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if s.SavePath != "" {
		if err := s.save(body, url, len(rows)); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *HTTPSource) save(body []byte, url string, rows int) error {
	if err := writeFileAtomic(s.SavePath, body); err != nil {
		return fmt.Errorf("save master: %w", err)
	}

	metaPath := s.MetaPath
	if metaPath == "" {
		metaPath = strings.TrimSuffix(s.SavePath, filepath.Ext(s.SavePath)) + "_meta.json"
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	meta, err := json.MarshalIndent(downloadMeta{DownloadedAt: now(), URL: url, Rows: rows}, "", "    ")
	if err != nil {
		return err
	}
	return writeFileAtomic(metaPath, meta)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
