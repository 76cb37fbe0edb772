// Package docfile stores records as a single JSON array of flat objects.
// An absent file is treated as an empty array.
package docfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/recstore/recstore/recstore"
)

const (
	serviceName   = "JSON"
	ConfigSection = "recstore_json"
)

// FormatMap returns the format map for JSON document storage.
func FormatMap() recstore.FormatMap {
	return recstore.TextFormats()
}

// Config holds the fully-enumerated construction parameters.
type Config struct {
	Path   string
	Create bool
	Append bool
	Logger *slog.Logger
}

// Provider is the JSON document-array backend.
type Provider struct {
	schema  recstore.Schema
	formats recstore.FormatMap
	cfg     Config
	log     *slog.Logger
}

func New(schema recstore.Schema, cfg Config) (*Provider, error) {
	formats := FormatMap()
	if err := recstore.ValidateSchema(schema, formats, serviceName); err != nil {
		return nil, err
	}
	if err := recstore.VerifyFile(cfg.Path, serviceName, !cfg.Create); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{schema: schema, formats: formats, cfg: cfg, log: logger}, nil
}

func (p *Provider) ServiceType() recstore.ServiceType { return recstore.ServiceFile }
func (p *Provider) ServiceName() string               { return serviceName }

// HasTable always reports false: document files have no table concept.
func (p *Provider) HasTable(ctx context.Context, table string) (bool, error) {
	p.log.Info("file-based service has no tables", "service", serviceName)
	return false, nil
}

func (p *Provider) Close() error { return nil }

// StoreRecords rewrites the whole array: existing content plus new rows in
// append mode, new rows alone otherwise.
func (p *Provider) StoreRecords(ctx context.Context, rows []recstore.Record, opts recstore.StoreOptions) error {
	if err := ctx.Err(); err != nil {
		return recstore.AccessError(serviceName, "store records", err)
	}

	var existing []map[string]any
	if p.cfg.Append {
		var err error
		existing, err = p.readArray()
		if err != nil {
			return err
		}
	}

	merged := make([]map[string]any, 0, len(existing)+len(rows))
	merged = append(merged, existing...)
	for _, row := range rows {
		merged = append(merged, map[string]any(row))
	}
	return p.writeArray(merged)
}

// CountRecords is the length of the decoded array.
func (p *Provider) CountRecords(ctx context.Context) (uint, error) {
	data, err := p.readArray()
	if err != nil {
		return 0, err
	}
	return uint(len(data)), nil
}

// RetrieveRecords slices the decoded array by the newest/oldest window and
// normalizes each object per the schema.
func (p *Provider) RetrieveRecords(ctx context.Context, count uint, opts recstore.RetrieveOptions) ([]recstore.Record, error) {
	data, err := p.readArray()
	if err != nil {
		return nil, err
	}

	start, end := recstore.Window(len(data), int(count), opts.Newest)
	out := make([]recstore.Record, 0, end-start)
	for _, raw := range data[start:end] {
		rec, err := recstore.NormalizeRecord(raw, p.schema)
		if err != nil {
			return nil, recstore.AccessError(serviceName, fmt.Sprintf("decode record in %q", p.cfg.Path), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// TrimRecords persists the complementary slice and returns the number of
// records removed.
func (p *Provider) TrimRecords(ctx context.Context, count uint, opts recstore.TrimOptions) (uint, error) {
	data, err := p.readArray()
	if err != nil {
		return 0, err
	}

	// The removal window is the oldest (or newest) count records; everything
	// outside it survives.
	start, end := recstore.Window(len(data), int(count), !opts.Oldest)
	kept := make([]map[string]any, 0, len(data)-(end-start))
	kept = append(kept, data[:start]...)
	kept = append(kept, data[end:]...)

	if err := p.writeArray(kept); err != nil {
		return 0, err
	}
	return uint(end - start), nil
}

func (p *Provider) readArray() ([]map[string]any, error) {
	buf, err := os.ReadFile(p.cfg.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		p.log.Error("unable to access data file", "service", serviceName, "path", p.cfg.Path)
		return nil, recstore.AccessError(serviceName, fmt.Sprintf("read %q", p.cfg.Path), err)
	}
	if len(buf) == 0 {
		return nil, nil
	}

	var data []map[string]any
	if err := json.Unmarshal(buf, &data); err != nil {
		p.log.Error("malformed document file", "service", serviceName, "path", p.cfg.Path)
		return nil, recstore.AccessError(serviceName, fmt.Sprintf("decode %q", p.cfg.Path), err)
	}
	return data, nil
}

// writeArray replaces the file contents atomically via temp file and rename.
func (p *Provider) writeArray(data []map[string]any) error {
	if data == nil {
		data = []map[string]any{}
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return recstore.AccessError(serviceName, "encode records", err)
	}

	dir := filepath.Dir(p.cfg.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(p.cfg.Path)+".tmp*")
	if err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("create temp file in %q", dir), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return recstore.AccessError(serviceName, fmt.Sprintf("write %q", tmpName), err)
	}
	if err := tmp.Close(); err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("close %q", tmpName), err)
	}
	if err := os.Rename(tmpName, p.cfg.Path); err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("replace %q", p.cfg.Path), err)
	}
	return nil
}
