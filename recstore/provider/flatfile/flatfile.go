// Package flatfile stores records in a delimited flat file: one header line
// in schema field order followed by one line per record.
package flatfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/recstore/recstore/recstore"
)

const (
	serviceName   = "CSV"
	ConfigSection = "recstore_csv"

	defaultDelimiter = ','
)

// FormatMap returns the format map for delimited-file storage.
func FormatMap() recstore.FormatMap {
	return recstore.TextFormats()
}

// Config holds the fully-enumerated construction parameters.
type Config struct {
	// Path is the backing file. It must exist unless Create is set.
	Path string
	// Delimiter is the column separator; zero means comma.
	Delimiter rune
	// Create allows the file to come into existence on first store.
	Create bool
	// Append adds new writes after existing content instead of replacing it.
	Append bool
	Logger *slog.Logger
}

// Provider is the delimited flat-file backend.
type Provider struct {
	schema  recstore.Schema
	formats recstore.FormatMap
	cfg     Config
	log     *slog.Logger
}

// New validates the schema against the flat-file format map and the backing
// file per create mode.
func New(schema recstore.Schema, cfg Config) (*Provider, error) {
	formats := FormatMap()
	if err := recstore.ValidateSchema(schema, formats, serviceName); err != nil {
		return nil, err
	}
	if err := recstore.VerifyFile(cfg.Path, serviceName, !cfg.Create); err != nil {
		return nil, err
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = defaultDelimiter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{schema: schema, formats: formats, cfg: cfg, log: logger}, nil
}

func (p *Provider) ServiceType() recstore.ServiceType { return recstore.ServiceFile }
func (p *Provider) ServiceName() string               { return serviceName }

// HasTable always reports false: flat files have no table concept.
func (p *Provider) HasTable(ctx context.Context, table string) (bool, error) {
	p.log.Info("file-based service has no tables", "service", serviceName)
	return false, nil
}

// Close is a no-op; the file handle is scoped to each call.
func (p *Provider) Close() error { return nil }

// StoreRecords writes rows in input order using schema field order for
// columns. The header is (re)written when not in append mode, or when the
// file is missing or empty.
func (p *Provider) StoreRecords(ctx context.Context, rows []recstore.Record, opts recstore.StoreOptions) error {
	if err := ctx.Err(); err != nil {
		return recstore.AccessError(serviceName, "store records", err)
	}

	if !p.cfg.Append || !p.fileHasContent() {
		if err := p.writeHeader(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(p.cfg.Path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		p.log.Error("unable to access data file", "service", serviceName, "path", p.cfg.Path)
		return recstore.AccessError(serviceName, fmt.Sprintf("open %q", p.cfg.Path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = p.cfg.Delimiter
	names := p.schema.Names()
	line := make([]string, len(names))
	for _, row := range rows {
		for i, name := range names {
			line[i] = recstore.EncodeValue(row[name])
		}
		if err := w.Write(line); err != nil {
			return recstore.AccessError(serviceName, fmt.Sprintf("write %q", p.cfg.Path), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("write %q", p.cfg.Path), err)
	}
	return nil
}

// CountRecords counts physical lines minus the header, clamped to zero.
func (p *Provider) CountRecords(ctx context.Context) (uint, error) {
	f, err := os.Open(p.cfg.Path)
	if err != nil {
		p.log.Error("unable to access data file", "service", serviceName, "path", p.cfg.Path)
		return 0, recstore.AccessError(serviceName, fmt.Sprintf("open %q", p.cfg.Path), err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, recstore.AccessError(serviceName, fmt.Sprintf("read %q", p.cfg.Path), err)
	}
	if lines <= 1 {
		return 0, nil
	}
	return uint(lines - 1), nil
}

// RetrieveRecords decodes the contiguous newest or oldest window of rows,
// returned in file (insertion) order.
func (p *Provider) RetrieveRecords(ctx context.Context, count uint, opts recstore.RetrieveOptions) ([]recstore.Record, error) {
	header, raw, err := p.readRows()
	if err != nil {
		return nil, err
	}

	start, end := recstore.Window(len(raw), int(count), opts.Newest)
	out := make([]recstore.Record, 0, end-start)
	for _, line := range raw[start:end] {
		rec, err := recstore.DecodeRow(zipRow(header, line), p.schema, p.formats)
		if err != nil {
			return nil, recstore.AccessError(serviceName, fmt.Sprintf("decode row in %q", p.cfg.Path), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// TrimRecords removes the requested window by rewriting header plus the
// surviving rows to a temp file and renaming it over the original. Returns
// the number of records removed.
func (p *Provider) TrimRecords(ctx context.Context, count uint, opts recstore.TrimOptions) (uint, error) {
	header, raw, err := p.readRows()
	if err != nil {
		return 0, err
	}

	// The removal window is the oldest (or newest) count rows; everything
	// outside it survives.
	start, end := recstore.Window(len(raw), int(count), !opts.Oldest)
	kept := make([][]string, 0, len(raw)-(end-start))
	kept = append(kept, raw[:start]...)
	kept = append(kept, raw[end:]...)

	if err := p.rewrite(header, kept); err != nil {
		return 0, err
	}
	return uint(end - start), nil
}

func (p *Provider) fileHasContent() bool {
	info, err := os.Stat(p.cfg.Path)
	return err == nil && info.Size() > 0
}

func (p *Provider) writeHeader() error {
	f, err := os.OpenFile(p.cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		p.log.Error("unable to access data file", "service", serviceName, "path", p.cfg.Path)
		return recstore.AccessError(serviceName, fmt.Sprintf("open %q", p.cfg.Path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = p.cfg.Delimiter
	if err := w.Write(p.schema.Names()); err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("write header to %q", p.cfg.Path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("write header to %q", p.cfg.Path), err)
	}
	return nil
}

// readRows reads the header and all raw data rows.
func (p *Provider) readRows() ([]string, [][]string, error) {
	f, err := os.Open(p.cfg.Path)
	if err != nil {
		p.log.Error("unable to access data file", "service", serviceName, "path", p.cfg.Path)
		return nil, nil, recstore.AccessError(serviceName, fmt.Sprintf("open %q", p.cfg.Path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = p.cfg.Delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, recstore.AccessError(serviceName, fmt.Sprintf("read header from %q", p.cfg.Path), err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, recstore.AccessError(serviceName, fmt.Sprintf("read %q", p.cfg.Path), err)
	}
	return header, rows, nil
}

// rewrite replaces the file contents atomically via temp file and rename.
func (p *Provider) rewrite(header []string, rows [][]string) error {
	dir := filepath.Dir(p.cfg.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(p.cfg.Path)+".tmp*")
	if err != nil {
		return recstore.AccessError(serviceName, fmt.Sprintf("create temp file in %q", dir), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	w.Comma = p.cfg.Delimiter
	if header == nil {
		header = p.schema.Names()
	}
	if err := w.Write(header); err != nil {
		tmp.Close()
		return recstore.AccessError(serviceName, fmt.Sprintf("write %q", tmpName), err)
	}
	if err := w.WriteAll(rows); err != nil {
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

func zipRow(header, line []string) map[string]string {
	raw := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(line) {
			raw[name] = line[i]
		}
	}
	return raw
}
