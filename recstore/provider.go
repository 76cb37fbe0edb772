package recstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ServiceType groups providers by backend family.
type ServiceType string

const (
	ServiceFile ServiceType = "file"
	ServiceSQL  ServiceType = "sql"
)

// Provider is the uniform contract every backend implements. A Provider is
// constructed once per configured backend and lives for the process lifetime
// of the facade holding it. It is not safe for concurrent use by multiple
// goroutines; callers needing that must serialize externally.
type Provider interface {
	ServiceType() ServiceType
	ServiceName() string

	// StoreRecords appends or replaces persisted content depending on the
	// provider's append mode, creating the backing table/file first when
	// absent and create mode allows it.
	StoreRecords(ctx context.Context, rows []Record, opts StoreOptions) error

	// RetrieveRecords returns up to count records from one end of the
	// ordered record set, always in ascending order-key order. A count
	// beyond the total clamps to the total.
	RetrieveRecords(ctx context.Context, count uint, opts RetrieveOptions) ([]Record, error)

	// TrimRecords permanently removes up to count records from the
	// requested end and returns the number actually removed.
	TrimRecords(ctx context.Context, count uint, opts TrimOptions) (uint, error)

	// CountRecords reports the total persisted records, excluding any
	// header row.
	CountRecords(ctx context.Context) (uint, error)

	// HasTable reports whether the named table exists. File backends have
	// no table concept and always report false without failing.
	HasTable(ctx context.Context, table string) (bool, error)

	// Close releases any long-lived handle (the SQL connection). File
	// backends hold no handle between calls.
	Close() error
}

// StoreOptions modifies a single StoreRecords call.
type StoreOptions struct {
	// KeepOpen leaves the SQL connection open after the call so a batch of
	// calls can share one connection. File backends ignore it.
	KeepOpen bool
}

func DefaultStoreOptions() StoreOptions {
	return StoreOptions{}
}

// RetrieveOptions modifies a single RetrieveRecords call.
type RetrieveOptions struct {
	// Newest selects the window from the high end of the sort order.
	Newest bool
	// OrderBy names the sort field; empty means the first schema field.
	OrderBy  string
	KeepOpen bool
}

func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{Newest: true}
}

// TrimOptions modifies a single TrimRecords call.
type TrimOptions struct {
	// Oldest selects the window from the low end of the sort order.
	Oldest   bool
	OrderBy  string
	KeepOpen bool
}

func DefaultTrimOptions() TrimOptions {
	return TrimOptions{Oldest: true}
}

// Window computes the half-open position range [start, end) of the newest or
// oldest count records in a set of total records. Both file backends slice
// with this; trim removes the complement.
func Window(total, count int, newest bool) (start, end int) {
	if count > total {
		count = total
	}
	if newest {
		return total - count, total
	}
	return 0, count
}

// VerifyNotEmpty returns the trimmed string or an invalid-attribute error
// naming the variable when it is blank.
func VerifyNotEmpty(val, name, service string) (string, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return "", InvalidAttributeError(service, fmt.Sprintf("%s cannot be empty", name))
	}
	return trimmed, nil
}

// VerifyFile checks that a backing file exists. With strict unset (create
// mode) a missing file is accepted and comes into existence on first store.
func VerifyFile(path, service string, strict bool) error {
	if strings.TrimSpace(path) == "" {
		return InvalidAttributeError(service, "file path cannot be empty")
	}
	if !strict {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return InvalidAttributeError(service, fmt.Sprintf("file %q does not exist", path))
	}
	return nil
}
