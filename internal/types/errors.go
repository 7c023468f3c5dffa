package types

import (
	"errors"
	"fmt"
)

// Kind classifies seeding failures so callers can branch without parsing messages.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindConnection     Kind = "connection"
	KindValidation     Kind = "validation"
	KindUpsertConflict Kind = "upsert_conflict"
	KindMissingParent  Kind = "missing_parent"
	KindAssetFetch     Kind = "asset_fetch"
)

type kinded interface {
	error
	Kind() Kind
}

// KindOf reports the kind of the first typed error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// ConnectionError means the store could not be reached. Nothing can be seeded.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Provider, e.Err)
}
func (e *ConnectionError) Unwrap() error { return e.Err }
func (e *ConnectionError) Kind() Kind    { return KindConnection }

// ValidationError reports bad input: a broken generator, an unknown domain,
// a dependency cycle or a bad configuration value.
type ValidationError struct {
	Domain string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Domain != "" {
		msg = fmt.Sprintf("%s: %s", e.Domain, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}
func (e *ValidationError) Unwrap() error { return e.Err }
func (e *ValidationError) Kind() Kind    { return KindValidation }

// UpsertConflictError is returned when the document matched by a natural key
// changed between the lookup and the write.
type UpsertConflictError struct {
	Collection string
	Key        string
	Err        error
}

func (e *UpsertConflictError) Error() string {
	return fmt.Sprintf("upsert conflict on %s [%s]: %v", e.Collection, e.Key, e.Err)
}
func (e *UpsertConflictError) Unwrap() error { return e.Err }
func (e *UpsertConflictError) Kind() Kind    { return KindUpsertConflict }

// MissingParentError is returned when a child record references a parent
// document that has not been seeded.
type MissingParentError struct {
	Domain   string
	Parent   string
	ParentID string
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("%s record references missing %s document %s", e.Domain, e.Parent, e.ParentID)
}
func (e *MissingParentError) Kind() Kind { return KindMissingParent }

// AssetFetchError wraps a download or upload failure of a remote asset.
type AssetFetchError struct {
	URL string
	Op  string
	Err error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("asset %s %s: %v", e.Op, e.URL, e.Err)
}
func (e *AssetFetchError) Unwrap() error { return e.Err }
func (e *AssetFetchError) Kind() Kind    { return KindAssetFetch }
