package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Fields every seeded document carries besides its natural key and payload.
const (
	IDField        = "seedId"
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate natural key")
)

type Field struct {
	Name  string
	Value interface{}
}

// Key is an ordered natural key. Two keys are equal when their String forms are.
type Key []Field

var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `=`, `\=`)

// String renders the key as name=value pairs joined by "|". Separators inside
// names and values are backslash-escaped, so distinct keys never share a form.
func (k Key) String() string {
	parts := make([]string, 0, len(k))
	for _, f := range k {
		parts = append(parts, keyEscaper.Replace(f.Name)+"="+keyEscaper.Replace(fmt.Sprint(f.Value)))
	}
	return strings.Join(parts, "|")
}

func (k Key) Names() []string {
	names := make([]string, 0, len(k))
	for _, f := range k {
		names = append(names, f.Name)
	}
	return names
}

// Get returns the value of the named key field.
func (k Key) Get(name string) (interface{}, bool) {
	for _, f := range k {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type Document map[string]interface{}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

type Health struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Collection is a handle on one named collection (or table) of a store.
// Handles are cheap and do not check that the collection exists.
type Collection interface {
	Name() string
	FindOne(ctx context.Context, key Key) (Document, bool, error)
	FindByID(ctx context.Context, id string) (Document, bool, error)
	Insert(ctx context.Context, key Key, doc Document) error
	Replace(ctx context.Context, key Key, doc Document) error
	Count(ctx context.Context) (int64, error)
	CountMissing(ctx context.Context, field string) (int64, error)
	EnsureKeyIndex(ctx context.Context, fields []string) error
	Drop(ctx context.Context) error
}
