// Package memory is an in-process store used for dry runs and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
)

var errClosed = errors.New("memory store is closed")

type Adapter struct {
	mu          sync.Mutex
	connected   bool
	closeCount  int
	collections map[string]*collection
}

func New() *Adapter {
	return &Adapter{collections: make(map[string]*collection)}
}

func (a *Adapter) Provider() string { return "memory" }

func (a *Adapter) Connect(ctx context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connected = true
	return nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connected {
		a.closeCount++
	}
	a.connected = false
	return nil
}

// CloseCount reports how many times an open store was closed.
func (a *Adapter) CloseCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeCount
}

func (a *Adapter) HealthCheck(ctx context.Context) types.Health {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.connected {
		return types.Health{OK: false, Message: "not connected"}
	}
	return types.Health{OK: true, Message: fmt.Sprintf("in-memory store (%d collections)", len(a.collections))}
}

func (a *Adapter) Collection(name string) types.Collection {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.collections[name]
	if !ok {
		c = &collection{owner: a, name: name, byKey: make(map[string]types.Document)}
		a.collections[name] = c
	}
	return c
}

type collection struct {
	owner *Adapter
	name  string
	order []string
	byKey map[string]types.Document
}

func (c *collection) Name() string { return c.name }

func (c *collection) check() error {
	if !c.owner.connected {
		return errClosed
	}
	return nil
}

func (c *collection) FindOne(ctx context.Context, key types.Key) (types.Document, bool, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return nil, false, err
	}
	doc, ok := c.byKey[key.String()]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (c *collection) FindByID(ctx context.Context, id string) (types.Document, bool, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return nil, false, err
	}
	for _, k := range c.order {
		doc := c.byKey[k]
		if fmt.Sprint(doc[types.IDField]) == id {
			return doc.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (c *collection) Insert(ctx context.Context, key types.Key, doc types.Document) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	k := key.String()
	if _, exists := c.byKey[k]; exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateKey, k)
	}
	c.byKey[k] = doc.Clone()
	c.order = append(c.order, k)
	return nil
}

func (c *collection) Replace(ctx context.Context, key types.Key, doc types.Document) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	k := key.String()
	if _, exists := c.byKey[k]; !exists {
		return types.ErrNotFound
	}
	c.byKey[k] = doc.Clone()
	return nil
}

func (c *collection) Count(ctx context.Context) (int64, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return 0, err
	}
	return int64(len(c.byKey)), nil
}

func (c *collection) CountMissing(ctx context.Context, field string) (int64, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return 0, err
	}
	var n int64
	for _, doc := range c.byKey {
		v, ok := doc[field]
		if !ok || v == nil || v == "" {
			n++
		}
	}
	return n, nil
}

func (c *collection) EnsureKeyIndex(ctx context.Context, fields []string) error {
	return nil
}

func (c *collection) Drop(ctx context.Context) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	c.order = nil
	c.byKey = make(map[string]types.Document)
	return nil
}

// Documents returns copies of every document in insertion order.
func (c *collection) Documents() []types.Document {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	out := make([]types.Document, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k].Clone())
	}
	return out
}

// Documents lists the documents of a named collection, for assertions in tests.
func (a *Adapter) Documents(name string) []types.Document {
	return a.Collection(name).(*collection).Documents()
}
