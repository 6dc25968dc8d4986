// Package docstore is a collection-per-entity JSON document store.
//
// Documents are addressed by collection and opaque id. Every write replaces a
// single document atomically; there are no multi-document transactions.
// Queries are equality filters over top-level fields, composed client-side
// where a backend cannot push them down.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

const (
	Tasks           = "tasks"
	Projects        = "projects"
	Teams           = "teams"
	Notifications   = "notifications"
	TeamInvitations = "teamInvitations"
	Users           = "users"
	PasswordResets  = "passwordResets"
	TelegramLinks   = "telegramLinks"
)

// Collections lists every collection the service uses.
var Collections = []string{Tasks, Projects, Teams, Notifications, TeamInvitations, Users, PasswordResets, TelegramLinks}

var (
	ErrNotFound = errors.New("docstore: document not found")
	ErrConflict = errors.New("docstore: document already exists")
)

// Filter matches documents whose top-level JSON fields equal the given
// values. A zero value (empty string, false, 0) also matches a document
// where the field is absent.
type Filter map[string]any

type Store interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Find returns matching documents ordered by id.
	Find(ctx context.Context, collection string, f Filter) ([][]byte, error)
	Create(ctx context.Context, collection, id string, body []byte) error
	// Put replaces an existing document.
	Put(ctx context.Context, collection, id string, body []byte) error
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// Load decodes one document into a T.
func Load[T any](ctx context.Context, s Store, collection, id string) (*T, error) {
	body, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return v, nil
}

// Query decodes every matching document into a T.
func Query[T any](ctx context.Context, s Store, collection string, f Filter) ([]T, error) {
	bodies, err := s.Find(ctx, collection, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func Insert(ctx context.Context, s Store, collection, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return s.Create(ctx, collection, id, body)
}

func Replace(ctx context.Context, s Store, collection, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return s.Put(ctx, collection, id, body)
}

// normalize converts filter values into their JSON-decoded form so typed
// strings, pointers and numbers compare equal to decoded documents.
func normalize(f Filter) (map[string]any, error) {
	if len(f) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	}
	return false
}

// split separates filter parts that must be present from zero-valued parts
// that may also match an absent field.
func split(norm map[string]any) (present, zero map[string]any) {
	present, zero = map[string]any{}, map[string]any{}
	for k, v := range norm {
		if isZero(v) {
			zero[k] = v
		} else {
			present[k] = v
		}
	}
	return present, zero
}

func matchNormalized(body []byte, norm map[string]any) (bool, error) {
	if len(norm) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	for k, want := range norm {
		got, ok := doc[k]
		if isZero(want) {
			if ok && got != nil && !reflect.DeepEqual(got, want) {
				return false, nil
			}
			continue
		}
		if !ok || !reflect.DeepEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// Match reports whether a JSON document satisfies f.
func Match(body []byte, f Filter) (bool, error) {
	norm, err := normalize(f)
	if err != nil {
		return false, err
	}
	return matchNormalized(body, norm)
}

// filterBodies keeps the bodies matching norm, preserving order.
func filterBodies(bodies [][]byte, norm map[string]any) ([][]byte, error) {
	if len(norm) == 0 {
		return bodies, nil
	}
	out := bodies[:0]
	for _, b := range bodies {
		ok, err := matchNormalized(b, norm)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}
