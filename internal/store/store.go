// Package store provides the realtime document store the storefront and
// admin console read and write through.
//
// Values are JSON documents addressed by slash-separated paths. A path holds
// either a value or direct children; reading a parent path returns an object
// keyed by child id. Subscribers receive the full snapshot at their path on
// subscribe and again after every change at, above or below it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidPath is returned for empty or malformed paths.
var ErrInvalidPath = errors.New("invalid store path")

// Store is the realtime data store contract.
type Store interface {
	// Read returns the current snapshot at path.
	Read(ctx context.Context, path string) (Snapshot, error)
	// Set overwrites the value at path, dropping anything stored below it.
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the object at path, creating it when absent.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove deletes path and everything below it.
	Remove(ctx context.Context, path string) error
	// Push allocates a new child identifier under path. Nothing is written.
	Push(ctx context.Context, path string) (string, error)
	// Subscribe delivers the snapshot at path now and after every related
	// change until the subscription is cancelled or ctx is done.
	Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error)
}

// Snapshot is the full value at a path at one point in time.
type Snapshot struct {
	Path   string
	Exists bool
	Value  json.RawMessage
}

// Decode unmarshals the snapshot into v. A missing snapshot leaves v untouched.
func (s Snapshot) Decode(v any) error {
	if !s.Exists || len(s.Value) == 0 {
		return nil
	}
	return json.Unmarshal(s.Value, v)
}

// Children returns the snapshot as a map of child id to raw value.
func (s Snapshot) Children() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if !s.Exists {
		return out, nil
	}
	if err := json.Unmarshal(s.Value, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanPath trims surrounding slashes and rejects empty segments.
func CleanPath(path string) (string, error) {
	p := strings.Trim(path, "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidPath
		}
	}
	return p, nil
}

// Join builds a child path.
func Join(parent, child string) string {
	return strings.Trim(parent, "/") + "/" + strings.Trim(child, "/")
}

// parentOf returns the parent path or "" for a root path.
func parentOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// related reports whether a change at changed affects a subscriber at watched.
func related(watched, changed string) bool {
	if watched == changed {
		return true
	}
	return strings.HasPrefix(changed, watched+"/") || strings.HasPrefix(watched, changed+"/")
}

// mergeFields merges fields into the JSON object current.
func mergeFields(current json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = b
	}
	return json.Marshal(obj)
}
