package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// RegionKey identifies a region across runs.
// It is derived from the region name and its canonicalized geometry, so two
// serializations of the same geometry with different key order or whitespace
// produce the same key.
type RegionKey string

// String returns the key as a string
func (k RegionKey) String() string {
	return string(k)
}

// Region is one administrative unit of the region catalog
type Region struct {
	Key      RegionKey       `json:"key"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// NewRegionKey builds the stable key for a region from its name and GeoJSON geometry
func NewRegionKey(name string, geometry json.RawMessage) (RegionKey, error) {
	if name == "" {
		return "", fmt.Errorf("%w: region name is empty", ErrInvalidFeature)
	}

	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})

	if len(geometry) > 0 && string(geometry) != "null" {
		canonical, err := jcs.Transform(geometry)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize geometry of %q: %w", name, err)
		}
		h.Write(canonical)
	}

	return RegionKey(hex.EncodeToString(h.Sum(nil))), nil
}

// NewRegion builds a region and its key
func NewRegion(name string, geometry json.RawMessage) (Region, error) {
	key, err := NewRegionKey(name, geometry)
	if err != nil {
		return Region{}, err
	}

	return Region{Key: key, Name: name, Geometry: geometry}, nil
}
