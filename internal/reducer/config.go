package reducer

import (
	"encoding/json"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// KenyaBoundingBox is a GeoJSON polygon enclosing Kenya, used to restrict image listings
var KenyaBoundingBox = json.RawMessage(`{"type":"Polygon","coordinates":[[[33.9,-4.7],[41.9,-4.7],[41.9,5.5],[33.9,5.5],[33.9,-4.7]]]}`)

// Config describes which collection is reduced over which regions
type Config struct {
	ImageCollection string
	Band            string
	RegionTable     string
	CountryCode     string
	ScaleFactor     float64
	ScaleMeters     float64
	TileScale       float64
	// ListingRegion restricts image listings to images intersecting it
	ListingRegion json.RawMessage
}

// DefaultConfig returns the MODIS GPP over Kenyan sub-counties configuration
func DefaultConfig() Config {
	return Config{
		ImageCollection: domain.DEFAULT_IMAGE_COLLECTION,
		Band:            domain.DEFAULT_BAND,
		RegionTable:     domain.DEFAULT_REGION_TABLE,
		CountryCode:     domain.DEFAULT_COUNTRY_CODE,
		ScaleFactor:     domain.DEFAULT_SCALE_FACTOR,
		ScaleMeters:     domain.DEFAULT_SCALE_METERS,
		TileScale:       domain.DEFAULT_TILE_SCALE,
		ListingRegion:   KenyaBoundingBox,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ImageCollection == "" {
		c.ImageCollection = d.ImageCollection
	}
	if c.Band == "" {
		c.Band = d.Band
	}
	if c.RegionTable == "" {
		c.RegionTable = d.RegionTable
	}
	if c.CountryCode == "" {
		c.CountryCode = d.CountryCode
	}
	if c.ScaleFactor == 0 {
		c.ScaleFactor = d.ScaleFactor
	}
	if c.ScaleMeters == 0 {
		c.ScaleMeters = d.ScaleMeters
	}
	if c.TileScale == 0 {
		c.TileScale = d.TileScale
	}
	if len(c.ListingRegion) == 0 {
		c.ListingRegion = d.ListingRegion
	}
	return c
}
