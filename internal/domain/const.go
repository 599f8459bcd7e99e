package domain

import "time"

const (
	// Remote dataset constants
	DEFAULT_IMAGE_COLLECTION = "MODIS/061/MOD17A2H"
	DEFAULT_BAND             = "Gpp"
	DEFAULT_REGION_TABLE     = "WM/geoLab/geoBoundaries/600/ADM2"
	DEFAULT_COUNTRY_CODE     = "KEN"

	// Reduction constants
	DEFAULT_SCALE_FACTOR = 0.0001
	DEFAULT_SCALE_METERS = 500
	DEFAULT_TILE_SCALE   = 6

	// Region catalog properties
	REGION_NAME_PROPERTY    = "shapeName"
	REGION_COUNTRY_PROPERTY = "shapeGroup"

	// Wide table presentation
	REGION_NAME_COLUMN         = "Sub-county"
	DEFAULT_REGION_NAME_SUFFIX = " Sub County"
	PERIOD_LABEL_LAYOUT        = "January 2006"

	// DEFAULT_LOOKBACK is the watermark used when no run state has been persisted yet.
	DEFAULT_LOOKBACK = 8 * 24 * time.Hour

	// DEFAULT_MIN_INTERVAL is the minimum age of the watermark before a scheduled run does any work.
	DEFAULT_MIN_INTERVAL = 8 * 24 * time.Hour
)
