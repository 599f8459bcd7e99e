package schema

import (
	"time"

	"gorm.io/datatypes"
)

// WideTableRow is one region of the GPP wide table.
// Cells maps a month label such as "January 2024" to {"value": float, "count": int}.
type WideTableRow struct {
	RegionKey string         `gorm:"column:region_key;primaryKey;type:text"`
	SubCounty string         `gorm:"column:sub_county;type:text;not null;index"`
	Cells     datatypes.JSON `gorm:"column:cells;type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (WideTableRow) TableName() string {
	return "gpp_wide_rows"
}

// WideTableColumn is one month column of the GPP wide table
type WideTableColumn struct {
	Label       string    `gorm:"column:label;primaryKey;type:text"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null;uniqueIndex"`
}

func (WideTableColumn) TableName() string {
	return "gpp_wide_columns"
}
