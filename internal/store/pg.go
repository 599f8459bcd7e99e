package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/store/schema"
)

// RUN_STATE_KEY is the key_value_store entry holding the run state
const RUN_STATE_KEY = "gpp_run_state"

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the tables used by the PostgreSQL store
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&schema.KeyValueStore{},
		&schema.WideTableRow{},
		&schema.WideTableColumn{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, the defaults of NormalizeConnectionPoolSettings are used.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings.
//
// Defaults (when zero):
//   - MaxOpenConns: 5
//   - MaxIdleConns: 2
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize keeps a bulk insert under PostgreSQL's 65535 parameter limit
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	safeBatchSize := max((maxParams-totalHeadroom)/fieldsPerRecord, 1)
	if safeBatchSize > totalRecords {
		return max(totalRecords, 1)
	}
	return safeBatchSize
}

// GetRunState retrieves the run state from the key-value store
func (s *pgStore) GetRunState(ctx context.Context) (*domain.RunState, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", RUN_STATE_KEY).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}

	var state domain.RunState
	if err := json.Unmarshal(kv.Value, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	return &state, nil
}

// GetWideTable assembles the wide table from its column and row tables
func (s *pgStore) GetWideTable(ctx context.Context) (*domain.WideTable, error) {
	var columns []schema.WideTableColumn
	if err := s.db.WithContext(ctx).Order("period_start ASC").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get wide table columns: %w", err)
	}

	var rows []schema.WideTableRow
	if err := s.db.WithContext(ctx).Order("region_key ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get wide table rows: %w", err)
	}

	if len(columns) == 0 && len(rows) == 0 {
		return nil, nil
	}

	table := &domain.WideTable{
		Columns: make([]domain.Period, 0, len(columns)),
		Rows:    make([]domain.WideRow, 0, len(rows)),
	}
	for _, c := range columns {
		table.Columns = append(table.Columns, domain.PeriodOf(c.PeriodStart))
	}

	for _, r := range rows {
		cells := make(map[domain.Period]domain.Cell)
		if len(r.Cells) > 0 {
			if err := json.Unmarshal(r.Cells, &cells); err != nil {
				return nil, fmt.Errorf("failed to decode cells of %s: %w", r.RegionKey, err)
			}
		}
		table.Rows = append(table.Rows, domain.WideRow{
			Key:   domain.RegionKey(r.RegionKey),
			Name:  r.SubCounty,
			Cells: cells,
		})
	}

	table.Normalize()
	return table, nil
}

// Commit replaces the wide table and saves the run state in a single transaction
func (s *pgStore) Commit(ctx context.Context, table *domain.WideTable, state domain.RunState) error {
	if state.Processed == nil {
		state.Processed = domain.NewProcessedIDSet()
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode run state: %w", err)
	}

	var rows []schema.WideTableRow
	var columns []schema.WideTableColumn
	if table != nil {
		rows, columns, err = toWideTableRecords(table)
		if err != nil {
			return err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if table != nil {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&schema.WideTableRow{}).Error; err != nil {
				return fmt.Errorf("failed to clear wide table rows: %w", err)
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&schema.WideTableColumn{}).Error; err != nil {
				return fmt.Errorf("failed to clear wide table columns: %w", err)
			}

			if len(columns) > 0 {
				if err := tx.CreateInBatches(columns, calculateSafeBatchSize(len(columns), 2)).Error; err != nil {
					return fmt.Errorf("failed to insert wide table columns: %w", err)
				}
			}
			if len(rows) > 0 {
				if err := tx.CreateInBatches(rows, calculateSafeBatchSize(len(rows), 4)).Error; err != nil {
					return fmt.Errorf("failed to insert wide table rows: %w", err)
				}
			}
		}

		kv := schema.KeyValueStore{Key: RUN_STATE_KEY, Value: datatypes.JSON(stateJSON)}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&kv).Error; err != nil {
			return fmt.Errorf("failed to save run state: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Committed wide table",
		zap.Bool("table_replaced", table != nil),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(columns)),
		zap.Time("watermark", state.Watermark),
	)

	return nil
}

func (s *pgStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toWideTableRecords(table *domain.WideTable) ([]schema.WideTableRow, []schema.WideTableColumn, error) {
	normalized := table.Clone()
	normalized.Normalize()

	columns := make([]schema.WideTableColumn, 0, len(normalized.Columns))
	for _, p := range normalized.Columns {
		columns = append(columns, schema.WideTableColumn{Label: p.Label(), PeriodStart: p.Start()})
	}

	rows := make([]schema.WideTableRow, 0, len(normalized.Rows))
	for _, r := range normalized.Rows {
		cells, err := json.Marshal(r.Cells)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode cells of %s: %w", r.Key, err)
		}
		rows = append(rows, schema.WideTableRow{
			RegionKey: string(r.Key),
			SubCounty: r.Name,
			Cells:     datatypes.JSON(cells),
		})
	}

	return rows, columns, nil
}
