package history

import (
	"context"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

// ErrNotFound custom database error for failure to find record
var ErrNotFound = errors.New("record not found")

// Open creates and migrates the sqlite database at dbFile
func Open(dbFile string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&RunModel{}, &RowModel{}); err != nil {
		return nil, err
	}

	return db, nil
}

// SqliteRepo is our run history implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new run history repo
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{db: db}
}

// Save stores a run and its rows in one transaction
func (r *SqliteRepo) Save(ctx context.Context, report entities.RunReport, rows []entities.ReportRow) error {
	if report.ID == "" {
		return errors.New("run id cannot be empty")
	}

	run := RunModel{
		ID:             report.ID,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		ReachableCount: report.Summary.ReachableCount,
		FailedCount:    report.Summary.FailedCount,
		ReportPath:     report.ReportPath,
		RowCount:       report.RowCount,
	}

	models := make([]RowModel, 0, len(rows))
	for i, row := range rows {
		models = append(models, RowModel{
			RunID:              report.ID,
			Position:           i,
			SwitchName:         row.SwitchName,
			ConfiguredHostname: row.ConfiguredHostname,
			IP:                 row.IP,
			Reachability:       row.Reachability,
			Interface:          row.Interface,
			Status:             row.Status,
			SnmpRoCommunity:    row.SnmpRoCommunity,
			SwitchStatus:       row.SwitchStatus,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
}

// List returns the most recent runs first, limit <= 0 returns all
func (r *SqliteRepo) List(ctx context.Context, limit int) ([]entities.RunReport, error) {
	runs := []RunModel{}

	query := r.db.WithContext(ctx).Order("started_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if result := query.Find(&runs); result.Error != nil {
		return nil, result.Error
	}

	reports := make([]entities.RunReport, 0, len(runs))
	for _, run := range runs {
		reports = append(reports, toReport(run))
	}

	return reports, nil
}

// Get returns a single run by id
func (r *SqliteRepo) Get(ctx context.Context, runID string) (entities.RunReport, error) {
	run := RunModel{}

	if result := r.db.WithContext(ctx).Where("id = ?", runID).First(&run); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entities.RunReport{}, ErrNotFound
		}

		return entities.RunReport{}, result.Error
	}

	return toReport(run), nil
}

// Rows returns the report rows of a run in emission order
func (r *SqliteRepo) Rows(ctx context.Context, runID string) ([]entities.ReportRow, error) {
	if _, err := r.Get(ctx, runID); err != nil {
		return nil, err
	}

	models := []RowModel{}
	if result := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("position asc").Find(&models); result.Error != nil {
		return nil, result.Error
	}

	rows := make([]entities.ReportRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, entities.ReportRow{
			SwitchName:         m.SwitchName,
			ConfiguredHostname: m.ConfiguredHostname,
			IP:                 m.IP,
			Reachability:       m.Reachability,
			Interface:          m.Interface,
			Status:             m.Status,
			SnmpRoCommunity:    m.SnmpRoCommunity,
			SwitchStatus:       m.SwitchStatus,
		})
	}

	return rows, nil
}

func toReport(run RunModel) entities.RunReport {
	return entities.RunReport{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Summary: entities.RunSummary{
			ReachableCount: run.ReachableCount,
			FailedCount:    run.FailedCount,
		},
		ReportPath: run.ReportPath,
		RowCount:   run.RowCount,
	}
}
