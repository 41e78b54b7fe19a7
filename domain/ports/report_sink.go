package ports

import (
	"context"
	"time"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

// ReportSink persists the rows of a run and returns where they went
type ReportSink interface {
	Write(startedAt time.Time, rows []entities.ReportRow) (string, error)
}

// RunHistory records finished runs
type RunHistory interface {
	Save(ctx context.Context, report entities.RunReport, rows []entities.ReportRow) error
	List(ctx context.Context, limit int) ([]entities.RunReport, error)
}
