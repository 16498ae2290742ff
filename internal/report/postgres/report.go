package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/role-assignment/internal/report"
)

const fullReportQuery = `
SELECT a.created_at,
       COALESCE(e.position_id, '') AS position_id,
       COALESCE(e.position_title, '') AS position_title
FROM assignments a
JOIN employees e ON e.id = a.employee_id
JOIN organization_details od ON od.id = a.organization_detail_id
ORDER BY e.position_id ASC, a.created_at ASC, a.id ASC`

// ReportRepository reads report rows straight through sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) FullReportRows(ctx context.Context) ([]report.AssignmentRow, error) {
	var rows []report.AssignmentRow
	if err := r.db.SelectContext(ctx, &rows, fullReportQuery); err != nil {
		return nil, err
	}
	return rows, nil
}
