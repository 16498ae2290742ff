package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/assignment"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
)

const filenameStamp = "20060102_1504"

type RepositoryAPI interface {
	FullReportRows(ctx context.Context) ([]AssignmentRow, error)
}

type AssignmentExporter interface {
	Export(actor *coreUser.User, slug string) (*organizationtype.OrganizationType, []*fielddefinition.FieldDefinition, []*assignment.View, error)
}

// Workbook is a rendered xlsx ready to download.
type Workbook struct {
	Filename string
	Data     []byte
}

type Service struct {
	repo        RepositoryAPI
	assignments AssignmentExporter
	now         func() time.Time
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, assignments AssignmentExporter, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the clock used for file names.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FullReportSheets returns the full report layout without rendering it.
func (s *Service) FullReportSheets(ctx context.Context) ([]*Sheet, error) {
	rows, err := s.repo.FullReportRows(ctx)
	if err != nil {
		s.logger.Error("failed to load report rows", "error", err)
		return nil, errors.NewInternalError("failed to generate report", err)
	}
	return []*Sheet{OverviewSheet(), AssignRolesSheet(rows)}, nil
}

func (s *Service) FullReport(ctx context.Context) (*Workbook, error) {
	sheets, err := s.FullReportSheets(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(fmt.Sprintf("Assign_Roles_%s.xlsx", s.now().Format(filenameStamp)), sheets...)
}

// ExportSheets returns the per-type export layout and the type it was built for.
func (s *Service) ExportSheets(actor *coreUser.User, slug string) (*organizationtype.OrganizationType, []*Sheet, error) {
	t, defs, views, err := s.assignments.Export(actor, slug)
	if err != nil {
		return nil, nil, err
	}
	return t, []*Sheet{AssignmentsSheet(defs, views)}, nil
}

func (s *Service) ExportAssignments(actor *coreUser.User, slug string) (*Workbook, error) {
	t, sheets, err := s.ExportSheets(actor, slug)
	if err != nil {
		return nil, err
	}
	return s.render(fmt.Sprintf("%s_assignments_%s.xlsx", t.Slug, s.now().Format(filenameStamp)), sheets...)
}

func (s *Service) render(filename string, sheets ...*Sheet) (*Workbook, error) {
	f, err := Render(sheets...)
	if err != nil {
		s.logger.Error("failed to render workbook", "filename", filename, "error", err)
		return nil, errors.NewInternalError("failed to generate report", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("failed to write workbook", "filename", filename, "error", err)
		return nil, errors.NewInternalError("failed to generate report", err)
	}
	return &Workbook{Filename: filename, Data: buf.Bytes()}, nil
}
