package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/stwalsh4118/estatedesk/internal/ingest"
	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
)

// IngestRequest is one parsed sheet: a header row and its data rows.
type IngestRequest struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

// IngestResult reports what an ingestion did.
type IngestResult struct {
	Mapping       ingest.HeaderMapping `json:"mapping"`
	Summary       *models.UnitSummary  `json:"summary,omitempty"`
	Kept          int                  `json:"kept"`
	Dropped       int                  `json:"dropped"`
	SummaryCached bool                 `json:"summary_cached"`
}

// UnitService defines unit ingestion and inventory operations.
type UnitService interface {
	// Ingest maps, normalizes and upserts rows into the project.
	// Returns ErrAuthorizationDenied for agents, ErrProjectNotFound when the
	// project is out of scope and ErrValidation for an empty sheet.
	// Caching the summary on the project is best-effort.
	Ingest(ctx context.Context, caller *CallerContext, projectID string, req IngestRequest) (*IngestResult, error)

	// IngestFile reads an .xlsx or .csv upload and ingests its first sheet.
	IngestFile(ctx context.Context, caller *CallerContext, projectID, filename string, r io.Reader) (*IngestResult, error)

	// ListUnits returns the project's units.
	ListUnits(ctx context.Context, caller *CallerContext, projectID string) ([]models.Unit, error)

	// ExportUnits renders the project's units as an .xlsx workbook and
	// returns it with a download file name.
	ExportUnits(ctx context.Context, caller *CallerContext, projectID string) ([]byte, string, error)

	// GetSummary returns the cached summary when it is usable, otherwise
	// recomputes it from stored units. Returns nil, nil when the project has
	// no units.
	GetSummary(ctx context.Context, caller *CallerContext, projectID string) (*models.UnitSummary, error)

	// ClearUnits removes every unit of the project and its cached summary.
	ClearUnits(ctx context.Context, caller *CallerContext, projectID string) (int64, error)
}

type unitService struct {
	projects repository.ProjectRepository
	units    repository.UnitRepository
	mapper   *ingest.HeaderMapper
	log      *logger.Logger
}

// NewUnitService creates a new UnitService using the default header rules.
func NewUnitService(projects repository.ProjectRepository, units repository.UnitRepository, log *logger.Logger) UnitService {
	return &unitService{
		projects: projects,
		units:    units,
		mapper:   ingest.DefaultHeaderMapper(),
		log:      log,
	}
}

func (s *unitService) Ingest(ctx context.Context, caller *CallerContext, projectID string, req IngestRequest) (*IngestResult, error) {
	project, err := s.loadWritable(ctx, caller, projectID, "agents cannot ingest units")
	if err != nil {
		return nil, err
	}

	if len(req.Headers) == 0 {
		return nil, invalid("sheet has no header row")
	}
	if len(req.Rows) == 0 {
		return nil, invalid("sheet has no data rows")
	}

	mapping := s.mapper.Map(req.Headers)
	processed := ingest.ProcessRows(req.Headers, req.Rows, mapping, project.Name)
	result := &IngestResult{
		Mapping: mapping,
		Kept:    len(processed.Units),
		Dropped: processed.Dropped,
	}

	s.log.Info("Processed unit sheet", map[string]interface{}{
		"project_id":     project.ID,
		"headers":        len(req.Headers),
		"mapped_headers": len(mapping),
		"kept":           result.Kept,
		"dropped":        result.Dropped,
	})

	if result.Kept == 0 {
		s.log.Warn("No rows had a unit number or unit code", map[string]interface{}{"project_id": project.ID})
		return result, nil
	}

	written, err := s.units.UpsertUnits(ctx, project.ID, processed.Units)
	if err != nil {
		s.log.Error("Failed to upsert units", err, map[string]interface{}{"project_id": project.ID})
		return nil, upstream("save units", err)
	}

	summary := ingest.Summarize(processed.Units, mapping.Coverage(req.Headers))
	if err := summary.Validate(); err != nil {
		s.log.Error("Summary failed its count check", err, map[string]interface{}{"project_id": project.ID})
	}
	result.Summary = &summary
	result.SummaryCached = s.cacheSummary(ctx, project.ID, &summary)

	s.log.Info("Units ingested", map[string]interface{}{
		"project_id": project.ID,
		"written":    written,
		"confidence": summary.Confidence.Overall,
	})
	return result, nil
}

func (s *unitService) IngestFile(ctx context.Context, caller *CallerContext, projectID, filename string, r io.Reader) (*IngestResult, error) {
	if _, err := s.loadWritable(ctx, caller, projectID, "agents cannot ingest units"); err != nil {
		return nil, err
	}

	sheet, err := ingest.ReadSheet(filename, r)
	if err != nil {
		s.log.Warn("Could not read uploaded sheet", map[string]interface{}{
			"project_id": projectID,
			"file_name":  filename,
			"error":      err.Error(),
		})
		switch {
		case errors.Is(err, ingest.ErrUnsupportedFormat):
			return nil, invalid("only .xlsx, .xlsm and .csv files are supported")
		case errors.Is(err, ingest.ErrEmptySheet):
			return nil, invalid("sheet has no header row")
		default:
			return nil, invalid("could not read spreadsheet: %v", err)
		}
	}

	return s.Ingest(ctx, caller, projectID, IngestRequest{Headers: sheet.Headers, Rows: sheet.Rows})
}

func (s *unitService) ListUnits(ctx context.Context, caller *CallerContext, projectID string) ([]models.Unit, error) {
	project, err := loadProject(ctx, s.projects, s.log, caller, projectID)
	if err != nil {
		return nil, err
	}

	units, err := s.units.ListByProject(ctx, project.ID)
	if err != nil {
		s.log.Error("Failed to list units", err, map[string]interface{}{"project_id": project.ID})
		return nil, upstream("list units", err)
	}

	s.log.Debug("Units listed", map[string]interface{}{
		"project_id": project.ID,
		"count":      len(units),
	})
	return units, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *unitService) ExportUnits(ctx context.Context, caller *CallerContext, projectID string) ([]byte, string, error) {
	project, err := loadProject(ctx, s.projects, s.log, caller, projectID)
	if err != nil {
		return nil, "", err
	}

	units, err := s.units.ListByProject(ctx, project.ID)
	if err != nil {
		s.log.Error("Failed to list units for export", err, map[string]interface{}{"project_id": project.ID})
		return nil, "", upstream("list units", err)
	}

	data, err := ingest.WriteUnitsWorkbook(units)
	if err != nil {
		s.log.Error("Failed to render units workbook", err, map[string]interface{}{"project_id": project.ID})
		return nil, "", err
	}

	s.log.Info("Units exported", map[string]interface{}{
		"project_id": project.ID,
		"count":      len(units),
		"bytes":      len(data),
	})
	return data, exportFileName(project.Name), nil
}

func exportFileName(projectName string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(projectName, "-"), "-.")
	if base == "" {
		base = "project"
	}
	return base + "-units.xlsx"
}

func (s *unitService) GetSummary(ctx context.Context, caller *CallerContext, projectID string) (*models.UnitSummary, error) {
	project, err := loadProject(ctx, s.projects, s.log, caller, projectID)
	if err != nil {
		return nil, err
	}

	cached := project.UnitSummary
	if cached != nil && !cached.IsDegenerate() {
		s.log.Debug("Using cached unit summary", map[string]interface{}{"project_id": project.ID})
		return cached, nil
	}

	units, err := s.units.ListByProject(ctx, project.ID)
	if err != nil {
		s.log.Error("Failed to list units for summary", err, map[string]interface{}{"project_id": project.ID})
		return nil, upstream("list units", err)
	}
	if len(units) == 0 {
		return nil, nil
	}

	rows := make([]models.UnitRow, len(units))
	reinferred := 0
	for i := range units {
		rows[i] = units[i].UnitRow
		if rows[i].Bedrooms == nil {
			if b := ingest.InferBedrooms(rows[i].CustomFields, rows[i].RawData); b != nil {
				rows[i].Bedrooms = b
				reinferred++
			}
		}
	}

	headerMapping := ingest.FieldCoverage(rows)
	if cached != nil && cached.Confidence.HeaderMapping > 0 {
		headerMapping = cached.Confidence.HeaderMapping
	}
	summary := ingest.Summarize(rows, headerMapping)

	s.log.Info("Recomputed unit summary", map[string]interface{}{
		"project_id": project.ID,
		"stale":      cached != nil,
		"units":      len(units),
		"reinferred": reinferred,
	})

	if caller.CanWriteOrganization(project.OrganizationID) {
		s.cacheSummary(ctx, project.ID, &summary)
	}
	return &summary, nil
}

func (s *unitService) ClearUnits(ctx context.Context, caller *CallerContext, projectID string) (int64, error) {
	project, err := s.loadWritable(ctx, caller, projectID, "agents cannot delete units")
	if err != nil {
		return 0, err
	}

	removed, err := s.units.DeleteByProject(ctx, project.ID)
	if err != nil {
		s.log.Error("Failed to delete units", err, map[string]interface{}{"project_id": project.ID})
		return 0, upstream("delete units", err)
	}

	s.cacheSummary(ctx, project.ID, nil)
	s.log.Info("Units cleared", map[string]interface{}{
		"project_id": project.ID,
		"removed":    removed,
	})
	return removed, nil
}

// loadWritable fetches a project the caller may mutate.
func (s *unitService) loadWritable(ctx context.Context, caller *CallerContext, projectID, agentReason string) (*models.Project, error) {
	if caller.IsAgent() {
		return nil, denied(agentReason)
	}
	project, err := loadProject(ctx, s.projects, s.log, caller, projectID)
	if err != nil {
		return nil, err
	}
	if !caller.CanWriteOrganization(project.OrganizationID) {
		return nil, denied("cannot modify units of this project")
	}
	return project, nil
}

func (s *unitService) cacheSummary(ctx context.Context, projectID string, summary *models.UnitSummary) bool {
	return bestEffort(s.log, "cache unit summary", map[string]interface{}{"project_id": projectID}, func() error {
		return s.projects.UpdateUnitSummary(ctx, projectID, summary)
	})
}
