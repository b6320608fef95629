package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/raphaelgruber/memctx-go/internal/models"
)

// CapabilityCareer gates the career-data listings in the work snapshot.
const CapabilityCareer = "career"

const (
	workListCap   = 5
	careerListCap = 20
)

// WorkService assembles the lightweight "current work" snapshot for a
// conversation owner.
type WorkService struct {
	source WorkSource
	logger *slog.Logger
}

// NewWorkService creates a work snapshot service.
func NewWorkService(source WorkSource, logger *slog.Logger) *WorkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkService{source: source, logger: logger}
}

// Snapshot returns the owner's active projects and issues (up to 5 each),
// plus career listings (up to 20 each) when the owner carries the career
// capability flag. Individual listing failures degrade to empty lists.
func (w *WorkService) Snapshot(ctx context.Context, entityType models.EntityType, entityID string) (*models.WorkContext, error) {
	snapshot := &models.WorkContext{}

	var err error
	snapshot.ActiveProjects, err = w.source.ActiveCards(ctx, entityType, entityID, "project", workListCap)
	if err != nil {
		return nil, fmt.Errorf("active projects: %w", err)
	}
	snapshot.ActiveIssues, err = w.source.ActiveCards(ctx, entityType, entityID, "issue", workListCap)
	if err != nil {
		return nil, fmt.Errorf("active issues: %w", err)
	}

	capabilities, err := w.source.Capabilities(ctx, entityType, entityID)
	if err != nil {
		w.logger.Warn("failed to load capabilities, skipping career listings",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return snapshot, nil
	}

	if slices.Contains(capabilities, CapabilityCareer) {
		snapshot.JobApplications = w.careerList(ctx, entityType, entityID, "job_application")
		snapshot.Resumes = w.careerList(ctx, entityType, entityID, "resume")
		snapshot.Companies = w.careerList(ctx, entityType, entityID, "company")
		snapshot.Contacts = w.careerList(ctx, entityType, entityID, "contact")
	}

	return snapshot, nil
}

func (w *WorkService) careerList(ctx context.Context, entityType models.EntityType, entityID, kind string) []models.EntityCard {
	cards, err := w.source.ActiveCards(ctx, entityType, entityID, kind, careerListCap)
	if err != nil {
		w.logger.Warn("career listing failed", "kind", kind, "error", err)
		return []models.EntityCard{}
	}
	return cards
}
