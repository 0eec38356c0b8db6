package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ExportService streams complaint listings as CSV for staff reporting. Rows
// pass through the same identity rule as the read paths, so a lecturer export
// carries "anonymous" where the detail view would.
type ExportService struct {
	complaints repository.ComplaintRepository
}

// NewExportService constructs the service.
func NewExportService(complaints repository.ComplaintRepository) *ExportService {
	return &ExportService{complaints: complaints}
}

var exportHeader = []string{
	"complaint_id", "student", "title", "category", "priority", "status",
	"assigned_to", "escalation_level", "tags", "anonymous",
	"created_at", "opened_at", "resolved_at",
}

// WriteCSV writes matching complaints to w. Drafts are excluded regardless of
// the filter; the viewer's role decides how anonymous owners are rendered.
func (s *ExportService) WriteCSV(ctx context.Context, viewer Actor, filter ComplaintListFilter, w io.Writer) error {
	if !domain.IsStaffRole(viewer.Role) {
		return apperrors.NewForbidden("exports require a lecturer or admin role")
	}
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []domain.ComplaintStatus{
			domain.StatusNew, domain.StatusOpened, domain.StatusInProgress,
			domain.StatusResolved, domain.StatusClosed, domain.StatusReopened,
		}
	}
	complaints, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		AssignedTo:  filter.AssignedTo,
		Statuses:    statuses,
		Categories:  filter.Categories,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return apperrors.MapError(err)
	}
	for i := range complaints {
		complaint := &complaints[i]
		if complaint.IsDraft {
			continue
		}
		if err := writer.Write(exportRow(complaint, viewer.Role)); err != nil {
			return apperrors.MapError(err)
		}
	}
	writer.Flush()
	return apperrors.MapError(writer.Error())
}

func exportRow(c *domain.Complaint, viewer domain.Role) []string {
	assignedTo := ""
	if c.AssignedTo != nil {
		assignedTo = *c.AssignedTo
	}
	return []string{
		c.ID,
		domain.VisibleIdentity(c, viewer),
		c.Title,
		string(c.Category),
		string(c.Priority),
		string(c.Status),
		assignedTo,
		strconv.Itoa(c.EscalationLevel),
		strings.Join(c.Tags, ";"),
		strconv.FormatBool(c.IsAnonymous),
		formatExportTime(&c.CreatedAt),
		formatExportTime(c.OpenedAt),
		formatExportTime(c.ResolvedAt),
	}
}

func formatExportTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
