package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/pkg/config"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/export"
)

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type exportSlotRepository interface {
	ListBySection(ctx context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error)
}

type periodLister interface {
	ListPeriods(ctx context.Context) ([]models.TimeGridPeriod, error)
}

// ExportService renders a section's weekly grid as PDF or CSV. One row per
// day, one column per period; span continuations repeat their master's text
// so the printed table has no holes.
type ExportService struct {
	slots     exportSlotRepository
	periods   periodLister
	pdf       *export.PDFExporter
	csv       *export.CSVExporter
	cfg       config.ExportConfig
	routine   config.RoutineConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(slots exportSlotRepository, periods periodLister, cfg config.ExportConfig, routine config.RoutineConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		slots:     slots,
		periods:   periods,
		pdf:       export.NewPDFExporter(),
		csv:       export.NewCSVExporter(),
		cfg:       cfg,
		routine:   routine,
		validator: validator.New(),
		logger:    logger,
	}
}

// ExportPDF renders the section grid as a landscape PDF table.
func (s *ExportService) ExportPDF(ctx context.Context, q dto.GridQuery) ([]byte, string, error) {
	if !s.cfg.Enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export is disabled")
	}
	data, err := s.buildDataset(ctx, q)
	if err != nil {
		return nil, "", err
	}
	title := s.cfg.InstituteName
	if title == "" {
		title = "Weekly Routine"
	}
	subtitle := fmt.Sprintf("Semester %d  Section %s", q.Semester, q.Section)
	out, err := s.pdf.Render(*data, title, subtitle)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, exportFilename(q, "pdf"), nil
}

// ExportCSV renders the section grid as CSV.
func (s *ExportService) ExportCSV(ctx context.Context, q dto.GridQuery) ([]byte, string, error) {
	if !s.cfg.Enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export is disabled")
	}
	data, err := s.buildDataset(ctx, q)
	if err != nil {
		return nil, "", err
	}
	out, err := s.csv.Render(*data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, exportFilename(q, "csv"), nil
}

func exportFilename(q dto.GridQuery, ext string) string {
	return fmt.Sprintf("routine_%s_sem%d_%s.%s", q.ProgramID, q.Semester, q.Section, ext)
}

func (s *ExportService) buildDataset(ctx context.Context, q dto.GridQuery) (*export.Dataset, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}

	slots, err := s.slots.ListBySection(ctx, q.ProgramID, q.Semester, q.Section, q.AcademicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section routine")
	}
	periods, err := s.periods.ListPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time grid")
	}

	headers := make([]string, 0, s.routine.SlotsPerDay+1)
	headers = append(headers, "Day")
	for i := 0; i < s.routine.SlotsPerDay; i++ {
		headers = append(headers, periodHeader(periods, i))
	}

	byCoord := make(map[[2]int][]models.RoutineSlot)
	for _, slot := range slots {
		key := [2]int{slot.DayIndex, slot.SlotIndex}
		byCoord[key] = append(byCoord[key], slot)
	}

	rows := make([]map[string]string, 0, s.routine.DaysPerWeek)
	for day := 0; day < s.routine.DaysPerWeek; day++ {
		row := map[string]string{"Day": dayName(day)}
		for idx := 0; idx < s.routine.SlotsPerDay; idx++ {
			row[periodHeader(periods, idx)] = cellText(byCoord[[2]int{day, idx}])
		}
		rows = append(rows, row)
	}

	return &export.Dataset{Headers: headers, Rows: rows}, nil
}

func periodHeader(periods []models.TimeGridPeriod, slotIndex int) string {
	for _, p := range periods {
		if p.SlotIndex == slotIndex {
			if p.Label != nil && *p.Label != "" {
				return fmt.Sprintf("%s (%s-%s)", *p.Label, p.StartTime, p.EndTime)
			}
			return fmt.Sprintf("%s-%s", p.StartTime, p.EndTime)
		}
	}
	return fmt.Sprintf("Period %d", slotIndex+1)
}

func dayName(dayIndex int) string {
	if dayIndex >= 0 && dayIndex < len(dayNames) {
		return dayNames[dayIndex]
	}
	return fmt.Sprintf("Day %d", dayIndex+1)
}

// cellText flattens every slot at a coordinate into one printable cell.
// Lab-group splits stack, elective pairs list subject/teacher side by side.
func cellText(slots []models.RoutineSlot) string {
	if len(slots) == 0 {
		return ""
	}
	sort.Slice(slots, func(i, j int) bool {
		left := ""
		if slots[i].LabGroup != nil {
			left = string(*slots[i].LabGroup)
		}
		right := ""
		if slots[j].LabGroup != nil {
			right = string(*slots[j].LabGroup)
		}
		return left < right
	})

	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.ClassType == models.ClassTypeBreak {
			lines = append(lines, "BREAK")
			continue
		}
		var b strings.Builder
		if slot.LabGroup != nil && *slot.LabGroup != models.LabGroupAll {
			fmt.Fprintf(&b, "[%s] ", *slot.LabGroup)
		}
		for i := range slot.SubjectNames {
			if i > 0 {
				b.WriteString(" / ")
			}
			b.WriteString(slot.SubjectNames[i])
			if i < len(slot.TeacherNames) {
				fmt.Fprintf(&b, " (%s)", slot.TeacherNames[i])
			}
		}
		if len(slot.SubjectNames) == 1 && len(slot.TeacherNames) > 1 {
			// Single subject taught by several teachers lists them all.
			b.Reset()
			if slot.LabGroup != nil && *slot.LabGroup != models.LabGroupAll {
				fmt.Fprintf(&b, "[%s] ", *slot.LabGroup)
			}
			fmt.Fprintf(&b, "%s (%s)", slot.SubjectNames[0], strings.Join(slot.TeacherNames, ", "))
		}
		if slot.RoomName != nil && *slot.RoomName != "" {
			fmt.Fprintf(&b, " @%s", *slot.RoomName)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
