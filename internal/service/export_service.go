package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/export"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// ExportFormat names a rendered schedule format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var scheduleHeaders = []string{"Day", "Time", "Client", "Staff", "Hours", "Location"}

type scheduleAppointmentSource interface {
	ListAll(ctx context.Context) ([]models.Appointment, error)
}

type scheduleClientSource interface {
	ListAll(ctx context.Context) ([]models.Client, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ScheduleExport is a rendered weekly schedule.
type ScheduleExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the weekly schedule.
type ExportService struct {
	appointments scheduleAppointmentSource
	clients      scheduleClientSource
	staff        staffLookup
	csv          csvRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(appointments scheduleAppointmentSource, clients scheduleClientSource, staff staffLookup, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		appointments: appointments,
		clients:      clients,
		staff:        staff,
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
		now:          time.Now,
	}
}

// WeeklySchedule renders every appointment ordered by day, start time and client.
func (s *ExportService) WeeklySchedule(ctx context.Context, format ExportFormat) (*ScheduleExport, error) {
	format = ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset, err := s.buildScheduleDataset(ctx)
	if err != nil {
		return nil, err
	}

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Weekly Schedule")
		contentType = "application/pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render schedule")
	}

	s.logger.Info("schedule exported", zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ScheduleExport{
		Filename:    fmt.Sprintf("schedule_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildScheduleDataset(ctx context.Context) (export.Dataset, error) {
	appts, err := s.appointments.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to load appointments")
	}
	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Internal(err, "failed to load clients")
	}
	clientNames := make(map[string]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.DisplayName()
	}

	staffIDs := make([]string, 0, len(appts))
	for _, appt := range appts {
		staffIDs = append(staffIDs, appt.StaffID)
	}
	staffIDs = uniqueStrings(staffIDs)
	staffByID := make(map[string]models.Staff, len(staffIDs))
	if len(staffIDs) > 0 {
		members, err := s.staff.ListByIDs(ctx, staffIDs)
		if err != nil {
			return export.Dataset{}, appErrors.Internal(err, "failed to load staff")
		}
		for _, m := range members {
			staffByID[m.ID] = m
		}
	}

	sort.SliceStable(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return clientNames[a.ClientID] < clientNames[b.ClientID]
	})

	rows := make([]map[string]string, 0, len(appts))
	fills := make([]string, 0, len(appts))
	for _, appt := range appts {
		member := staffByID[appt.StaffID]
		location := "Clinic"
		if !appt.InClinic {
			location = "Home"
		}
		rows = append(rows, map[string]string{
			"Day":      timeofday.DayName(appt.Day),
			"Time":     appt.Range().Display(),
			"Client":   clientNames[appt.ClientID],
			"Staff":    member.DisplayName(),
			"Hours":    fmt.Sprintf("%.2f", timeofday.Round2(appt.Hours())),
			"Location": location,
		})
		fills = append(fills, member.BgColor)
	}
	return export.Dataset{Headers: scheduleHeaders, Rows: rows, Fills: fills}, nil
}
