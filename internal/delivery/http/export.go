package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

const (
	incidentSheet   = "Incidents"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var incidentExportHeader = []interface{}{
	"ID",
	"Type",
	"Confidence",
	"Vibration",
	"Latitude",
	"Longitude",
	"Distance",
	"Temperature",
	"Humidity",
	"Alcohol",
	"Network Strength",
	"SOS Alert",
	"GSM Connected",
	"Created At",
}

// ExportRoadData downloads the newest incidents as a workbook
func (h *Handler) ExportRoadData(c *fiber.Ctx) error {
	recs, err := h.telemetry.RecentIncidents(c.Context(), recentLimit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	data, err := buildIncidentWorkbook(recs)
	if err != nil {
		h.logger.Error("incident export failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build incident export")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=road-events.xlsx")
	return c.Send(data)
}

func buildIncidentWorkbook(recs []domain.IncidentRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), incidentSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE9D9"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := incidentExportHeader
	if err := f.SetSheetRow(incidentSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve header width: %w", err)
	}
	if err := f.SetCellStyle(incidentSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := []interface{}{
			rec.ID,
			string(rec.Type),
			rec.Confidence,
			rec.Vibration,
			rec.Latitude,
			rec.Longitude,
			rec.Distance,
			rec.Temperature,
			rec.Humidity,
			rec.Alcohol,
			rec.NetworkStrength,
			rec.SOSAlert,
			rec.GSMConnected,
			rec.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(incidentSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(incidentSheet, "B", "B", 20); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(incidentSheet, "N", "N", 24); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
