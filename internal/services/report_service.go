package services

import (
	"bytes"
	"context"
	"fmt"

	"casework-backend/internal/models"
	"casework-backend/internal/repositories"
	"casework-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ClientReportData holds all data for a client case report
type ClientReportData struct {
	Client       *models.Client
	Visits       []*models.Visit
	Contracts    []*models.Contract
	TotalVisits  int
	TotalMinutes int
}

// ReportService handles report generation
type ReportService struct {
	ClientRepo   *repositories.ClientRepository
	VisitRepo    *repositories.VisitRepository
	ContractRepo *repositories.ContractRepository
}

func NewReportService(
	clientRepo *repositories.ClientRepository,
	visitRepo *repositories.VisitRepository,
	contractRepo *repositories.ContractRepository,
) *ReportService {
	return &ReportService{
		ClientRepo:   clientRepo,
		VisitRepo:    visitRepo,
		ContractRepo: contractRepo,
	}
}

// GetClientReportData fetches all data for a client
func (s *ReportService) GetClientReportData(ctx context.Context, clientID int) (*ClientReportData, error) {
	client, err := s.ClientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}

	visits, err := s.VisitRepo.ListByClient(ctx, clientID)
	if err != nil {
		visits = []*models.Visit{}
	}
	contracts, err := s.ContractRepo.ListByClient(ctx, clientID)
	if err != nil {
		contracts = []*models.Contract{}
	}

	totalMinutes := 0
	for _, v := range visits {
		totalMinutes += v.DurationMinutes
	}

	return &ClientReportData{
		Client:       client,
		Visits:       visits,
		Contracts:    contracts,
		TotalVisits:  len(visits),
		TotalMinutes: totalMinutes,
	}, nil
}

// GenerateClientReportPDF renders the case report as a PDF
func (s *ReportService) GenerateClientReportPDF(data *ClientReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	translate := pdf.UnicodeTranslatorFromDescriptor("cp1250")

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, translate("Client Case Report"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Client Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Client Information", "1", 1, "L", true, 0, "")

	c := data.Client
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, translate(fmt.Sprintf("Name: %s %s", c.FirstName, c.LastName)), "LB", 0, "L", false, 0, "")
	cehupo := "-"
	if c.CehupoID != nil {
		cehupo = fmt.Sprint(*c.CehupoID)
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Cehupo ID: %s", cehupo), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, translate(fmt.Sprintf("Address: %s, %s", c.Street, c.City)), "LB", 0, "L", false, 0, "")
	visa := "-"
	if c.VisaType != nil {
		visa = *c.VisaType
	}
	pdf.CellFormat(95, 7, translate(fmt.Sprintf("Visa: %s", visa)), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Visit history
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Visit History", "1", 1, "L", true, 0, "")

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(25, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Subject", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Location", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Minutes", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, v := range data.Visits {
		pdf.CellFormat(25, 7, v.VisitDate.Format("02.01.2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, translate(v.Subject), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, translate(v.VisitType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, translate(v.Location), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprint(v.DurationMinutes), "1", 1, "R", false, 0, "")
	}

	// Totals
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(165, 7, fmt.Sprintf("Total visits: %d", data.TotalVisits), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, fmt.Sprint(data.TotalMinutes), "1", 1, "R", false, 0, "")
	pdf.Ln(5)

	// Contracts
	if len(data.Contracts) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Contracts", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(25, 7, "Signed", "1", 0, "C", true, 0, "")
		pdf.CellFormat(110, 7, "Title", "1", 0, "C", true, 0, "")
		pdf.CellFormat(55, 7, "Valid Until", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, contract := range data.Contracts {
			validUntil := "-"
			if contract.ValidUntil != nil {
				validUntil = contract.ValidUntil.Format("02.01.2006")
			}
			pdf.CellFormat(25, 7, contract.SignedDate.Format("02.01.2006"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(110, 7, translate(contract.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(55, 7, validUntil, "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
