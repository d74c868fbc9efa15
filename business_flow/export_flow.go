package businessflow

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

var ErrUnsupportedExportFormat = errors.New("unsupported export format")

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportFlow renders respondent data of a company's campaigns
type ExportFlow interface {
	ExportRespondents(ctx context.Context, session *Session, format string) (*ExportFile, error)
}

// ExportFlowImpl implements ExportFlow
type ExportFlowImpl struct {
	loader       campaignLoader
	companyRepo  repository.CompanyRepository
	responseRepo repository.SurveyResponseRepository
	answerRepo   repository.SurveyAnswerRepository
	location     *time.Location
}

// NewExportFlow creates a new export flow; loc is used for the generation stamp
func NewExportFlow(
	campaignRepo repository.CampaignRepository,
	questionRepo repository.QuestionRepository,
	optionRepo repository.QuestionOptionRepository,
	companyLinkRepo repository.CampaignCompanyRepository,
	researcherLinkRepo repository.CampaignResearcherRepository,
	companyRepo repository.CompanyRepository,
	responseRepo repository.SurveyResponseRepository,
	answerRepo repository.SurveyAnswerRepository,
	loc *time.Location,
) ExportFlow {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportFlowImpl{
		loader: campaignLoader{
			campaignRepo:       campaignRepo,
			questionRepo:       questionRepo,
			optionRepo:         optionRepo,
			companyLinkRepo:    companyLinkRepo,
			researcherLinkRepo: researcherLinkRepo,
		},
		companyRepo:  companyRepo,
		responseRepo: responseRepo,
		answerRepo:   answerRepo,
		location:     loc,
	}
}

func (s *ExportFlowImpl) ExportRespondents(ctx context.Context, session *Session, format string) (*ExportFile, error) {
	if err := session.Require(models.UserRoleCompany); err != nil {
		return nil, err
	}
	switch format {
	case ExportFormatCSV, ExportFormatPDF, ExportFormatXLSX:
	default:
		return nil, NewBusinessError("UNSUPPORTED_EXPORT_FORMAT", "Unsupported export format", ErrUnsupportedExportFormat)
	}

	company, _, responses, err := companyScope(ctx, s.loader, s.companyRepo, s.responseRepo, s.answerRepo, session.ProfileID)
	if err != nil {
		return nil, err
	}
	rows := RespondentsFromResponses(responses)

	switch format {
	case ExportFormatPDF:
		data, err := RespondentsPDF(company.Name, utils.UTCNow().In(s.location), rows)
		if err != nil {
			return nil, NewBusinessError("EXPORT_FAILED", "Failed to export respondents", err)
		}
		return &ExportFile{Filename: RespondentsPDFFilename, ContentType: "application/pdf", Data: data}, nil
	case ExportFormatXLSX:
		data, err := RespondentsXLSX(rows)
		if err != nil {
			return nil, NewBusinessError("EXPORT_FAILED", "Failed to export respondents", err)
		}
		return &ExportFile{
			Filename:    RespondentsXLSXFilename,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return &ExportFile{
			Filename:    RespondentsCSVFilename,
			ContentType: "text/csv; charset=utf-8",
			Data:        RespondentsCSV(rows),
		}, nil
	}
}
