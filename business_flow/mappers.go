package businessflow

import (
	"cmp"
	"slices"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// ToAdminDTO maps an administradores row
func ToAdminDTO(row *models.Admin) dto.Admin {
	if row == nil {
		return dto.Admin{}
	}
	return dto.Admin{
		ID:        idString(row.ID),
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		BirthDate: formatDate(row.BirthDate),
		PhotoURL:  row.PhotoURL,
		IsActive:  row.IsActive,
	}
}

// ToCompanyDTO maps an empresas row
func ToCompanyDTO(row *models.Company) dto.Company {
	if row == nil {
		return dto.Company{}
	}
	return dto.Company{
		ID:            idString(row.ID),
		Name:          row.Name,
		LogoURL:       row.LogoURL,
		CNPJ:          row.CNPJ,
		ContactEmail:  row.ContactEmail,
		ContactPhone:  row.ContactPhone,
		ContactPerson: row.ContactPerson,
		Instagram:     row.Instagram,
		CreatedAt:     row.CreatedAt,
		IsActive:      row.IsActive,
	}
}

// ToResearcherDTO maps a pesquisadores row
func ToResearcherDTO(row *models.Researcher) dto.Researcher {
	if row == nil {
		return dto.Researcher{}
	}
	return dto.Researcher{
		ID:        idString(row.ID),
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Gender:    row.Gender,
		BirthDate: formatDate(row.BirthDate),
		PhotoURL:  row.PhotoURL,
		IsActive:  row.IsActive,
		Color:     row.Color,
	}
}

// ToVoucherDTO maps a vouchers row
func ToVoucherDTO(row *models.Voucher) dto.Voucher {
	if row == nil {
		return dto.Voucher{}
	}
	return dto.Voucher{
		ID:            idString(row.ID),
		CompanyID:     idString(row.CompanyID),
		Title:         row.Title,
		Description:   row.Description,
		QRCodeValue:   row.QRCodeValue,
		IsActive:      row.IsActive,
		LogoURL:       row.LogoURL,
		TotalQuantity: row.TotalQuantity,
		UsedCount:     row.UsedQuantity,
	}
}

// ToQuestionOptionDTO maps an opcoes_perguntas row. A question reference wins over the end flag.
func ToQuestionOptionDTO(row *models.QuestionOption) dto.QuestionOption {
	if row == nil {
		return dto.QuestionOption{}
	}

	var jumpTo *string
	switch {
	case row.JumpToQuestionID != nil:
		s := row.JumpToQuestionID.String()
		jumpTo = &s
	case row.JumpToEnd:
		s := dto.JumpToEnd
		jumpTo = &s
	}

	return dto.QuestionOption{
		ID:     idString(row.ID),
		Value:  row.Value,
		JumpTo: jumpTo,
	}
}

// ToQuestionDTO maps a perguntas row with its options, which must already be in display order
func ToQuestionDTO(row *models.Question, options []*models.QuestionOption) dto.Question {
	if row == nil {
		return dto.Question{}
	}

	out := dto.Question{
		ID:      idString(row.ID),
		Text:    row.Text,
		Type:    row.Type.String(),
		Options: make([]dto.QuestionOption, 0, len(options)),
	}
	for _, opt := range options {
		out.Options = append(out.Options, ToQuestionOptionDTO(opt))
	}
	return out
}

// ToLocationPointDTO maps a pesquisador_localizacao row
func ToLocationPointDTO(row *models.LocationPoint) dto.LocationPoint {
	if row == nil {
		return dto.LocationPoint{}
	}
	return dto.LocationPoint{
		ResearcherID: idString(row.ResearcherID),
		Lat:          row.Latitude,
		Lng:          row.Longitude,
		Timestamp:    row.Timestamp,
	}
}

// CampaignIndex groups the child rows of many campaigns by foreign key so
// composing n campaigns costs one pass over each child collection.
type CampaignIndex struct {
	questions   map[uuid.UUID][]*models.Question
	options     map[uuid.UUID][]*models.QuestionOption
	companies   map[uuid.UUID][]uuid.UUID
	researchers map[uuid.UUID][]uuid.UUID
}

// NewCampaignIndex indexes sibling collections; groups are sorted by their order column
func NewCampaignIndex(
	questions []*models.Question,
	options []*models.QuestionOption,
	companyLinks []*models.CampaignCompany,
	researcherLinks []*models.CampaignResearcher,
) *CampaignIndex {
	ix := &CampaignIndex{
		questions:   make(map[uuid.UUID][]*models.Question),
		options:     make(map[uuid.UUID][]*models.QuestionOption),
		companies:   make(map[uuid.UUID][]uuid.UUID),
		researchers: make(map[uuid.UUID][]uuid.UUID),
	}

	for _, q := range questions {
		if q != nil {
			ix.questions[q.CampaignID] = append(ix.questions[q.CampaignID], q)
		}
	}
	for _, o := range options {
		if o != nil {
			ix.options[o.QuestionID] = append(ix.options[o.QuestionID], o)
		}
	}
	for _, l := range companyLinks {
		if l != nil {
			ix.companies[l.CampaignID] = append(ix.companies[l.CampaignID], l.CompanyID)
		}
	}
	for _, l := range researcherLinks {
		if l != nil {
			ix.researchers[l.CampaignID] = append(ix.researchers[l.CampaignID], l.ResearcherID)
		}
	}

	for _, group := range ix.questions {
		slices.SortStableFunc(group, func(a, b *models.Question) int { return cmp.Compare(a.Order, b.Order) })
	}
	for _, group := range ix.options {
		slices.SortStableFunc(group, func(a, b *models.QuestionOption) int { return cmp.Compare(a.Order, b.Order) })
	}

	return ix
}

// ToCampaignDTO composes a campanhas row with its indexed children
func (ix *CampaignIndex) ToCampaignDTO(row *models.Campaign) dto.Campaign {
	if row == nil {
		return dto.Campaign{}
	}

	out := dto.Campaign{
		ID:               idString(row.ID),
		Name:             row.Name,
		Description:      row.Description,
		Theme:            row.Theme,
		IsActive:         row.IsActive,
		StartDate:        formatDate(row.StartDate),
		EndDate:          formatDate(row.EndDate),
		StartTime:        row.StartTime,
		EndTime:          row.EndTime,
		LGPDText:         row.LGPDText,
		CollectUserInfo:  row.CollectUserInfo,
		ResponseGoal:     row.ResponseGoal,
		FinalRedirectURL: row.FinalRedirectURL,
		Version:          row.Version,
		Questions:        []dto.Question{},
		CompanyIDs:       []string{},
		ResearcherIDs:    []string{},
	}
	if ix == nil {
		return out
	}

	for _, q := range ix.questions[row.ID] {
		out.Questions = append(out.Questions, ToQuestionDTO(q, ix.options[q.ID]))
	}
	for _, id := range ix.companies[row.ID] {
		out.CompanyIDs = append(out.CompanyIDs, id.String())
	}
	for _, id := range ix.researchers[row.ID] {
		out.ResearcherIDs = append(out.ResearcherIDs, id.String())
	}
	return out
}

// ToCampaignDTOs maps every campaign through the index, preserving input order
func ToCampaignDTOs(rows []*models.Campaign, ix *CampaignIndex) []dto.Campaign {
	out := make([]dto.Campaign, 0, len(rows))
	for _, row := range rows {
		out = append(out, ix.ToCampaignDTO(row))
	}
	return out
}

// ToSurveyResponseDTOs joins response headers with their answers in one pass over each collection
func ToSurveyResponseDTOs(rows []*models.SurveyResponse, answers []*models.SurveyAnswer) []dto.SurveyResponse {
	byResponse := make(map[uuid.UUID][]*models.SurveyAnswer, len(rows))
	for _, a := range answers {
		if a != nil {
			byResponse[a.ResponseID] = append(byResponse[a.ResponseID], a)
		}
	}

	out := make([]dto.SurveyResponse, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		group := byResponse[row.ID]
		slices.SortStableFunc(group, func(a, b *models.SurveyAnswer) int { return cmp.Compare(a.Order, b.Order) })
		out = append(out, ToSurveyResponseDTO(row, group))
	}
	return out
}

// ToSurveyResponseDTO maps a respostas_pesquisas row with its answers
func ToSurveyResponseDTO(row *models.SurveyResponse, answers []*models.SurveyAnswer) dto.SurveyResponse {
	if row == nil {
		return dto.SurveyResponse{}
	}

	out := dto.SurveyResponse{
		ID:           idString(row.ID),
		CampaignID:   idString(row.CampaignID),
		ResearcherID: idString(row.ResearcherID),
		UserName:     row.RespondentName,
		UserPhone:    row.RespondentPhone,
		UserAge:      row.RespondentAge,
		Timestamp:    row.SubmittedAt,
		Answers:      make([]dto.SurveyAnswer, 0, len(answers)),
	}
	for _, a := range answers {
		out.Answers = append(out.Answers, dto.SurveyAnswer{
			QuestionID: idString(a.QuestionID),
			Value:      a.Value,
		})
	}
	return out
}
