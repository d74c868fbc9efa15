package businessflow

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
)

// NextQuestion resolves where a survey goes after answering currentQuestionID.
// A choice whose jumpTo names a question of the campaign moves there, END_SURVEY
// finishes, anything else falls through to the next question in order.
func NextQuestion(campaign *dto.Campaign, currentQuestionID, answer string) (*dto.NextQuestionResponse, error) {
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	pos := -1
	for i := range campaign.Questions {
		if campaign.Questions[i].ID == currentQuestionID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, ErrQuestionNotFound
	}

	current := campaign.Questions[pos]
	if current.Type == models.QuestionTypeMultipleChoice.String() {
		for _, opt := range current.Options {
			if opt.Value != answer || opt.JumpTo == nil {
				continue
			}
			if *opt.JumpTo == dto.JumpToEnd {
				return finished(campaign), nil
			}
			for i := range campaign.Questions {
				if campaign.Questions[i].ID == *opt.JumpTo {
					q := campaign.Questions[i]
					return &dto.NextQuestionResponse{Question: &q}, nil
				}
			}
			break
		}
	}

	if pos+1 >= len(campaign.Questions) {
		return finished(campaign), nil
	}
	q := campaign.Questions[pos+1]
	return &dto.NextQuestionResponse{Question: &q}, nil
}

func finished(campaign *dto.Campaign) *dto.NextQuestionResponse {
	return &dto.NextQuestionResponse{
		Finished:         true,
		FinalRedirectURL: campaign.FinalRedirectURL,
	}
}
