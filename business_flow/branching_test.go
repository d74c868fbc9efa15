package businessflow

import (
	"testing"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchingCampaign() *dto.Campaign {
	return &dto.Campaign{
		ID:               "c1",
		FinalRedirectURL: utils.ToPtr("https://exemplo.com.br/obrigado"),
		Questions: []dto.Question{
			{
				ID:   "q1",
				Text: "Usa transporte público?",
				Type: "MULTIPLE_CHOICE",
				Options: []dto.QuestionOption{
					{Value: "Sim", JumpTo: utils.ToPtr("q3")},
					{Value: "Não", JumpTo: utils.ToPtr(dto.JumpToEnd)},
					{Value: "Às vezes"},
					{Value: "Raramente", JumpTo: utils.ToPtr("q_removed")},
				},
			},
			{ID: "q2", Text: "Por quê?", Type: "TEXT"},
			{ID: "q3", Text: "Nota", Type: "RATING"},
		},
	}
}

func TestNextQuestion(t *testing.T) {
	campaign := branchingCampaign()

	tests := []struct {
		name       string
		current    string
		answer     string
		wantID     string
		wantFinish bool
	}{
		{name: "jump to question", current: "q1", answer: "Sim", wantID: "q3"},
		{name: "jump to end", current: "q1", answer: "Não", wantFinish: true},
		{name: "option without jump falls through", current: "q1", answer: "Às vezes", wantID: "q2"},
		{name: "dangling jump falls through", current: "q1", answer: "Raramente", wantID: "q2"},
		{name: "unknown answer falls through", current: "q1", answer: "Talvez", wantID: "q2"},
		{name: "text question advances", current: "q2", answer: "Sim", wantID: "q3"},
		{name: "last question finishes", current: "q3", answer: "5", wantFinish: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextQuestion(campaign, tt.current, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFinish, next.Finished)
			if tt.wantFinish {
				assert.Nil(t, next.Question)
				require.NotNil(t, next.FinalRedirectURL)
				assert.Equal(t, "https://exemplo.com.br/obrigado", *next.FinalRedirectURL)
				return
			}
			require.NotNil(t, next.Question)
			assert.Equal(t, tt.wantID, next.Question.ID)
		})
	}
}

func TestNextQuestion_JumpsOnlyFromChoiceQuestions(t *testing.T) {
	campaign := branchingCampaign()
	// a rating question carrying options is not a branch point
	campaign.Questions[1].Type = "RATING"
	campaign.Questions[1].Options = []dto.QuestionOption{{Value: "5", JumpTo: utils.ToPtr(dto.JumpToEnd)}}

	next, err := NextQuestion(campaign, "q2", "5")
	require.NoError(t, err)
	require.NotNil(t, next.Question)
	assert.Equal(t, "q3", next.Question.ID)
}

func TestNextQuestion_Errors(t *testing.T) {
	_, err := NextQuestion(nil, "q1", "Sim")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	_, err = NextQuestion(branchingCampaign(), "missing", "Sim")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
