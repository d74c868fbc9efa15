package businessflow

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
)

// RatingNotApplicable is reported as the average when no valid rating exists
const RatingNotApplicable = "N/A"

// CampaignPerformance pairs every campaign with its response count, most answered first
func CampaignPerformance(campaigns []dto.Campaign, responses []dto.SurveyResponse) []dto.CampaignPerformance {
	counts := make(map[string]int, len(campaigns))
	for _, r := range responses {
		counts[r.CampaignID]++
	}

	out := make([]dto.CampaignPerformance, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, dto.CampaignPerformance{
			Name:      c.Name,
			Responses: counts[c.ID],
			Goal:      c.ResponseGoal,
		})
	}
	slices.SortStableFunc(out, func(a, b dto.CampaignPerformance) int {
		return cmp.Compare(b.Responses, a.Responses)
	})
	return out
}

// ThemeDistribution counts campaigns per exact theme, in order of first appearance
func ThemeDistribution(campaigns []dto.Campaign) []dto.ThemeCount {
	pos := make(map[string]int)
	out := []dto.ThemeCount{}
	for _, c := range campaigns {
		i, ok := pos[c.Theme]
		if !ok {
			i = len(out)
			pos[c.Theme] = i
			out = append(out, dto.ThemeCount{Name: c.Theme})
		}
		out[i].Value++
	}
	return out
}

// ResponsesPerDay counts responses per calendar day in loc, oldest day first
func ResponsesPerDay(responses []dto.SurveyResponse, loc *time.Location) []dto.DailyCount {
	if loc == nil {
		loc = time.UTC
	}

	type day struct {
		y int
		m time.Month
		d int
	}
	counts := make(map[day]int)
	for _, r := range responses {
		t := r.Timestamp.In(loc)
		counts[day{t.Year(), t.Month(), t.Day()}]++
	}

	days := make([]day, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b day) int {
		if c := cmp.Compare(a.y, b.y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.m, b.m); c != 0 {
			return c
		}
		return cmp.Compare(a.d, b.d)
	})

	out := make([]dto.DailyCount, 0, len(days))
	for _, d := range days {
		out = append(out, dto.DailyCount{
			Date:  fmt.Sprintf("%04d-%02d-%02d", d.y, d.m, d.d),
			Label: fmt.Sprintf("%02d/%02d", d.d, d.m),
			Count: counts[d],
		})
	}
	return out
}

// SatisfactionDistribution buckets answers to each campaign's first rating question.
// Answers that are not integers in [1,5] are ignored.
func SatisfactionDistribution(campaigns []dto.Campaign, responses []dto.SurveyResponse) dto.SatisfactionSummary {
	ratingQuestion := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		for _, q := range c.Questions {
			if q.Type == models.QuestionTypeRating.String() {
				ratingQuestion[c.ID] = q.ID
				break
			}
		}
	}

	var counts [5]int
	total, sum := 0, 0
	for _, r := range responses {
		qid, ok := ratingQuestion[r.CampaignID]
		if !ok {
			continue
		}
		for _, a := range r.Answers {
			if a.QuestionID != qid {
				continue
			}
			if score, ok := ratingScore(a.Value); ok {
				counts[score-1]++
				total++
				sum += score
			}
			break
		}
	}

	buckets := make([]dto.RatingBucket, 0, len(counts))
	for i, n := range counts {
		buckets = append(buckets, dto.RatingBucket{Stars: i + 1, Label: starLabel(i + 1), Count: n})
	}

	return dto.SatisfactionSummary{
		Buckets: buckets,
		Total:   total,
		Average: AverageRating(sum, total),
	}
}

// AverageRating formats sum/count with one decimal, or N/A when count is zero
func AverageRating(sum, count int) string {
	if count == 0 {
		return RatingNotApplicable
	}
	return strconv.FormatFloat(float64(sum)/float64(count), 'f', 1, 64)
}

func starLabel(n int) string {
	if n == 1 {
		return "1 Estrela"
	}
	return fmt.Sprintf("%d Estrelas", n)
}

var ageBands = []struct {
	name string
	max  int
}{
	{"0-17", 17},
	{"18-24", 24},
	{"25-34", 34},
	{"35-44", 44},
	{"45-54", 54},
	{"55+", -1},
}

// AgeBucket returns the band name for an age
func AgeBucket(age int) string {
	for _, b := range ageBands {
		if b.max < 0 || age <= b.max {
			return b.name
		}
	}
	return ageBands[len(ageBands)-1].name
}

// AgeDistribution counts respondents per age band. Missing or negative ages are
// excluded from every band and from the total; empty bands are dropped.
func AgeDistribution(responses []dto.SurveyResponse) dto.AgeSummary {
	counts := make(map[string]int, len(ageBands))
	total := 0
	for _, r := range responses {
		if r.UserAge == nil || *r.UserAge < 0 {
			continue
		}
		counts[AgeBucket(*r.UserAge)]++
		total++
	}

	out := dto.AgeSummary{Buckets: []dto.AgeBucket{}, Total: total}
	for _, b := range ageBands {
		if n := counts[b.name]; n > 0 {
			out.Buckets = append(out.Buckets, dto.AgeBucket{Name: b.name, Value: n})
		}
	}
	return out
}

// ratingScore reads a 1-5 star answer. Numeric spellings of a whole star count ("4", "4.0") are accepted.
func ratingScore(value string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > 5 {
		return 0, false
	}
	return int(f), true
}
