package businessflow

import (
	"context"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// campaignLoader fetches campaigns with all their child collections.
// Independent collections are fetched concurrently; the first failure fails the whole load.
type campaignLoader struct {
	campaignRepo       repository.CampaignRepository
	questionRepo       repository.QuestionRepository
	optionRepo         repository.QuestionOptionRepository
	companyLinkRepo    repository.CampaignCompanyRepository
	researcherLinkRepo repository.CampaignResearcherRepository
}

// all loads every campaign and every child row
func (l campaignLoader) all(ctx context.Context) ([]*models.Campaign, *CampaignIndex, error) {
	var (
		campaigns       []*models.Campaign
		questions       []*models.Question
		options         []*models.QuestionOption
		companyLinks    []*models.CampaignCompany
		researcherLinks []*models.CampaignResearcher
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		campaigns, err = l.campaignRepo.ByFilter(gctx, models.CampaignFilter{}, "criado_em DESC", 0, 0)
		return err
	})
	g.Go(func() (err error) {
		questions, err = l.questionRepo.ByFilter(gctx, models.QuestionFilter{}, "ordem ASC", 0, 0)
		return err
	})
	g.Go(func() (err error) {
		options, err = l.optionRepo.ByFilter(gctx, models.QuestionOptionFilter{}, "ordem ASC", 0, 0)
		return err
	})
	g.Go(func() (err error) {
		companyLinks, err = l.companyLinkRepo.ByFilter(gctx, models.CampaignLinkFilter{})
		return err
	})
	g.Go(func() (err error) {
		researcherLinks, err = l.researcherLinkRepo.ByFilter(gctx, models.CampaignLinkFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return campaigns, NewCampaignIndex(questions, options, companyLinks, researcherLinks), nil
}

// byIDs loads the given campaigns; options follow once their question ids are known
func (l campaignLoader) byIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Campaign, *CampaignIndex, error) {
	if len(ids) == 0 {
		return []*models.Campaign{}, NewCampaignIndex(nil, nil, nil, nil), nil
	}

	var (
		campaigns       []*models.Campaign
		questions       []*models.Question
		options         []*models.QuestionOption
		companyLinks    []*models.CampaignCompany
		researcherLinks []*models.CampaignResearcher
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		campaigns, err = l.campaignRepo.ByFilter(gctx, models.CampaignFilter{IDs: ids}, "criado_em DESC", 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = l.questionRepo.ByFilter(gctx, models.QuestionFilter{CampaignIDs: ids}, "ordem ASC", 0, 0)
		if err != nil {
			return err
		}
		questionIDs := make([]uuid.UUID, 0, len(questions))
		for _, q := range questions {
			questionIDs = append(questionIDs, q.ID)
		}
		options, err = l.optionRepo.ByFilter(gctx, models.QuestionOptionFilter{QuestionIDs: questionIDs}, "ordem ASC", 0, 0)
		return err
	})
	g.Go(func() (err error) {
		companyLinks, err = l.companyLinkRepo.ByFilter(gctx, models.CampaignLinkFilter{CampaignIDs: ids})
		return err
	})
	g.Go(func() (err error) {
		researcherLinks, err = l.researcherLinkRepo.ByFilter(gctx, models.CampaignLinkFilter{CampaignIDs: ids})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return campaigns, NewCampaignIndex(questions, options, companyLinks, researcherLinks), nil
}

// one loads a single campaign; a missing campaign yields a nil row and no error
func (l campaignLoader) one(ctx context.Context, id uuid.UUID) (*models.Campaign, *CampaignIndex, error) {
	campaigns, ix, err := l.byIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, nil, err
	}
	if len(campaigns) == 0 {
		return nil, ix, nil
	}
	return campaigns[0], ix, nil
}

// idsForResearcher returns ids of campaigns the researcher is assigned to
func (l campaignLoader) idsForResearcher(ctx context.Context, researcherID uuid.UUID) ([]uuid.UUID, error) {
	links, err := l.researcherLinkRepo.ByFilter(ctx, models.CampaignLinkFilter{MemberID: &researcherID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CampaignID)
	}
	return ids, nil
}

// idsForCompany returns ids of campaigns the company participates in
func (l campaignLoader) idsForCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	links, err := l.companyLinkRepo.ByFilter(ctx, models.CampaignLinkFilter{MemberID: &companyID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CampaignID)
	}
	return ids, nil
}
