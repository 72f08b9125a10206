package businessflow

import (
	"context"
	"slices"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
)

// CatalogFlow serves the plan shop, the feature shop and the check-in reason menu
type CatalogFlow interface {
	ListPlans(ctx context.Context) (*dto.ListPlansResponse, error)
	ListFeatures(ctx context.Context) (*dto.ListFeaturesResponse, error)
	QuotePlan(ctx context.Context, planID string, lineCount int) (*dto.PlanQuoteResponse, error)
	ListVisitReasons(ctx context.Context) (*dto.ListVisitReasonsResponse, error)
}

type CatalogFlowImpl struct {
	plans    []models.Plan
	offers   []models.PlanOffer
	features []models.Feature
}

func NewCatalogFlow() CatalogFlow {
	return &CatalogFlowImpl{
		plans:    models.DefaultPlans(),
		offers:   models.DefaultPlanOffers(),
		features: models.DefaultFeatures(),
	}
}

func (f *CatalogFlowImpl) ListPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	resp := &dto.ListPlansResponse{
		Plans:       make([]dto.PlanDTO, 0, len(f.plans)),
		Offers:      make([]dto.PlanOfferDTO, 0, len(f.offers)),
		DefaultPlan: models.DefaultPlanLabel,
	}
	for _, p := range f.plans {
		resp.Plans = append(resp.Plans, dto.PlanDTO{ID: p.ID, Name: p.Name, L1: p.L1, L2: p.L2, L3: p.L3, L4: p.L4})
	}
	for _, o := range f.offers {
		resp.Offers = append(resp.Offers, dto.PlanOfferDTO{Name: o.Name, Price: o.Price, Description: o.Description, Label: o.Label})
	}
	return resp, nil
}

func (f *CatalogFlowImpl) ListFeatures(ctx context.Context) (*dto.ListFeaturesResponse, error) {
	resp := &dto.ListFeaturesResponse{Features: make([]dto.FeatureDTO, 0, len(f.features))}
	for _, feat := range f.features {
		resp.Features = append(resp.Features, dto.FeatureDTO{Name: feat.Name, Price: feat.Price, Description: feat.Description})
	}
	return resp, nil
}

// QuotePlan prices planID for lineCount lines using the plan's tier
func (f *CatalogFlowImpl) QuotePlan(ctx context.Context, planID string, lineCount int) (*dto.PlanQuoteResponse, error) {
	if lineCount < 1 {
		return nil, NewBusinessError("INVALID_LINE_COUNT", "Line count must be at least 1", ErrInvalidLineCount)
	}

	idx := slices.IndexFunc(f.plans, func(p models.Plan) bool { return p.ID == planID })
	if idx < 0 {
		return nil, NewBusinessErrorf("PLAN_NOT_FOUND", "Plan %s not found", ErrPlanNotFound, planID)
	}

	plan := f.plans[idx]
	price := plan.Price(lineCount)
	return &dto.PlanQuoteResponse{
		PlanID:       plan.ID,
		Name:         plan.Name,
		Lines:        lineCount,
		PricePerLine: price,
		Total:        price * float64(lineCount),
	}, nil
}

// ListVisitReasons returns the check-in reasons, categories in name order
func (f *CatalogFlowImpl) ListVisitReasons(ctx context.Context) (*dto.ListVisitReasonsResponse, error) {
	categories := make([]string, 0, len(models.VisitReasons))
	for c := range models.VisitReasons {
		categories = append(categories, c)
	}
	slices.Sort(categories)

	resp := &dto.ListVisitReasonsResponse{Groups: make([]dto.VisitReasonGroup, 0, len(categories))}
	for _, c := range categories {
		resp.Groups = append(resp.Groups, dto.VisitReasonGroup{
			Category: c,
			Reasons:  slices.Clone(models.VisitReasons[c]),
		})
	}
	return resp, nil
}
