package dto

// PlanDTO is a tiered rate plan
type PlanDTO struct {
	ID   string  `json:"id" example:"4567"`
	Name string  `json:"name" example:"Unlimited Plus"`
	L1   float64 `json:"l1" example:"90"`
	L2   float64 `json:"l2" example:"80"`
	L3   float64 `json:"l3" example:"65"`
	L4   float64 `json:"l4" example:"55"`
}

// PlanOfferDTO is a plan shop entry; Label is the value stored on a line
type PlanOfferDTO struct {
	Name        string `json:"name" example:"Unlimited Plus"`
	Price       string `json:"price" example:"$80/mo"`
	Description string `json:"description" example:"Premium unlimited with HD streaming"`
	Label       string `json:"label" example:"Unlimited Plus - $80/mo"`
}

// FeatureDTO is an add-on of the feature shop
type FeatureDTO struct {
	Name        string `json:"name" example:"HD Streaming"`
	Price       string `json:"price" example:"$7/mo"`
	Description string `json:"description" example:"High definition video streaming"`
}

// ListPlansResponse returns the rate plans and the plan shop
type ListPlansResponse struct {
	Plans       []PlanDTO      `json:"plans"`
	Offers      []PlanOfferDTO `json:"offers"`
	DefaultPlan string         `json:"default_plan" example:"Unlimited Plus - $80/mo"`
}

// ListFeaturesResponse returns the feature shop
type ListFeaturesResponse struct {
	Features []FeatureDTO `json:"features"`
}

// PlanQuoteResponse prices a plan for a number of lines
type PlanQuoteResponse struct {
	PlanID       string  `json:"plan_id" example:"0123"`
	Name         string  `json:"name" example:"Unlimited Ultimate"`
	Lines        int     `json:"lines" example:"3"`
	PricePerLine float64 `json:"price_per_line" example:"75"`
	Total        float64 `json:"total" example:"225"`
}

// VisitReasonGroup is one category of the check-in reason menu
type VisitReasonGroup struct {
	Category string   `json:"category" example:"Billing"`
	Reasons  []string `json:"reasons"`
}

// ListVisitReasonsResponse returns the check-in reason menu
type ListVisitReasonsResponse struct {
	Groups []VisitReasonGroup `json:"groups"`
}
