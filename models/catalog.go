package models

import "fmt"

// Plan is a rate plan whose monthly per-line price depends on how many lines share it
type Plan struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	L1   float64 `json:"l1"`
	L2   float64 `json:"l2"`
	L3   float64 `json:"l3"`
	L4   float64 `json:"l4"`
}

// Price returns the per-line price for lineCount lines; four or more use the L4 tier
func (p Plan) Price(lineCount int) float64 {
	switch {
	case lineCount <= 1:
		return p.L1
	case lineCount == 2:
		return p.L2
	case lineCount == 3:
		return p.L3
	default:
		return p.L4
	}
}

// PlanOffer is an entry of the plan shop. Label is the string stored on a line.
type PlanOffer struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Label       string `json:"label"`
}

// Feature is an add-on that can be attached to a line
type Feature struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// DefaultPlanLabel is assigned to new lines created without a plan
const DefaultPlanLabel = "Unlimited Plus - $80/mo"

// DefaultPlans returns the tiered rate plans
func DefaultPlans() []Plan {
	return []Plan{
		{ID: "0123", Name: "Unlimited Ultimate", L1: 100, L2: 90, L3: 75, L4: 65},
		{ID: "4567", Name: "Unlimited Plus", L1: 90, L2: 80, L3: 65, L4: 55},
		{ID: "8901", Name: "Unlimited Welcome", L1: 75, L2: 65, L3: 50, L4: 40},
	}
}

// DefaultPlanOffers returns the plan shop entries
func DefaultPlanOffers() []PlanOffer {
	offers := []PlanOffer{
		{Name: "Unlimited Welcome", Price: "$65/mo", Description: "Basic unlimited with SD streaming"},
		{Name: "Unlimited Plus", Price: "$80/mo", Description: "Premium unlimited with HD streaming"},
		{Name: "Unlimited Ultimate", Price: "$90/mo", Description: "Top-tier with 4K streaming & hotspot"},
		{Name: "5GB Plan", Price: "$35/mo", Description: "5GB high-speed data"},
		{Name: "15GB Plan", Price: "$50/mo", Description: "15GB high-speed data"},
		{Name: "Unlimited Premium", Price: "$100/mo", Description: "Everything unlimited + international"},
	}
	for i := range offers {
		offers[i].Label = fmt.Sprintf("%s - %s", offers[i].Name, offers[i].Price)
	}
	return offers
}

// DefaultFeatures returns the feature shop entries
func DefaultFeatures() []Feature {
	return []Feature{
		{Name: "100GB Premium Data", Price: "$10/mo", Description: "100GB of premium high-speed data"},
		{Name: "50GB Premium Data", Price: "$5/mo", Description: "50GB of premium high-speed data"},
		{Name: "4K Streaming", Price: "$15/mo", Description: "Ultra HD video streaming quality"},
		{Name: "HD Streaming", Price: "$7/mo", Description: "High definition video streaming"},
		{Name: "Mobile Secure Plus", Price: "$12/mo", Description: "Advanced security & identity protection"},
		{Name: "International Roaming", Price: "$10/day", Description: "Use your plan internationally"},
		{Name: "Unlimited Data", Price: "$30/mo", Description: "Truly unlimited high-speed data"},
		{Name: "High-Speed 5G", Price: "$20/mo", Description: "Access to 5G Ultra Wideband"},
		{Name: "GPS Tracking", Price: "$5/mo", Description: "Track your device location"},
		{Name: "Mobile Hotspot", Price: "$10/mo", Description: "Share your data as WiFi hotspot"},
	}
}
