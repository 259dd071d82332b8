package dashboard

// NoRecommendationsMessage is shown when a customer has no recommendations.
const NoRecommendationsMessage = "No recommendations available for this customer."

// PromotionView is a discount badge with prices.
type PromotionView struct {
	Badge           string
	OriginalPrice   string
	DiscountedPrice string
}

// RecommendationView is one rendered recommendation row.
type RecommendationView struct {
	ProductID   int
	Name        string
	Category    string
	Description string
	Price       string
	Promotions  []PromotionView
}

// BuildRecommendationViews keeps the server order.
func BuildRecommendationViews(recs []Recommendation) []RecommendationView {
	out := make([]RecommendationView, len(recs))
	for i, rec := range recs {
		view := RecommendationView{
			ProductID:   rec.ProductID,
			Name:        rec.Name,
			Category:    rec.Category,
			Description: rec.Description,
			Price:       FormatCurrency(rec.Price),
		}
		for _, promo := range rec.Promotions {
			view.Promotions = append(view.Promotions, PromotionView{
				Badge:           formatDiscount(promo),
				OriginalPrice:   view.Price,
				DiscountedPrice: FormatCurrency(promo.DiscountedPrice),
			})
		}
		out[i] = view
	}
	return out
}

// RenderRecommendations rebuilds the recommendation list for a customer.
// A positive limit keeps only the first limit items.
func (w *WidgetRenderer) RenderRecommendations(page *Page, mountID string, customerID int, recs []Recommendation, limit int) error {
	if !page.Has(mountID) {
		return nil
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return w.renderInto(page, mountID, templateRecommendations, map[string]any{
		"customer_id":     customerID,
		"recommendations": BuildRecommendationViews(recs),
		"empty_message":   NoRecommendationsMessage,
	})
}

// configInt reads a numeric mount setting decoded from YAML or JSON.
func configInt(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
