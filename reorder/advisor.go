package reorder

import (
	"context"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// Suggestion pairs a product with its prediction.
type Suggestion struct {
	ProductId          string  `json:"productId"`
	ProductName        string  `json:"productName"`
	CurrentStock       int     `json:"currentStock"`
	MinimumStockLevel  int     `json:"minimumStockLevel"`
	Confidence         float64 `json:"confidence"`
	ProbabilityReorder float64 `json:"probabilityReorder"`
}

// Predictor is the sidecar surface Advise needs.
type Predictor interface {
	BatchPredict(ctx context.Context, features []ProductFeatures) (*BatchPredictionResponse, error)
}

// Advise scores products in one batch and returns only those the model
// flags for reorder. Inactive products and products without prices are
// skipped; the sidecar rejects non-positive prices outright.
func Advise(ctx context.Context, predictor Predictor, products []models.Product) ([]Suggestion, error) {
	features := make([]ProductFeatures, 0, len(products))
	byID := make(map[string]models.Product, len(products))

	for _, p := range products {
		if p.IsActive != nil && !*p.IsActive {
			continue
		}
		cost, _ := p.CostPrice.Float64()
		selling, _ := p.SellingPrice.Float64()
		if cost <= 0 || selling <= 0 {
			continue
		}
		frequency := p.ReorderFrequencyDays
		if frequency < 1 {
			frequency = 30
		}
		category := p.CategoryId
		if category == "" {
			category = "uncategorized"
		}
		features = append(features, ProductFeatures{
			ProductId:         p.ID,
			CostPrice:         cost,
			SellingPrice:      selling,
			ReorderFrequency:  frequency,
			CurrentStock:      p.CurrentStock,
			MinimumStockLevel: p.MinimumStockLevel,
			Category:          category,
			Brand:             p.Brand,
			Supplier:          p.Supplier,
		})
		byID[p.ID] = p
	}
	if len(features) == 0 {
		return nil, nil
	}

	resp, err := predictor.BatchPredict(ctx, features)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, resp.ReorderNeeded)
	for _, prediction := range resp.Predictions {
		if !prediction.ReorderRequired {
			continue
		}
		product, ok := byID[prediction.ProductId]
		if !ok {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ProductId:          product.ID,
			ProductName:        product.Name,
			CurrentStock:       product.CurrentStock,
			MinimumStockLevel:  product.MinimumStockLevel,
			Confidence:         prediction.Confidence,
			ProbabilityReorder: prediction.ProbabilityReorder,
		})
	}
	return suggestions, nil
}
