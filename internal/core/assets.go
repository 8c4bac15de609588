package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/logging"
)

// AssetSeeder supplies placeholder descriptions for new assets.
type AssetSeeder struct {
	Descriptions map[string]string // keyed by canonical sub-project
	Fallback     string
}

// DefaultAssetSeeder returns the stock descriptions.
func DefaultAssetSeeder() AssetSeeder {
	return AssetSeeder{
		Descriptions: map[string]string{
			"Infant Goodie Bag": "Essential items and supplies for newborn infants and their mothers, including hygiene products, clothing, and basic necessities.",
			"Health Kit":        "Comprehensive health and hygiene supplies for individuals and families, promoting wellness and disease prevention.",
			"Goodie Bag":        "Collection of useful items and supplies distributed to beneficiaries for various needs and occasions.",
			"Snacks":            "Nutritious snack items provided to support health and well-being of beneficiaries.",
			"Refreshment":       "Food and beverage items provided during events and programs.",
		},
		Fallback: "Program supporting community development and welfare initiatives.",
	}
}

// Description returns the description for a sub-project, or the fallback.
func (a AssetSeeder) Description(subProject string) string {
	if d, ok := a.Descriptions[subProject]; ok {
		return d
	}
	return a.Fallback
}

// SeedReport summarizes a SeedAssets run.
type SeedReport struct {
	Total    int      `json:"total"`
	Inserted []string `json:"inserted"`
	Skipped  []string `json:"skipped"`
}

// Asset returns the asset of a canonical sub-project. ok is false when none
// exists.
func (s *Service) Asset(ctx context.Context, subProjectCanon string) (Asset, bool, error) {
	return s.store.GetAsset(ctx, subProjectCanon)
}

// SeedAssets creates an asset for every distinct sub-project that lacks
// one. Existing assets are never modified.
func (s *Service) SeedAssets(ctx context.Context) (SeedReport, error) {
	logger := logging.FromContext(ctx)

	subs, err := s.store.ListSubProjects(ctx)
	if err != nil {
		return SeedReport{}, err
	}

	report := SeedReport{Total: len(subs)}
	for _, sub := range subs {
		desc := s.seeder.Description(sub)
		inserted, err := s.store.InsertAssetIfMissing(ctx, Asset{
			SubProjectCanon: sub,
			Description:     pgtype.Text{String: desc, Valid: desc != ""},
		})
		if err != nil {
			return report, fmt.Errorf("seed asset %q: %w", sub, err)
		}

		if inserted {
			report.Inserted = append(report.Inserted, sub)
			logger.Debug("asset created", "sub_project", sub)
		} else {
			report.Skipped = append(report.Skipped, sub)
		}
	}

	logger.Info("assets seeded",
		"total", report.Total,
		"inserted", len(report.Inserted),
		"skipped", len(report.Skipped),
	)
	return report, nil
}
