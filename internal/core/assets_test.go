package core

import (
	"context"
	"reflect"
	"testing"
)

func TestAssetSeederDescription(t *testing.T) {
	seeder := DefaultAssetSeeder()

	if got := seeder.Description("Snacks"); got != seeder.Descriptions["Snacks"] {
		t.Errorf("Snacks description = %q", got)
	}
	if got := seeder.Description("Unlisted Program"); got != seeder.Fallback {
		t.Errorf("fallback = %q, want %q", got, seeder.Fallback)
	}
}

func TestSeedAssets(t *testing.T) {
	store := newMemStore()
	store.subs = []string{"Goodie Bag", "Snacks", "Unlisted Program"}
	store.assets["Snacks"] = Asset{SubProjectCanon: "Snacks", Description: text("curated")}
	svc := newTestService(store)

	report, err := svc.SeedAssets(context.Background())
	if err != nil {
		t.Fatalf("SeedAssets: %v", err)
	}

	if report.Total != 3 {
		t.Errorf("Total = %d, want 3", report.Total)
	}
	if !reflect.DeepEqual(report.Inserted, []string{"Goodie Bag", "Unlisted Program"}) {
		t.Errorf("Inserted = %v", report.Inserted)
	}
	if !reflect.DeepEqual(report.Skipped, []string{"Snacks"}) {
		t.Errorf("Skipped = %v", report.Skipped)
	}

	if store.assets["Snacks"].Description.String != "curated" {
		t.Error("existing asset was modified")
	}
	if got := store.assets["Unlisted Program"].Description.String; got != DefaultAssetSeeder().Fallback {
		t.Errorf("new asset description = %q, want fallback", got)
	}

	again, err := svc.SeedAssets(context.Background())
	if err != nil {
		t.Fatalf("second SeedAssets: %v", err)
	}
	if len(again.Inserted) != 0 || len(again.Skipped) != 3 {
		t.Errorf("second run = %+v, want everything skipped", again)
	}
}

func TestServiceAsset(t *testing.T) {
	store := newMemStore()
	store.assets["Snacks"] = Asset{SubProjectCanon: "Snacks", ImageURL: text("https://example.org/snacks.png")}
	svc := newTestService(store)

	asset, ok, err := svc.Asset(context.Background(), "Snacks")
	if err != nil || !ok {
		t.Fatalf("Asset() ok=%v err=%v", ok, err)
	}
	if asset.ImageURL.String != "https://example.org/snacks.png" {
		t.Errorf("ImageURL = %q", asset.ImageURL.String)
	}

	if _, ok, _ := svc.Asset(context.Background(), "Missing"); ok {
		t.Error("Asset(Missing) ok = true, want false")
	}
}
