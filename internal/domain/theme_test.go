package domain

import "testing"

func TestThemeForTraitCoversAllTraits(t *testing.T) {
	for _, trait := range AllTraits() {
		cfg, ok := ThemeForTrait(trait)
		if !ok {
			t.Fatalf("expected theme for trait %s", trait)
		}
		if cfg.Name == "" || cfg.Layout == "" {
			t.Fatalf("incomplete theme for %s: %+v", trait, cfg)
		}
		if len(cfg.ContentPriority) == 0 {
			t.Fatalf("expected content priority for %s", trait)
		}
	}
}

func TestThemeForTraitUnknown(t *testing.T) {
	if _, ok := ThemeForTrait("optimism"); ok {
		t.Fatalf("expected no theme for unknown trait")
	}
}

func TestThemeForTraitMapping(t *testing.T) {
	cases := map[PersonalityTrait]string{
		TraitOpenness:          "Kaşif",
		TraitConscientiousness: "Analitik",
		TraitExtraversion:      "Sosyal",
		TraitAgreeableness:     "Topluluk",
		TraitNeuroticism:       "Güvenli",
	}
	for trait, want := range cases {
		cfg, _ := ThemeForTrait(trait)
		if cfg.Name != want {
			t.Fatalf("trait %s: expected theme %q, got %q", trait, want, cfg.Name)
		}
	}
}
