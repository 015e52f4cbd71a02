package domain

// ThemeColors son las variables de color que el cliente aplica como CSS vars.
type ThemeColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// ThemeConfig es la variante de presentación atada a un rasgo dominante.
// Sirve como brazo del experimento A/B.
type ThemeConfig struct {
	Name            string      `json:"name"`
	Colors          ThemeColors `json:"colors"`
	Layout          string      `json:"layout"`
	ContentPriority []string    `json:"content_priority"`
}

var themesByTrait = map[PersonalityTrait]ThemeConfig{
	TraitOpenness: {
		Name: "Kaşif",
		Colors: ThemeColors{
			Primary:   "oklch(0.6 0.15 280)",
			Secondary: "oklch(0.7 0.12 320)",
			Accent:    "oklch(0.8 0.1 40)",
		},
		Layout:          "minimalist",
		ContentPriority: []string{"yeni", "sınırlı", "sanatsal", "benzersiz"},
	},
	TraitConscientiousness: {
		Name: "Analitik",
		Colors: ThemeColors{
			Primary:   "oklch(0.5 0.12 240)",
			Secondary: "oklch(0.6 0.1 220)",
			Accent:    "oklch(0.7 0.08 200)",
		},
		Layout:          "structured",
		ContentPriority: []string{"teknik", "karşılaştırma", "uzman", "detay"},
	},
	TraitExtraversion: {
		Name: "Sosyal",
		Colors: ThemeColors{
			Primary:   "oklch(0.65 0.2 30)",
			Secondary: "oklch(0.7 0.18 50)",
			Accent:    "oklch(0.75 0.15 10)",
		},
		Layout:          "energetic",
		ContentPriority: []string{"trend", "popüler", "sosyal", "yeni"},
	},
	TraitAgreeableness: {
		Name: "Topluluk",
		Colors: ThemeColors{
			Primary:   "oklch(0.68 0.12 120)",
			Secondary: "oklch(0.72 0.1 100)",
			Accent:    "oklch(0.76 0.08 80)",
		},
		Layout:          "warm",
		ContentPriority: []string{"yorumlar", "hediye", "sevilen", "önerilen"},
	},
	TraitNeuroticism: {
		Name: "Güvenli",
		Colors: ThemeColors{
			Primary:   "oklch(0.7 0.08 160)",
			Secondary: "oklch(0.75 0.06 180)",
			Accent:    "oklch(0.8 0.05 140)",
		},
		Layout:          "calm",
		ContentPriority: []string{"garanti", "destek", "güvenli", "iade"},
	},
}

// ThemeForTrait devuelve la configuración de tema para un rasgo dominante.
func ThemeForTrait(trait PersonalityTrait) (ThemeConfig, bool) {
	cfg, ok := themesByTrait[trait]
	return cfg, ok
}
