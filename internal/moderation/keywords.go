package moderation

// KeywordCategory is a named group of built-in blocked keywords.
type KeywordCategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// BaselineCategories are compiled in and cannot be removed by admins.
// Adding a term here takes effect on the next start via ReconcileBaseline.
var BaselineCategories = []KeywordCategory{
	{
		Name: "hate",
		Keywords: []string{
			"nazi",
			"kkk",
			"white power",
			"ethnic cleansing",
		},
	},
	{
		Name: "profanity",
		Keywords: []string{
			"fuck",
			"motherfucker",
			"shithead",
			"씨발",
			"개새끼",
			"병신",
		},
	},
	{
		Name: "illegal",
		Keywords: []string{
			"child porn",
			"buy cocaine",
			"stolen credit card",
			"마약 판매",
		},
	},
	{
		Name: "spam",
		Keywords: []string{
			"free bitcoin",
			"click here to win",
			"casino bonus",
			"카지노",
		},
	},
}

// BaselineKeywords flattens BaselineCategories in declaration order.
func BaselineKeywords() []string {
	var out []string
	for _, cat := range BaselineCategories {
		out = append(out, cat.Keywords...)
	}
	return out
}

// NormalizeKeywordList normalizes every entry, drops the ones that normalize
// to nothing and removes duplicates, keeping first-seen order.
func NormalizeKeywordList(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, raw := range keywords {
		kw := Normalize(raw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// EffectiveKeywords is the blocked set the gate enforces: custom keywords
// followed by every baseline keyword, normalized and deduplicated.
func EffectiveKeywords(custom []string) []string {
	baseline := BaselineKeywords()
	merged := make([]string, 0, len(custom)+len(baseline))
	merged = append(merged, custom...)
	merged = append(merged, baseline...)
	return NormalizeKeywordList(merged)
}

// CustomOnly strips the normalized baseline from a persisted keyword list,
// leaving what admins added themselves.
func CustomOnly(keywords []string) []string {
	baseline := make(map[string]struct{})
	for _, kw := range NormalizeKeywordList(BaselineKeywords()) {
		baseline[kw] = struct{}{}
	}

	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, ok := baseline[kw]; ok {
			continue
		}
		out = append(out, kw)
	}
	return out
}
