package compliance

// Config holds the three keyword sets driving commodity classification.
// Matching is plain substring containment over lowercased text, scanned
// in slice order so the matched keyword is deterministic.
type Config struct {
	ForbiddenKeywords []string `mapstructure:"forbidden_keywords"`
	ReviewKeywords    []string `mapstructure:"review_keywords"`
	PermittedKeywords []string `mapstructure:"permitted_keywords"`
}

// DefaultConfig returns the stock keyword sets.
func DefaultConfig() Config {
	return Config{
		ForbiddenKeywords: []string{
			// Alcohol
			"alcohol", "beer", "wine", "liquor", "spirits", "vodka", "whiskey",
			"whisky", "rum", "gin", "tequila", "brandy", "bourbon", "scotch",
			"champagne", "malt beverage", "hard seltzer", "cider", "sake",
			"moonshine", "absinthe", "vermouth", "schnapps",

			// Pork
			"pork", "bacon", "ham", "swine", "pig", "sausage", "pepperoni",
			"prosciutto", "salami", "chorizo", "lard", "pork rinds",
			"carnitas", "pancetta",

			// Tobacco and drugs
			"tobacco", "cigarette", "cigar", "vape", "e-cigarette", "nicotine",
			"cannabis", "marijuana", "weed", "thc", "cbd", "hemp flower",
			"delta-8", "delta-9", "edibles",

			// Gambling
			"gambling", "casino", "slot machine", "lottery", "betting",
			"poker machine", "gaming machine",

			// Adult content
			"adult entertainment", "xxx", "pornography", "erotic",
			"adult novelty", "sex toy",

			// Civilian weapons
			"ammunition", "ammo", "firearms", "guns", "rifles", "pistols",
			"handguns", "shotguns", "assault rifle",
		},
		ReviewKeywords: []string{
			"meat", "sausage", "hot dog", "deli", "processed meat",
			"gelatin", "enzyme", "animal product", "rennet",
			"marshmallow", "gummy", "candy",
		},
		PermittedKeywords: []string{
			"produce", "vegetables", "fruits", "grains", "rice", "wheat",
			"flour", "sugar", "salt", "spices", "coffee", "tea",
			"electronics", "furniture", "appliances", "machinery", "equipment",
			"paper", "plastic", "steel", "lumber", "building materials",
			"automotive parts", "tires", "medical supplies", "pharmaceuticals",
			"clothing", "textiles", "toys", "books", "office supplies",
			"cleaning supplies", "bottled water", "soft drinks", "juice",
		},
	}
}
