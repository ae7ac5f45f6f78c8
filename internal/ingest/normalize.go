package ingest

import "strings"

// sectorMapping normalizes upstream sector labels to the thesis options.
var sectorMapping = map[string]string{
	"fintech":                 "FinTech",
	"financial services":      "FinTech",
	"healthcare":              "HealthTech",
	"health":                  "HealthTech",
	"healthtech":              "HealthTech",
	"medical":                 "HealthTech",
	"ai":                      "AI/ML",
	"artificial intelligence": "AI/ML",
	"machine learning":        "AI/ML",
	"ml":                      "AI/ML",
	"saas":                    "B2B SaaS",
	"b2b":                     "B2B SaaS",
	"enterprise":              "Enterprise Software",
	"enterprise software":     "Enterprise Software",
	"developer tools":         "Developer Tools",
	"devtools":                "Developer Tools",
	"climate":                 "Climate Tech",
	"cleantech":               "Climate Tech",
	"climatetech":             "Climate Tech",
	"clean technology":        "Climate Tech",
	"crypto":                  "Blockchain/Web3",
	"web3":                    "Blockchain/Web3",
	"blockchain":              "Blockchain/Web3",
	"cryptocurrency":          "Blockchain/Web3",
	"consumer":                "Consumer",
	"education":               "EdTech",
	"edtech":                  "EdTech",
	"ecommerce":               "E-commerce",
	"e-commerce":              "E-commerce",
	"retail":                  "E-commerce",
	"marketplace":             "Marketplace",
	"security":                "Cybersecurity",
	"cybersecurity":           "Cybersecurity",
	"cyber security":          "Cybersecurity",
	"deeptech":                "DeepTech",
	"hardware":                "DeepTech",
	"biotech":                 "DeepTech",
	"biotechnology":           "DeepTech",
	"productivity":            "B2B SaaS",
	"software":                "B2B SaaS",
}

// stageMapping normalizes upstream funding stage labels to the thesis options.
var stageMapping = map[string]string{
	"pre-seed":    "Pre-Seed",
	"preseed":     "Pre-Seed",
	"seed":        "Seed",
	"series a":    "Series A",
	"series b":    "Series B",
	"series c":    "Series C+",
	"series c+":   "Series C+",
	"series d":    "Series C+",
	"series e":    "Series C+",
	"growth":      "Growth/Late Stage",
	"late stage":  "Growth/Late Stage",
	"public":      "Growth/Late Stage",
	"acquired":    "Growth/Late Stage",
	"early stage": "Seed",
}

// NormalizeSector maps a raw sector label to a thesis sector option.
// Unknown sectors are title-cased as-is.
func NormalizeSector(sector string) string {
	if sector == "" {
		return "Technology"
	}
	if mapped, ok := sectorMapping[strings.ToLower(strings.TrimSpace(sector))]; ok {
		return mapped
	}
	return titleCase(sector)
}

// NormalizeStage maps a raw funding stage label to a thesis stage option.
func NormalizeStage(stage string) string {
	if stage == "" {
		return "Seed"
	}
	if mapped, ok := stageMapping[strings.ToLower(strings.TrimSpace(stage))]; ok {
		return mapped
	}
	return titleCase(stage)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
