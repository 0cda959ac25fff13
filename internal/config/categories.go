package config

const (
	CategoryMusic   = "🎵 Music"
	CategoryGeneral = "🕯️ General"
)

// CategoryWeights orders command categories in the help listing. Unknown
// categories sort last.
var CategoryWeights = map[string]int{
	CategoryMusic:   0,
	CategoryGeneral: 10,
}

func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}
