package scoring

// Evaluation categories derived from a total score
const (
	CategoryExcelente      = "EXCELENTE"
	CategoryBueno          = "BUENO"
	CategoryRegular        = "REGULAR"
	CategoryNecesitaMejora = "NECESITA_MEJORA"
)

// Classify maps a total score to its evaluation category. The band lower
// bounds are inclusive and identical for projects and products.
func Classify(totalScore float64) string {
	switch {
	case totalScore >= 85:
		return CategoryExcelente
	case totalScore >= 70:
		return CategoryBueno
	case totalScore >= 50:
		return CategoryRegular
	default:
		return CategoryNecesitaMejora
	}
}
