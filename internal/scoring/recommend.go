package scoring

import "fmt"

// Sub-scores below this threshold produce a deficiency recommendation
const recommendationThreshold = 60

// recommendationText holds the static copy for one sub-score deficiency
type recommendationText struct {
	title       string
	description string
	actions     []string
}

var projectRecommendationTexts = map[string]recommendationText{
	SubCompleteness: {
		title:       "Complete the project documentation",
		description: "Key descriptive fields are missing or too short to evaluate the project properly.",
		actions: []string{
			"Write an abstract of at least a paragraph",
			"Document the methodology in detail",
			"Set the start date, budget and keywords",
		},
	},
	SubCollaboration: {
		title:       "Expand the research team",
		description: "The project has few registered collaborators, which limits its collaboration profile.",
		actions: []string{
			"Register all active team members",
			"Invite an external collaborator or institution",
		},
	},
	SubProductivity: {
		title:       "Increase scientific production",
		description: "The project has registered few products relative to its expected output.",
		actions: []string{
			"Register publications, datasets and software produced by the project",
			"Plan deliverables for the next reporting period",
		},
	},
	SubImpact: {
		title:       "Improve product visibility and impact",
		description: "Products lack DOIs, citations or placement in indexed venues.",
		actions: []string{
			"Obtain DOIs for existing products",
			"Target journals with a higher impact factor",
		},
	},
	SubInnovation: {
		title:       "Diversify product types",
		description: "Production is concentrated in few categories with no innovative outputs.",
		actions: []string{
			"Consider software, patent or database products",
			"Broaden the mix of product categories",
		},
	},
	SubTimeline: {
		title:       "Address schedule deviation",
		description: "The project is behind its date-implied progress or past its end date.",
		actions: []string{
			"Update the reported progress percentage",
			"Revise the schedule or request an extension",
		},
	},
}

var productRecommendationTexts = map[string]recommendationText{
	SubCompleteness: {
		title:       "Complete the product record",
		description: "Descriptive fields of the product are missing or too short.",
		actions: []string{
			"Add a full description and category",
			"Register the journal, DOI and publication date",
		},
	},
	SubImpact: {
		title:       "Strengthen product impact",
		description: "The product lacks a DOI, citations or impact-factor evidence.",
		actions: []string{
			"Register the DOI",
			"Track and update the citation count",
		},
	},
	SubQuality: {
		title:       "Improve publication quality signals",
		description: "The product has weak venue and peer-review indicators.",
		actions: []string{
			"Publish in an indexed, peer-reviewed venue",
			"Record the journal and its impact factor",
		},
	},
	SubNovelty: {
		title:       "Refresh the production pipeline",
		description: "The product is dated; recent outputs weigh more in evaluations.",
		actions: []string{
			"Plan a follow-up publication or new version",
		},
	},
}

// GenerateRecommendations builds the prioritized recommendation list for a
// set of sub-scores, following the fixed evaluation order. A total score of
// 85 or above appends a positive acknowledgment instead of more deficiencies.
func GenerateRecommendations(subScores map[string]float64, order []string, totalScore float64, kind string) []Recommendation {
	texts := projectRecommendationTexts
	if kind == "PRODUCT" {
		texts = productRecommendationTexts
	}

	recs := make([]Recommendation, 0, len(order))
	for _, name := range order {
		score, ok := subScores[name]
		if !ok || score >= recommendationThreshold {
			continue
		}
		text, ok := texts[name]
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			Category:    name,
			Priority:    recommendationPriority(score),
			Title:       text.title,
			Description: text.description,
			Actions:     text.actions,
		})
	}

	if totalScore >= 85 {
		recs = append(recs, Recommendation{
			Category:    "general",
			Priority:    PriorityLow,
			Title:       "Excellent overall performance",
			Description: fmt.Sprintf("The evaluation reached %.0f points. Keep the current pace and documentation quality.", totalScore),
			Actions:     []string{"Maintain regular updates of products and progress"},
		})
	}

	return recs
}

// recommendationPriority derives urgency from the size of the deficit
func recommendationPriority(score float64) string {
	switch {
	case score < 30:
		return PriorityHigh
	case score < 45:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
