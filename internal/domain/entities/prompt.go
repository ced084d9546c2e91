package entities

import (
	"errors"
	"strings"
)

// PromptTemplate is a canned prompt offered to users
type PromptTemplate struct {
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Prompt      string `yaml:"prompt" json:"prompt"`
	Gradient    string `yaml:"gradient" json:"gradient"`
}

// Validate ensures the template can be offered
func (p PromptTemplate) Validate() error {
	if strings.TrimSpace(p.Category) == "" {
		return errors.New("prompt category is required")
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return errors.New("prompt text is required")
	}
	return nil
}

// DefaultPrompts returns the built-in prompt catalog
func DefaultPrompts() []PromptTemplate {
	return []PromptTemplate{
		{
			Category:    "Digital Marketing",
			Description: "Trends & Campaigns",
			Prompt:      "Create a comprehensive presentation about current digital marketing trends, campaign insights, and action plans. Include key statistics, emerging technologies, and strategic recommendations.",
			Gradient:    "from-blue-500 to-violet-600",
		},
		{
			Category:    "SEO Strategy",
			Description: "Website Optimization",
			Prompt:      "Create a detailed SEO strategy presentation covering current performance analysis, technical improvements, content strategy, and implementation plans for better search rankings.",
			Gradient:    "from-emerald-500 to-teal-600",
		},
		{
			Category:    "Market Analysis",
			Description: "Competitive Research",
			Prompt:      "Create a market analysis presentation including industry overview, competitor analysis, SWOT analysis, and strategic recommendations for market positioning.",
			Gradient:    "from-orange-500 to-red-600",
		},
		{
			Category:    "Social Media",
			Description: "Platform Strategy",
			Prompt:      "Create a social media strategy presentation covering platform analysis, content planning, engagement tactics, and growth strategies across different social networks.",
			Gradient:    "from-pink-500 to-rose-600",
		},
		{
			Category:    "E-commerce",
			Description: "Growth & Retention",
			Prompt:      "Create an e-commerce strategy presentation focusing on customer analysis, retention strategies, growth opportunities, and implementation plans for increasing sales.",
			Gradient:    "from-purple-500 to-indigo-600",
		},
		{
			Category:    "Product Launch",
			Description: "Go-to-Market Strategy",
			Prompt:      "Create a product launch strategy presentation including product overview, marketing approach, launch timeline, and success metrics for a successful market entry.",
			Gradient:    "from-cyan-500 to-blue-600",
		},
	}
}

// FindPrompt looks a template up by category, case-insensitively
func FindPrompt(prompts []PromptTemplate, category string) (PromptTemplate, bool) {
	for _, p := range prompts {
		if strings.EqualFold(p.Category, strings.TrimSpace(category)) {
			return p, true
		}
	}
	return PromptTemplate{}, false
}
