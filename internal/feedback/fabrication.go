package feedback

import (
	"regexp"
	"strings"
)

// technology is a named tool the model tends to credit candidates with.
type technology struct {
	Name     string
	Category string
}

var technologies = []technology{
	{"Tableau", "appropriate visualization tools"},
	{"Power BI", "appropriate visualization tools"},
	{"Looker", "appropriate visualization tools"},
	{"React", "appropriate frontend frameworks"},
	{"Angular", "appropriate frontend frameworks"},
	{"Vue", "appropriate frontend frameworks"},
	{"Kubernetes", "appropriate orchestration tools"},
	{"Docker", "appropriate container tooling"},
	{"Terraform", "appropriate infrastructure-as-code tools"},
	{"Jenkins", "appropriate CI/CD tools"},
	{"AWS", "appropriate cloud platforms"},
	{"Azure", "appropriate cloud platforms"},
	{"GCP", "appropriate cloud platforms"},
	{"PostgreSQL", "appropriate databases"},
	{"MySQL", "appropriate databases"},
	{"MongoDB", "appropriate databases"},
	{"Redis", "appropriate caching layers"},
	{"Kafka", "appropriate messaging systems"},
	{"Spark", "appropriate data processing frameworks"},
	{"TensorFlow", "appropriate machine learning frameworks"},
	{"PyTorch", "appropriate machine learning frameworks"},
	{"Figma", "appropriate design tools"},
	{"Selenium", "appropriate test automation tools"},
	{"Jira", "appropriate project tracking tools"},
}

type fabricationRule struct {
	tech    technology
	pattern *regexp.Regexp
	repl    string
}

var fabricationRules = func() []fabricationRule {
	rules := make([]fabricationRule, 0, len(technologies))
	for _, t := range technologies {
		rules = append(rules, fabricationRule{
			tech:    t,
			pattern: regexp.MustCompile(`(?i)\b(mentioned|discussed|described|used|utilizing|leveraged) ` + regexp.QuoteMeta(t.Name) + `\b`),
			repl:    "should consider using " + t.Category + " like " + t.Name,
		})
	}
	return rules
}()

// rewriteFabrications turns claims that the candidate used a technology
// into suggestions whenever answer never names that technology.
func rewriteFabrications(feedback, answer string) (string, bool) {
	if feedback == "" {
		return feedback, false
	}
	lower := strings.ToLower(answer)
	out := feedback
	for _, r := range fabricationRules {
		if strings.Contains(lower, strings.ToLower(r.tech.Name)) {
			continue
		}
		out = r.pattern.ReplaceAllLiteralString(out, r.repl)
	}
	return out, out != feedback
}
