// Package questions generates mock interview questions and holds the
// role, level and industry catalog offered to candidates.
package questions

// Question is a single generated interview question.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"question"`
}

// Request describes the interview to generate questions for.
type Request struct {
	JobRole         string
	ExperienceLevel string
	Industry        string
	Company         string
	Count           int
}

// withDefaults fills empty fields with catalog defaults.
func (r Request) withDefaults() Request {
	if r.ExperienceLevel == "" {
		r.ExperienceLevel = DefaultLevel
	}
	if r.Industry == "" {
		r.Industry = DefaultIndustry
	}
	if r.Count <= 0 {
		r.Count = DefaultCount
	}
	return r
}
