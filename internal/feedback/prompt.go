package feedback

import (
	"bytes"
	"text/template"
)

type promptItem struct {
	N        int
	Question string
	Answer   string
}

type promptData struct {
	ScoreInput
	Items     []promptItem
	FirstID   string
	SecondID  string
	CompanyAt string
}

var promptTemplate = template.Must(template.New("feedback").Parse(`
I need feedback on the following job interview for a {{.ExperienceLevel}} {{.JobRole}} position in the {{.Industry}} industry.
{{if .Company}}The candidate is interviewing at {{.Company}}. Evaluate their answers based on what would be expected at this company.{{end}}
{{range .Items}}
Question {{.N}}: "{{.Question}}"
Candidate Answer: "{{.Answer}}"
{{end}}
For each question, rate the answer from 1-10 based on expectations for a {{.ExperienceLevel}} candidate in the {{.Industry}} industry, considering:
- Relevance to the question
- Technical accuracy
- Communication clarity
- Depth of knowledge appropriate for a {{.ExperienceLevel}} {{.JobRole}}
- Industry-specific awareness and knowledge

IMPORTANT SCORING GUIDELINES:
- A score of 1-3 is for answers that are very brief, off-topic, or show no understanding of the question
- A score of 4-6 is for answers that are on-topic but lack depth, detail, or proper explanation
- A score of 7-8 is for good answers that demonstrate solid understanding and provide relevant details
- A score of 9-10 is for excellent answers that are comprehensive, technically accurate, and well-articulated

Be very strict with your scoring. If the answer is incomplete, generic, or demonstrates poor understanding, it must receive a low score (1-3). NEVER give a high score (7+) to brief or incomplete answers.

CRITICAL: Do NOT invent details, technologies, tools, or approaches that the candidate did not explicitly mention in their answer. Only reference what was actually said in the answer. For example, if the candidate did not mention "Tableau" or "React" or any specific technology, do not include these in your feedback.

Include strengths ONLY if they are genuinely present in the response. For answers scoring below 4, the "strengths" array may be empty or include only basic observations like "attempted to answer the question".

Return a JSON object with the following structure:
{
  "questionFeedback": [
    {
      "id": "{{.FirstID}}",
      "score": 7,
      "feedback": "Detailed feedback here that directly references content from the answer, without inventing details",
      "strengths": ["Strength 1", "Strength 2"],
      "areas_to_improve": ["Area 1", "Area 2"]
    },
    {
      "id": "{{.SecondID}}",
      "score": 8,
      "feedback": "Detailed feedback here that directly references content from the answer, without inventing details",
      "strengths": ["Strength 1", "Strength 2"],
      "areas_to_improve": ["Area 1", "Area 2"]
    }
  ],
  "overall": {
    "averageScore": 7.5,
    "generalFeedback": "Overall assessment of the candidate based on the quality of their actual responses",
    "keyStrengths": ["Key strength 1", "Key strength 2"],
    "developmentAreas": ["Development area 1", "Development area 2"],
    "hiringRecommendation": "Would recommend hiring for a {{.ExperienceLevel}} {{.JobRole}} position at {{.CompanyAt}} in the {{.Industry}} industry only if the candidate demonstrated sufficient knowledge and skills"
  }
}

Only return the JSON object, no other text.
`))

func buildPrompt(in ScoreInput) (string, error) {
	data := promptData{
		ScoreInput: in,
		FirstID:    "q1",
		SecondID:   "q2",
		CompanyAt:  in.Company,
	}
	if data.CompanyAt == "" {
		data.CompanyAt = "a company"
	}
	if len(in.Questions) > 0 {
		data.FirstID = in.Questions[0].ID
	}
	if len(in.Questions) > 1 {
		data.SecondID = in.Questions[1].ID
	}
	for i, q := range in.Questions {
		data.Items = append(data.Items, promptItem{N: i + 1, Question: q.Text, Answer: in.Answers[q.ID]})
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
