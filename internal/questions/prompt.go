package questions

import (
	"bytes"
	"text/template"
)

var promptTemplate = template.Must(template.New("questions").Parse(`Generate only {{.Count}} realistic mock interview questions for a {{.ExperienceLevel}} {{.JobRole}} position in the {{.Industry}} industry.

The questions should match the real-world expectations for a {{.ExperienceLevel}} candidate in this role and industry.
{{if .Company}}The candidate is interviewing at {{.Company}}. Include questions that reflect {{.Company}}'s known interview style and company values.
{{end}}
Include a mix of:
- Technical questions specific to the {{.JobRole}} role
- Behavioral questions relevant to {{.ExperienceLevel}} professionals
- Problem-solving scenarios a {{.JobRole}} would face in their daily work in the {{.Industry}} industry
- Industry-specific knowledge questions relevant to {{.Industry}}

Format your response EXACTLY as a JSON array with each object having 'id' and 'question' fields like this example:
[
  {
    "id": 1,
    "question": "Can you describe your experience with object-oriented programming and design principles? How have you applied these concepts in your past projects?"
  },
  {
    "id": 2,
    "question": "Tell me about a time when you had to troubleshoot and resolve a complex coding issue. What steps did you take to diagnose the problem and what was the outcome?"
  }
]

Return ONLY the JSON array with no additional text, explanation, or formatting.`))

func buildPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
