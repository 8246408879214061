package analysis

import (
	"bytes"
	"text/template"
)

type promptTemplate struct{ *template.Template }

func (t promptTemplate) build(text string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Text string }{text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var grammarPrompt = promptTemplate{template.Must(template.New("grammar").Parse(`Correct the grammar, spelling and punctuation of the interview answer below. Keep the candidate's wording, meaning and tone. Do not add new content.

Answer:
{{.Text}}

Return ONLY the corrected answer with no explanation, quotes or formatting.`))}

var sentimentPrompt = promptTemplate{template.Must(template.New("sentiment").Parse(`Classify the sentiment of the interview answer below as negative, neutral or positive.

Answer:
{{.Text}}

Format your response EXACTLY as a JSON array giving a probability for each label, highest first, like this example:
[
  {"label": "positive", "score": 0.82},
  {"label": "neutral", "score": 0.15},
  {"label": "negative", "score": 0.03}
]

Return ONLY the JSON array with no additional text, explanation, or formatting.`))}

var commentPrompt = promptTemplate{template.Must(template.New("comment").Parse(`You are an interview coach. Give two or three sentences of constructive feedback on the interview answer below. Mention one thing that works and one concrete improvement. Only refer to what the answer actually says.

Answer:
{{.Text}}

Return ONLY the feedback text.`))}
