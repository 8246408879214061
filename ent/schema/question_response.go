package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuestionResponse is a single answered question inside a session.
type QuestionResponse struct {
	ent.Schema
}

func (QuestionResponse) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("session_id"),
		field.String("question_id"),
		field.Int("position").
			Default(0),
		field.Text("question"),
		field.Text("answer"),
		field.Float("score").
			Optional().
			Nillable(),
		field.Text("feedback").
			Optional().
			Nillable(),
		field.JSON("strengths", []string{}).
			Optional(),
		field.JSON("areas_to_improve", []string{}).
			Optional(),
	}
}

func (QuestionResponse) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", InterviewSession.Type).
			Ref("responses").
			Field("session_id").
			Unique().
			Required(),
	}
}

func (QuestionResponse) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "question_id").
			Unique(),
	}
}
