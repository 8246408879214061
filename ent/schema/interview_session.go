package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// InterviewSession is one submitted rehearsal together with its overall
// assessment.
type InterviewSession struct {
	ent.Schema
}

func (InterviewSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID assigned at submission"),
		field.String("user_id").
			Comment("Opaque caller-supplied user identifier"),
		field.String("job_role"),
		field.String("experience_level").
			Default(""),
		field.String("industry").
			Default(""),
		field.String("company").
			Default(""),
		field.Float("total_score").
			Default(0).
			Comment("Mean of the numeric per-question scores, one decimal"),
		field.Text("overall").
			Optional().
			Comment("Overall assessment as JSON"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (InterviewSession) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("responses", QuestionResponse.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (InterviewSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "created_at"),
	}
}
