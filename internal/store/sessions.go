package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// SessionStore implements SessionRepo with ent's SQL builder.
type SessionStore struct {
	s *Store
}

var _ SessionRepo = (*SessionStore)(nil)

func (r *SessionStore) CreateSession(ctx context.Context, in NewSession) (string, error) {
	id := uuid.NewString()
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)

	b := r.s.builder()
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := b.Insert(InterviewSessionsTable.Name).
			Columns("id", "user_id", "job_role", "experience_level", "industry", "company", "total_score", "overall", "created_at").
			Values(id, in.UserID, in.JobRole, in.ExperienceLevel, in.Industry, in.Company, in.TotalScore, nullBytes(in.Overall), createdAt).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		for i, resp := range in.Responses {
			strengths, err := encodeList(resp.Strengths)
			if err != nil {
				return err
			}
			areas, err := encodeList(resp.AreasToImprove)
			if err != nil {
				return err
			}

			query, args := b.Insert(QuestionResponsesTable.Name).
				Columns("id", "session_id", "question_id", "position", "question", "answer", "score", "feedback", "strengths", "areas_to_improve").
				Values(uuid.NewString(), id, resp.QuestionID, i, resp.Question, resp.Answer, nullFloat(resp.Score), nullString(resp.Feedback), strengths, areas).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert response %q: %w", resp.QuestionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *SessionStore) ListSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	b := r.s.builder()
	st := b.Table(InterviewSessionsTable.Name)
	rt := b.Table(QuestionResponsesTable.Name)

	query, args := b.Select(
		st.C("id"),
		st.C("job_role"),
		st.C("total_score"),
		st.C("created_at"),
		entsql.As(entsql.Count(rt.C("id")), "question_count"),
	).
		From(st).
		LeftJoin(rt).On(st.C("id"), rt.C("session_id")).
		Where(entsql.EQ(st.C("user_id"), userID)).
		GroupBy(st.C("id")).
		OrderBy(entsql.Desc(st.C("created_at"))).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.JobRole, &sum.TotalScore, scanTime{&sum.CreatedAt}, &sum.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (r *SessionStore) GetSession(ctx context.Context, id string) (*Session, error) {
	b := r.s.builder()

	query, args := b.Select("id", "user_id", "job_role", "experience_level", "industry", "company", "total_score", "overall", "created_at").
		From(b.Table(InterviewSessionsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		sess    Session
		overall sql.NullString
	)
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(
		&sess.ID, &sess.UserID, &sess.JobRole, &sess.ExperienceLevel, &sess.Industry,
		&sess.Company, &sess.TotalScore, &overall, scanTime{&sess.CreatedAt},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if overall.Valid {
		sess.Overall = []byte(overall.String)
	}

	responses, err := r.responses(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Responses = responses
	return &sess, nil
}

func (r *SessionStore) responses(ctx context.Context, sessionID string) ([]QuestionResponse, error) {
	b := r.s.builder()
	query, args := b.Select("id", "session_id", "question_id", "position", "question", "answer", "score", "feedback", "strengths", "areas_to_improve").
		From(b.Table(QuestionResponsesTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Asc("position")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []QuestionResponse
	for rows.Next() {
		var (
			qr               QuestionResponse
			score            sql.NullFloat64
			feedback         sql.NullString
			strengths, areas sql.NullString
		)
		if err := rows.Scan(&qr.ID, &qr.SessionID, &qr.QuestionID, &qr.Position, &qr.Question,
			&qr.Answer, &score, &feedback, &strengths, &areas); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if score.Valid {
			v := score.Float64
			qr.Score = &v
		}
		if feedback.Valid {
			v := feedback.String
			qr.Feedback = &v
		}
		if qr.Strengths, err = decodeList(strengths); err != nil {
			return nil, err
		}
		if qr.AreasToImprove, err = decodeList(areas); err != nil {
			return nil, err
		}
		out = append(out, qr)
	}
	return out, rows.Err()
}

func (r *SessionStore) DeleteSession(ctx context.Context, id string) error {
	b := r.s.builder()
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := b.Delete(QuestionResponsesTable.Name).
			Where(entsql.EQ("session_id", id)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete responses: %w", err)
		}

		query, args = b.Delete(InterviewSessionsTable.Name).
			Where(entsql.EQ("id", id)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func encodeList(items []string) (any, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(v sql.NullString) ([]string, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
