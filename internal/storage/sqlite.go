package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentcore/orchestrator/internal/models"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo
)

// compile-time check that SQLite implements Persistence.
var _ Persistence = (*SQLite)(nil)

// SQLite is a durable, single-process Persistence implementation. It covers
// only the tables the Persistence port's operations need — the orchestrator
// does not otherwise constrain the schema (spec §6 names "the SQLite schema
// itself" as outside the core's concern).
//
// Grounded on haasonsaas-nexus's internal/memory/backend/sqlitevec.Backend
// for the modernc.org/sqlite wiring (sql.Open + an idempotent init()).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if necessary creates) a SQLite database at path.
// Pass ":memory:" for an ephemeral in-process database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			phase_json TEXT NOT NULL,
			completed_at DATETIME,
			final_response TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			goal TEXT NOT NULL,
			assumptions_json TEXT NOT NULL,
			revision INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plan_steps (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			description TEXT NOT NULL,
			expected_outcome TEXT NOT NULL,
			action_json TEXT NOT NULL,
			status TEXT NOT NULL,
			approval_json TEXT,
			result_json TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS step_results (
			step_id TEXT NOT NULL,
			success INTEGER NOT NULL,
			output_json TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			completed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_session ON plans(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_steps_plan ON plan_steps(plan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_step_results_step ON step_results(step_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("storage: init schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SaveSession(ctx context.Context, session *models.Session) error {
	phaseJSON, err := json.Marshal(session.Phase())
	if err != nil {
		return fmt.Errorf("storage: marshal phase: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, conversation_id, message_id, phase_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.ConversationID, session.MessageID, string(phaseJSON), session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storage: save session: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateSessionPhase(ctx context.Context, sessionID string, phase models.Phase) error {
	phaseJSON, err := json.Marshal(phase)
	if err != nil {
		return fmt.Errorf("storage: marshal phase: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET phase_json = ?, updated_at = ? WHERE id = ?`,
		string(phaseJSON), time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("storage: update session phase: %w", err)
	}
	return requireRowAffected(res, "session", sessionID)
}

func (s *SQLite) UpdateSessionCompleted(ctx context.Context, sessionID string, finalResponse string) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET completed_at = ?, final_response = ?, updated_at = ? WHERE id = ?`,
		now, finalResponse, now, sessionID)
	if err != nil {
		return fmt.Errorf("storage: update session completed: %w", err)
	}
	return requireRowAffected(res, "session", sessionID)
}

func (s *SQLite) SavePlan(ctx context.Context, sessionID string, plan *models.Plan) error {
	assumptionsJSON, err := json.Marshal(plan.Assumptions)
	if err != nil {
		return fmt.Errorf("storage: marshal assumptions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, session_id, goal, assumptions_json, revision, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID, sessionID, plan.Goal, string(assumptionsJSON), plan.Revision, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: save plan: %w", err)
	}
	return s.SavePlanSteps(ctx, plan.ID, plan.Steps)
}

func (s *SQLite) SavePlanSteps(ctx context.Context, planID string, steps []*models.PlanStep) error {
	for _, step := range steps {
		actionJSON, err := json.Marshal(step.Action)
		if err != nil {
			return fmt.Errorf("storage: marshal step action: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO plan_steps (id, plan_id, sequence, description, expected_outcome, action_json, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET sequence = excluded.sequence, status = excluded.status`,
			step.ID, planID, step.Sequence, step.Description, step.ExpectedOutcome, string(actionJSON), string(step.Status))
		if err != nil {
			return fmt.Errorf("storage: save plan step %s: %w", step.ID, err)
		}
	}
	return nil
}

func (s *SQLite) UpdateStepStatus(ctx context.Context, stepID string, status models.StepStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE plan_steps SET status = ? WHERE id = ?`, string(status), stepID)
	if err != nil {
		return fmt.Errorf("storage: update step status: %w", err)
	}
	return requireRowAffected(res, "plan_steps", stepID)
}

func (s *SQLite) SaveStepApproval(ctx context.Context, stepID string, approval models.StepApproval) error {
	approvalJSON, err := json.Marshal(approval)
	if err != nil {
		return fmt.Errorf("storage: marshal approval: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE plan_steps SET approval_json = ? WHERE id = ?`, string(approvalJSON), stepID)
	if err != nil {
		return fmt.Errorf("storage: save step approval: %w", err)
	}
	return requireRowAffected(res, "plan_steps", stepID)
}

func (s *SQLite) SaveStepResult(ctx context.Context, result models.StepResult) error {
	outputJSON, err := json.Marshal(result.Output)
	if err != nil {
		return fmt.Errorf("storage: marshal step result output: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO step_results (step_id, success, output_json, error, duration_ms, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.StepID, result.Success, string(outputJSON), result.Error, result.DurationMS, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("storage: save step result: %w", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("storage: marshal step result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE plan_steps SET result_json = ? WHERE id = ?`, string(resultJSON), result.StepID)
	if err != nil {
		return fmt.Errorf("storage: update plan step result: %w", err)
	}
	return nil
}

func requireRowAffected(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: no %s row for id %s", table, id)
	}
	return nil
}
