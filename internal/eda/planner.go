package eda

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinodismyname/mcpeda/internal/runtime"
)

// workflow is the canonical tool ordering the planner recommends from; the
// next recommendation is the first tool the session has not completed.
var workflow = []string{
	"open_dataset",
	"profile_columns",
	"summary_stats",
	"detect_outliers",
	"hypothesis_tests",
	"select_predictors",
	"render_report",
}

// PlanInput tracks the client's analysis planning steps without domain
// heuristics beyond the canonical tool ordering.
type PlanInput struct {
	Note           string `json:"note" validate:"required" jsonschema_description:"Your current planning step"`
	NextStepNeeded bool   `json:"next_step_needed" jsonschema_description:"Whether another planning step is needed"`
	StepNumber     int    `json:"step_number" validate:"min=1" jsonschema_description:"Current step number (>=1)"`
	TotalSteps     int    `json:"total_steps" validate:"min=1" jsonschema_description:"Estimated total steps needed (>=1)"`

	CompletedTool string `json:"completed_tool,omitempty" jsonschema_description:"Tool just completed, if any (e.g. summary_stats)"`
	IsRevision    bool   `json:"is_revision,omitempty"`
	RevisesStep   int    `json:"revises_step,omitempty"`

	SessionID    string `json:"session_id,omitempty" jsonschema_description:"Optional session identifier to resume in-memory planning state"`
	ResetSession bool   `json:"reset_session,omitempty" jsonschema_description:"When true, reset the session referenced by session_id"`
}

// PlannerMeta returns effective limits alongside the plan.
type PlannerMeta struct {
	Limits       runtime.Limits `json:"limits"`
	PlanningOnly bool           `json:"planning_only"`
}

// PlanOutput echoes loop state plus the deterministic next-tool
// recommendation and the session's completed report runs.
type PlanOutput struct {
	StepNumber     int    `json:"step_number"`
	TotalSteps     int    `json:"total_steps"`
	NextStepNeeded bool   `json:"next_step_needed"`
	SessionID      string `json:"session_id"`

	RecommendedTool string      `json:"recommended_tool,omitempty"`
	CompletedTools  []string    `json:"completed_tools,omitempty"`
	StepHistory     int         `json:"step_history"`
	Runs            []RunRecord `json:"runs,omitempty"`
	Meta            PlannerMeta `json:"meta"`
}

// Planner encapsulates runtime limits and the in-memory session store.
type Planner struct {
	Limits   runtime.Limits
	Sessions *SessionStore
}

// Plan records the step into a session and returns updated loop state with
// the next recommended tool.
func (p *Planner) Plan(ctx context.Context, in PlanInput) (PlanOutput, error) {
	var out PlanOutput
	out.Meta = PlannerMeta{Limits: p.Limits, PlanningOnly: true}

	if strings.TrimSpace(in.Note) == "" || in.StepNumber <= 0 || in.TotalSteps <= 0 {
		return out, fmt.Errorf("note, step_number>=1, total_steps>=1 are required")
	}

	if p.Sessions == nil {
		p.Sessions = NewSessionStore(20)
	}
	var sess *Session
	var ok bool
	if strings.TrimSpace(in.SessionID) != "" {
		if in.ResetSession {
			sess = p.Sessions.Reset(in.SessionID)
		} else if sess, ok = p.Sessions.Get(in.SessionID); !ok {
			// Resume failed; create a fresh session with the requested ID.
			sess = p.Sessions.Reset(in.SessionID)
		}
	} else {
		sess = p.Sessions.NewSession()
	}

	total := in.TotalSteps
	if in.StepNumber > total {
		total = in.StepNumber
	}

	p.Sessions.AppendStep(sess, Step{
		Note:           in.Note,
		StepNumber:     in.StepNumber,
		TotalSteps:     total,
		NextStepNeeded: in.NextStepNeeded,
		CompletedTool:  in.CompletedTool,
		IsRevision:     in.IsRevision,
		RevisesStep:    in.RevisesStep,
	})

	for _, tool := range workflow {
		if !sess.Done[tool] {
			out.RecommendedTool = tool
			break
		}
	}
	for _, tool := range workflow {
		if sess.Done[tool] {
			out.CompletedTools = append(out.CompletedTools, tool)
		}
	}

	out.StepNumber = in.StepNumber
	out.TotalSteps = total
	out.NextStepNeeded = in.NextStepNeeded
	out.SessionID = sess.ID
	out.StepHistory = len(sess.Steps)
	out.Runs = append(out.Runs, sess.Runs...)
	return out, nil
}
