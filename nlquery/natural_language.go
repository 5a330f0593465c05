package nlquery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nonsonwune/scopequery/executor"
	"github.com/nonsonwune/scopequery/importer"
	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/rolefilter"
)

// NLQueryEngine answers questions for one admin at a time: scope, interpret, execute.
// It holds no per-query state, so one engine serves concurrent queries.
type NLQueryEngine struct {
	store       *importer.Store
	interpreter *Interpreter
}

// QueryResponse is the outcome of one question.
type QueryResponse struct {
	QueryID  string            `json:"query_id"`
	AdminID  string            `json:"admin_id"`
	Question string            `json:"question"`
	Scope    string            `json:"scope"`
	Spec     *models.QuerySpec `json:"spec,omitempty"`
	Result   *models.ResultSet `json:"result"`
	Notice   string            `json:"notice,omitempty"` // set when an empty result came from asking outside the scope
	Elapsed  time.Duration     `json:"elapsed_ns"`
}

// NewNLQueryEngine creates an engine over store.
func NewNLQueryEngine(store *importer.Store, interpreter *Interpreter) *NLQueryEngine {
	return &NLQueryEngine{store: store, interpreter: interpreter}
}

// Store returns the engine's record store.
func (e *NLQueryEngine) Store() *importer.Store {
	return e.store
}

// ProcessQuery answers question for admin. The record set is scoped to the admin before
// the translator sees anything, and an empty scope returns without calling it.
//
// The only error is a *models.QueryParseError; empty results are reported through
// Result.Empty.
func (e *NLQueryEngine) ProcessQuery(ctx context.Context, admin models.AdminProfile, question string) (*QueryResponse, error) {
	start := time.Now()
	resp := &QueryResponse{
		QueryID:  uuid.New().String(),
		AdminID:  admin.AdminID,
		Question: question,
		Scope:    rolefilter.Describe(admin),
	}

	scoped := rolefilter.Scope(e.store.Students(), admin)
	log.Printf("[%s] admin=%s role=%s scope=%q: %d of %d record(s) visible",
		resp.QueryID, admin.AdminID, admin.Role, resp.Scope, len(scoped), len(e.store.Students()))

	if len(scoped) == 0 {
		resp.Result = &models.ResultSet{
			Aggregate: models.AggregateNone,
			Columns:   executor.Columns(nil),
			Records:   []models.StudentRecord{},
			Empty:     &models.EmptyResultWarning{Stage: models.StageScope},
		}
		resp.Elapsed = time.Since(start)
		return resp, nil
	}

	summary := importer.Summarize(scoped)
	spec, err := e.interpreter.ParseWithSummary(ctx, question, e.store.Fields(), &summary)
	if err != nil {
		log.Printf("[%s] could not interpret question: %v", resp.QueryID, err)
		return nil, err
	}
	resp.Spec = spec

	resp.Result = executor.Execute(*spec, scoped)
	if resp.Result.Empty != nil {
		resp.Notice = accessNotice(admin, spec)
	}
	resp.Elapsed = time.Since(start)
	log.Printf("[%s] %s (%s)", resp.QueryID, resp.Result.Summary(), resp.Elapsed.Round(time.Millisecond))
	return resp, nil
}

// ProcessQueryFor looks the admin up by ID and runs ProcessQuery.
func (e *NLQueryEngine) ProcessQueryFor(ctx context.Context, adminID, question string) (*QueryResponse, error) {
	admin, err := e.store.AdminByID(adminID)
	if err != nil {
		return nil, fmt.Errorf("cannot run query: %w", err)
	}
	return e.ProcessQuery(ctx, admin, question)
}

// accessNotice returns the first grade or class equality filter that the admin's scope
// rules out, as a user-facing sentence.
func accessNotice(admin models.AdminProfile, spec *models.QuerySpec) string {
	for _, f := range spec.Filters {
		if f.Operator != models.OpEq && f.Operator != models.OpIn {
			continue
		}
		for _, op := range f.Operands {
			var err error
			switch f.Field {
			case models.FieldGrade:
				err = rolefilter.ValidateAccess(admin, op.Int, "")
			case models.FieldClass:
				err = rolefilter.ValidateAccess(admin, 0, op.Text)
			}
			if err != nil {
				return err.Error()
			}
		}
	}
	return ""
}
