package nlquery

import (
	"context"
	"errors"
	"testing"

	"github.com/nonsonwune/scopequery/importer"
	"github.com/nonsonwune/scopequery/models"
)

func scenarioStore() *importer.Store {
	students := []models.StudentRecord{
		{StudentID: "S1", StudentName: "Asha", Grade: 8, Class: "A", Region: "North", QuizScore: 85,
			HomeworkStatus: models.HomeworkSubmitted, Date: models.NewDate(2024, 10, 1)},
		{StudentID: "S2", StudentName: "Ben", Grade: 8, Class: "B", Region: "North", QuizScore: 60,
			HomeworkStatus: models.HomeworkPending, Date: models.NewDate(2024, 10, 2)},
	}
	admins := []models.AdminProfile{
		{AdminID: "P1", Name: "Principal", Role: models.RolePrincipal},
		{AdminID: "T1", Name: "Teacher", Role: models.RoleClassTeacher,
			Region: models.OnlyText("North"), Grade: models.OnlyGrade(8), Class: models.OnlyText("A")},
		{AdminID: "T2", Name: "Elsewhere", Role: models.RoleClassTeacher,
			Region: models.OnlyText("South"), Grade: models.OnlyGrade(8), Class: models.OnlyText("A")},
	}
	return importer.NewStore(students, admins)
}

func TestProcessQuery(t *testing.T) {
	engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(NewRuleTranslator()))

	testCases := []struct {
		name      string
		adminID   string
		question  string
		wantCount int
		wantEmpty string
		wantIDs   []string
	}{
		{
			name:      "class teacher sees no pending homework in own class",
			adminID:   "T1",
			question:  "students with pending homework",
			wantCount: 0,
			wantEmpty: models.StageFilter,
		},
		{
			name:      "principal sees the pending student",
			adminID:   "P1",
			question:  "students with pending homework",
			wantCount: 1,
			wantIDs:   []string{"S2"},
		},
		{
			name:      "exact score that nobody has",
			adminID:   "P1",
			question:  "students who scored 0",
			wantCount: 0,
			wantEmpty: models.StageFilter,
		},
		{
			name:      "exact score",
			adminID:   "P1",
			question:  "students who scored 85",
			wantCount: 1,
			wantIDs:   []string{"S1"},
		},
		{
			name:      "count within scope",
			adminID:   "T1",
			question:  "How many students are there?",
			wantCount: 1,
		},
		{
			name:      "empty scope",
			adminID:   "T2",
			question:  "Show all students",
			wantCount: 0,
			wantEmpty: models.StageScope,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := engine.ProcessQueryFor(context.Background(), tc.adminID, tc.question)
			if err != nil {
				t.Fatalf("ProcessQueryFor() error = %v", err)
			}
			if resp.QueryID == "" {
				t.Error("QueryID is empty")
			}
			if resp.Result.Count != tc.wantCount {
				t.Errorf("Count = %d, want %d", resp.Result.Count, tc.wantCount)
			}
			switch {
			case tc.wantEmpty == "" && resp.Result.Empty != nil:
				t.Errorf("Empty = %+v, want none", resp.Result.Empty)
			case tc.wantEmpty != "" && (resp.Result.Empty == nil || resp.Result.Empty.Stage != tc.wantEmpty):
				t.Errorf("Empty = %+v, want stage %s", resp.Result.Empty, tc.wantEmpty)
			}
			for i, id := range tc.wantIDs {
				if resp.Result.Records[i].StudentID != id {
					t.Errorf("record %d = %s, want %s", i, resp.Result.Records[i].StudentID, id)
				}
			}
		})
	}
}

func TestProcessQueryEmptyScopeSkipsTranslator(t *testing.T) {
	next := &countingTranslator{raw: `{"filters":[]}`}
	engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(next))

	resp, err := engine.ProcessQueryFor(context.Background(), "T2", "Show all students")
	if err != nil {
		t.Fatalf("ProcessQueryFor() error = %v", err)
	}
	if next.calls != 0 {
		t.Errorf("translator called %d times for an empty scope, want 0", next.calls)
	}
	if resp.Spec != nil {
		t.Errorf("Spec = %+v, want nil for an empty scope", resp.Spec)
	}
}

func TestProcessQuerySeesOnlyScopedSummary(t *testing.T) {
	var seen *models.DataSummary
	tr := TranslatorFunc(func(ctx context.Context, req TranslateRequest) (string, error) {
		seen = req.Summary
		return `{"filters":[]}`, nil
	})
	engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(tr))

	if _, err := engine.ProcessQueryFor(context.Background(), "T1", "Show all students"); err != nil {
		t.Fatalf("ProcessQueryFor() error = %v", err)
	}
	if seen == nil || seen.RecordCount != 1 {
		t.Fatalf("translator summary = %+v, want one scoped record", seen)
	}
	if classes := seen.Values[models.FieldClass]; len(classes) != 1 || classes[0] != "A" {
		t.Errorf("summary classes = %v, want [A]", classes)
	}
}

func TestProcessQueryErrors(t *testing.T) {
	engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(NewRuleTranslator()))

	if _, err := engine.ProcessQueryFor(context.Background(), "X9", "Show all students"); !errors.Is(err, models.ErrAdminNotFound) {
		t.Errorf("unknown admin error = %v, want ErrAdminNotFound", err)
	}

	_, err := engine.ProcessQueryFor(context.Background(), "P1", "What's the weather like?")
	var parseErr *models.QueryParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("unrecognized question error = %v, want *models.QueryParseError", err)
	}

	// the engine keeps working after a failed question
	if _, err := engine.ProcessQueryFor(context.Background(), "P1", "Show all students"); err != nil {
		t.Errorf("ProcessQueryFor() after failure error = %v", err)
	}
}

func TestProcessQueryIDsAreUnique(t *testing.T) {
	engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(NewRuleTranslator()))
	a, err := engine.ProcessQueryFor(context.Background(), "P1", "Show all students")
	if err != nil {
		t.Fatalf("ProcessQueryFor() error = %v", err)
	}
	b, err := engine.ProcessQueryFor(context.Background(), "P1", "Show all students")
	if err != nil {
		t.Fatalf("ProcessQueryFor() error = %v", err)
	}
	if a.QueryID == b.QueryID {
		t.Errorf("QueryID repeated: %s", a.QueryID)
	}
}

func TestProcessQueryAccessNotice(t *testing.T) {
	testCases := []struct {
		name       string
		adminID    string
		question   string
		raw        string
		wantNotice bool
	}{
		{name: "other grade", adminID: "T1", question: "Show students in grade 9", wantNotice: true},
		{
			name:       "other class",
			adminID:    "T1",
			question:   "Show students in class B",
			raw:        `{"filters":[{"field":"class","operator":"eq","value":"B"}]}`,
			wantNotice: true,
		},
		{name: "own class", adminID: "T1", question: "Show students in class A"},
		{name: "principal has no limits", adminID: "P1", question: "Show students in grade 9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var translator Translator = NewRuleTranslator()
			if tc.raw != "" {
				translator = fixedTranslator(tc.raw)
			}
			engine := NewNLQueryEngine(scenarioStore(), newTestInterpreter(translator))
			resp, err := engine.ProcessQueryFor(context.Background(), tc.adminID, tc.question)
			if err != nil {
				t.Fatalf("ProcessQueryFor() error = %v", err)
			}
			if got := resp.Notice != ""; got != tc.wantNotice {
				t.Errorf("Notice = %q, wantNotice %v", resp.Notice, tc.wantNotice)
			}
		})
	}
}
