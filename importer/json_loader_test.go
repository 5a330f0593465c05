package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nonsonwune/scopequery/models"
)

const validStudents = `[
  {"student_id":"S1","student_name":"Asha","grade":8,"class":"A","region":"North","quiz_score":85,"homework_status":"submitted","date":"2024-10-01"},
  {"student_id":"S2","student_name":"Ben","grade":"8","class":"B","region":"North","quiz_score":60.0,"homework_status":"not submitted","date":"2024-10-02T09:00:00"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoadStudents(t *testing.T) {
	students, err := LoadStudents(writeFile(t, "students.json", validStudents))
	if err != nil {
		t.Fatalf("LoadStudents() error = %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("LoadStudents() returned %d records, want 2", len(students))
	}
	s2 := students[1]
	if s2.Grade != 8 || s2.QuizScore != 60 {
		t.Errorf("numeric coercion: grade=%d score=%d", s2.Grade, s2.QuizScore)
	}
	if s2.HomeworkStatus != models.HomeworkPending {
		t.Errorf("HomeworkStatus = %q, want pending", s2.HomeworkStatus)
	}
	if s2.Date.String() != "2024-10-02" {
		t.Errorf("Date = %s, want 2024-10-02", s2.Date)
	}
}

func TestLoadStudentsErrors(t *testing.T) {
	testCases := []struct {
		name      string
		content   string
		wantField string
		wantIndex int
	}{
		{
			name:      "not an array",
			content:   `{"student_id":"S1"}`,
			wantIndex: -1,
		},
		{
			name:      "malformed json",
			content:   `[{"student_id":`,
			wantIndex: -1,
		},
		{
			name:      "missing field",
			content:   `[{"student_id":"S1","student_name":"A","grade":8,"class":"A","region":"North","homework_status":"pending","date":"2024-10-01"}]`,
			wantField: models.FieldQuizScore,
		},
		{
			name:      "score out of range",
			content:   `[{"student_id":"S1","student_name":"A","grade":8,"class":"A","region":"North","quiz_score":140,"homework_status":"pending","date":"2024-10-01"}]`,
			wantField: models.FieldQuizScore,
		},
		{
			name:      "unknown homework status",
			content:   `[{"student_id":"S1","student_name":"A","grade":8,"class":"A","region":"North","quiz_score":40,"homework_status":"late","date":"2024-10-01"}]`,
			wantField: models.FieldHomeworkStatus,
		},
		{
			name:      "bad date",
			content:   `[{"student_id":"S1","student_name":"A","grade":8,"class":"A","region":"North","quiz_score":40,"homework_status":"pending","date":"01/10/2024"}]`,
			wantField: models.FieldDate,
		},
		{
			name: "duplicate id",
			content: `[
				{"student_id":"S1","student_name":"A","grade":8,"class":"A","region":"North","quiz_score":40,"homework_status":"pending","date":"2024-10-01"},
				{"student_id":"S1","student_name":"B","grade":8,"class":"A","region":"North","quiz_score":50,"homework_status":"pending","date":"2024-10-01"}
			]`,
			wantField: models.FieldStudentID,
			wantIndex: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadStudents(writeFile(t, "students.json", tc.content))
			var loadErr *models.DataLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("LoadStudents() error = %v, want *DataLoadError", err)
			}
			if loadErr.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", loadErr.Field, tc.wantField)
			}
			if loadErr.Index != tc.wantIndex {
				t.Errorf("Index = %d, want %d", loadErr.Index, tc.wantIndex)
			}
		})
	}
}

func TestLoadStudentsMissingFile(t *testing.T) {
	_, err := LoadStudents(filepath.Join(t.TempDir(), "nope.json"))
	var loadErr *models.DataLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("LoadStudents() error = %v, want *DataLoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("error = %q, want it to mention file not found", err)
	}
}

func TestLoadAdmins(t *testing.T) {
	content := `[
		{"admin_id":"A1","name":"Principal","role":"principal"},
		{"admin_id":"A2","name":"Manager","role":"regional_manager","region":"all","grade":"all","class":"all"},
		{"admin_id":"A3","name":"Teacher","role":"class_teacher","region":"North","grade":8,"class":"A"}
	]`
	admins, err := LoadAdmins(writeFile(t, "admins.json", content))
	if err != nil {
		t.Fatalf("LoadAdmins() error = %v", err)
	}
	if len(admins) != 3 {
		t.Fatalf("LoadAdmins() returned %d profiles, want 3", len(admins))
	}
	if _, ok := admins[1].Region.Value(); ok {
		t.Error(`region "all" should be unrestricted`)
	}
	if g, ok := admins[2].Grade.Value(); !ok || g != 8 {
		t.Errorf("Grade = (%d, %v), want (8, true)", g, ok)
	}
}

func TestLoadAdminsUnknownRole(t *testing.T) {
	_, err := LoadAdmins(writeFile(t, "admins.json", `[{"admin_id":"A1","name":"X","role":"janitor"}]`))
	var loadErr *models.DataLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("LoadAdmins() error = %v, want *DataLoadError", err)
	}
	if loadErr.Field != "role" {
		t.Errorf("Field = %q, want role", loadErr.Field)
	}
}

func TestStoreAdminByID(t *testing.T) {
	store := NewStore(nil, []models.AdminProfile{{AdminID: "A1", Name: "P", Role: models.RolePrincipal}})
	if _, err := store.AdminByID("A1"); err != nil {
		t.Errorf("AdminByID(A1) error = %v", err)
	}
	if _, err := store.AdminByID("A9"); !errors.Is(err, models.ErrAdminNotFound) {
		t.Errorf("AdminByID(A9) error = %v, want ErrAdminNotFound", err)
	}
}

func TestSummarize(t *testing.T) {
	students, err := ParseStudents("inline", []byte(validStudents))
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	summary := Summarize(students)
	if summary.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", summary.RecordCount)
	}
	if got := strings.Join(summary.Values[models.FieldClass], ","); got != "A,B" {
		t.Errorf("classes = %s, want A,B", got)
	}
	if got := strings.Join(summary.Values[models.FieldRegion], ","); got != "North" {
		t.Errorf("regions = %s, want North", got)
	}
}
