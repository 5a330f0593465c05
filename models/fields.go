package models

import (
	"strconv"
	"strings"
)

// FieldKind describes how a record field is compared and coerced
type FieldKind string

const (
	KindText FieldKind = "text"
	KindInt  FieldKind = "integer"
	KindDate FieldKind = "date"
	KindEnum FieldKind = "enum"
)

// Field names, fixed by the record file contract.
const (
	FieldStudentID      = "student_id"
	FieldStudentName    = "student_name"
	FieldGrade          = "grade"
	FieldClass          = "class"
	FieldRegion         = "region"
	FieldQuizScore      = "quiz_score"
	FieldHomeworkStatus = "homework_status"
	FieldDate           = "date"
)

// Field is one queryable column of a StudentRecord.
type Field struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"type"`
	Description string    `json:"description,omitempty"`
	Values      []string  `json:"values,omitempty"` // allowed values for enum fields
}

// StudentFields lists every record field in export column order.
var StudentFields = []Field{
	{Name: FieldStudentID, Kind: KindText, Description: "unique student identifier"},
	{Name: FieldStudentName, Kind: KindText, Description: "student full name"},
	{Name: FieldGrade, Kind: KindInt, Description: "school grade number"},
	{Name: FieldClass, Kind: KindText, Description: "class/section label within a grade, e.g. A"},
	{Name: FieldRegion, Kind: KindText, Description: "school region"},
	{Name: FieldQuizScore, Kind: KindInt, Description: "latest quiz score, 0 to 100"},
	{Name: FieldHomeworkStatus, Kind: KindEnum, Description: "homework submission state",
		Values: []string{string(HomeworkSubmitted), string(HomeworkPending)}},
	{Name: FieldDate, Kind: KindDate, Description: "record date, YYYY-MM-DD"},
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// LookupField finds a field by name, ignoring case and surrounding space.
func LookupField(fields []Field, name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Text returns the field value formatted for display and export.
func (s StudentRecord) Text(field string) string {
	switch field {
	case FieldStudentID:
		return s.StudentID
	case FieldStudentName:
		return s.StudentName
	case FieldGrade:
		return strconv.Itoa(s.Grade)
	case FieldClass:
		return s.Class
	case FieldRegion:
		return s.Region
	case FieldQuizScore:
		return strconv.Itoa(s.QuizScore)
	case FieldHomeworkStatus:
		return string(s.HomeworkStatus)
	case FieldDate:
		return s.Date.String()
	}
	return ""
}

// Int returns the value of an integer field.
func (s StudentRecord) Int(field string) (int, bool) {
	switch field {
	case FieldGrade:
		return s.Grade, true
	case FieldQuizScore:
		return s.QuizScore, true
	}
	return 0, false
}

// DataSummary is what a translator sees of the data: distinct values, never rows.
type DataSummary struct {
	RecordCount int                 `json:"recordCount"`
	Values      map[string][]string `json:"values"`
}
