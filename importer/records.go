package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nonsonwune/scopequery/models"
)

var validate = validator.New()

// studentRow mirrors the record file. Pointers let us tell a missing key from a zero value.
type studentRow struct {
	StudentID      *string          `json:"student_id" validate:"required"`
	StudentName    *string          `json:"student_name" validate:"required"`
	Grade          *flexInt         `json:"grade" validate:"required"`
	Class          *string          `json:"class" validate:"required"`
	Region         *string          `json:"region" validate:"required"`
	QuizScore      *flexInt         `json:"quiz_score" validate:"required"`
	HomeworkStatus *json.RawMessage `json:"homework_status" validate:"required"`
	Date           *json.RawMessage `json:"date" validate:"required"`
}

type adminRow struct {
	AdminID *string          `json:"admin_id" validate:"required"`
	Name    *string          `json:"name" validate:"required"`
	Role    *string          `json:"role" validate:"required"`
	Region  *json.RawMessage `json:"region"`
	Grade   *json.RawMessage `json:"grade"`
	Class   *json.RawMessage `json:"class"`
}

// flexInt accepts 8, 8.0 and "8". Source exports are not consistent about it.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("expected an integer, got %s", data)
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		*f = flexInt(i)
		return nil
	}
	fl, err := n.Float64()
	if err != nil || fl != float64(int(fl)) {
		return fmt.Errorf("expected an integer, got %s", data)
	}
	*f = flexInt(int(fl))
	return nil
}

// decodeArray splits a JSON document into its top-level objects.
func decodeArray(source string, data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &models.DataLoadError{Source: source, Index: -1,
			Err: fmt.Errorf("%s should be a JSON array of objects: %w", source, err)}
	}
	return items, nil
}

// parseStudent converts and validates one student object.
func parseStudent(source string, index int, item json.RawMessage) (models.StudentRecord, error) {
	var row studentRow
	if err := json.Unmarshal(item, &row); err != nil {
		return models.StudentRecord{}, &models.DataLoadError{Source: source, Index: index, Err: err}
	}
	if err := validate.Struct(row); err != nil {
		return models.StudentRecord{}, fieldError(source, index, err)
	}

	rec := models.StudentRecord{
		StudentID:   strings.TrimSpace(*row.StudentID),
		StudentName: strings.TrimSpace(*row.StudentName),
		Grade:       int(*row.Grade),
		Class:       strings.TrimSpace(*row.Class),
		Region:      strings.TrimSpace(*row.Region),
		QuizScore:   int(*row.QuizScore),
	}
	if err := json.Unmarshal(*row.HomeworkStatus, &rec.HomeworkStatus); err != nil {
		return models.StudentRecord{}, &models.DataLoadError{Source: source, Index: index, Field: models.FieldHomeworkStatus, Err: err}
	}
	if err := json.Unmarshal(*row.Date, &rec.Date); err != nil {
		return models.StudentRecord{}, &models.DataLoadError{Source: source, Index: index, Field: models.FieldDate, Err: err}
	}
	if err := validate.Struct(rec); err != nil {
		return models.StudentRecord{}, fieldError(source, index, err)
	}
	return rec, nil
}

// parseAdmin converts and validates one admin object.
func parseAdmin(source string, index int, item json.RawMessage) (models.AdminProfile, error) {
	var row adminRow
	if err := json.Unmarshal(item, &row); err != nil {
		return models.AdminProfile{}, &models.DataLoadError{Source: source, Index: index, Err: err}
	}
	if err := validate.Struct(row); err != nil {
		return models.AdminProfile{}, fieldError(source, index, err)
	}

	admin := models.AdminProfile{
		AdminID: strings.TrimSpace(*row.AdminID),
		Name:    strings.TrimSpace(*row.Name),
		Role:    models.Role(strings.ToLower(strings.TrimSpace(*row.Role))),
	}
	if !admin.Role.Valid() {
		return models.AdminProfile{}, &models.DataLoadError{Source: source, Index: index, Field: "role",
			Err: fmt.Errorf("unknown role %q", *row.Role)}
	}
	if row.Region != nil {
		if err := json.Unmarshal(*row.Region, &admin.Region); err != nil {
			return models.AdminProfile{}, &models.DataLoadError{Source: source, Index: index, Field: "region", Err: err}
		}
	}
	if row.Grade != nil {
		if err := json.Unmarshal(*row.Grade, &admin.Grade); err != nil {
			return models.AdminProfile{}, &models.DataLoadError{Source: source, Index: index, Field: "grade", Err: err}
		}
	}
	if row.Class != nil {
		if err := json.Unmarshal(*row.Class, &admin.Class); err != nil {
			return models.AdminProfile{}, &models.DataLoadError{Source: source, Index: index, Field: "class", Err: err}
		}
	}
	if err := validate.Struct(admin); err != nil {
		return models.AdminProfile{}, fieldError(source, index, err)
	}
	return admin, nil
}

// fieldError turns the first validator failure into a DataLoadError naming the JSON field.
func fieldError(source string, index int, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &models.DataLoadError{Source: source, Index: index, Field: jsonName(fe.Field()),
			Err: fmt.Errorf("failed %q validation", fe.Tag())}
	}
	return &models.DataLoadError{Source: source, Index: index, Err: err}
}

var goToJSON = map[string]string{
	"StudentID":      models.FieldStudentID,
	"StudentName":    models.FieldStudentName,
	"Grade":          models.FieldGrade,
	"Class":          models.FieldClass,
	"Region":         models.FieldRegion,
	"QuizScore":      models.FieldQuizScore,
	"HomeworkStatus": models.FieldHomeworkStatus,
	"Date":           models.FieldDate,
	"AdminID":        "admin_id",
	"Name":           "name",
	"Role":           "role",
}

func jsonName(goField string) string {
	if name, ok := goToJSON[goField]; ok {
		return name
	}
	return goField
}

// checkUniqueStudents rejects duplicate student ids.
func checkUniqueStudents(source string, students []models.StudentRecord) error {
	seen := make(map[string]int, len(students))
	for i, s := range students {
		if first, ok := seen[s.StudentID]; ok {
			return &models.DataLoadError{Source: source, Index: i, Field: models.FieldStudentID,
				Err: fmt.Errorf("duplicate id %q (first at entry %d)", s.StudentID, first)}
		}
		seen[s.StudentID] = i
	}
	return nil
}

func checkUniqueAdmins(source string, admins []models.AdminProfile) error {
	seen := make(map[string]int, len(admins))
	for i, a := range admins {
		if first, ok := seen[a.AdminID]; ok {
			return &models.DataLoadError{Source: source, Index: i, Field: "admin_id",
				Err: fmt.Errorf("duplicate id %q (first at entry %d)", a.AdminID, first)}
		}
		seen[a.AdminID] = i
	}
	return nil
}
