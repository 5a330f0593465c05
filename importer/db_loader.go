package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"github.com/nonsonwune/scopequery/models"
)

const (
	studentsTable = "students"
	adminsTable   = "admins"
)

const studentsQuery = `
	SELECT student_id, student_name, grade, class, region, quiz_score, homework_status,
	       to_char(date, 'YYYY-MM-DD')
	FROM students
	ORDER BY student_id`

const adminsQuery = `
	SELECT admin_id, name, role, region, grade, class
	FROM admins
	ORDER BY admin_id`

// LoadStudentsFromDB reads the students table. Rows go through the same validation as
// the JSON files so both sources produce identical records.
func LoadStudentsFromDB(ctx context.Context, db *sql.DB) ([]models.StudentRecord, error) {
	rows, err := db.QueryContext(ctx, studentsQuery)
	if err != nil {
		return nil, &models.DataLoadError{Source: studentsTable, Index: -1, Err: err}
	}
	defer rows.Close()

	var items []json.RawMessage
	for rows.Next() {
		var id, name, class, region, status, date sql.NullString
		var grade, score sql.NullInt64
		if err := rows.Scan(&id, &name, &grade, &class, &region, &score, &status, &date); err != nil {
			return nil, &models.DataLoadError{Source: studentsTable, Index: len(items), Err: err}
		}
		item, err := json.Marshal(map[string]interface{}{
			models.FieldStudentID:      nullString(id),
			models.FieldStudentName:    nullString(name),
			models.FieldGrade:          nullInt(grade),
			models.FieldClass:          nullString(class),
			models.FieldRegion:         nullString(region),
			models.FieldQuizScore:      nullInt(score),
			models.FieldHomeworkStatus: nullString(status),
			models.FieldDate:           nullString(date),
		})
		if err != nil {
			return nil, &models.DataLoadError{Source: studentsTable, Index: len(items), Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.DataLoadError{Source: studentsTable, Index: -1, Err: err}
	}

	students := make([]models.StudentRecord, 0, len(items))
	for i, item := range items {
		rec, err := parseStudent(studentsTable, i, item)
		if err != nil {
			return nil, err
		}
		students = append(students, rec)
	}
	if err := checkUniqueStudents(studentsTable, students); err != nil {
		return nil, err
	}
	log.Printf("Loaded %d student records from table %s", len(students), studentsTable)
	return students, nil
}

// LoadAdminsFromDB reads the admins table. region, grade and class are text columns
// holding a value or "all".
func LoadAdminsFromDB(ctx context.Context, db *sql.DB) ([]models.AdminProfile, error) {
	rows, err := db.QueryContext(ctx, adminsQuery)
	if err != nil {
		return nil, &models.DataLoadError{Source: adminsTable, Index: -1, Err: err}
	}
	defer rows.Close()

	var admins []models.AdminProfile
	for rows.Next() {
		var id, name, role, region, grade, class sql.NullString
		if err := rows.Scan(&id, &name, &role, &region, &grade, &class); err != nil {
			return nil, &models.DataLoadError{Source: adminsTable, Index: len(admins), Err: err}
		}
		item, err := json.Marshal(map[string]interface{}{
			"admin_id": nullString(id),
			"name":     nullString(name),
			"role":     nullString(role),
			"region":   nullString(region),
			"grade":    nullString(grade),
			"class":    nullString(class),
		})
		if err != nil {
			return nil, &models.DataLoadError{Source: adminsTable, Index: len(admins), Err: err}
		}
		admin, err := parseAdmin(adminsTable, len(admins), item)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.DataLoadError{Source: adminsTable, Index: -1, Err: err}
	}
	if err := checkUniqueAdmins(adminsTable, admins); err != nil {
		return nil, err
	}
	log.Printf("Loaded %d admin profiles from table %s", len(admins), adminsTable)
	return admins, nil
}

func nullString(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullInt(i sql.NullInt64) interface{} {
	if !i.Valid {
		return nil
	}
	return i.Int64
}

// Tables returns the table names the database source reads.
func Tables() []string {
	return []string{studentsTable, adminsTable}
}

