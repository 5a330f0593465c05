package importer

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/nonsonwune/scopequery/models"
)

// Source produces the record set. JSON files and the database both implement it.
type Source interface {
	Students(ctx context.Context) ([]models.StudentRecord, error)
	Admins(ctx context.Context) ([]models.AdminProfile, error)
}

// FileSource reads the students and admins JSON files.
type FileSource struct {
	StudentsPath string
	AdminsPath   string
}

func (f FileSource) Students(context.Context) ([]models.StudentRecord, error) {
	return LoadStudents(f.StudentsPath)
}

func (f FileSource) Admins(context.Context) ([]models.AdminProfile, error) {
	return LoadAdmins(f.AdminsPath)
}

// DBSource reads the students and admins tables.
type DBSource struct {
	DB *sql.DB
}

func (d DBSource) Students(ctx context.Context) ([]models.StudentRecord, error) {
	return LoadStudentsFromDB(ctx, d.DB)
}

func (d DBSource) Admins(ctx context.Context) ([]models.AdminProfile, error) {
	return LoadAdminsFromDB(ctx, d.DB)
}

// Store is the in-memory record set. It is never mutated after Load, so it can be
// shared between queries without locking.
type Store struct {
	students []models.StudentRecord
	admins   []models.AdminProfile
	byID     map[string]int
}

// Load reads both collections from src.
func Load(ctx context.Context, src Source) (*Store, error) {
	students, err := src.Students(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := src.Admins(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(students, admins), nil
}

// NewStore builds a store from already validated records.
func NewStore(students []models.StudentRecord, admins []models.AdminProfile) *Store {
	byID := make(map[string]int, len(admins))
	for i, a := range admins {
		byID[a.AdminID] = i
	}
	return &Store{students: students, admins: admins, byID: byID}
}

// Students returns the full record set. Callers must not modify it.
func (s *Store) Students() []models.StudentRecord {
	return s.students
}

// Admins returns all admin profiles in source order.
func (s *Store) Admins() []models.AdminProfile {
	return s.admins
}

// AdminByID looks up an admin profile.
func (s *Store) AdminByID(id string) (models.AdminProfile, error) {
	i, ok := s.byID[id]
	if !ok {
		return models.AdminProfile{}, fmt.Errorf("%w: %s", models.ErrAdminNotFound, id)
	}
	return s.admins[i], nil
}

// Fields returns the queryable record fields.
func (s *Store) Fields() []models.Field {
	return models.StudentFields
}

// Summarize collects the distinct region, grade and class values of records.
func Summarize(records []models.StudentRecord) models.DataSummary {
	sets := map[string]map[string]bool{
		models.FieldRegion: {},
		models.FieldGrade:  {},
		models.FieldClass:  {},
	}
	for _, r := range records {
		sets[models.FieldRegion][r.Region] = true
		sets[models.FieldGrade][strconv.Itoa(r.Grade)] = true
		sets[models.FieldClass][r.Class] = true
	}

	summary := models.DataSummary{RecordCount: len(records), Values: make(map[string][]string, len(sets))}
	for field, set := range sets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		if field == models.FieldGrade {
			sort.Slice(vals, func(i, j int) bool {
				a, _ := strconv.Atoi(vals[i])
				b, _ := strconv.Atoi(vals[j])
				return a < b
			})
		} else {
			sort.Strings(vals)
		}
		summary.Values[field] = vals
	}
	return summary
}
