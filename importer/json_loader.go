package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/nonsonwune/scopequery/models"
)

// LoadStudents reads and validates a JSON array of student records.
func LoadStudents(path string) ([]models.StudentRecord, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return ParseStudents(path, data)
}

// ParseStudents validates student records from raw JSON. source names the data in errors.
func ParseStudents(source string, data []byte) ([]models.StudentRecord, error) {
	items, err := decodeArray(source, data)
	if err != nil {
		return nil, err
	}
	students := make([]models.StudentRecord, 0, len(items))
	for i, item := range items {
		rec, err := parseStudent(source, i, item)
		if err != nil {
			return nil, err
		}
		students = append(students, rec)
	}
	if err := checkUniqueStudents(source, students); err != nil {
		return nil, err
	}
	log.Printf("Loaded %d student records from %s", len(students), source)
	return students, nil
}

// LoadAdmins reads and validates a JSON array of admin profiles.
func LoadAdmins(path string) ([]models.AdminProfile, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return ParseAdmins(path, data)
}

// ParseAdmins validates admin profiles from raw JSON.
func ParseAdmins(source string, data []byte) ([]models.AdminProfile, error) {
	items, err := decodeArray(source, data)
	if err != nil {
		return nil, err
	}
	admins := make([]models.AdminProfile, 0, len(items))
	for i, item := range items {
		admin, err := parseAdmin(source, i, item)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	if err := checkUniqueAdmins(source, admins); err != nil {
		return nil, err
	}
	log.Printf("Loaded %d admin profiles from %s", len(admins), source)
	return admins, nil
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.DataLoadError{Source: path, Index: -1, Err: fmt.Errorf("file not found: %w", err)}
		}
		return nil, &models.DataLoadError{Source: path, Index: -1, Err: err}
	}
	return data, nil
}
