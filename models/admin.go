package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wildcard is the source-file sentinel for "no restriction on this dimension".
const Wildcard = "all"

// Role is an administrator's position, which decides which scope dimensions apply
type Role string

const (
	RolePrincipal        Role = "principal"
	RoleRegionalManager  Role = "regional_manager"
	RoleGradeCoordinator Role = "grade_coordinator"
	RoleClassTeacher     Role = "class_teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePrincipal, RoleRegionalManager, RoleGradeCoordinator, RoleClassTeacher:
		return true
	}
	return false
}

// TextScope restricts a string dimension (region, class) or leaves it open.
type TextScope struct {
	value      string
	restricted bool
}

// AnyText is the unrestricted text scope.
func AnyText() TextScope { return TextScope{} }

// OnlyText restricts a text dimension to v.
func OnlyText(v string) TextScope { return TextScope{value: v, restricted: true} }

// Value returns the restricted value and true, or "" and false when unrestricted.
func (s TextScope) Value() (string, bool) { return s.value, s.restricted }

// Allows reports whether v is inside the scope. Comparison ignores case.
func (s TextScope) Allows(v string) bool {
	return !s.restricted || strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s.value))
}

func (s TextScope) String() string {
	if !s.restricted {
		return Wildcard
	}
	return s.value
}

func (s TextScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TextScope) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = AnyText()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("scope value must be a string or %q: %w", Wildcard, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Wildcard) {
		*s = AnyText()
		return nil
	}
	*s = OnlyText(raw)
	return nil
}

// GradeScope restricts the grade dimension or leaves it open.
type GradeScope struct {
	grade      int
	restricted bool
}

// AnyGrade is the unrestricted grade scope.
func AnyGrade() GradeScope { return GradeScope{} }

// OnlyGrade restricts the grade dimension to g.
func OnlyGrade(g int) GradeScope { return GradeScope{grade: g, restricted: true} }

// Value returns the restricted grade and true, or 0 and false when unrestricted.
func (s GradeScope) Value() (int, bool) { return s.grade, s.restricted }

// Allows reports whether grade g is inside the scope.
func (s GradeScope) Allows(g int) bool {
	return !s.restricted || s.grade == g
}

func (s GradeScope) String() string {
	if !s.restricted {
		return Wildcard
	}
	return strconv.Itoa(s.grade)
}

func (s GradeScope) MarshalJSON() ([]byte, error) {
	if !s.restricted {
		return json.Marshal(Wildcard)
	}
	return json.Marshal(s.grade)
}

// UnmarshalJSON accepts a number, a numeric string, "all" or null.
func (s *GradeScope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = AnyGrade()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = OnlyGrade(n)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("grade scope must be an integer or %q", Wildcard)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Wildcard) {
		*s = AnyGrade()
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("grade scope must be an integer or %q, got %q", Wildcard, raw)
	}
	*s = OnlyGrade(n)
	return nil
}

// AdminProfile is an administrator and the slice of students they may see.
// Missing scope keys decode as unrestricted.
type AdminProfile struct {
	AdminID string     `json:"admin_id" validate:"required"`
	Name    string     `json:"name" validate:"required"`
	Role    Role       `json:"role" validate:"required"`
	Region  TextScope  `json:"region"`
	Grade   GradeScope `json:"grade"`
	Class   TextScope  `json:"class"`
}
