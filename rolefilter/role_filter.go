// Package rolefilter restricts the student record set to what an admin may see.
package rolefilter

import (
	"fmt"
	"strings"

	"github.com/nonsonwune/scopequery/models"
)

// Scope returns the records visible to admin, in input order.
//
// principal sees everything. regional_manager is limited by region, grade_coordinator
// by region and grade, class_teacher by region, grade and class. An unrestricted
// dimension ("all") places no constraint, so a regional_manager with region "all" has
// full access. Unknown roles see nothing.
func Scope(records []models.StudentRecord, admin models.AdminProfile) []models.StudentRecord {
	match := matcher(admin)
	if match == nil {
		return []models.StudentRecord{}
	}

	scoped := make([]models.StudentRecord, 0, len(records))
	for _, r := range records {
		if match(r) {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// matcher returns the per-record predicate for admin's role, or nil for an unknown role.
func matcher(admin models.AdminProfile) func(models.StudentRecord) bool {
	switch admin.Role {
	case models.RolePrincipal:
		return func(models.StudentRecord) bool { return true }
	case models.RoleRegionalManager:
		return func(r models.StudentRecord) bool {
			return admin.Region.Allows(r.Region)
		}
	case models.RoleGradeCoordinator:
		return func(r models.StudentRecord) bool {
			return admin.Region.Allows(r.Region) && admin.Grade.Allows(r.Grade)
		}
	case models.RoleClassTeacher:
		return func(r models.StudentRecord) bool {
			return admin.Region.Allows(r.Region) && admin.Grade.Allows(r.Grade) && admin.Class.Allows(r.Class)
		}
	}
	return nil
}

// Describe renders the admin's access scope for display.
func Describe(admin models.AdminProfile) string {
	var parts []string

	enforceGrade := admin.Role == models.RoleGradeCoordinator || admin.Role == models.RoleClassTeacher
	enforceClass := admin.Role == models.RoleClassTeacher
	enforceRegion := enforceGrade || admin.Role == models.RoleRegionalManager

	if g, ok := admin.Grade.Value(); ok && enforceGrade {
		parts = append(parts, fmt.Sprintf("Grade %d", g))
	}
	if c, ok := admin.Class.Value(); ok && enforceClass {
		parts = append(parts, "Class "+c)
	}
	if r, ok := admin.Region.Value(); ok && enforceRegion {
		parts = append(parts, r+" Region")
	}

	if len(parts) == 0 {
		if !admin.Role.Valid() {
			return "No access"
		}
		return "All data"
	}
	return strings.Join(parts, " • ")
}

// ValidateAccess checks an explicitly requested grade or class against the admin's scope.
// A zero grade or empty class means "not requested".
func ValidateAccess(admin models.AdminProfile, grade int, class string) error {
	if admin.Role == models.RoleGradeCoordinator || admin.Role == models.RoleClassTeacher {
		if g, ok := admin.Grade.Value(); ok && grade != 0 && g != grade {
			return fmt.Errorf("%w: you can only access Grade %d data", models.ErrAccessDenied, g)
		}
	}
	if admin.Role == models.RoleClassTeacher {
		if c, ok := admin.Class.Value(); ok && class != "" && !strings.EqualFold(c, class) {
			return fmt.Errorf("%w: you can only access Class %s data", models.ErrAccessDenied, c)
		}
	}
	return nil
}

// Stats summarizes the admin's visible records.
func Stats(records []models.StudentRecord, admin models.AdminProfile) models.ScoreStats {
	return models.ComputeStats(Scope(records, admin))
}
