// Package child owns the child health record and its unique identifier.
package child

import "time"

// Record is a child health record. Records are never hard-deleted; Active
// false marks a retired record whose identifier stays reserved so history can
// never collide with a live one.
type Record struct {
	ID            int64
	Name          string
	BirthDate     time.Time
	Gender        string
	WeightAtBirth *float64
	HeightAtBirth *float64
	BloodType     *string
	Notes         string
	GuardianID    int64
	Identifier    string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AgeInDays reports the child's age at the given instant.
func (r Record) AgeInDays(now time.Time) int {
	days := int(now.Sub(r.BirthDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AgeInMonths approximates age as 30-day months, matching how the rest of the
// system (growth charts, vaccination schedules) buckets age.
func (r Record) AgeInMonths(now time.Time) int {
	return r.AgeInDays(now) / 30
}

// WithGuardian joins a record with the owning guardian's contact details.
// Disclosure is privacy-gated: only the owning guardian or an administrator
// may see it.
type WithGuardian struct {
	Record
	GuardianName  string
	GuardianEmail string
	GuardianPhone string
}

// AdminListing is the flattened row the admin management screen shows.
type AdminListing struct {
	ChildID       int64
	Name          string
	BirthDate     time.Time
	Gender        string
	Identifier    string
	GuardianID    int64
	GuardianName  string
	GuardianEmail string
	CreatedAt     time.Time
}
