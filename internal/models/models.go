package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Occupant is a household member. Occupants are also the application's
// users: the OIDC subject and role gate access, while the identity pair
// keeps two occupants with the same display name distinct for the
// scheduling core.
type Occupant struct {
	ID          string
	OIDCSubject string
	Email       string
	Name        string
	AvatarURL   string
	Role        Role

	IdentityName string
	IdentitySeq  uint64

	OnboardingDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chore is a catalog entry. The weight fields are parameters for the
// external assignment engine; colocatron stores and serves them but never
// computes weights itself.
type Chore struct {
	ID          string
	Name        string
	Description string

	IdentityName string
	IdentitySeq  uint64

	Proportional      bool
	MinProportion     float64
	MinOccupants      int
	WeightPerOccupant *float64
	TotalWeight       *float64
	EachNDays         *int

	CreatedByOccupantID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PresenceState is the persisted form of an occupant's presence ledger.
// AbsenceDays only holds days at or after the watermark; earlier absences
// are summarized by PreAbsences.
type PresenceState struct {
	OccupantID  string
	Watermark   time.Time
	PreAbsences int
	AbsenceDays []time.Time
}

// ChoreRecordState is the persisted form of one chore record: the week set
// plus the derived and snapshot last-performed days. A nil day means
// "never done" on that side.
type ChoreRecordState struct {
	OccupantID  string
	ChoreID     string
	BeginMonday time.Time
	WeekMondays []time.Time
	OldLastTime *time.Time
	LastTime    *time.Time
}

// AbsenceSource is a shared calendar whose all-day events are imported as
// absence days for one occupant.
type AbsenceSource struct {
	ID            string
	OccupantID    string
	Name          string
	URL           string
	CachedData    *string
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

// APIToken authorizes the external assignment engine to read derived
// scheduling data.
type APIToken struct {
	ID                  string
	Name                string
	TokenHash           string
	CreatedByOccupantID string
	ExpiresAt           *time.Time
	CreatedAt           time.Time
}
