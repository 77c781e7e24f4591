package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

type User struct {
	ID            uuid.UUID  `gorm:"primaryKey"                json:"id"`
	NIK           string     `gorm:"size:16;index"             json:"nik,omitempty"`
	Name          string     `gorm:"size:255;not null"         json:"name"`
	Email         string     `gorm:"size:255;index"            json:"email,omitempty"`
	Phone         string     `gorm:"size:32;index"             json:"phone,omitempty"`
	Role          string     `gorm:"size:16;not null"          json:"role"`
	PasswordHash  string     `gorm:""                          json:"-"`
	IsActive      bool       `gorm:"default:true"              json:"is_active"`
	LoginAttempts int        `gorm:"default:0"                 json:"-"`
	LockedUntil   *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// AuthSession is one row per successful login. Its ID is minted by the
// caller before insert and embedded as the session_id claim of both tokens
// issued for that login.
type AuthSession struct {
	ID               uuid.UUID  `gorm:"primaryKey"           json:"id"`
	UserID           uuid.UUID  `gorm:"index;not null"       json:"user_id"`
	TokenHash        string     `gorm:"size:64;not null"     json:"-"`
	RefreshTokenHash string     `gorm:"size:64;uniqueIndex"  json:"-"`
	ExpiresAt        time.Time  `gorm:"not null"             json:"expires_at"`
	IPAddress        string     `gorm:"size:64"              json:"ip_address"`
	UserAgent        string     `gorm:"size:512"             json:"user_agent"`
	IsActive         bool       `gorm:"default:true;index"   json:"is_active"`
	LastUsed         *time.Time `json:"last_used,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

type Test struct {
	ID              uuid.UUID `gorm:"primaryKey"        json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Category        string    `gorm:"size:64;index"     json:"category"`
	ModuleType      string    `gorm:"size:64;index"     json:"module_type"`
	DurationMinutes int       `gorm:"not null"          json:"duration_minutes"`
	TotalQuestions  int       `json:"total_questions"`
	IsActive        bool      `gorm:"default:true"      json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Test session lifecycle. Distinct from AuthSession: a TestSession is the
// psychometric administration window participants are invited to.
const (
	SessionStatusDraft     = "draft"
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
	SessionStatusExpired   = "expired"
)

type TestSession struct {
	ID              uuid.UUID `gorm:"primaryKey"              json:"id"`
	SessionName     string    `gorm:"size:255;not null"       json:"session_name"`
	SessionCode     string    `gorm:"size:32;uniqueIndex"     json:"session_code"`
	StartTime       time.Time `gorm:"not null;index"          json:"start_time"`
	EndTime         time.Time `gorm:"not null;index"          json:"end_time"`
	Status          string    `gorm:"size:16;default:draft"   json:"status"`
	TargetPosition  string    `gorm:"size:128"                json:"target_position"`
	MaxParticipants int       `json:"max_participants"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *TestSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

const (
	ParticipantStatusInvited    = "invited"
	ParticipantStatusRegistered = "registered"
	ParticipantStatusAttended   = "attended"
	ParticipantStatusCompleted  = "completed"
)

type SessionParticipant struct {
	ID              uuid.UUID `gorm:"primaryKey"                                json:"id"`
	SessionID       uuid.UUID `gorm:"uniqueIndex:idx_session_phone;not null"    json:"session_id"`
	UserID          uuid.UUID `gorm:"index;not null"                            json:"user_id"`
	NIK             string    `gorm:"size:16"                                   json:"nik,omitempty"`
	Name            string    `gorm:"size:255;not null"                         json:"name"`
	Phone           string    `gorm:"size:32;uniqueIndex:idx_session_phone"     json:"phone"`
	Status          string    `gorm:"size:16;default:invited"                   json:"status"`
	UniqueLinkToken string    `gorm:"size:64;uniqueIndex"                       json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Session TestSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (p *SessionParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
