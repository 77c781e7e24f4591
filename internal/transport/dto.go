package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

type AdminLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ParticipantLoginRequest struct {
	Phone string `json:"phone"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	AllDevices bool `json:"all_devices"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type LoginResponse struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type SessionInfo struct {
	ID        uuid.UUID  `json:"id"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsCurrent bool       `json:"is_current"`
}

type CreateTestRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	ModuleType      string `json:"module_type"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalQuestions  int    `json:"total_questions"`
}

type PatchTestRequest struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	ModuleType      *string `json:"module_type"`
	DurationMinutes *int    `json:"duration_minutes"`
	TotalQuestions  *int    `json:"total_questions"`
	IsActive        *bool   `json:"is_active"`
}

type CreateSessionRequest struct {
	SessionName     string    `json:"session_name"`
	SessionCode     string    `json:"session_code"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TargetPosition  string    `json:"target_position"`
	MaxParticipants int       `json:"max_participants"`
}

type PatchSessionRequest struct {
	SessionName     *string    `json:"session_name"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	TargetPosition  *string    `json:"target_position"`
	MaxParticipants *int       `json:"max_participants"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SweepResult struct {
	Activated int `json:"activated"`
	Expired   int `json:"expired"`
}

type InviteParticipantRequest struct {
	NIK   string `json:"nik"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ParticipantResponse struct {
	*models.SessionParticipant
	AccessLink string `json:"access_link,omitempty"`
}

// ParticipationInfo is one entry of a user's own participation list: the
// participant row plus the session it belongs to.
type ParticipationInfo struct {
	*models.SessionParticipant
	Session models.TestSession `json:"session"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPageMeta(page, size int, total int64) PageMeta {
	return PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
	}
}
