package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type setupStatusResponse struct {
	SetupRequired bool `json:"setup_required"`
}

type setupRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	ChangeToken string `json:"change_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
	Confirm     string `json:"confirm"      validate:"required"`
}

type principalResponse struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	HomeUnit string `json:"home_unit"`
}

type authResponse struct {
	State         string             `json:"state"`
	Reason        string             `json:"reason,omitempty"`
	Message       string             `json:"message,omitempty"`
	Justification string             `json:"justification,omitempty"`
	SessionToken  string             `json:"session_token,omitempty"`
	ChangeToken   string             `json:"change_token,omitempty"`
	Principal     *principalResponse `json:"principal,omitempty"`
}

// --- Records ---

type createRecordRequest struct {
	Type        string    `json:"type"         validate:"required,oneof=escort internment external_operation"`
	SubjectName string    `json:"subject_name" validate:"required_unless=Type external_operation"`
	FileNumber  string    `json:"file_number"  validate:"required_unless=Type external_operation"`
	Destination string    `json:"destination"  validate:"required"`
	Room        string    `json:"room"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Risk        string    `json:"risk"         validate:"omitempty,oneof=low medium high"`
	Notes       string    `json:"notes"`
	Context     string    `json:"context"`
}

type updateRecordRequest struct {
	Type        *string    `json:"type"         validate:"omitempty,oneof=escort internment external_operation"`
	SubjectName *string    `json:"subject_name"`
	FileNumber  *string    `json:"file_number"`
	Destination *string    `json:"destination"`
	Room        *string    `json:"room"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Risk        *string    `json:"risk"         validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status"       validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Notes       *string    `json:"notes"`
}

type completeRecordRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

type recordResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	SubjectName  string     `json:"subject_name"`
	FileNumber   string     `json:"file_number"`
	Destination  string     `json:"destination"`
	Room         string     `json:"room,omitempty"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	Risk         string     `json:"risk"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	UnitOfOrigin string     `json:"unit_of_origin"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type recordListResponse struct {
	Context string           `json:"context"`
	Records []recordResponse `json:"records"`
}

type summaryResponse struct {
	Context         string `json:"context"`
	ActiveEscorts   int    `json:"active_escorts"`
	Interned        int    `json:"interned"`
	HighRiskOpen    int    `json:"high_risk_open"`
	Closed          int    `json:"closed"`
	PendingRequests int    `json:"pending_requests"`
}

// --- Accounts ---

type createAccountRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role"      validate:"omitempty,oneof=master global_admin unit_admin operator"`
	Unit     string `json:"unit"`
}

type updateAccountRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role" validate:"omitempty,oneof=master global_admin unit_admin operator"`
	Unit     *string `json:"unit"`
}

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

type decisionRequest struct {
	Decision      string `json:"decision"      validate:"required,oneof=approve deny"`
	Justification string `json:"justification" validate:"required"`
}

type accountResponse struct {
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Role          string     `json:"role"`
	Unit          string     `json:"unit"`
	Status        string     `json:"status"`
	IsBlocked     bool       `json:"is_blocked"`
	IsTemporary   bool       `json:"is_temporary"`
	Justification string     `json:"justification,omitempty"`
	RequestedBy   string     `json:"requested_by,omitempty"`
	RequestDate   time.Time  `json:"request_date"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
}

// --- Administration ---

type auditEntryResponse struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	Unit       string    `json:"unit"`
	Category   string    `json:"category"`
}

type presenceResponse struct {
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     string     `json:"role"`
	Unit     string     `json:"unit"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
	Online   bool       `json:"online"`
}

type snapshotResponse struct {
	GeneratedAt time.Time            `json:"generated_at"`
	GeneratedBy string               `json:"generated_by"`
	Accounts    []accountResponse    `json:"accounts"`
	Records     []recordResponse     `json:"records"`
	AuditTrail  []auditEntryResponse `json:"audit_trail"`
}
