package federation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is a local user account. Accounts are created on first federated
// login and are never deleted by this subsystem.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	FirstName      string     `bun:"first_name" json:"first_name"`
	LastName       string     `bun:"last_name" json:"last_name"`
	ProfilePicture string     `bun:"profile_picture" json:"profile_picture,omitempty"`
	LastLoginAt    *time.Time `bun:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// FullName joins the non-empty name parts.
func (a *Account) FullName() string {
	parts := make([]string, 0, 2)
	if a.FirstName != "" {
		parts = append(parts, a.FirstName)
	}
	if a.LastName != "" {
		parts = append(parts, a.LastName)
	}
	return strings.Join(parts, " ")
}

// IdentityLink ties a provider identity to exactly one account. The pair
// (provider_name, provider_subject_id) is unique across the table.
type IdentityLink struct {
	bun.BaseModel `bun:"table:identity_links,alias:lnk"`

	ID                int64      `bun:"id,pk,autoincrement" json:"id"`
	AccountID         int64      `bun:"account_id,notnull" json:"account_id"`
	ProviderName      string     `bun:"provider_name,notnull" json:"provider_name"`
	ProviderSubjectID string     `bun:"provider_subject_id,notnull" json:"provider_subject_id"`
	ProviderEmail     string     `bun:"provider_email" json:"provider_email,omitempty"`
	ProviderUsername  string     `bun:"provider_username" json:"provider_username,omitempty"`
	IsPrimary         bool       `bun:"is_primary,notnull" json:"is_primary"`
	LinkedAt          time.Time  `bun:"linked_at,nullzero,default:current_timestamp" json:"linked_at"`
	LastUsedAt        *time.Time `bun:"last_used_at" json:"last_used_at,omitempty"`

	Account *Account `bun:"rel:belongs-to,join:account_id=id" json:"-"`
}

// MetricEvent is a persisted client or audit event.
type MetricEvent struct {
	bun.BaseModel `bun:"table:metric_events,alias:evt"`

	ID        uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id"`
	EventType string         `bun:"event_type,notnull" json:"event_type"`
	EventTime time.Time      `bun:"event_time,nullzero,default:current_timestamp" json:"event_time"`
	AccountID *int64         `bun:"account_id" json:"account_id,omitempty"`
	Metadata  map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
}
