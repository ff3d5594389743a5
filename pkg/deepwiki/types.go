package deepwiki

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role controls what a user may do. Roles are strictly ordered:
// viewer < editor < admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// IsValid returns true if the Role is one of the defined values.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	rank := map[Role]int{RoleViewer: 0, RoleEditor: 1, RoleAdmin: 2}
	return rank[r] >= rank[required]
}

// User is an account that can authenticate against the wiki.
// PasswordHash is never serialized to API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Wiki is a collection of pages under a unique slug.
type Wiki struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Page is the current head of a document within a wiki.
// Version counts saved revisions, starting at 1 for the initial save.
type Page struct {
	ID        uuid.UUID `json:"id"`
	WikiID    uuid.UUID `json:"wiki_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Version   int       `json:"version"`
	UpdatedBy uuid.UUID `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision is an immutable historical version of a page.
type Revision struct {
	ID          uuid.UUID `json:"id"`
	PageID      uuid.UUID `json:"page_id"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Checksum    string    `json:"checksum"`
	ChecksumRaw string    `json:"checksum_raw"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload records a file stored in the object store.
type Upload struct {
	ID          uuid.UUID `json:"id"`
	WikiID      uuid.UUID `json:"wiki_id"`
	ObjectKey   string    `json:"object_key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Setting is a key/value pair managed through the admin panel.
// Encrypted settings are stored AES-GCM sealed and decrypted on read.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Encrypted bool      `json:"encrypted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	WikiSlug string  `json:"wiki_slug"`
	PageSlug string  `json:"page_slug"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Rank     float32 `json:"rank"`
}

// AuthMethod represents the type of database authentication to use.
type AuthMethod int

const (
	AuthMethodStandard AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                     // AWS IAM Database Authentication
	AuthMethodGoogleIAM                  // Google Cloud SQL IAM
	AuthMethodAzureEntraID               // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ConnectionConfig represents parsed database connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	ConnectTimeout   time.Duration
	AppName          string
	AdditionalParams map[string]string

	// AWS IAM authentication parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance in project:region:instance form
	// (used when AuthMethod is AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}
