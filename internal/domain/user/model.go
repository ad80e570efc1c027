// Package user implements account management: the persisted user
// entity, the default administrator seed, admin CRUD, and self-service
// profile and settings updates.
package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the system.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
	RoleClerk  = "clerk"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleClerk:
		return true
	}
	return false
}

// NotificationSettings are per-user notification preferences.
type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	PatientUpdates     bool `json:"patientUpdates"`
	SystemAlerts       bool `json:"systemAlerts"`
}

// SecuritySettings are per-user security preferences.
type SecuritySettings struct {
	TwoFactorAuth   bool   `json:"twoFactorAuth"`
	SessionTimeout  string `json:"sessionTimeout"`
	PasswordExpiry  string `json:"passwordExpiry"`
}

// SystemSettings are per-user display preferences.
type SystemSettings struct {
	Theme      string `json:"theme"`
	Language   string `json:"language"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"dateFormat"`
}

// Settings groups all user preferences.
type Settings struct {
	Notifications NotificationSettings `json:"notifications"`
	Security      SecuritySettings     `json:"security"`
	System        SystemSettings       `json:"system"`
}

// DefaultSettings returns the preferences assigned to new accounts.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{
			EmailNotifications: true,
			PushNotifications:  true,
			PatientUpdates:     true,
			SystemAlerts:       false,
		},
		Security: SecuritySettings{
			TwoFactorAuth:  false,
			SessionTimeout: "30",
			PasswordExpiry: "90",
		},
		System: SystemSettings{
			Theme:      "light",
			Language:   "en",
			Timezone:   "UTC",
			DateFormat: "MM/dd/yyyy",
		},
	}
}

// User is a staff account. PasswordHash is persisted but stripped from
// API responses via Public.
type User struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	PasswordHash        string   `json:"passwordHash,omitempty"`
	Role                string   `json:"role"`
	Phone               string   `json:"phone"`
	Department          string   `json:"department"`
	IsTemporaryPassword bool     `json:"isTemporaryPassword"`
	ForcePasswordChange bool     `json:"forcePasswordChange"`
	Settings            Settings `json:"settings"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// New builds a user with defaults applied, assigning identity and
// timestamps.
func New(name, email, passwordHash, role string) *User {
	if role == "" {
		role = RoleClerk
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Settings:     DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Public returns a copy safe for API responses: the password hash is
// never serialized.
func (u *User) Public() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}

// Touch bumps updatedAt.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// CreatedTime parses createdAt, returning the zero time when unparseable.
func (u *User) CreatedTime() time.Time {
	t, _ := time.Parse(time.RFC3339, u.CreatedAt)
	return t
}

// MergeSettings overlays patch groups onto the existing settings. The
// merge is shallow at the group level: a group present in the patch
// replaces that group, absent groups are untouched.
func (u *User) MergeSettings(patch map[string]interface{}) {
	merged := map[string]interface{}{}
	data, _ := json.Marshal(u.Settings)
	_ = json.Unmarshal(data, &merged)
	for k, v := range patch {
		merged[k] = v
	}
	data, _ = json.Marshal(merged)
	u.Settings = Settings{}
	_ = json.Unmarshal(data, &u.Settings)
}
