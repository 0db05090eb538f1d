package models

import "time"

// AllowListVersion is the current on-disk format of the allow-list file.
const AllowListVersion = 1

// AdminEntry is one device identifier granted admin access.
type AdminEntry struct {
	DeviceID  string    `json:"device_id" gorm:"primaryKey;size:255"`
	GrantedAt time.Time `json:"granted_at"`
}

// TableName keeps the SQLite table name stable across model renames.
func (AdminEntry) TableName() string { return "admin_allow_list" }

type AllowList struct {
	Version int          `json:"version"`
	Admins  []AdminEntry `json:"admins"`
}

// Installation identifies one install of the app on one device.
type Installation struct {
	InstallationID string    `json:"installation_id"`
	CreatedAt      time.Time `json:"created_at"`
}
