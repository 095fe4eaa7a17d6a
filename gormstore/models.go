package gormstore

// User is the persisted account row. ID doubles as the stable principal
// identifier carried in token subjects, so renaming a user never invalidates
// outstanding tokens.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName  string `gorm:"size:128"`
	PasswordHash string `gorm:"size:256;not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	Roles        []Role `gorm:"many2many:user_roles"`
}

// Role is a named capability grant shared across users.
type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:64;not null"`
}
