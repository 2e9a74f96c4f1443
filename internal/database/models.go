package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name         string   `gorm:"size:128"`
	Email        string   `gorm:"uniqueIndex;size:255"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示用户创建的简历内容，嵌套的段落以 JSON 列存储。
type Resume struct {
	ID                  string                           `gorm:"primaryKey;size:36"`
	UserID              uint                             `gorm:"index;not null"`
	Title               string                           `gorm:"size:255;not null"`
	Public              bool                             `gorm:"default:false;index"`
	Template            string                           `gorm:"size:64"`
	AccentColor         string                           `gorm:"size:32"`
	ProfessionalSummary string                           `gorm:"type:text"`
	Skills              datatypes.JSONSlice[string]      `gorm:"type:jsonb"`
	PersonalInfo        datatypes.JSONType[PersonalInfo] `gorm:"type:jsonb"`
	Experience          datatypes.JSONSlice[Experience]  `gorm:"type:jsonb"`
	Projects            datatypes.JSONSlice[Project]     `gorm:"type:jsonb"`
	Education           datatypes.JSONSlice[Education]   `gorm:"type:jsonb"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PersonalInfo is the contact block shown at the top of a resume.
type PersonalInfo struct {
	Image      string `json:"image"`
	FullName   string `json:"full_name"`
	Profession string `json:"profession"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	LinkedIn   string `json:"linkedin"`
	Website    string `json:"website"`
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	IsCurrent   bool   `json:"is_current"`
}

type Project struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduation_date"`
	GPA            string `json:"gpa"`
}
