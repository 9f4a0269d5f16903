package models

import "time"

// ResourceKind separates the three upload areas. Each kind has its own directory and size ceiling.
type ResourceKind string

const (
	KindPackages  ResourceKind = "packages"
	KindQuestions ResourceKind = "questions"
	KindPhrases   ResourceKind = "phrases"
)

var ResourceKinds = []ResourceKind{KindPackages, KindQuestions, KindPhrases}

func (k ResourceKind) Valid() bool {
	switch k {
	case KindPackages, KindQuestions, KindPhrases:
		return true
	}
	return false
}

// FilePrefix is the stored file name prefix for the kind.
func (k ResourceKind) FilePrefix() string {
	switch k {
	case KindPackages:
		return "package"
	case KindQuestions:
		return "questions"
	default:
		return string(k)
	}
}

// FileSlot records the single live file for (kind, owner, language).
// Flat resources (questions, phrases) use owner 0.
type FileSlot struct {
	ID         uint         `gorm:"primaryKey" json:"id" example:"1"`
	Kind       ResourceKind `gorm:"size:16;not null;uniqueIndex:idx_file_slots_owner_language,priority:1" json:"-"`
	OwnerID    uint         `gorm:"not null;uniqueIndex:idx_file_slots_owner_language,priority:2" json:"-"`
	Language   Language     `gorm:"size:2;not null;uniqueIndex:idx_file_slots_owner_language,priority:3" json:"language" example:"KZ"`
	StorageKey string       `gorm:"size:500;not null" json:"-"`
	FileURL    string       `gorm:"size:500;not null" json:"fileUrl" example:"/uploads/phrases/phrases_0_KZ_1b9d6bcd.xlsx"`
	FileName   string       `gorm:"size:255;not null" json:"fileName" example:"phrases.xlsx"`
	FileSize   int64        `json:"fileSize" example:"20480"`
	UploadedAt time.Time    `gorm:"not null" json:"uploadedAt"`
	UploadedBy *uint        `json:"uploadedBy,omitempty"`
}

func (FileSlot) TableName() string {
	return "file_slots"
}
