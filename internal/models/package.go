package models

import "time"

const (
	DefaultIconColor    = "#4CAF50"
	DefaultPackagePrice = 1000
)

// Package is a priced set of questions. Its KZ/RU workbooks live in FileSlot rows of kind "packages".
type Package struct {
	ID        uint      `gorm:"primaryKey" json:"id" example:"1"`
	Name      string    `gorm:"not null;size:255" json:"name" example:"History"`
	NameKZ    string    `gorm:"column:name_kz;size:255" json:"nameKZ" example:"Тарих"`
	NameRU    string    `gorm:"column:name_ru;size:255" json:"nameRU" example:"История"`
	IconColor string    `gorm:"size:7;not null" json:"iconColor" example:"#4CAF50"`
	Price     int       `gorm:"not null" json:"price" example:"1000"`
	IsActive  bool      `gorm:"not null;index" json:"isActive" example:"true"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Package) TableName() string {
	return "packages"
}

// PackageFiles always carries both languages; an absent slot is an empty object.
type PackageFiles struct {
	KZ SlotInfo `json:"kz"`
	RU SlotInfo `json:"ru"`
}

type SlotInfo struct {
	ID         uint       `json:"id,omitempty"`
	FileURL    string     `json:"fileUrl,omitempty"`
	FileName   string     `json:"fileName,omitempty"`
	FileSize   int64      `json:"fileSize,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// PackageWithFiles is the admin view of a package.
type PackageWithFiles struct {
	Package
	Files PackageFiles `json:"files"`
}

// Set stores the slot under its language. Slots of other kinds are ignored by callers.
func (f *PackageFiles) Set(slot FileSlot) {
	uploadedAt := slot.UploadedAt
	info := SlotInfo{
		ID:         slot.ID,
		FileURL:    slot.FileURL,
		FileName:   slot.FileName,
		FileSize:   slot.FileSize,
		UploadedAt: &uploadedAt,
	}
	switch slot.Language {
	case LanguageKZ:
		f.KZ = info
	case LanguageRU:
		f.RU = info
	}
}

// PublicPackage is what the consumer app sees: no storage URLs, only presence flags.
type PublicPackage struct {
	ID        uint       `json:"id" example:"1"`
	Name      string     `json:"name" example:"History"`
	NameKZ    string     `json:"nameKZ" example:"Тарих"`
	NameRU    string     `json:"nameRU" example:"История"`
	IconColor string     `json:"iconColor" example:"#4CAF50"`
	Price     int        `json:"price" example:"1000"`
	IsActive  bool       `json:"isActive" example:"true"`
	HasFiles  FilesFlags `json:"hasFiles"`
}

type FilesFlags struct {
	KZ bool `json:"kz"`
	RU bool `json:"ru"`
}

func NewPublicPackage(p PackageWithFiles) PublicPackage {
	return PublicPackage{
		ID:        p.ID,
		Name:      p.Name,
		NameKZ:    p.NameKZ,
		NameRU:    p.NameRU,
		IconColor: p.IconColor,
		Price:     p.Price,
		IsActive:  p.IsActive,
		HasFiles: FilesFlags{
			KZ: p.Files.KZ.FileURL != "",
			RU: p.Files.RU.FileURL != "",
		},
	}
}
