package model

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Movie struct {
	DTO
	Title     string `gorm:"not null;index" validate:"required" json:"title"`
	Slug      string `gorm:"uniqueIndex" json:"slug"`
	MovieType string `gorm:"size:10;not null;default:2D" validate:"required,oneof=2D 3D IMAX 4DX" json:"movieType"`
	Duration  int    `gorm:"not null" validate:"required,min=1" json:"duration"` // minutes
}

// BeforeCreate fills Slug from Title, suffixing -1, -2... until unique.
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.Slug != "" {
		return nil
	}
	base := slug.Make(m.Title)
	result := base
	for i := 1; ; i++ {
		var count int64
		if err := tx.Session(&gorm.Session{NewDB: true}).Model(&Movie{}).Where("slug = ?", result).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			break
		}
		result = fmt.Sprintf("%s-%d", base, i)
	}
	m.Slug = result
	return nil
}
