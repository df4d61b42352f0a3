package model

type Theater struct {
	DTO
	Name    string   `gorm:"not null" json:"name"`
	Address string   `json:"address"`
	Screens []Screen `gorm:"foreignKey:TheaterID" json:"screens,omitempty"`
}

type Screen struct {
	DTO
	TheaterID   uint    `gorm:"not null;index" json:"theaterId"`
	Theater     Theater `gorm:"foreignKey:TheaterID" json:"-"`
	Name        string  `gorm:"not null" json:"name"`
	RowCount    int     `gorm:"not null" json:"rowCount"`
	ColumnCount int     `gorm:"not null" json:"columnCount"`
	IsDeleted   bool    `gorm:"not null;default:false" json:"isDeleted"`
	Seats       []Seat  `gorm:"foreignKey:ScreenID" json:"seats,omitempty"`
}
