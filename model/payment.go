package model

import "time"

type PaymentMethod struct {
	DTO
	Name     string `gorm:"size:20;uniqueIndex;not null" json:"name"` // VNPAY, MOMO
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
}

type Payment struct {
	DTO
	BookingID       uint          `gorm:"not null;index" json:"bookingId"`
	PaymentMethodID uint          `gorm:"not null" json:"paymentMethodId"`
	PaymentMethod   PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"paymentMethod"`
	Status          string        `gorm:"size:20;not null;default:PENDING;index" json:"status"` // PENDING, COMPLETED, FAILED, CANCELLED
	Amount          float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionID   string        `gorm:"size:64;uniqueIndex;not null" json:"transactionId"`
	PaymentTime     *time.Time    `json:"paymentTime,omitempty"`
	GatewayResponse string        `gorm:"type:text" json:"-"`
	PointsAwarded   bool          `gorm:"not null;default:false" json:"-"`
}

type CreatePaymentInput struct {
	BookingID       uint `json:"bookingId" validate:"required,gt=0"`
	PaymentMethodID uint `json:"paymentMethodId" validate:"required,gt=0"`
}

type PaymentResult struct {
	PaymentID     uint   `json:"paymentId"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	PaymentURL    string `json:"paymentUrl"`
}
