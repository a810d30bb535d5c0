package models

import (
	"gorm.io/gorm"
)

// Appointment is one scheduled patient visit in the directory. Reception uses
// these rows to fill the arrival announcement for the waiting room.
type Appointment struct {
	ID               int    `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID       int    `json:"customerId" gorm:"column:customer_id;not null;index"`
	CustomerName     string `json:"customerName" gorm:"column:customer_name;not null"`
	CustomerInitials string `json:"customerInitials" gorm:"column:customer_initials"`
	ScheduledTime    string `json:"scheduledTime" gorm:"column:scheduled_time;not null"`
	Date             string `json:"date" gorm:"column:date;not null;index"`
	PractitionerID   int    `json:"practitionerId" gorm:"column:practitioner_id;index"`
	PractitionerName string `json:"practitionerName" gorm:"column:practitioner_name"`
	gorm.Model
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}
