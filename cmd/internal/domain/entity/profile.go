package entity

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type Doctor struct {
	ID        string         `gorm:"primaryKey" dynamodbav:"id" json:"id"`
	FirstName string         `gorm:"not null" dynamodbav:"firstName" json:"first_name"`
	LastName  string         `gorm:"not null" dynamodbav:"lastName" json:"last_name"`
	Specialty string         `dynamodbav:"specialty,omitempty" json:"specialty,omitempty"`
	Schedule  WeeklySchedule `gorm:"serializer:json" dynamodbav:"weeklySchedule" json:"weekly_schedule"`
	Available bool           `gorm:"not null;default:false" dynamodbav:"available" json:"available"`
	CreatedAt int64          `gorm:"not null;autoCreateTime:milli" dynamodbav:"createdAt" json:"created_at"`
	UpdatedAt int64          `gorm:"not null;autoUpdateTime:milli" dynamodbav:"updatedAt" json:"updated_at"`
}

type Patient struct {
	ID        string `gorm:"primaryKey" dynamodbav:"id" json:"id"`
	FirstName string `gorm:"not null" dynamodbav:"firstName" json:"first_name"`
	LastName  string `gorm:"not null" dynamodbav:"lastName" json:"last_name"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli" dynamodbav:"createdAt" json:"created_at"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:milli" dynamodbav:"updatedAt" json:"updated_at"`
}
