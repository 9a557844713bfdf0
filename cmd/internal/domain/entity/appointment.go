package entity

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// Appointment is a reservation of one doctor slot by one patient.
// Doctor and patient names are copied at booking time and are not kept in
// sync with later profile edits.
type Appointment struct {
	ID                    string            `gorm:"primaryKey" dynamodbav:"id"`
	DoctorID              string            `gorm:"not null;index" dynamodbav:"doctorId"`
	PatientID             string            `gorm:"not null;index" dynamodbav:"patientId"`
	DoctorFirstName       string            `gorm:"not null" dynamodbav:"doctorFirstName"`
	DoctorLastName        string            `gorm:"not null" dynamodbav:"doctorLastName"`
	PatientFirstName      string            `gorm:"not null" dynamodbav:"patientFirstName"`
	PatientLastName       string            `gorm:"not null" dynamodbav:"patientLastName"`
	StartsAt              int64             `gorm:"not null" dynamodbav:"startsAt"` // epoch millis
	Status                AppointmentStatus `gorm:"not null;index" dynamodbav:"status"`
	FastingRequired       bool              `gorm:"not null;default:false" dynamodbav:"fastingRequired"`
	AdditionalPreparation *string           `dynamodbav:"additionalPreparation,omitempty"`
	CreatedAt             int64             `gorm:"not null;autoCreateTime:milli" dynamodbav:"createdAt"`
	UpdatedAt             int64             `gorm:"not null;autoUpdateTime:milli" dynamodbav:"updatedAt"`
}

func (a *Appointment) IsConfirmed() bool {
	return a.Status == StatusConfirmed
}

// HasParticipant reports whether userID is the doctor or the patient of a.
func (a *Appointment) HasParticipant(userID string) bool {
	return userID != "" && (a.DoctorID == userID || a.PatientID == userID)
}
