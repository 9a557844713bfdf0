package routes

import "github.com/labstack/echo/v4"

// Register mounts every API route on e.
func Register(e *echo.Echo, doctors *DefaultDoctorRoute, appts *DefaultAppointmentRoute, profiles *DefaultProfileRoute) {
	api := e.Group("/api")

	// Doctors and their bookable slots
	api.GET("/doctors", doctors.GetDoctors)
	api.GET("/doctors/:id", doctors.GetDoctor)
	api.GET("/doctors/:id/slots", doctors.GetSlots)
	api.PUT("/doctors/:id/schedule", doctors.UpdateSchedule)

	// Appointments
	api.GET("/appointments", appts.GetAppointments)
	api.POST("/appointments", appts.CreateAppointment)
	api.DELETE("/appointments/:id", appts.CancelAppointment)
	api.PATCH("/appointments/:id/preparation", appts.UpdatePreparation)

	// Profiles
	api.GET("/patients/:id", profiles.GetPatient)
	api.PUT("/profile", profiles.SaveProfile)
}
