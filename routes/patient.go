package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/middleware"
)

// SetupPatientRoutes configures the patient's own appointment views
func SetupPatientRoutes(app fiber.Router, ctrl *controllers.AppointmentController, protected fiber.Handler) {
	patient := app.Group("/patients")
	patient.Get("/:patientId/appointments", guarded(protected, middleware.RolePatient, "patientId", ctrl.PatientAppointments)...)
	patient.Put("/:patientId/appointments/:id/cancel", guarded(protected, middleware.RolePatient, "patientId", ctrl.CancelAppointment)...)
}
