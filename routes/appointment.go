package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/middleware"
)

// SetupAppointmentRoutes configures the booking lookups, the availability query and booking
func SetupAppointmentRoutes(app fiber.Router, ctrl *controllers.AppointmentController, dir *controllers.DirectoryController, protected fiber.Handler) {
	appointment := app.Group("/appointments")
	appointment.Get("/hospitals", dir.ListHospitals)
	appointment.Get("/hospitals/specialization/:specialty", dir.HospitalsBySpecialization)
	appointment.Get("/hospitals/:hospitalId/specializations", dir.HospitalSpecializations)
	appointment.Get("/specializations", dir.ListSpecializations)
	appointment.Get("/doctors", dir.ListDoctors)
	appointment.Get("/timeslots", ctrl.GetTimeSlots)
	appointment.Post("/:patientId/book", guarded(protected, middleware.RolePatient, "patientId", ctrl.BookAppointment)...)
}

// guarded prefixes handler with authentication, a role check and the self
// check on param.
func guarded(protected fiber.Handler, role, param string, handler fiber.Handler) []fiber.Handler {
	return []fiber.Handler{
		protected,
		middleware.RequireRole(role),
		middleware.RequireSelf(param),
		handler,
	}
}
