package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/middleware"
)

// SetupHospitalRoutes configures the hospital dashboard and the doctor day view
func SetupHospitalRoutes(app fiber.Router, ctrl *controllers.HospitalController, protected fiber.Handler) {
	hospital := app.Group("/hospitals")
	hospital.Get("/:hospitalId/pending-appointments", guarded(protected, middleware.RoleHospital, "hospitalId", ctrl.PendingAppointments)...)
	hospital.Put("/:hospitalId/appointments/:id/status", guarded(protected, middleware.RoleHospital, "hospitalId", ctrl.UpdateStatus)...)

	doctor := app.Group("/doctors")
	doctor.Get("/:doctorId/appointments", guarded(protected, middleware.RoleDoctor, "doctorId", ctrl.DoctorAppointments)...)
}
