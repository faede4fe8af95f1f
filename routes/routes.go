package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meinhoongagan/healthsphere/controllers"
)

// Controllers groups the handlers mounted by Setup.
type Controllers struct {
	Appointments *controllers.AppointmentController
	Directory    *controllers.DirectoryController
	Hospitals    *controllers.HospitalController
	WorkingHours *controllers.WorkingHourController
}

// Setup mounts every route of the service on app.
func Setup(app fiber.Router, ctrl Controllers, protected fiber.Handler, gatherer prometheus.Gatherer) {
	SetupSystemRoutes(app, gatherer)
	SetupAppointmentRoutes(app, ctrl.Appointments, ctrl.Directory, protected)
	SetupPatientRoutes(app, ctrl.Appointments, protected)
	SetupHospitalRoutes(app, ctrl.Hospitals, protected)
	SetupWorkingHourRoutes(app, ctrl.WorkingHours, protected)
}
