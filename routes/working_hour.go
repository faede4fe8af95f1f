package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/middleware"
)

// SetupWorkingHourRoutes configures the doctor template and leave routes under their hospital
func SetupWorkingHourRoutes(app fiber.Router, ctrl *controllers.WorkingHourController, protected fiber.Handler) {
	const base = "/hospitals/:hospitalId/doctors/:doctorId"
	hospitalOnly := func(h fiber.Handler) []fiber.Handler {
		return guarded(protected, middleware.RoleHospital, "hospitalId", h)
	}

	app.Get(base+"/working-hours", hospitalOnly(ctrl.GetWorkingHours)...)
	app.Post(base+"/working-hours", hospitalOnly(ctrl.CreateWorkingHour)...)
	app.Patch(base+"/working-hours/:id", hospitalOnly(ctrl.UpdateWorkingHour)...)
	app.Delete(base+"/working-hours/:id", hospitalOnly(ctrl.DeleteWorkingHour)...)
	app.Post(base+"/leaves", hospitalOnly(ctrl.AddLeave)...)
}
