package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/healthsphere/utils"
)

var validate = validator.New()

// BookAppointmentRequest is the body of POST /appointments/:patientId/book.
type BookAppointmentRequest struct {
	PatientName     string `json:"patientName" validate:"required,max=120"`
	Problem         string `json:"problem" validate:"max=2000"`
	Specialization  string `json:"specialization" validate:"max=120"`
	HospitalID      string `json:"hospitalId" validate:"required"`
	DoctorID        string `json:"doctorId" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	AppointmentType string `json:"appointmentType" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// WorkingHoursRequest is one template row. IsWorkDay defaults to true.
type WorkingHoursRequest struct {
	DayOfWeek  *int    `json:"dayOfWeek" validate:"required,min=0,max=6"`
	StartTime  string  `json:"startTime" validate:"required"`
	EndTime    string  `json:"endTime" validate:"required"`
	IsWorkDay  *bool   `json:"isWorkDay"`
	BreakStart *string `json:"breakStart"`
	BreakEnd   *string `json:"breakEnd"`
}

type LeaveRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"max=255"`
}

// parseBody decodes and validates the request body into req, writing the 400
// response itself when it fails.
func parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request",
			Error:   err.Error(),
		})
	}
	return true, nil
}
