package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
	"github.com/meinhoongagan/healthsphere/utils"
)

// WorkingHourController lets a hospital maintain its doctors' weekly
// templates and leave days.
type WorkingHourController struct {
	directory scheduling.Directory
	templates scheduling.TemplateStore
	log       zerolog.Logger
}

func NewWorkingHourController(directory scheduling.Directory, templates scheduling.TemplateStore, log zerolog.Logger) *WorkingHourController {
	return &WorkingHourController{directory: directory, templates: templates, log: log}
}

// GetWorkingHours retrieves the doctor's template rows
func (h *WorkingHourController) GetWorkingHours(c *fiber.Ctx) error {
	doctorID, err := h.doctorOfHospital(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	hours, err := h.templates.ListWorkingHours(c.UserContext(), doctorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(hours)
}

// CreateWorkingHour creates a new working hour
func (h *WorkingHourController) CreateWorkingHour(c *fiber.Ctx) error {
	doctorID, err := h.doctorOfHospital(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req WorkingHoursRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	workingHour := req.toModel(doctorID)
	if err := scheduling.ValidateWorkingHours(workingHour); err != nil {
		return invalidTemplate(c, err)
	}

	if err := h.templates.CreateWorkingHours(c.UserContext(), &workingHour); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workingHour)
}

// UpdateWorkingHour updates an existing working hour
func (h *WorkingHourController) UpdateWorkingHour(c *fiber.Ctx) error {
	doctorID, err := h.doctorOfHospital(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid working hour id")
	}

	var req WorkingHoursRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	workingHour := req.toModel(doctorID)
	workingHour.ID = uint(id)
	if err := scheduling.ValidateWorkingHours(workingHour); err != nil {
		return invalidTemplate(c, err)
	}

	if err := h.templates.UpdateWorkingHours(c.UserContext(), &workingHour); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(workingHour)
}

// DeleteWorkingHour deletes a working hour by ID
func (h *WorkingHourController) DeleteWorkingHour(c *fiber.Ctx) error {
	doctorID, err := h.doctorOfHospital(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid working hour id")
	}

	if err := h.templates.DeleteWorkingHours(c.UserContext(), doctorID, uint(id)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLeave closes the doctor's calendar for one date. Appointments already
// booked on that date are left for the hospital to resolve.
func (h *WorkingHourController) AddLeave(c *fiber.Ctx) error {
	doctorID, err := h.doctorOfHospital(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req LeaveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	leave := models.DoctorLeave{DoctorID: doctorID, Date: req.Date, Reason: req.Reason}
	if err := h.templates.AddLeave(c.UserContext(), &leave); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(leave)
}

// doctorOfHospital resolves :doctorId and checks it belongs to :hospitalId.
func (h *WorkingHourController) doctorOfHospital(c *fiber.Ctx) (string, error) {
	doctor, err := h.directory.Doctor(c.UserContext(), c.Params("doctorId"))
	if err != nil {
		return "", err
	}
	if doctor.HospitalID != c.Params("hospitalId") {
		return "", scheduling.ErrNotFound
	}
	return doctor.ID, nil
}

func (r WorkingHoursRequest) toModel(doctorID string) models.WorkingHours {
	isWorkDay := true
	if r.IsWorkDay != nil {
		isWorkDay = *r.IsWorkDay
	}
	return models.WorkingHours{
		DoctorID:   doctorID,
		DayOfWeek:  models.DayOfWeek(*r.DayOfWeek),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		IsWorkDay:  isWorkDay,
		BreakStart: r.BreakStart,
		BreakEnd:   r.BreakEnd,
	}
}

func invalidTemplate(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
		Message: "Invalid working hours",
		Error:   err.Error(),
	})
}
