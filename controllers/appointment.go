package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
)

// AppointmentController serves the patient facing booking endpoints.
type AppointmentController struct {
	calc     *scheduling.Calculator
	workflow *scheduling.Workflow
	log      zerolog.Logger
}

func NewAppointmentController(calc *scheduling.Calculator, workflow *scheduling.Workflow, log zerolog.Logger) *AppointmentController {
	return &AppointmentController{calc: calc, workflow: workflow, log: log}
}

// GetTimeSlots godoc
// @Summary Free slots of a doctor on a date
// @Tags appointments
// @Produce json
// @Param hospitalId query string true "Hospital ID"
// @Param doctorId query string true "Doctor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string][]string
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/timeslots [get]
func (h *AppointmentController) GetTimeSlots(c *fiber.Ctx) error {
	hospitalID := c.Query("hospitalId")
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	if hospitalID == "" || doctorID == "" || date == "" {
		return badRequest(c, "hospitalId, doctorId and date are required")
	}

	slots, err := h.calc.AvailableSlots(c.UserContext(), doctorID, hospitalID, date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"availableSlots": slots})
}

// BookAppointment godoc
// @Summary Book a slot for a patient
// @Tags appointments
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param appointment body BookAppointmentRequest true "Booking"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /appointments/{patientId}/book [post]
func (h *AppointmentController) BookAppointment(c *fiber.Ctx) error {
	var req BookAppointmentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	modality, ok := models.ParseModality(req.AppointmentType)
	if !ok {
		return badRequest(c, "appointmentType must be in-person or video")
	}

	appt, err := h.workflow.Book(c.UserContext(), scheduling.BookingRequest{
		PatientID:      c.Params("patientId"),
		PatientName:    req.PatientName,
		Problem:        req.Problem,
		Specialization: req.Specialization,
		HospitalID:     req.HospitalID,
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		Time:           req.Time,
		Modality:       modality,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

// PatientAppointments returns the patient's history, newest first.
func (h *AppointmentController) PatientAppointments(c *fiber.Ctx) error {
	appts, err := h.workflow.PatientAppointments(c.UserContext(), c.Params("patientId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(appts)
}

// CancelAppointment withdraws a pending or approved appointment and frees its slot.
func (h *AppointmentController) CancelAppointment(c *fiber.Ctx) error {
	appt, err := h.workflow.Cancel(c.UserContext(), c.Params("patientId"), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appt})
}
