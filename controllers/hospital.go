package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
)

// HospitalController serves the hospital dashboard and the doctor's day view.
type HospitalController struct {
	workflow *scheduling.Workflow
	log      zerolog.Logger
}

func NewHospitalController(workflow *scheduling.Workflow, log zerolog.Logger) *HospitalController {
	return &HospitalController{workflow: workflow, log: log}
}

// UpdateStatus godoc
// @Summary Approve or reject a pending appointment
// @Tags hospitals
// @Accept json
// @Produce json
// @Param hospitalId path string true "Hospital ID"
// @Param id path string true "Appointment ID"
// @Param body body UpdateStatusRequest true "Accepted or Rejected"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /hospitals/{hospitalId}/appointments/{id}/status [put]
func (h *HospitalController) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	status, ok := parseStatus(req.Status)
	if !ok {
		return badRequest(c, "status must be Accepted or Rejected")
	}

	appt, err := h.workflow.SetStatus(c.UserContext(), c.Params("hospitalId"), c.Params("id"), status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appt})
}

// PendingAppointments lists the hospital's queue. ?status= takes a comma
// separated list and defaults to pending.
func (h *HospitalController) PendingAppointments(c *fiber.Ctx) error {
	var statuses []models.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := parseStatus(part)
			if !ok {
				return badRequest(c, "unknown status "+strings.TrimSpace(part))
			}
			statuses = append(statuses, status)
		}
	}

	appts, err := h.workflow.HospitalAppointments(c.UserContext(), c.Params("hospitalId"), statuses)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointments": appts})
}

// DoctorAppointments lists a doctor's appointments on ?date=.
func (h *HospitalController) DoctorAppointments(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date is required")
	}

	appts, err := h.workflow.DoctorAppointments(c.UserContext(), c.Params("doctorId"), date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointments": appts})
}

// parseStatus accepts the dashboard labels and the stored status names.
func parseStatus(s string) (models.AppointmentStatus, bool) {
	if status, ok := models.ParseHospitalDecision(s); ok {
		return status, true
	}
	status := models.AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.Valid()
}
