package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/scheduling"
)

// DirectoryController serves the lookups a patient walks through before
// booking: hospitals, specializations and doctors.
type DirectoryController struct {
	directory scheduling.Directory
	log       zerolog.Logger
}

func NewDirectoryController(directory scheduling.Directory, log zerolog.Logger) *DirectoryController {
	return &DirectoryController{directory: directory, log: log}
}

// ListHospitals godoc
// @Summary List hospitals
// @Tags appointments
// @Produce json
// @Success 200 {object} map[string][]models.Hospital
// @Router /appointments/hospitals [get]
func (h *DirectoryController) ListHospitals(c *fiber.Ctx) error {
	return h.hospitals(c, "")
}

// HospitalsBySpecialization lists hospitals with a doctor practising :specialty.
func (h *DirectoryController) HospitalsBySpecialization(c *fiber.Ctx) error {
	return h.hospitals(c, strings.TrimSpace(c.Params("specialty")))
}

func (h *DirectoryController) hospitals(c *fiber.Ctx, specialization string) error {
	hospitals, err := h.directory.Hospitals(c.UserContext(), specialization)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"hospitals": hospitals})
}

// ListDoctors godoc
// @Summary List bookable doctors
// @Tags appointments
// @Produce json
// @Param hospitalId query string false "Hospital ID"
// @Param specialization query string false "Specialization"
// @Success 200 {object} map[string][]models.Doctor
// @Router /appointments/doctors [get]
func (h *DirectoryController) ListDoctors(c *fiber.Ctx) error {
	doctors, err := h.directory.Doctors(c.UserContext(),
		strings.TrimSpace(c.Query("hospitalId")),
		strings.TrimSpace(c.Query("specialization")))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"doctors": doctors})
}

func (h *DirectoryController) ListSpecializations(c *fiber.Ctx) error {
	return h.specializations(c, "")
}

func (h *DirectoryController) HospitalSpecializations(c *fiber.Ctx) error {
	return h.specializations(c, c.Params("hospitalId"))
}

func (h *DirectoryController) specializations(c *fiber.Ctx, hospitalID string) error {
	specializations, err := h.directory.Specializations(c.UserContext(), hospitalID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"specializations": specializations})
}
