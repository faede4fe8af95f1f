// Package schedulingtest provides in-memory implementations of the scheduling
// interfaces for tests.
package schedulingtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
)

// StaticDirectory serves doctors, leave days and patients from maps. It also
// implements scheduling.TemplateStore over the doctors' working hours.
type StaticDirectory struct {
	mu        sync.RWMutex
	hospitals map[string]models.Hospital
	doctors   map[string]models.Doctor
	leaves   map[string]bool
	patients map[string]models.Patient
	nextID   uint
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		hospitals: make(map[string]models.Hospital),
		doctors:   make(map[string]models.Doctor),
		leaves:    make(map[string]bool),
		patients:  make(map[string]models.Patient),
	}
}

func (d *StaticDirectory) AddHospital(hospital models.Hospital) *StaticDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hospitals[hospital.ID] = hospital
	return d
}

func (d *StaticDirectory) AddDoctor(doctor models.Doctor) *StaticDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[doctor.ID] = doctor
	return d
}

// WithLeave marks doctorID as on leave on date.
func (d *StaticDirectory) WithLeave(doctorID, date string) *StaticDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaves[doctorID+"/"+date] = true
	return d
}

func (d *StaticDirectory) AddPatient(patient models.Patient) *StaticDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[patient.ID] = patient
	return d
}

func (d *StaticDirectory) Doctor(_ context.Context, doctorID string) (*models.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doctor, ok := d.doctors[doctorID]
	if !ok {
		return nil, fmt.Errorf("%w: doctor %s", scheduling.ErrNotFound, doctorID)
	}
	return &doctor, nil
}

func (d *StaticDirectory) OnLeave(_ context.Context, doctorID, date string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.leaves[doctorID+"/"+date], nil
}

func (d *StaticDirectory) Patient(_ context.Context, patientID string) (*models.Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	patient, ok := d.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("%w: patient %s", scheduling.ErrNotFound, patientID)
	}
	return &patient, nil
}

func (d *StaticDirectory) Hospitals(_ context.Context, specialization string) ([]models.Hospital, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Hospital, 0, len(d.hospitals))
	for _, h := range d.hospitals {
		if specialization != "" && !d.practisedAt(h.ID, specialization) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *StaticDirectory) Doctors(_ context.Context, hospitalID, specialization string) ([]models.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Doctor, 0)
	for _, doc := range d.doctors {
		if hospitalID != "" && doc.HospitalID != hospitalID {
			continue
		}
		if specialization != "" && !strings.EqualFold(doc.Specialization, specialization) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (d *StaticDirectory) Specializations(_ context.Context, hospitalID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, doc := range d.doctors {
		if doc.Specialization == "" || seen[doc.Specialization] || (hospitalID != "" && doc.HospitalID != hospitalID) {
			continue
		}
		seen[doc.Specialization] = true
		out = append(out, doc.Specialization)
	}
	sort.Strings(out)
	return out, nil
}

func (d *StaticDirectory) practisedAt(hospitalID, specialization string) bool {
	for _, doc := range d.doctors {
		if doc.HospitalID == hospitalID && strings.EqualFold(doc.Specialization, specialization) {
			return true
		}
	}
	return false
}

func (d *StaticDirectory) ListWorkingHours(_ context.Context, doctorID string) ([]models.WorkingHours, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.WorkingHours{}, d.doctors[doctorID].WorkingHours...), nil
}

func (d *StaticDirectory) CreateWorkingHours(_ context.Context, wh *models.WorkingHours) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doctor, ok := d.doctors[wh.DoctorID]
	if !ok {
		return fmt.Errorf("%w: doctor %s", scheduling.ErrNotFound, wh.DoctorID)
	}
	d.nextID++
	wh.ID = d.nextID
	doctor.WorkingHours = append(doctor.WorkingHours, *wh)
	d.doctors[wh.DoctorID] = doctor
	return nil
}

func (d *StaticDirectory) UpdateWorkingHours(_ context.Context, wh *models.WorkingHours) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doctor := d.doctors[wh.DoctorID]
	for i := range doctor.WorkingHours {
		if doctor.WorkingHours[i].ID == wh.ID {
			doctor.WorkingHours[i] = *wh
			return nil
		}
	}
	return fmt.Errorf("%w: working hours %d", scheduling.ErrNotFound, wh.ID)
}

func (d *StaticDirectory) DeleteWorkingHours(_ context.Context, doctorID string, id uint) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doctor := d.doctors[doctorID]
	for i := range doctor.WorkingHours {
		if doctor.WorkingHours[i].ID == id {
			doctor.WorkingHours = append(doctor.WorkingHours[:i], doctor.WorkingHours[i+1:]...)
			d.doctors[doctorID] = doctor
			return nil
		}
	}
	return fmt.Errorf("%w: working hours %d", scheduling.ErrNotFound, id)
}

func (d *StaticDirectory) AddLeave(_ context.Context, leave *models.DoctorLeave) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := leave.DoctorID + "/" + leave.Date
	if d.leaves[key] {
		return fmt.Errorf("%w: doctor %s is already on leave on %s", scheduling.ErrInvalidArgument, leave.DoctorID, leave.Date)
	}
	d.leaves[key] = true
	return nil
}

// MemoryStore keeps appointments in a map and enforces one active appointment
// per slot, like the partial unique index in postgres.
type MemoryStore struct {
	mu    sync.Mutex
	appts map[string]models.Appointment
	// CreateErr, when set, is returned by Create without storing anything.
	CreateErr error
	Now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{appts: make(map[string]models.Appointment), Now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, other := range s.appts {
		if other.Status.IsActive() && other.DoctorID == appt.DoctorID && other.Date == appt.Date && other.Time == appt.Time {
			return scheduling.ErrSlotTaken
		}
	}
	s.appts[appt.ID] = *appt
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appts[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", scheduling.ErrNotFound, id)
	}
	return &appt, nil
}

func (s *MemoryStore) TransitionStatus(_ context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appts[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", scheduling.ErrNotFound, id)
	}
	if !containsStatus(from, appt.Status) {
		return nil, fmt.Errorf("%w: appointment %s is %s", scheduling.ErrInvalidTransition, id, appt.Status)
	}
	appt.Status = to
	appt.UpdatedAt = s.Now().UTC()
	s.appts[id] = appt
	return &appt, nil
}

func (s *MemoryStore) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *MemoryStore) ListByHospital(_ context.Context, hospitalID string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.HospitalID == hospitalID && (len(statuses) == 0 || containsStatus(statuses, a.Status))
	}), nil
}

func (s *MemoryStore) ListByDoctorDate(_ context.Context, doctorID, date string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool { return a.DoctorID == doctorID && a.Date == date }), nil
}

func (s *MemoryStore) ListClosedSince(_ context.Context, since time.Time) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.Status.IsTerminal() && !a.UpdatedAt.Before(since)
	}), nil
}

func (s *MemoryStore) ListUnreminded(_ context.Context, dates []string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		if a.Status != models.StatusApproved || a.ReminderSentAt != nil {
			return false
		}
		for _, d := range dates {
			if a.Date == d {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemoryStore) MarkReminded(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appts[id]
	if !ok {
		return fmt.Errorf("%w: appointment %s", scheduling.ErrNotFound, id)
	}
	at = at.UTC()
	appt.ReminderSentAt = &at
	s.appts[id] = appt
	return nil
}

func (s *MemoryStore) Existing(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.appts[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// Put stores appt as is, bypassing the active slot check.
func (s *MemoryStore) Put(appt models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appts[appt.ID] = appt
}

func (s *MemoryStore) filter(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Appointment, 0)
	for _, a := range s.appts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func containsStatus(statuses []models.AppointmentStatus, s models.AppointmentStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Event is one notification seen by a RecordingNotifier.
type Event struct {
	Kind          string
	AppointmentID string
	Status        models.AppointmentStatus
}

// RecordingNotifier remembers every notification. Err, when set, is returned
// after recording.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (n *RecordingNotifier) AppointmentBooked(_ context.Context, appt models.Appointment) error {
	return n.record("booked", appt)
}

func (n *RecordingNotifier) AppointmentStatusChanged(_ context.Context, appt models.Appointment) error {
	return n.record("status", appt)
}

func (n *RecordingNotifier) AppointmentReminder(_ context.Context, appt models.Appointment) error {
	return n.record("reminder", appt)
}

func (n *RecordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

func (n *RecordingNotifier) record(kind string, appt models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{Kind: kind, AppointmentID: appt.ID, Status: appt.Status})
	return n.Err
}

// RecordingMailer captures outgoing mail.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []Mail
}

type Mail struct {
	To, Subject, Body string
}

func (m *RecordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}
