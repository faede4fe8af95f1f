package scheduling

import (
	"context"
	"fmt"

	"github.com/meinhoongagan/healthsphere/models"
)

// Notifier tells patients about their appointments. Delivery is best effort:
// callers log failures and never undo scheduling work because of them.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt models.Appointment) error
	AppointmentStatusChanged(ctx context.Context, appt models.Appointment) error
	AppointmentReminder(ctx context.Context, appt models.Appointment) error
}

type NopNotifier struct{}

func (NopNotifier) AppointmentBooked(context.Context, models.Appointment) error        { return nil }
func (NopNotifier) AppointmentStatusChanged(context.Context, models.Appointment) error { return nil }
func (NopNotifier) AppointmentReminder(context.Context, models.Appointment) error      { return nil }

// Mailer sends one HTML email.
type Mailer interface {
	Send(to, subject, body string) error
}

// MailNotifier emails the patient on record.
type MailNotifier struct {
	mailer    Mailer
	directory Directory
}

func NewMailNotifier(mailer Mailer, directory Directory) *MailNotifier {
	return &MailNotifier{mailer: mailer, directory: directory}
}

func (n *MailNotifier) AppointmentBooked(ctx context.Context, appt models.Appointment) error {
	return n.send(ctx, appt, "Appointment Request Received",
		"<p>Your appointment request has been received and is awaiting confirmation from the hospital.</p>")
}

func (n *MailNotifier) AppointmentStatusChanged(ctx context.Context, appt models.Appointment) error {
	var intro string
	switch appt.Status {
	case models.StatusApproved:
		intro = "<p>Your appointment has been confirmed by the hospital.</p>"
	case models.StatusRejected:
		intro = "<p>Unfortunately the hospital could not accept your appointment. Please choose another time.</p>"
	case models.StatusCancelled:
		intro = "<p>Your appointment has been cancelled.</p>"
	default:
		return nil
	}
	return n.send(ctx, appt, "Appointment Update", intro)
}

func (n *MailNotifier) AppointmentReminder(ctx context.Context, appt models.Appointment) error {
	return n.send(ctx, appt, "Reminder: Upcoming Appointment",
		"<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>")
}

func (n *MailNotifier) send(ctx context.Context, appt models.Appointment, subject, intro string) error {
	patient, err := n.directory.Patient(ctx, appt.PatientID)
	if err != nil {
		return err
	}
	if patient.Email == "" {
		return nil
	}

	name := patient.FullName
	if name == "" {
		name = appt.PatientName
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		%s
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Specialization:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
			<li><strong>Type:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>HealthSphere</p>
	`, name, intro, appt.Specialization, appt.Date, appt.Time, appt.AppointmentType, appt.Status)

	return n.mailer.Send(patient.Email, subject, body)
}
