package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/mail"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// EmailNotificationHandler delivers email notification jobs: it loads the
// recipient's profile, renders the notification, and dispatches it through
// the mail transport.
type EmailNotificationHandler struct {
	users  store.UserStore
	mailer mail.Mailer

	// timeFunc stamps the "Completed at" line; tests inject a fixed clock.
	timeFunc func() time.Time
}

// NewEmailNotificationHandler creates the handler for email notification
// jobs.
func NewEmailNotificationHandler(users store.UserStore, mailer mail.Mailer) *EmailNotificationHandler {
	return &EmailNotificationHandler{
		users:    users,
		mailer:   mailer,
		timeFunc: time.Now,
	}
}

// Ensure EmailNotificationHandler implements Handler.
var _ Handler = (*EmailNotificationHandler)(nil)

// Type implements Handler.Type.
func (h *EmailNotificationHandler) Type() string {
	return JobTypeEmailNotification
}

// Handle implements Handler.Handle. Redelivery is safe: the worst outcome of
// running twice is a duplicate email.
//
// A missing user record is returned as a plain error and consumes the same
// retry budget as a transient failure; the handler has no typed error
// channel to tell the runner a failure is permanent.
func (h *EmailNotificationHandler) Handle(ctx context.Context, job *Job) error {
	log := logger.FromContext(ctx)

	var payload EmailNotificationPayload
	if err := job.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode notification payload: %w", err)
	}

	user, err := h.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load notification recipient %s: %w", payload.UserID, err)
	}

	subject, body := renderNotification(user.Username, payload, h.timeFunc())

	if err := h.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	log.Info("notification delivered",
		"job_id", job.ID, "user_id", user.ID, "notification_type", payload.Type)
	return nil
}

// renderNotification produces the subject and HTML body for a notification
// payload. Only task completion has a dedicated rendering; unknown types get
// a generic fallback. The completion body stamps delivery time, not the
// task's completedAt: redelivered jobs show when the email went out.
func renderNotification(username string, payload EmailNotificationPayload, now time.Time) (subject, body string) {
	switch payload.Type {
	case NotificationTypeTaskCompletion:
		subject = fmt.Sprintf("Task Completed: %s", payload.TaskTitle)
		body = fmt.Sprintf(
			"<html><body>"+
				"<h2>Task Completed!</h2>"+
				"<p>Hi %s,</p>"+
				"<p>Your task <strong>%s</strong> has been marked as completed.</p>"+
				"<p>Task ID: %s</p>"+
				"<p>Completed at: %s</p>"+
				"<br>"+
				"<p>Best regards,<br>Task Management System</p>"+
				"</body></html>",
			username, payload.TaskTitle, payload.TaskID, now.Format("2006-01-02 15:04:05"),
		)
	default:
		subject = "Task Notification"
		body = fmt.Sprintf(
			"<html><body>"+
				"<p>Hi %s,</p>"+
				"<p>You have a new notification for task <strong>%s</strong>.</p>"+
				"</body></html>",
			username, payload.TaskTitle,
		)
	}
	return subject, body
}
