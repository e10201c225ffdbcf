// internal/notifications/templates/builtin.go
package templates

import "github.com/andeslee444/Project-H-sub007/internal/models"

// builtinTemplates are the engine's default templates, available without a
// registry file.
var builtinTemplates = []models.NotificationTemplate{
	{
		Type:            models.TypeWaitlistAvailable,
		Title:           "Appointment Available",
		Body:            "Good news! {providerName} has an opening on {availableDate}. Open the app to claim it before it's gone.",
		DefaultPriority: models.PriorityHigh,
		DefaultChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelSMS},
		RequiredVars:    []string{"providerName", "availableDate"},
	},
	{
		Type:            models.TypeWaitlistPositionChanged,
		Title:           "Waitlist Update",
		Body:            "Your position on the waitlist has changed. You are now number {position}.",
		DefaultPriority: models.PriorityMedium,
		DefaultChannels: []models.Channel{models.ChannelInApp},
		RequiredVars:    []string{"position"},
	},
	{
		Type:            models.TypeMatchFound,
		Title:           "New Provider Match",
		Body:            "We found a provider who fits what you're looking for: {providerName}.",
		DefaultPriority: models.PriorityMedium,
		DefaultChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail},
		RequiredVars:    []string{"providerName"},
	},
	{
		Type:            models.TypeAppointmentConfirmed,
		Title:           "Appointment Confirmed",
		Body:            "Your appointment with {providerName} on {appointmentDate} at {appointmentTime} is confirmed.",
		DefaultPriority: models.PriorityHigh,
		DefaultChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelSMS},
		RequiredVars:    []string{"providerName", "appointmentDate", "appointmentTime"},
	},
	{
		Type:            models.TypeAppointmentCancelled,
		Title:           "Appointment Cancelled",
		Body:            "Your appointment with {providerName} on {appointmentDate} was cancelled. We'll let you know as soon as a new opening appears.",
		DefaultPriority: models.PriorityHigh,
		DefaultChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelSMS},
		RequiredVars:    []string{"providerName", "appointmentDate"},
	},
	{
		Type:            models.TypeAppointmentReminder,
		Title:           "Upcoming Appointment",
		Body:            "Reminder: you have an appointment with {providerName} on {appointmentDate} at {appointmentTime}.",
		DefaultPriority: models.PriorityMedium,
		DefaultChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelPush},
		RequiredVars:    []string{"providerName", "appointmentDate", "appointmentTime"},
	},
}
