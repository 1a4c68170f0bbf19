// Package notify renders notification templates and fans deliveries out
// across the in-app and email channels.  Channel failures are isolated:
// one channel failing never blocks the other, and neither failing blocks
// the operation that triggered the notification.
package notify

import "strings"

// Template is a title/body pair with {placeholder} markers.
type Template struct {
    Title string
    Body  string
}

// templates maps notification types to their fixed wording.  Placeholders
// are substituted by Render; unknown types fall back to a generic template
// so a dispatch never fails on wording alone.
var templates = map[string]Template{
    "schedule_created": {
        Title: "You have been scheduled",
        Body:  "Hi {volunteer_name}, you are scheduled as {role} for {service_name} on {service_date}.",
    },
    "confirmation_request": {
        Title: "Please confirm your assignment",
        Body:  "Hi {volunteer_name}, please confirm your {role} assignment for {service_name} on {service_date}: {message}",
    },
    "reminder_24h": {
        Title: "Reminder: you serve tomorrow",
        Body:  "Hi {volunteer_name}, reminder: you serve as {role} at {service_name} on {service_date}.",
    },
    "reminder_2h": {
        Title: "Reminder: you serve soon",
        Body:  "Hi {volunteer_name}, you serve as {role} at {service_name} today ({service_date}).",
    },
    "schedule_changed": {
        Title: "Schedule update",
        Body:  "{volunteer_name} responded to the {role} assignment for {service_name} on {service_date}: {message}",
    },
    "confirmation_received": {
        Title: "Assignment confirmed",
        Body:  "{volunteer_name} confirmed the {role} assignment for {service_name} on {service_date}. {message}",
    },
}

var genericTemplate = Template{Title: "Notification", Body: "{message}"}

// Render resolves the template for a notification type and substitutes the
// given placeholder values.  Placeholders without a value render as the
// empty string and any whitespace they leave at the edges is trimmed.
// Render never fails.
func Render(notifType string, values map[string]string) (title, body string) {
    tpl, ok := templates[notifType]
    if !ok {
        tpl = genericTemplate
    }
    return strings.TrimSpace(substitute(tpl.Title, values)), strings.TrimSpace(substitute(tpl.Body, values))
}

// Known placeholder keys.  Substitution replaces only these so stray braces
// in user-provided notes survive untouched.
var placeholderKeys = []string{"volunteer_name", "role", "service_name", "service_date", "message"}

func substitute(s string, values map[string]string) string {
    for _, key := range placeholderKeys {
        s = strings.ReplaceAll(s, "{"+key+"}", values[key])
    }
    return s
}
