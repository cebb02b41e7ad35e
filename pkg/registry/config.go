package registry

// Level represents the notification severity level.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Config describes a notification type. Once registered it is never mutated;
// the registry hands out copies with delivery defaults filled in.
//
// Exactly one message source is required. When both Message and
// MessageTemplate are set, Message takes precedence and MessageTemplate is
// only validated, never rendered.
type Config struct {
	// Level is the severity of notifications of this type. Required.
	Level Level `yaml:"level" json:"level"`

	// Verb is the short default action phrase, e.g. "went offline". Required.
	Verb string `yaml:"verb" json:"verb"`

	// VerboseName is the display name; defaults to the type name.
	VerboseName string `yaml:"verbose_name" json:"verbose_name,omitempty"`

	// EmailSubject is the subject template, rendered with
	// {Site, Notification, <data keys>}. Required.
	EmailSubject string `yaml:"email_subject" json:"email_subject"`

	// Message is an inline message template string.
	Message string `yaml:"message" json:"message,omitempty"`

	// MessageTemplate references an external template resource. It must
	// resolve at registration time.
	MessageTemplate string `yaml:"message_template" json:"message_template,omitempty"`

	// EmailNotification is the default for the email channel.
	// Nil means true.
	EmailNotification *bool `yaml:"email_notification" json:"email_notification,omitempty"`

	// WebNotification is the default for the in-app channel.
	// Nil means true.
	WebNotification *bool `yaml:"web_notification" json:"web_notification,omitempty"`
}

// IsZero reports whether the config is empty, i.e. the "no type, no
// constraints" configuration returned by Get for an empty type name.
func (c Config) IsZero() bool {
	return c == Config{}
}

// EmailEnabled returns the email channel default, true when unset.
func (c Config) EmailEnabled() bool {
	if c.EmailNotification != nil {
		return *c.EmailNotification
	}
	return true
}

// WebEnabled returns the in-app channel default, true when unset.
func (c Config) WebEnabled() bool {
	if c.WebNotification != nil {
		return *c.WebNotification
	}
	return true
}

// Choice is a (type name, verbose name) pair used for presentation, e.g.
// select widgets. Choices preserve registration order.
type Choice struct {
	Name        string
	VerboseName string
}
