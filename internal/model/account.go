package model

import "time"

// ServerType identifies the mail protocol spoken by a server profile.
type ServerType string

const (
	ServerTypeIMAP ServerType = "imap"
	ServerTypePOP3 ServerType = "pop3"
	ServerTypeSMTP ServerType = "smtp"
)

// Security identifies how the connection to a mail server is protected.
type Security string

const (
	SecurityNone     Security = "none"
	SecuritySSL      Security = "ssl"
	SecurityStartTLS Security = "starttls"
)

// RetrievalMode is a set of flags describing how mail is retrieved for an
// account.
type RetrievalMode int

const (
	RetrieveAll RetrievalMode = 1 << iota
	RetrieveNew
	IdleSupported
)

// Has reports whether all bits of flag are set.
func (r RetrievalMode) Has(flag RetrievalMode) bool {
	return r&flag == flag
}

// ServerProfile holds the connection settings for one incoming or outgoing
// mail server.
type ServerProfile struct {
	Type     ServerType `mapstructure:"type" yaml:"type"`
	Host     string     `mapstructure:"host" yaml:"host"`
	Port     int        `mapstructure:"port" yaml:"port"`
	Security Security   `mapstructure:"security" yaml:"security"`

	// UserName and Password are never part of a provider profile; they are
	// filled in from user input during setup.
	UserName string `mapstructure:"-" yaml:"-"`
	Password string `mapstructure:"-" yaml:"-"`
}

// NotificationSettings controls how new mail is announced for an account.
type NotificationSettings struct {
	Enabled  bool   `json:"enabled"`
	Vibrate  bool   `json:"vibrate"`
	Ringtone string `json:"ringtone"`
	Badge    bool   `json:"badge"`
}

// SignatureSettings holds the signature appended to outgoing mail.
type SignatureSettings struct {
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// Account is a persisted, validated email account.
type Account struct {
	// ID is the unique identifier for this account.
	ID string `json:"id"`

	// Name is the user-defined label shown in account lists.
	Name string `json:"name"`

	// Address is the email address of the account.
	Address string `json:"address"`

	// DisplayName is the sender name used on outgoing mail.
	DisplayName string `json:"display_name"`

	// Incoming and Outgoing hold server settings. Passwords are stored in
	// the system keyring and are empty here.
	Incoming ServerProfile `json:"incoming"`
	Outgoing ServerProfile `json:"outgoing"`

	RetrievalMode     RetrievalMode `json:"retrieval_mode"`
	OutgoingSizeLimit int64         `json:"outgoing_size_limit"`

	// ProviderID references the provider registry entry used during setup,
	// or is empty for manually configured accounts.
	ProviderID string `json:"provider_id"`

	Notification NotificationSettings `json:"notification"`
	Signature    SignatureSettings    `json:"signature"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultNotificationSettings returns the notification settings given to
// newly created accounts.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:  true,
		Vibrate:  true,
		Ringtone: "default",
		Badge:    true,
	}
}

// DefaultSignature returns the signature settings given to newly created
// accounts.
func DefaultSignature() SignatureSettings {
	return SignatureSettings{
		Enabled: true,
		Text:    "Sent from mailsettings",
	}
}
