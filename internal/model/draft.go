package model

// AccountDraft is an account configuration that has not been validated or
// persisted yet. A draft is owned by exactly one setup workflow.
type AccountDraft struct {
	Address  string
	Password string

	// UserName is the login name currently tried against the servers.
	UserName string

	AccountName string
	DisplayName string

	Incoming ServerProfile
	Outgoing ServerProfile

	RetrievalMode     RetrievalMode
	OutgoingSizeLimit int64

	// ProviderID is set when the servers came from the provider registry.
	ProviderID string
}

// ProviderEntry is the server profile of a known mail provider.
type ProviderEntry struct {
	ID       string        `mapstructure:"id" yaml:"id"`
	Name     string        `mapstructure:"name" yaml:"name"`
	Domains  []string      `mapstructure:"domains" yaml:"domains"`
	Incoming ServerProfile `mapstructure:"incoming" yaml:"incoming"`
	Outgoing ServerProfile `mapstructure:"outgoing" yaml:"outgoing"`
}

// ApplyProvider copies the provider's server addresses into the draft,
// keeping the credentials already present on the draft.
func (d *AccountDraft) ApplyProvider(p ProviderEntry) {
	d.ProviderID = p.ID
	d.ApplyServers(p.Incoming, p.Outgoing)
}

// ApplyServers replaces the draft's server addresses, keeping the
// credentials already present on the draft.
func (d *AccountDraft) ApplyServers(incoming, outgoing ServerProfile) {
	inUser, inPass := d.Incoming.UserName, d.Incoming.Password
	outUser, outPass := d.Outgoing.UserName, d.Outgoing.Password

	d.Incoming = incoming
	d.Outgoing = outgoing
	if d.Outgoing.Type == "" {
		d.Outgoing.Type = ServerTypeSMTP
	}

	if d.Incoming.UserName == "" {
		d.Incoming.UserName = inUser
	}
	if d.Incoming.Password == "" {
		d.Incoming.Password = inPass
	}
	if d.Outgoing.UserName == "" {
		d.Outgoing.UserName = outUser
	}
	if d.Outgoing.Password == "" {
		d.Outgoing.Password = outPass
	}
}

// SetUserName sets the login name on the draft and on both server profiles.
func (d *AccountDraft) SetUserName(name string) {
	d.UserName = name
	d.Incoming.UserName = name
	d.Outgoing.UserName = name
}
