// Package provider maps address domains to the server settings of known
// mail providers.
package provider

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/net/idna"

	"github.com/nhle/mailsettings/internal/model"
)

// Registry is a read-only set of known providers keyed by domain.
type Registry struct {
	entries  []model.ProviderEntry
	byDomain map[string]model.ProviderEntry
}

// NewRegistry builds a registry from entries. Entries without an ID or any
// domain are skipped; a domain claimed twice keeps the first entry.
func NewRegistry(entries []model.ProviderEntry) *Registry {
	r := &Registry{byDomain: make(map[string]model.ProviderEntry)}
	for _, e := range entries {
		if e.ID == "" || len(e.Domains) == 0 {
			continue
		}
		if e.Outgoing.Type == "" {
			e.Outgoing.Type = model.ServerTypeSMTP
		}
		r.entries = append(r.entries, e)
		for _, d := range e.Domains {
			key := normalizeDomain(d)
			if key == "" {
				continue
			}
			if _, taken := r.byDomain[key]; !taken {
				r.byDomain[key] = e
			}
		}
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].ID < r.entries[j].ID })
	return r
}

// Builtin returns the registry of built-in providers.
func Builtin() *Registry {
	return NewRegistry(builtin)
}

// Load reads providers from the YAML file at path. If the file does not
// exist, the built-in registry is returned.
//
// The file lists entries under a top-level "providers" key:
//
//	providers:
//	  - id: example
//	    name: Example Mail
//	    domains: [example.com]
//	    incoming: {type: imap, host: imap.example.com, port: 993, security: ssl}
//	    outgoing: {type: smtp, host: smtp.example.com, port: 465, security: ssl}
func Load(path string) (*Registry, error) {
	if path == "" {
		return Builtin(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return Builtin(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("reading providers %s: %w", path, err)
	}

	var entries []model.ProviderEntry
	if err := v.UnmarshalKey("providers", &entries); err != nil {
		return nil, fmt.Errorf("parsing providers %s: %w", path, err)
	}
	return NewRegistry(entries), nil
}

// Entries returns the providers sorted by ID.
func (r *Registry) Entries() []model.ProviderEntry {
	out := make([]model.ProviderEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the provider serving domain.
func (r *Registry) Lookup(domain string) (model.ProviderEntry, bool) {
	e, ok := r.byDomain[normalizeDomain(domain)]
	return e, ok
}

// Resolve returns the provider serving the domain of address.
func (r *Registry) Resolve(address string) (model.ProviderEntry, bool) {
	domain := Domain(address)
	if domain == "" {
		return model.ProviderEntry{}, false
	}
	return r.Lookup(domain)
}

// Guess returns conventional server settings for the domain of address,
// used as a starting point for manual setup.
func (r *Registry) Guess(address string, serverType model.ServerType) (incoming, outgoing model.ServerProfile) {
	domain := normalizeDomain(Domain(address))

	switch serverType {
	case model.ServerTypePOP3:
		incoming = model.ServerProfile{Type: model.ServerTypePOP3, Host: "pop." + domain, Port: 995, Security: model.SecuritySSL}
	default:
		incoming = model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap." + domain, Port: 993, Security: model.SecuritySSL}
	}
	outgoing = model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp." + domain, Port: 465, Security: model.SecuritySSL}
	return incoming, outgoing
}

// Domain returns the part of address after the last '@', or "" when there
// is none.
func Domain(address string) string {
	i := strings.LastIndex(address, "@")
	if i < 0 || i == len(address)-1 {
		return ""
	}
	return strings.TrimSpace(address[i+1:])
}

// normalizeDomain lower-cases domain and converts it to its ASCII form so
// internationalized spellings match registry keys.
func normalizeDomain(domain string) string {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return domain
	}
	return ascii
}
