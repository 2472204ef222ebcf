package setup

import (
	"regexp"
	"strings"

	"github.com/nhle/mailsettings/internal/model"
)

var emailRegex = regexp.MustCompile(`^(?i)[a-z0-9!#$%&'*+\/=?^_\x60{|}~-]+(?:\.[a-z0-9!#$%&'*+\/=?^_\x60{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// Collect checks the draft's credentials and seeds the fields derived from
// them, as CheckInput and Seed do.
func Collect(draft *model.AccountDraft) error {
	if err := CheckInput(draft); err != nil {
		return err
	}
	Seed(draft)
	return nil
}

// CheckInput checks that the draft carries the two required fields and that
// the address is well formed. The address is trimmed in place.
func CheckInput(draft *model.AccountDraft) error {
	draft.Address = strings.TrimSpace(draft.Address)

	if draft.Address == "" || draft.Password == "" {
		return ErrIncompleteInput
	}
	if !IsValidAddress(draft.Address) {
		return ErrInvalidAddressSyntax
	}
	return nil
}

// Seed sets the login names, passwords and account names from the current
// address and password, replacing earlier values.
func Seed(draft *model.AccountDraft) {
	draft.UserName = draft.Address
	draft.Incoming.UserName = draft.Address
	draft.Outgoing.UserName = draft.Address
	draft.Incoming.Password = draft.Password
	draft.Outgoing.Password = draft.Password
	draft.AccountName = draft.Address
	draft.DisplayName = LocalPart(draft.Address)
}

// IsValidAddress checks the basic format of an email address.
func IsValidAddress(address string) bool {
	if len(address) == 0 || len(address) > 254 {
		return false
	}
	if !emailRegex.MatchString(address) {
		return false
	}

	at := strings.LastIndex(address, "@")
	local, domain := address[:at], address[at+1:]

	// RFC 5321 length limits.
	if len(local) > 64 || len(domain) > 253 {
		return false
	}
	if strings.Contains(address, "..") {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}

	return true
}

// LocalPart returns the part of address before the first '@'. An address
// without '@' is returned unchanged.
func LocalPart(address string) string {
	if i := strings.IndexByte(address, '@'); i >= 0 {
		return address[:i]
	}
	return address
}
