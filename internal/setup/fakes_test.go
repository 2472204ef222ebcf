package setup

import (
	"context"
	"strings"

	"github.com/nhle/mailsettings/internal/model"
)

type fakeValidator struct {
	next      model.ValidationHandle
	calls     []model.AccountDraft
	handles   []model.ValidationHandle
	cancelled []model.ValidationHandle
	err       error
}

func (v *fakeValidator) Validate(_ context.Context, draft model.AccountDraft) (model.ValidationHandle, error) {
	v.calls = append(v.calls, draft)
	if v.err != nil {
		return model.NoHandle, v.err
	}
	v.next++
	v.handles = append(v.handles, v.next)
	return v.next, nil
}

func (v *fakeValidator) Cancel(h model.ValidationHandle) {
	v.cancelled = append(v.cancelled, h)
}

func (v *fakeValidator) last() model.ValidationHandle {
	if len(v.handles) == 0 {
		return model.NoHandle
	}
	return v.handles[len(v.handles)-1]
}

type fakeResolver struct {
	entries map[string]model.ProviderEntry
}

func (r *fakeResolver) Resolve(address string) (model.ProviderEntry, bool) {
	domain := strings.ToLower(address[strings.LastIndex(address, "@")+1:])
	e, ok := r.entries[domain]
	return e, ok
}

func (r *fakeResolver) Guess(address string, t model.ServerType) (model.ServerProfile, model.ServerProfile) {
	domain := address[strings.LastIndex(address, "@")+1:]
	in := model.ServerProfile{Type: t, Host: "imap." + domain, Port: 993, Security: model.SecuritySSL}
	if t == model.ServerTypePOP3 {
		in = model.ServerProfile{Type: t, Host: "pop." + domain, Port: 995, Security: model.SecuritySSL}
	}
	out := model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp." + domain, Port: 465, Security: model.SecuritySSL}
	return in, out
}

type fakeAccounts struct {
	existing  map[string]bool
	persisted []model.AccountDraft
	dupErr    error
	saveErr   error
}

func (a *fakeAccounts) IsDuplicateAddress(_ context.Context, address string) (bool, error) {
	if a.dupErr != nil {
		return false, a.dupErr
	}
	return a.existing[strings.ToLower(address)], nil
}

func (a *fakeAccounts) PersistAccount(_ context.Context, draft model.AccountDraft) (string, error) {
	if a.saveErr != nil {
		return "", a.saveErr
	}
	a.persisted = append(a.persisted, draft)
	return "acc-1", nil
}

func exampleResolver() *fakeResolver {
	return &fakeResolver{entries: map[string]model.ProviderEntry{
		"example.com": {
			ID:       "example",
			Name:     "Example Mail",
			Domains:  []string{"example.com"},
			Incoming: model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap.example.com", Port: 993, Security: model.SecuritySSL},
			Outgoing: model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp.example.com", Port: 465, Security: model.SecuritySSL},
		},
	}}
}
