package provider

import "github.com/nhle/mailsettings/internal/model"

func imaps(host string) model.ServerProfile {
	return model.ServerProfile{Type: model.ServerTypeIMAP, Host: host, Port: 993, Security: model.SecuritySSL}
}

func smtps(host string) model.ServerProfile {
	return model.ServerProfile{Type: model.ServerTypeSMTP, Host: host, Port: 465, Security: model.SecuritySSL}
}

func submission(host string) model.ServerProfile {
	return model.ServerProfile{Type: model.ServerTypeSMTP, Host: host, Port: 587, Security: model.SecurityStartTLS}
}

// builtin is the registry used when no provider file exists.
var builtin = []model.ProviderEntry{
	{
		ID:       "gmail",
		Name:     "Gmail",
		Domains:  []string{"gmail.com", "googlemail.com"},
		Incoming: imaps("imap.gmail.com"),
		Outgoing: smtps("smtp.gmail.com"),
	},
	{
		ID:       "outlook",
		Name:     "Outlook.com",
		Domains:  []string{"outlook.com", "hotmail.com", "live.com", "msn.com"},
		Incoming: imaps("outlook.office365.com"),
		Outgoing: submission("smtp-mail.outlook.com"),
	},
	{
		ID:       "yahoo",
		Name:     "Yahoo Mail",
		Domains:  []string{"yahoo.com", "ymail.com"},
		Incoming: imaps("imap.mail.yahoo.com"),
		Outgoing: smtps("smtp.mail.yahoo.com"),
	},
	{
		ID:       "icloud",
		Name:     "iCloud Mail",
		Domains:  []string{"icloud.com", "me.com", "mac.com"},
		Incoming: imaps("imap.mail.me.com"),
		Outgoing: submission("smtp.mail.me.com"),
	},
	{
		ID:       "fastmail",
		Name:     "Fastmail",
		Domains:  []string{"fastmail.com", "fastmail.fm"},
		Incoming: imaps("imap.fastmail.com"),
		Outgoing: smtps("smtp.fastmail.com"),
	},
	{
		ID:       "gmx",
		Name:     "GMX",
		Domains:  []string{"gmx.com", "gmx.net", "gmx.de"},
		Incoming: imaps("imap.gmx.net"),
		Outgoing: submission("mail.gmx.net"),
	},
}
