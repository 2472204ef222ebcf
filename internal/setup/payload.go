package setup

import (
	"strconv"
	"strings"

	"github.com/nhle/mailsettings/internal/model"
)

// ServerHints is the server metadata extracted from a validation payload.
type ServerHints struct {
	IdleSupported     bool
	OutgoingSizeLimit int64
}

// ParsePayload scans the free-text payload of a validation response for the
// markers the engine emits.
func ParsePayload(payload string) ServerHints {
	var hints ServerHints

	for _, tok := range strings.Fields(payload) {
		if tok == model.PayloadIdleMarker {
			hints.IdleSupported = true
			break
		}
	}

	if limit, ok := parseSizeLimit(payload); ok {
		hints.OutgoingSizeLimit = limit
	}

	return hints
}

// parseSizeLimit returns the first run of digits following the size limit
// marker.
func parseSizeLimit(payload string) (int64, bool) {
	i := strings.Index(payload, model.PayloadSizeLimitMarker)
	if i < 0 {
		return 0, false
	}
	rest := payload[i+len(model.PayloadSizeLimitMarker):]

	start := strings.IndexAny(rest, "0123456789")
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}

	n, err := strconv.ParseInt(rest[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// applyHints stores the server hints on the draft.
func applyHints(draft *model.AccountDraft, hints ServerHints) {
	if hints.IdleSupported {
		draft.RetrievalMode |= model.IdleSupported
	} else {
		draft.RetrievalMode &^= model.IdleSupported
	}
	if hints.OutgoingSizeLimit > 0 {
		draft.OutgoingSizeLimit = hints.OutgoingSizeLimit
	}
}
