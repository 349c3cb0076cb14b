package poll

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/hamed0406/pollrelay/internal/domain"
)

// AcceptedSentinel is the body some downstreams send with a 200 to mean
// "still processing".
const AcceptedSentinel = "Accepted"

const redacted = "xxxxx"

// Classify decides whether an attempt ends the sequence. Only a 200 whose
// body is not the Accepted sentinel is terminal.
func Classify(out domain.AttemptOutcome) domain.Classification {
	if out.Kind == domain.OutcomeTransportFailure {
		return domain.ClassTransportFailure
	}
	switch out.StatusCode {
	case http.StatusOK:
		if string(out.Body) == AcceptedSentinel {
			return domain.ClassAcceptedSentinel
		}
		return domain.ClassTerminal
	case http.StatusAccepted:
		return domain.ClassProcessing
	default:
		return domain.ClassUnexpectedStatus
	}
}

// ReadyPayload turns a terminal attempt into the body relayed to the caller.
// JSON bodies pass through untouched; anything else, including a body that is
// labeled JSON but does not parse, is wrapped in NonJSONPayload.
func ReadyPayload(out domain.AttemptOutcome) (json.RawMessage, bool) {
	if IsJSONContentType(out.ContentType) && json.Valid(out.Body) {
		return json.RawMessage(out.Body), false
	}
	wrapped, _ := json.Marshal(domain.NonJSONPayload{
		Message: domain.NonJSONMessage,
		Content: string(out.Body),
	})
	return wrapped, true
}

// IsJSONContentType accepts application/json and any +json media type.
func IsJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(strings.ToLower(ct), "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// RedactURL masks everything in a caller URL that can carry a secret
// before it reaches logs, alerts or history: the whole userinfo, every query
// value (keys are kept) and the fragment.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	if u.User != nil {
		u.User = url.User(redacted)
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q[k] = []string{redacted}
		}
		u.RawQuery = q.Encode()
	}
	if u.Fragment != "" {
		u.Fragment = redacted
		u.RawFragment = ""
	}
	return u.String()
}
