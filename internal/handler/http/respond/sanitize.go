package respond

import "regexp"

var (
	anthropicKey  = regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]+`)
	openRouterKey = regexp.MustCompile(`sk-or-[A-Za-z0-9_-]+`)
	genericKey    = regexp.MustCompile(`sk-[A-Za-z0-9]{10,}`)
	bearerToken   = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
	urlPassword   = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with API keys, bearer tokens and URL
// passwords masked. Order matters: provider-specific patterns run first.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = anthropicKey.ReplaceAllString(msg, "sk-ant-****")
	msg = openRouterKey.ReplaceAllString(msg, "sk-or-****")
	msg = genericKey.ReplaceAllString(msg, "sk-****")
	msg = bearerToken.ReplaceAllString(msg, "Bearer ****")
	msg = urlPassword.ReplaceAllString(msg, "://$1:****@")
	return msg
}
