// Package access builds the restricted-feature notice shown when an
// organization's plan does not include a gated product area. It is pure
// presentation data: the authorization decision itself is made by the
// caller (middleware or frontend routing) before this package is used.
package access

// ── Feature Keys ─────────────────────────────────────────────────
// These match the tab keys used by the admin frontend.

const (
	FeatureBrevo    = "brevo"
	FeatureTerminal = "terminal"
	FeatureClients  = "clients"
	FeatureStripe   = "stripe"
	FeatureFunnels  = "funnels"
	FeatureUsers    = "users"
)

// SupportEmail receives feature access requests.
const SupportEmail = "support@sweepos.com"

// ContactSubject is the fixed subject line for access request emails.
const ContactSubject = "Feature Access Request"

// featureNames maps feature keys to their human-readable names.
var featureNames = map[string]string{
	FeatureBrevo:    "Brevo",
	FeatureTerminal: "Terminal",
	FeatureClients:  "Clients",
	FeatureStripe:   "Stripe",
	FeatureFunnels:  "Funnels",
	FeatureUsers:    "Users",
}

// KnownFeatures returns the set of gateable feature keys.
// Used when validating per-organization feature grants.
func KnownFeatures() []string {
	return []string{
		FeatureBrevo, FeatureTerminal, FeatureClients,
		FeatureStripe, FeatureFunnels, FeatureUsers,
	}
}

// IsKnownFeature reports whether key is a recognised feature key.
func IsKnownFeature(key string) bool {
	_, ok := featureNames[key]
	return ok
}

// DisplayName returns the human-readable name for a feature key.
// Unknown keys fall back to the key itself, verbatim — an unrecognised
// tab still renders a sensible notice rather than failing.
func DisplayName(key string) string {
	if name, ok := featureNames[key]; ok {
		return name
	}
	return key
}

// Notice is the payload rendered on a restricted-access panel.
type Notice struct {
	Feature        string `json:"feature"`
	DisplayName    string `json:"displayName"`
	Message        string `json:"message"`
	ContactEmail   string `json:"contactEmail"`
	ContactSubject string `json:"contactSubject"`
	MailtoURL      string `json:"mailtoUrl"`
}

// NoticeFor builds the notice for a feature key. The contact action is
// fixed regardless of the key.
func NoticeFor(key string) Notice {
	name := DisplayName(key)
	return Notice{
		Feature:        key,
		DisplayName:    name,
		Message:        "Access to " + name + " is restricted for your account.",
		ContactEmail:   SupportEmail,
		ContactSubject: ContactSubject,
		MailtoURL:      MailtoURL(),
	}
}

// MailtoURL returns the contact link: a mailto address with the fixed
// subject. The subject is kept space-separated (not %20-encoded) because
// the frontend places it directly into an href, matching mail clients'
// lenient handling.
func MailtoURL() string {
	return "mailto:" + SupportEmail + "?subject=" + ContactSubject
}
