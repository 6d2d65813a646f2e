package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "known feature brevo", key: "brevo", want: "Brevo"},
		{name: "known feature terminal", key: "terminal", want: "Terminal"},
		{name: "known feature clients", key: "clients", want: "Clients"},
		{name: "known feature stripe", key: "stripe", want: "Stripe"},
		{name: "known feature funnels", key: "funnels", want: "Funnels"},
		{name: "known feature users", key: "users", want: "Users"},
		{name: "unknown key passes through verbatim", key: "unknown_feature", want: "unknown_feature"},
		{name: "empty key stays empty", key: "", want: ""},
		{name: "case sensitive lookup", key: "Brevo", want: "Brevo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.key))
		})
	}
}

func TestMailtoURL(t *testing.T) {
	assert.Equal(t, "mailto:support@sweepos.com?subject=Feature Access Request", MailtoURL())
}

func TestNoticeFor(t *testing.T) {
	t.Run("known feature", func(t *testing.T) {
		n := NoticeFor("brevo")
		assert.Equal(t, "brevo", n.Feature)
		assert.Equal(t, "Brevo", n.DisplayName)
		assert.Equal(t, "Access to Brevo is restricted for your account.", n.Message)
		assert.Equal(t, "support@sweepos.com", n.ContactEmail)
		assert.Equal(t, "Feature Access Request", n.ContactSubject)
		assert.Equal(t, "mailto:support@sweepos.com?subject=Feature Access Request", n.MailtoURL)
	})

	t.Run("unknown feature does not crash and keeps the key", func(t *testing.T) {
		n := NoticeFor("unknown_feature")
		assert.Equal(t, "unknown_feature", n.DisplayName)
		assert.Equal(t, "Access to unknown_feature is restricted for your account.", n.Message)
	})

	t.Run("contact action is fixed regardless of key", func(t *testing.T) {
		a := NoticeFor("clients")
		b := NoticeFor("something_else")
		assert.Equal(t, a.ContactEmail, b.ContactEmail)
		assert.Equal(t, a.ContactSubject, b.ContactSubject)
		assert.Equal(t, a.MailtoURL, b.MailtoURL)
	})
}

func TestIsKnownFeature(t *testing.T) {
	for _, key := range KnownFeatures() {
		assert.True(t, IsKnownFeature(key), key)
	}
	assert.False(t, IsKnownFeature("unknown_feature"))
	assert.False(t, IsKnownFeature(""))
}
