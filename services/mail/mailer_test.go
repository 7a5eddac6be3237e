package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/collegebuddy/api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name string
		env  config.EnviornmentVariable
		want interface{}
	}{
		{"sendgrid", config.EnviornmentVariable{EMAIL_PROVIDER: "sendgrid", SENDGRID_API_KEY: "SG.x"}, &SendGridMailer{}},
		{"sendgrid without key", config.EnviornmentVariable{EMAIL_PROVIDER: "sendgrid"}, LogMailer{}},
		{"smtp", config.EnviornmentVariable{EMAIL_PROVIDER: "smtp", SMTP_USERNAME: "u", SMTP_PASSWORD: "p"}, &SMTPMailer{}},
		{"smtp without credentials", config.EnviornmentVariable{EMAIL_PROVIDER: "smtp"}, LogMailer{}},
		{"log", config.EnviornmentVariable{EMAIL_PROVIDER: "log"}, LogMailer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, New(&tt.env))
		})
	}
}

func TestSendGridMailer_Send(t *testing.T) {
	var got map[string]interface{}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, sendgridEndpoint, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.key", "noreply@collegebuddy.in", srv.URL)
	err := m.Send(context.Background(), Message{To: "a@x.com", ToName: "A", Subject: "Hi", HTML: "<p>hi</p>", Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	from := got["from"].(map[string]interface{})
	assert.Equal(t, "noreply@collegebuddy.in", from["email"])
	assert.Len(t, got["content"], 2)
}

func TestSendGridMailer_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	err := NewSendGridMailer("bad", "noreply@collegebuddy.in", srv.URL).Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", HTML: "x"})
	assert.ErrorIs(t, err, ErrDelivery)
}
