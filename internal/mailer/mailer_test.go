package mailer

import (
	"testing"

	"github.com/propview/realty-service/internal/user/domain"
	"github.com/stretchr/testify/assert"
)

var _ domain.Mailer = (*SMTPMailer)(nil)

type mockMailer struct {
	toEmail string
	otp     string
}

func (m *mockMailer) SendOTPEmail(toEmail, otp string) error {
	m.toEmail = toEmail
	m.otp = otp
	return nil
}

func TestSendOTPEmail_Mock(t *testing.T) {
	mock := &mockMailer{}
	err := mock.SendOTPEmail("test@example.com", "123456")

	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", mock.toEmail)
	assert.Equal(t, "123456", mock.otp)
}
