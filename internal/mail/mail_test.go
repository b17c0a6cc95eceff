package mail

import (
	"testing"
	"time"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/sendgrid/rest"
	mailsg "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	statusCode int
	sent       []*mailsg.SGMailV3
}

func (f *fakeSender) Send(email *mailsg.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return &rest.Response{StatusCode: f.statusCode}, nil
}

func testConfig() *Config {
	return &Config{
		APIKey:         "test",
		FromEmail:      "orders@aurelab.audio",
		FromName:       "Aurelab Audio",
		ReplyTo:        "support@aurelab.audio",
		WorkerInterval: time.Minute,
	}
}

func TestBuildSendEmailRequest(t *testing.T) {
	m, err := newMailer(testConfig(), &fakeSender{statusCode: 202}, nil)
	require.NoError(t, err)

	order := &entity.OrderFull{}
	order.Order.Reference = "AL-ABCDEF1234"
	order.Buyer.FirstName = "Ada"
	order.Buyer.LastName = "Lovelace"

	ser, err := m.buildSendEmailRequest("ada@example.com", OrderConfirmed, orderData(order))
	require.NoError(t, err)

	assert.Equal(t, "orders@aurelab.audio", ser.From)
	assert.Equal(t, "ada@example.com", ser.To)
	assert.Equal(t, "Your order has been confirmed", ser.Subject)
	assert.Contains(t, ser.Html, "AL-ABCDEF1234")
	assert.Contains(t, ser.Html, "Ada Lovelace")

	_, err = m.buildSendEmailRequest("ada@example.com", "nope.gohtml", nil)
	assert.Error(t, err)
}

func TestSendStatusMapping(t *testing.T) {
	ser := &entity.SendEmailRequest{
		To:      "ada@example.com",
		Html:    "<p>hi</p>",
		Subject: "hello",
	}

	m, err := newMailer(testConfig(), &fakeSender{statusCode: 202}, nil)
	require.NoError(t, err)
	require.NoError(t, m.send(ser))

	m, err = newMailer(testConfig(), &fakeSender{statusCode: 429}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, m.send(ser), gerr.MailApiLimitReached)

	m, err = newMailer(testConfig(), &fakeSender{statusCode: 500}, nil)
	require.NoError(t, err)
	assert.Error(t, m.send(ser))

	// Incomplete requests never hit the API.
	sender := &fakeSender{statusCode: 202}
	m, err = newMailer(testConfig(), sender, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, m.send(&entity.SendEmailRequest{To: "ada@example.com"}), gerr.BadMailRequest)
	assert.Empty(t, sender.sent)
}

func TestAllTemplatesParse(t *testing.T) {
	m, err := newMailer(testConfig(), &fakeSender{statusCode: 202}, nil)
	require.NoError(t, err)

	for tn := range templateSubjects {
		_, ok := m.templates[tn]
		assert.True(t, ok, "missing template %s", tn)
	}
}
