package twilio

import (
	"testing"

	"github.com/Daskott/addressbook/shared"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageInTestMode(t *testing.T) {
	client := NewClient(shared.TwilioConfig{MessagingServiceSid: "MG-test"}, true)

	assert.Nil(t, client.SendMessage("+12345678900", "hello"))
	assert.Nil(t, client.SendMessage("+22345678900", "world"))

	assert.Equal(t, []Message{
		{To: "+12345678900", Body: "hello"},
		{To: "+22345678900", Body: "world"},
	}, client.SentMessages())
}
