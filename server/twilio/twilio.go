package twilio

import (
	"fmt"
	"sync"

	"github.com/Daskott/addressbook/server/logger"
	"github.com/Daskott/addressbook/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var logg = logger.NewLogger()

type Message struct {
	To   string
	Body string
}

type ClientWrapper struct {
	client   *twilio.RestClient
	config   shared.TwilioConfig
	testMode bool

	mu           sync.Mutex
	sentMessages []Message
}

// NewClient returns a twilio client. In 'testMode' messages are recorded
// instead of being sent.
func NewClient(config shared.TwilioConfig, testMode bool) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		client:   client,
		config:   config,
		testMode: testMode,
	}
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	if cw.testMode {
		cw.mu.Lock()
		defer cw.mu.Unlock()

		cw.sentMessages = append(cw.sentMessages, Message{To: to, Body: msg})
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("SendMessage: %v", err)
	}

	if resp.ErrorMessage != nil {
		return fmt.Errorf("SendMessage: %v", *resp.ErrorMessage)
	}

	logg.Infof("SMS sent, sid=%v", stringValue(resp.Sid))
	return nil
}

// SentMessages returns the messages recorded in test mode
func (cw *ClientWrapper) SentMessages() []Message {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	return append([]Message{}, cw.sentMessages...)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
