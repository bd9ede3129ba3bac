package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/pkg/errors"
)

func validMessage() chat.Message {
	return chat.Message{
		Seq:       1,
		MessageID: "m-1",
		SessionID: "s-1",
		Timestamp: time.Now(),
		Sender:    chat.SenderUser,
		Text:      "What should I cook tonight?",
	}
}

func TestMessageValidate(t *testing.T) {
	assert.NoError(t, validMessage().Validate())
}

func TestMessageValidateRejectsNoSessionSentinel(t *testing.T) {
	m := validMessage()
	m.SessionID = chat.NoSessionID

	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestMessageValidateRejectsMissingMessageID(t *testing.T) {
	m := validMessage()
	m.MessageID = ""

	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestMessageValidateRejectsUnknownSender(t *testing.T) {
	m := validMessage()
	m.Sender = chat.Sender("bot")

	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "m-1", validMessage().Key())
}

func TestFailureCategoryRecovery(t *testing.T) {
	tests := []struct {
		category    chat.FailureCategory
		retryable   bool
		continuable bool
	}{
		{chat.FailureTimeout, true, false},
		{chat.FailureNetwork, true, false},
		{chat.FailureOverloaded, true, false},
		{chat.FailureInvalidResponse, true, false},
		{chat.FailureTruncated, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.category.Retryable())
			assert.Equal(t, tt.continuable, tt.category.Continuable())
		})
	}
}
