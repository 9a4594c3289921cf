package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPSender_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSMTPSender("mail.local", "2525", "", "", "blog@local")
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a)
		return nil
	}

	err := s.Send(PostDeleted("author@local", "presslog", "Hello", "mod"))
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "blog@local", gotFrom)
	assert.Equal(t, []string{"author@local"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Your post has been deleted\r\n")
	assert.Contains(t, string(gotMsg), `Your post "Hello" on presslog has been deleted by mod.`)
}

func TestSMTPSender_Errors(t *testing.T) {
	s := NewSMTPSender("mail.local", "25", "user", "pw", "blog@local")
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.Send(Message{To: "a@b.c", Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")

	err = s.Send(Message{Subject: "x"})
	assert.ErrorContains(t, err, "no recipient")
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{Log: zap.NewNop()}.Send(Message{To: "a@b.c"}))
}
