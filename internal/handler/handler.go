// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"
)

// replyTimeout bounds the storage work behind one command.
const replyTimeout = 10 * time.Second

const msgInternalError = "❌ Something went wrong, please try again later."

// Messenger is the part of *tele.Bot the handlers push unsolicited messages through.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), replyTimeout)
}

// userName returns the name shown for a Telegram user.
func userName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "User" + strconv.FormatInt(u.ID, 10)
	}
	return name
}

// parseIndex reads a 1-based index from the first command argument.
func parseIndex(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// callbackData splits "unique|payload" as produced by ReplyMarkup.Data, dropping
// the \f prefix telebot adds.
func callbackData(c tele.Context) (unique, payload string) {
	cb := c.Callback()
	if cb == nil {
		return "", ""
	}
	data := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ = strings.Cut(data, "|")
	return unique, payload
}

// storedMessage addresses a message sent earlier by id.
func storedMessage(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
}

func alert(c tele.Context, text string) error {
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}
