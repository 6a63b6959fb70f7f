package handler

import tele "gopkg.in/telebot.v3"

const helpText = "📖 Commands\n" +
	"━━━━━━━━━━━━━━━\n" +
	"🎴 Catching\n" +
	"/catch <name> (or /ac) - catch the character in the chat\n" +
	"/hint - first letters of its name\n\n" +
	"📦 Collection\n" +
	"/collection - your characters\n" +
	"/info <index> - stats of one character\n" +
	"/release <index> - release for coins\n" +
	"/cc - release everything\n\n" +
	"⚔️ Battles\n" +
	"/battle - reply to someone to challenge them\n" +
	"/fight <index> - pick your fighter\n" +
	"/flee - give up the current battle\n\n" +
	"💰 Economy\n" +
	"/bal - your coins\n" +
	"/profile - your level\n" +
	"/leaderboard - richest collectors\n" +
	"━━━━━━━━━━━━━━━"

// HandleCommands handles /commands and /start.
func HandleCommands(c tele.Context) error {
	return c.Reply(helpText)
}
