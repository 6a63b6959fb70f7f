package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/character"
	"anime-battle-bot/internal/pkg/confirm"
	"anime-battle-bot/internal/service"
)

func newSpawnHandlers(minMessages int) (*CollectionHandler, *AdminHandler, *service.SpawnService) {
	spawns := service.NewSpawnService(character.NewSource(7), minMessages, minMessages)
	collection := service.NewCollectionService(nil, nil, nil, character.NewSource(7))
	ch := NewCollectionHandler(spawns, collection, confirm.NewStore(time.Minute), confirm.NewStore(time.Minute))
	return ch, NewAdminHandler(spawns, &Gate{}), spawns
}

func TestCollectionHandler_TextSpawnsAtThreshold(t *testing.T) {
	h, _, spawns := newSpawnHandlers(3)

	var last *fakeContext
	for i := 0; i < 3; i++ {
		last = &fakeContext{sender: aliceUser, chat: groupChat}
		require.NoError(t, h.HandleText(last))
		if i < 2 {
			assert.Empty(t, last.sends)
		}
	}
	require.Len(t, last.sends, 1)
	assert.Contains(t, last.sends[0], "appeared")

	sp, ok := spawns.Active(groupChat.ID)
	require.True(t, ok)

	hint := &fakeContext{sender: aliceUser, chat: groupChat}
	require.NoError(t, h.HandleHint(hint))
	assert.Equal(t, "💡 Hint: "+character.Hint(sp.Name), hint.lastReply())
}

func TestCollectionHandler_TextIgnoresPrivateAndBots(t *testing.T) {
	h, _, spawns := newSpawnHandlers(1)

	private := &fakeContext{sender: aliceUser, chat: &tele.Chat{ID: 1, Type: tele.ChatPrivate}}
	require.NoError(t, h.HandleText(private))
	botMsg := &fakeContext{sender: &tele.User{ID: 99, IsBot: true}, chat: groupChat}
	require.NoError(t, h.HandleText(botMsg))

	_, ok := spawns.Active(groupChat.ID)
	assert.False(t, ok)
}

func TestCollectionHandler_CatchErrors(t *testing.T) {
	h, admin, _ := newSpawnHandlers(25)

	empty := &fakeContext{sender: aliceUser, chat: groupChat}
	require.NoError(t, h.HandleCatch(empty))
	assert.Contains(t, empty.lastReply(), "Usage")

	none := &fakeContext{sender: aliceUser, chat: groupChat, args: []string{"Goku"}}
	require.NoError(t, h.HandleCatch(none))
	assert.Equal(t, "❌ No character to catch here!", none.lastReply())

	spawn := &fakeContext{sender: &tele.User{ID: 42}, chat: groupChat}
	require.NoError(t, admin.HandleSpawn(spawn))
	require.Len(t, spawn.sends, 1)

	wrong := &fakeContext{sender: aliceUser, chat: groupChat, args: []string{"definitely", "nobody"}}
	require.NoError(t, h.HandleCatch(wrong))
	assert.Equal(t, "❌ Wrong name!", wrong.lastReply())
}

func TestCollectionHandler_UsageReplies(t *testing.T) {
	h, _, _ := newSpawnHandlers(25)

	for name, handle := range map[string]func(tele.Context) error{
		"info":    h.HandleInfo,
		"release": h.HandleRelease,
	} {
		t.Run(name, func(t *testing.T) {
			c := &fakeContext{sender: aliceUser, chat: groupChat, args: []string{"zero"}}
			require.NoError(t, handle(c))
			assert.True(t, strings.HasPrefix(c.lastReply(), "❌ Usage"), c.lastReply())
		})
	}
}

func TestCollectionHandler_CallbackOwnership(t *testing.T) {
	h, _, _ := newSpawnHandlers(25)
	p := h.confirms.Ask(aliceUser.ID, ActionClear, 0)

	other := &fakeContext{
		sender:   bobUser,
		chat:     groupChat,
		message:  &tele.Message{Text: "⚠️ Release all?"},
		callback: &tele.Callback{Data: "\f" + CallbackConfirmYes + "|" + p.ID},
	}
	require.NoError(t, h.HandleCallback(other))
	require.Len(t, other.responses, 1)
	assert.True(t, other.responses[0].ShowAlert)
	assert.Equal(t, 1, h.confirms.Len(), "someone else's press leaves the prompt pending")

	no := &fakeContext{
		sender:   aliceUser,
		chat:     groupChat,
		message:  &tele.Message{Text: "⚠️ Release all?"},
		callback: &tele.Callback{Data: "\f" + CallbackConfirmNo + "|" + p.ID},
	}
	require.NoError(t, h.HandleCallback(no))
	assert.Equal(t, []string{"👌 Cancelled."}, no.edits)
	assert.Zero(t, h.confirms.Len())

	again := &fakeContext{
		sender:   aliceUser,
		chat:     groupChat,
		message:  &tele.Message{Text: "⚠️ Release all?"},
		callback: &tele.Callback{Data: "\f" + CallbackConfirmYes + "|" + p.ID},
	}
	require.NoError(t, h.HandleCallback(again))
	require.Len(t, again.edits, 1)
	assert.Contains(t, again.edits[0], "Expired")
}

func TestAdminHandler_LockUnlock(t *testing.T) {
	gate := &Gate{}
	h := NewAdminHandler(nil, gate)
	admin := func() *fakeContext { return &fakeContext{sender: &tele.User{ID: 42}, chat: groupChat} }

	c := admin()
	require.NoError(t, h.HandleLock(c))
	assert.Contains(t, c.lastReply(), "Bot locked")
	assert.True(t, gate.Locked())

	c = admin()
	require.NoError(t, h.HandleLock(c))
	assert.Contains(t, c.lastReply(), "already locked")

	c = admin()
	require.NoError(t, h.HandleUnlock(c))
	assert.Contains(t, c.lastReply(), "unlocked")
	assert.False(t, gate.Locked())
}

func TestAdminHandler_SpawnRefusedInPrivate(t *testing.T) {
	_, admin, spawns := newSpawnHandlers(25)
	c := &fakeContext{sender: &tele.User{ID: 42}, chat: &tele.Chat{ID: 42, Type: tele.ChatPrivate}}
	require.NoError(t, admin.HandleSpawn(c))
	assert.Contains(t, c.lastReply(), "groups")
	_, ok := spawns.Active(42)
	assert.False(t, ok)
}
