package social_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/push"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// TestNotificationLifecycle reads, marks and deletes follow notifications.
func TestNotificationLifecycle(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	alice, _ := newUser(t, baseURL, "alice@example.com")
	bob, b := newUser(t, baseURL, "bob@example.com")

	_, err := alice.Follow(ctx, b.ID)
	require.NoError(t, err)

	count, err := bob.UnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	page, err := bob.Notifications(ctx, socialsdk.PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	n := page.Items[0]
	require.Equal(t, "alice started following you", n.Content)
	require.False(t, n.Read)

	assertStatus(t, alice.MarkRead(ctx, n.ID), http.StatusNotFound)
	require.NoError(t, bob.MarkRead(ctx, n.ID))

	count, err = bob.UnreadCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, bob.DeleteNotification(ctx, n.ID))
	assertStatus(t, bob.DeleteNotification(ctx, n.ID), http.StatusNotFound)

	require.NoError(t, alice.Unfollow(ctx, b.ID))
	_, err = alice.Follow(ctx, b.ID)
	require.NoError(t, err)
	deleted, err := bob.DeleteAllNotifications(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func dialPush(t *testing.T, baseURL string, c *socialsdk.Client) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	header := http.Header{}
	header.Set("Cookie", authn.AccessCookie+"="+c.Cookie(authn.AccessCookie))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) push.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	var ev push.Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	return ev
}

// readUntil skips events of other types, such as presence broadcasts.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) push.Event {
	t.Helper()
	for {
		ev := readEvent(t, conn)
		if ev.Type == eventType {
			return ev
		}
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(t.Context(), conn, push.Event{Type: eventType, Payload: raw}))
}

// TestPushDeliversNotifications connects over the websocket and receives a
// follow notification and a relayed message.
func TestPushDeliversNotifications(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	alice, a := newUser(t, baseURL, "alice@example.com")
	bob, b := newUser(t, baseURL, "bob@example.com")

	bobConn := dialPush(t, baseURL, bob)
	sendEvent(t, bobConn, push.EventLogin, push.LoginPayload{UserID: b.ID})
	require.Equal(t, push.EventLogin, readUntil(t, bobConn, push.EventLogin).Type)

	_, err := alice.Follow(ctx, b.ID)
	require.NoError(t, err)

	ev := readUntil(t, bobConn, push.EventNotification)
	var n socialsdk.Notification
	require.NoError(t, json.Unmarshal(ev.Payload, &n))
	require.Equal(t, "alice started following you", n.Content)

	aliceConn := dialPush(t, baseURL, alice)
	sendEvent(t, aliceConn, push.EventLogin, push.LoginPayload{UserID: a.ID})
	readUntil(t, aliceConn, push.EventLogin)

	sendEvent(t, aliceConn, push.EventMessageS, push.MessageSPayload{To: b.ID, Message: "hi bob"})
	ev = readUntil(t, bobConn, push.EventMessageC)
	var msg push.MessageCPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &msg))
	require.Equal(t, a.ID, msg.From)
	require.Equal(t, "hi bob", msg.Message)
}

// TestPushRequiresSession rejects an anonymous upgrade.
func TestPushRequiresSession(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(baseURL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
