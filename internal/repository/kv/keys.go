// Package kv implements the repository interfaces on the key-value store:
// one list per room for messages, one hash each for the presence directory,
// the room directory, and the account tables.
package kv

// Store key layout. Everything the system persists lives under these keys.
const (
	usersKey     = "chat:users"     // hash: user id -> presence record
	roomsKey     = "chat:rooms"     // hash: room id -> room record
	accountsKey  = "chat:accounts"  // hash: account id -> account record
	addressesKey = "chat:addresses" // hash: network address -> account id
	usernamesKey = "chat:usernames" // hash: lowercased username -> account id

	// GlobalChannel carries directory-wide notifications (presence changes,
	// room catalog changes).
	GlobalChannel = "chat:updates"
)

// messagesKey is the per-room message list.
func messagesKey(roomID string) string {
	return "chat:messages:" + roomID
}

// RoomChannel is the per-room notification channel; new messages for a room
// are published here.
func RoomChannel(roomID string) string {
	return "chat:updates:" + roomID
}

// Notification is the payload published on update channels and mirrored
// verbatim into the SSE stream.
type Notification struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	NotifyNewMessage = "new-message"
	NotifyUserUpdate = "user-update"
	NotifyUserRemove = "user-remove"
	NotifyRoomUpdate = "room-update"
	NotifyRoomRemove = "room-remove"
)
