package models

// Timestamps are milliseconds since the Unix epoch throughout. The polling
// contract compares them directly against the client's "since" cursor, so a
// single integer representation avoids timezone/format drift between what
// the store holds and what goes over the wire.

// FileAttachment describes a file shared in a message. The file body itself
// lives wherever URL points; the chat only carries the reference.
type FileAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// MessageKind distinguishes user-authored messages from server-generated
// announcements (joins, leaves).
type MessageKind string

const (
	KindMessage MessageKind = "message"
	KindSystem  MessageKind = "system"
)

// Message is one entry in a room's append-only sequence. A message belongs to
// exactly one room and must carry content or a file, never neither. Messages
// are never mutated after creation; only the sweeper removes them.
type Message struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"roomId"`
	Content   string          `json:"content,omitempty"`
	Sender    string          `json:"sender"`
	SenderID  string          `json:"senderId"`
	Timestamp int64           `json:"timestamp"`
	Kind      MessageKind     `json:"kind"`
	File      *FileAttachment `json:"file,omitempty"`
}

// HasBody reports whether the message carries anything worth delivering.
func (m *Message) HasBody() bool {
	return m.Content != "" || m.File != nil
}

// User is a presence record. "Online" is derived from LastSeen at query time,
// never stored.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastSeen int64  `json:"lastSeen"`
	Room     string `json:"room,omitempty"`
}

// Account binds a network address to a stable identity so a returning client
// is recognized without credentials. At most one account per address.
type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Address   string `json:"address"`
	CreatedAt int64  `json:"createdAt"`
	LastLogin int64  `json:"lastLogin"`
}

// Room is a named message channel with its own membership. Members is a set
// in spirit; order carries no meaning.
type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"createdBy,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	Private     bool     `json:"private"`
	Members     []string `json:"members"`
}

// HasMember reports whether userID is in the room's member set.
func (r *Room) HasMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}
