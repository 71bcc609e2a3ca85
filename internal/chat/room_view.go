package chat

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aetherboard/aetherboard/internal/realtime"
)

// Outcome reports what RoomView did with a change.
type Outcome int

const (
	// Dropped changes belong to another room or an earlier generation.
	Dropped Outcome = iota
	// Buffered changes arrived while the bulk read was in flight.
	Buffered
	// Applied changes altered the visible list.
	Applied
)

// Presence is one connected user as seen through the broadcast channel.
type Presence struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Room   string `json:"room,omitempty"`
	Online bool   `json:"online"`
}

// RoomView is the state container of the messaging page. It is not safe for
// concurrent use; a session owns exactly one.
//
// Every room switch bumps the generation. Changes are tagged with the
// generation of the subscription that produced them, so a late event from the
// previous room can never enter the list of the current one.
type RoomView struct {
	room       string
	generation uint64
	loading    bool
	pending    []realtime.Change

	messages map[string]realtime.MessageRecord
	order    []string
	seen     map[string]map[string]struct{}
	online   map[string]Presence
}

// NewRoomView returns an empty view with no active room.
func NewRoomView() *RoomView {
	return &RoomView{
		messages: make(map[string]realtime.MessageRecord),
		seen:     make(map[string]map[string]struct{}),
		online:   make(map[string]Presence),
	}
}

// Room is the active room, empty before the first join.
func (v *RoomView) Room() string { return v.room }

// Generation identifies the current room selection.
func (v *RoomView) Generation() uint64 { return v.generation }

// Loading reports whether the bulk read of the current room is outstanding.
func (v *RoomView) Loading() bool { return v.loading }

// Switch makes room active, clears per-room state and starts buffering until
// Load is called with the returned generation.
func (v *RoomView) Switch(room string) uint64 {
	v.generation++
	v.room = room
	v.loading = room != ""
	v.pending = nil
	v.messages = make(map[string]realtime.MessageRecord)
	v.order = nil
	v.seen = make(map[string]map[string]struct{})
	return v.generation
}

// Load installs the bulk read for generation gen and replays every change
// buffered while it was in flight. It returns false for a stale read.
func (v *RoomView) Load(gen uint64, snapshot []realtime.MessageRecord) bool {
	if gen != v.generation || !v.loading {
		return false
	}
	for _, msg := range snapshot {
		if msg.RoomID != v.room {
			continue
		}
		v.messages[msg.ID] = msg
	}
	v.loading = false
	pending := v.pending
	v.pending = nil
	for _, change := range pending {
		v.reduce(change)
	}
	v.reorder()
	return true
}

// Apply feeds one change of generation gen through the reducer.
func (v *RoomView) Apply(gen uint64, change realtime.Change) Outcome {
	if gen != v.generation || v.room == "" {
		return Dropped
	}
	if room, ok := changeRoom(change); !ok || room != v.room {
		return Dropped
	}
	if v.loading {
		v.pending = append(v.pending, change)
		return Buffered
	}
	if !v.reduce(change) {
		return Dropped
	}
	v.reorder()
	return Applied
}

func (v *RoomView) reduce(change realtime.Change) bool {
	switch change.Type {
	case realtime.ChangeInsert, realtime.ChangeUpdate:
		var msg realtime.MessageRecord
		if err := json.Unmarshal(change.Record, &msg); err != nil || msg.ID == "" {
			return false
		}
		v.messages[msg.ID] = msg
		return true
	case realtime.ChangeDelete:
		var old realtime.MessageRecord
		if err := json.Unmarshal(change.OldRecord, &old); err != nil || old.ID == "" {
			return false
		}
		if _, ok := v.messages[old.ID]; !ok {
			return false
		}
		delete(v.messages, old.ID)
		delete(v.seen, old.ID)
		return true
	}
	return false
}

func (v *RoomView) reorder() {
	order := make([]string, 0, len(v.messages))
	for id := range v.messages {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := v.messages[order[i]], v.messages[order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	v.order = order
}

// Messages returns the visible list, oldest first.
func (v *RoomView) Messages() []realtime.MessageRecord {
	out := make([]realtime.MessageRecord, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.messages[id])
	}
	return out
}

// MarkSeen records that userID saw the given messages of room. Acks for other
// rooms or unknown messages are ignored.
func (v *RoomView) MarkSeen(room, userID string, messageIDs []string) bool {
	if room != v.room || userID == "" {
		return false
	}
	changed := false
	for _, id := range messageIDs {
		if _, ok := v.messages[id]; !ok {
			continue
		}
		set := v.seen[id]
		if set == nil {
			set = make(map[string]struct{})
			v.seen[id] = set
		}
		if _, ok := set[userID]; !ok {
			set[userID] = struct{}{}
			changed = true
		}
	}
	return changed
}

// SeenBy lists who acknowledged a message, sorted.
func (v *RoomView) SeenBy(messageID string) []string {
	set := v.seen[messageID]
	out := make([]string, 0, len(set))
	for user := range set {
		out = append(out, user)
	}
	sort.Strings(out)
	return out
}

// SetPresence updates the online roster.
func (v *RoomView) SetPresence(p Presence) {
	if p.UserID == "" {
		return
	}
	if !p.Online {
		delete(v.online, p.UserID)
		return
	}
	v.online[p.UserID] = p
}

// Online returns the roster sorted by name.
func (v *RoomView) Online() []Presence {
	out := make([]Presence, 0, len(v.online))
	for _, p := range v.online {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func changeRoom(change realtime.Change) (string, bool) {
	raw := change.Record
	if change.Type == realtime.ChangeDelete {
		raw = change.OldRecord
	}
	var row struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return "", false
	}
	return row.RoomID, row.RoomID != ""
}

func (o Outcome) String() string {
	switch o {
	case Dropped:
		return "dropped"
	case Buffered:
		return "buffered"
	case Applied:
		return "applied"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}
