package onebot

// Event is an inbound bridge push. Only the fields the bot reads are
// declared; everything else in the payload is ignored.
type Event struct {
	Time        int64  `json:"time"`
	SelfID      int64  `json:"self_id"`
	PostType    string `json:"post_type"`
	MessageType string `json:"message_type"`
	GroupID     int64  `json:"group_id"`
	UserID      int64  `json:"user_id"`
	RawMessage  string `json:"raw_message"`
}

// IsGroupMessage reports whether the event is a group chat message the
// command dispatcher should look at.
func (e Event) IsGroupMessage() bool {
	return e.PostType == "message" && e.MessageType == "group" && e.GroupID != 0
}
