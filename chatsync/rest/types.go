package rest

// CurrentUser is the authenticated identity.
type CurrentUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// MessageRecord is one historical message as the directory returns it.
type MessageRecord struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatUser is one directory entry: the peer of a 1:1 room plus that room's
// message history. RoomID may be absent when no conversation exists yet.
type ChatUser struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"room_id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	ProfilePicture string          `json:"profile_picture"`
	Role           string          `json:"role"`
	Messages       []MessageRecord `json:"messages"`
}

// SearchResult is one match from the participant search endpoint.
type SearchResult struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
	Role           string `json:"role"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
