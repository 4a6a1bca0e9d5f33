package domain

// Thread is a discussion-forum conversation. The notifier only needs its id.
type Thread struct {
	ID string `json:"id"`
}
