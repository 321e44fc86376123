package feed

// CursorState is the pagination position of one feed walk. Token is empty
// before the first request. HasMore == false is terminal.
type CursorState struct {
	Token   string `json:"token,omitempty"`
	HasMore bool   `json:"has_more"`
}

// Exhausted reports whether no further page may be requested.
func (s CursorState) Exhausted() bool { return !s.HasMore }

// CursorEqualFunc decides whether a freshly discovered cursor fails to
// advance past the previous one.
type CursorEqualFunc func(previous, next string) bool

// ExactCursor compares cursors as plain strings.
func ExactCursor(previous, next string) bool { return previous == next }

// advanceCursor applies the termination rule shared by all cursor
// extractors: a missing token or a token equal to the previous one stops
// pagination; anything else advances.
func advanceCursor(previous, token string, found bool, equal CursorEqualFunc) CursorState {
	if equal == nil {
		equal = ExactCursor
	}
	if !found || token == "" || equal(previous, token) {
		return CursorState{Token: previous, HasMore: false}
	}
	return CursorState{Token: token, HasMore: true}
}
