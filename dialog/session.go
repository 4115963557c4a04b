package dialog

import "github.com/helikon/arxdialog/core"

// Session holds the conversational state of one user dialogue: the
// document under discussion, the visible transcript, and the flattened
// history fed to the model.
type Session struct {
	DocumentKey string
	Transcript  []core.Turn
	History     []string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// appendTurn records a user/assistant pair on the transcript only.
func (s *Session) appendTurn(user, assistant string) {
	s.Transcript = append(s.Transcript, core.Turn{User: user, Assistant: assistant})
}

// appendExchange records a completed exchange on both the transcript and
// the model history.
func (s *Session) appendExchange(user, assistant string) {
	s.appendTurn(user, assistant)
	s.History = append(s.History, user, assistant)
}

// truncateHistory keeps only the most recent rounds of model history.
func (s *Session) truncateHistory(maxRounds int) {
	limit := maxRounds * 2
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}
