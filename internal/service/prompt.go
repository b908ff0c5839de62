package service

import "github.com/1broseidon/tilevim/internal/command"

// HintState is the completion state shown by the prompt.
type HintState struct {
	Candidates []string `json:"candidates"`
	Index      int      `json:"index"`
	Input      string   `json:"input"`
	AutoHint   bool     `json:"auto_hint"`
}

func (s *Service) hintState(text string) HintState {
	st := HintState{Index: -1, Input: text}
	if !s.hints.Hinting() {
		return st
	}
	st.Candidates = s.hints.Candidates()
	st.Index = s.hints.Index()
	st.AutoHint = s.hints.ShouldAutoHint()
	if st.Index >= 0 {
		st.Input = s.hints.MountInput()
	}
	return st
}

// Hint starts completion of text. Typing ends any history navigation.
// Only the window list is re-read; nothing is tiled or focused.
func (s *Service) Hint(text string) HintState {
	s.history.Reset()
	if err := s.readWindows(); err != nil {
		s.logger.Debug().Err(err).Msg("hinting without a fresh window list")
	}
	s.hints.Hint(text)
	return s.hintState(text)
}

// Cycle moves the completion highlight. When idle it starts completing
// text first.
func (s *Service) Cycle(text string, dir int) HintState {
	if !s.hints.Hinting() {
		s.Hint(text)
	}
	s.hints.Cycle(dir)
	return s.hintState(text)
}

// ClearHint drops completion state.
func (s *Service) ClearHint() {
	s.hints.Clear()
}

// NavigateHistory moves through history entries starting with the text
// typed when navigation began.
func (s *Service) NavigateHistory(dir int, text string) string {
	s.hints.Clear()
	return s.history.Navigate(dir, text)
}

// History returns the history entries, oldest first.
func (s *Service) History() []string {
	return s.history.Entries()
}

// Submit runs a command line typed in the prompt. A single remaining
// completion candidate is taken when auto hinting is on.
func (s *Service) Submit(text string, timestamp uint32) []command.Message {
	if s.settings.AutoHint && s.hints.Hinting() && s.hints.ShouldAutoHint() {
		if s.hints.Index() < 0 {
			s.hints.Cycle(1)
		}
		text = s.hints.MountInput()
	}
	s.hints.Clear()
	s.history.Reset()
	s.history.Append(text)
	return s.Dispatch(text, timestamp)
}
