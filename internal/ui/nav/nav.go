// Package nav implements the stack of views the application navigates.
package nav

import tea "github.com/charmbracelet/bubbletea"

// View is one screen on the navigation stack.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string

	// Title is shown in the header while the view is on top.
	Title() string

	// Hints is shown in the status bar while the view is on top.
	Hints() string
}

// InputCapturer is implemented by views that currently consume all key
// presses, such as a focused form. Global shortcuts are disabled for them.
type InputCapturer interface {
	CapturesInput() bool
}

// PushMsg asks the host to put View on top of the stack.
type PushMsg struct{ View View }

// PopMsg asks the host to remove the top view.
type PopMsg struct{}

// ReplaceMsg asks the host to replace the top view with View.
type ReplaceMsg struct{ View View }

// ResumedMsg is sent to a view when it becomes the top view again.
type ResumedMsg struct{}

// Push returns a command emitting PushMsg.
func Push(v View) tea.Cmd {
	return func() tea.Msg { return PushMsg{View: v} }
}

// Pop returns a command emitting PopMsg.
func Pop() tea.Cmd {
	return func() tea.Msg { return PopMsg{} }
}

// Replace returns a command emitting ReplaceMsg.
func Replace(v View) tea.Cmd {
	return func() tea.Msg { return ReplaceMsg{View: v} }
}

// Stack is an ordered list of views; the last one is on top.
type Stack struct {
	views []View
}

// Len returns the number of views.
func (s *Stack) Len() int { return len(s.views) }

// Top returns the top view, or nil when the stack is empty.
func (s *Stack) Top() View {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[len(s.views)-1]
}

// Push puts v on top.
func (s *Stack) Push(v View) {
	s.views = append(s.views, v)
}

// Pop removes and returns the top view.
func (s *Stack) Pop() View {
	if len(s.views) == 0 {
		return nil
	}
	top := s.views[len(s.views)-1]
	s.views[len(s.views)-1] = nil
	s.views = s.views[:len(s.views)-1]
	return top
}

// SetTop replaces the top view, typically with the result of its Update.
// On an empty stack it pushes v.
func (s *Stack) SetTop(v View) {
	if len(s.views) == 0 {
		s.Push(v)
		return
	}
	s.views[len(s.views)-1] = v
}

// Titles returns the titles from bottom to top.
func (s *Stack) Titles() []string {
	out := make([]string, len(s.views))
	for i, v := range s.views {
		out[i] = v.Title()
	}
	return out
}
