package nav

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type stubView struct{ title string }

func (v stubView) Init() tea.Cmd                  { return nil }
func (v stubView) Update(tea.Msg) (View, tea.Cmd) { return v, nil }
func (v stubView) View() string                   { return v.title }
func (v stubView) Title() string                  { return v.title }
func (v stubView) Hints() string                  { return "" }

func TestStack(t *testing.T) {
	var s Stack
	require.Nil(t, s.Top())
	require.Nil(t, s.Pop())

	s.Push(stubView{"accounts"})
	s.Push(stubView{"detail"})
	require.Equal(t, 2, s.Len())
	require.Equal(t, "detail", s.Top().Title())
	require.Equal(t, []string{"accounts", "detail"}, s.Titles())

	s.SetTop(stubView{"setup"})
	require.Equal(t, "setup", s.Top().Title())

	require.Equal(t, "setup", s.Pop().Title())
	require.Equal(t, "accounts", s.Top().Title())
	require.Equal(t, 1, s.Len())
}

func TestCommands(t *testing.T) {
	v := stubView{"x"}
	require.Equal(t, PushMsg{View: v}, Push(v)())
	require.Equal(t, PopMsg{}, Pop()())
	require.Equal(t, ReplaceMsg{View: v}, Replace(v)())
}
