package tui

import (
	"strings"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/mobile"
)

// parseInput reads "title words !priority #tag #tag". Unknown !words stay in the title.
func parseInput(line string) mobile.TodoInput {
	var in mobile.TodoInput
	var title []string

	for _, word := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(word, "#") && len(word) > 1:
			in.Tags = append(in.Tags, strings.TrimPrefix(word, "#"))
		case strings.HasPrefix(word, "!") && mobile.Priority(word[1:]).IsValid():
			in.Priority = mobile.Priority(word[1:])
		default:
			title = append(title, word)
		}
	}

	in.Title = strings.Join(title, " ")

	return in
}

func formatInput(t mobile.Todo) string {
	parts := []string{t.Title, "!" + string(t.Priority)}
	for _, tag := range t.Tags {
		parts = append(parts, "#"+tag)
	}

	return strings.Join(parts, " ")
}
