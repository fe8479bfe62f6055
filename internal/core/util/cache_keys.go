package util

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
)

const (
	EntityTTL = 300 * time.Second
	ListTTL   = 300 * time.Second
	StatsTTL  = 60 * time.Second
)

func TodoKey(id string) string {
	return "todo:" + id
}

// UserTodosKey identifies one cached page of a user's list. The page number is
// part of the key prefix; every other query field is encoded as JSON so two
// queries that differ in any filter never share an entry.
func UserTodosKey(userID string, query request.TodoQuery) string {
	rest, _ := json.Marshal(query)
	return fmt.Sprintf("user:%s:todos:page:%d:%s", userID, query.Page, rest)
}

func UserStatsKey(userID string) string {
	return fmt.Sprintf("user:%s:stats", userID)
}

func UserPattern(userID string) string {
	return fmt.Sprintf("user:%s:*", userID)
}
