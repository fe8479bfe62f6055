package util_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/request"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/util"
)

func TestCacheKeys_Shapes(t *testing.T) {
	RegisterTestingT(t)

	Expect(util.TodoKey("abc")).To(Equal("todo:abc"))
	Expect(util.UserStatsKey("u1")).To(Equal("user:u1:stats"))
	Expect(util.UserPattern("u1")).To(Equal("user:u1:*"))
}

func TestUserTodosKey_DistinguishesQueries(t *testing.T) {
	RegisterTestingT(t)

	base := request.TodoQuery{}.WithDefaults()
	key := util.UserTodosKey("u1", base)

	Expect(key).To(HavePrefix("user:u1:todos:page:1:"))
	Expect(key).To(Equal(util.UserTodosKey("u1", request.TodoQuery{}.WithDefaults())))

	second := base
	second.Page = 2
	Expect(util.UserTodosKey("u1", second)).To(HavePrefix("user:u1:todos:page:2:"))

	filtered := base
	filtered.Search = "milk"
	Expect(util.UserTodosKey("u1", filtered)).NotTo(Equal(key))

	Expect(util.UserTodosKey("u2", base)).NotTo(Equal(key))
}

func TestPassword_RoundTrip(t *testing.T) {
	RegisterTestingT(t)

	hash, err := util.HashPassword("secret1")
	Expect(err).To(BeNil())
	Expect(hash).NotTo(Equal("secret1"))
	Expect(util.PasswordMatches(hash, "secret1")).To(BeTrue())
	Expect(util.PasswordMatches(hash, "wrong")).To(BeFalse())
	Expect(util.PasswordMatches("not-a-hash", "secret1")).To(BeFalse())
}
