package memory

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestCache_SetGetDelete(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	c := New(time.Minute)

	Expect(c.Set(ctx, "todo:1", []byte(`{"id":"1"}`), time.Minute)).To(Succeed())

	value, found, err := c.Get(ctx, "todo:1")
	Expect(err).To(BeNil())
	Expect(found).To(BeTrue())
	Expect(string(value)).To(Equal(`{"id":"1"}`))

	Expect(c.Delete(ctx, "todo:1")).To(Succeed())

	_, found, err = c.Get(ctx, "todo:1")
	Expect(err).To(BeNil())
	Expect(found).To(BeFalse())
}

func TestCache_EntriesExpire(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	c := New(time.Minute)

	Expect(c.Set(ctx, "user:1:stats", []byte("{}"), 20*time.Millisecond)).To(Succeed())

	Eventually(func() bool {
		_, found, _ := c.Get(ctx, "user:1:stats")
		return found
	}).WithTimeout(time.Second).Should(BeFalse())
}

func TestCache_DeletePatternOnlyTouchesMatchingUser(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	c := New(time.Minute)

	keys := []string{
		`user:1:todos:page:1:{"search":"a/b"}`,
		"user:1:stats",
		"user:10:stats",
		"user:2:todos:page:1:{}",
		"todo:abc",
	}
	for _, key := range keys {
		Expect(c.Set(ctx, key, []byte("x"), 0)).To(Succeed())
	}

	Expect(c.DeletePattern(ctx, "user:1:*")).To(Succeed())

	remaining := []string{}
	for _, key := range keys {
		if _, found, _ := c.Get(ctx, key); found {
			remaining = append(remaining, key)
		}
	}

	Expect(remaining).To(ConsistOf("user:10:stats", "user:2:todos:page:1:{}", "todo:abc"))
}

func TestCache_StoredBytesAreCopied(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	c := New(time.Minute)
	value := []byte("abc")

	Expect(c.Set(ctx, "k", value, 0)).To(Succeed())
	value[0] = 'z'

	stored, _, _ := c.Get(ctx, "k")
	Expect(string(stored)).To(Equal("abc"))
}
