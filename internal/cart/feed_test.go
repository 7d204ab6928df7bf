package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_SubscribeReplaysCurrentValue(t *testing.T) {
	feed := NewFeed(42)

	var got []int
	cancel := feed.Subscribe(func(v int) { got = append(got, v) })
	defer cancel()

	// A late subscriber receives the current value immediately, not a zero.
	require.Equal(t, []int{42}, got)
}

func TestFeed_PublishDeliversInOrder(t *testing.T) {
	feed := NewFeed(0)

	var got []int
	cancel := feed.Subscribe(func(v int) { got = append(got, v) })
	defer cancel()

	feed.Publish(1)
	feed.Publish(2)
	feed.Publish(3)

	assert.Equal(t, []int{0, 1, 2, 3}, got)
	assert.Equal(t, 3, feed.Current())
}

func TestFeed_NoCoalescing(t *testing.T) {
	feed := NewFeed(0)

	var got []int
	cancel := feed.Subscribe(func(v int) { got = append(got, v) })
	defer cancel()

	// Repeated identical values are all delivered.
	feed.Publish(5)
	feed.Publish(5)

	assert.Equal(t, []int{0, 5, 5}, got)
}

func TestFeed_CancelStopsDelivery(t *testing.T) {
	feed := NewFeed(0)

	var got []int
	cancel := feed.Subscribe(func(v int) { got = append(got, v) })

	feed.Publish(1)
	cancel()
	feed.Publish(2)

	assert.Equal(t, []int{0, 1}, got)
}

func TestFeed_MultipleSubscribers(t *testing.T) {
	feed := NewFeed("start")

	var a, b []string
	cancelA := feed.Subscribe(func(v string) { a = append(a, v) })
	defer cancelA()
	cancelB := feed.Subscribe(func(v string) { b = append(b, v) })
	defer cancelB()

	feed.Publish("next")

	assert.Equal(t, []string{"start", "next"}, a)
	assert.Equal(t, []string{"start", "next"}, b)
}
