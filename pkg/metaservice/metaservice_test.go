package metaservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/types"
)

func TestSubscribeReceivesPublishedTagPush(t *testing.T) {
	b := NewBroker(0)
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.PublishTag(&types.TagSchema{Space: 1, TagID: 2, Version: 3, Name: "person"})

	select {
	case p := <-sub:
		require.Equal(t, KindTag, p.Kind)
		require.NotNil(t, p.Tag)
		assert.Equal(t, types.SchemaVersion(3), p.Tag.Version)
		assert.Nil(t, p.Edge)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for push")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker(0)
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	// channel must be closed, not leaked open
	_, ok := <-sub
	assert.False(t, ok)
}

func TestSubscriberCountTracksActiveSubscriptions(t *testing.T) {
	b := NewBroker(0)
	b.Start()
	defer b.Stop()

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Unsubscribe(s1)
	assert.Equal(t, 1, b.SubscriberCount())
	b.Unsubscribe(s2)
}
