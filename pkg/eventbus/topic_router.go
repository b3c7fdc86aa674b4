package eventbus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicRouter publishes each message on the topic stored in its metadata,
// falling back to the requested topic. Handlers registered on a watermill
// router with an empty publish topic rely on it.
type TopicRouter struct {
	Publisher message.Publisher
}

// Publish implements message.Publisher.
func (r TopicRouter) Publish(topic string, messages ...*message.Message) error {
	for _, m := range messages {
		target := m.Metadata.Get(TopicKey)
		if target == "" {
			target = topic
		}
		if target == "" {
			return fmt.Errorf("message %s has no topic", m.UUID)
		}
		if err := r.Publisher.Publish(target, m); err != nil {
			return err
		}
	}
	return nil
}

// Close implements message.Publisher.
func (r TopicRouter) Close() error {
	return r.Publisher.Close()
}
