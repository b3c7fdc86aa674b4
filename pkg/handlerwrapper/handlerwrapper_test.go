package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct {
	N int `json:"n"`
}

func TestWrapTransformingTyped(t *testing.T) {
	var gotCorrelation string
	h := WrapTransformingTyped("test.ping", nil, nil, nil, func(ctx context.Context, p *ping) ([]Result, error) {
		gotCorrelation = attr.CorrelationID(ctx)
		if p.N < 0 {
			return nil, errors.New("negative")
		}
		return []Result{{Topic: "pong.c1", Payload: ping{N: p.N + 1}, Metadata: map[string]string{"competition_id": "c1"}}}, nil
	})

	t.Run("transforms and propagates correlation", func(t *testing.T) {
		msg := message.NewMessage("m1", []byte(`{"n":1}`))
		msg.Metadata.Set(eventbus.CorrelationIDKey, "corr-9")

		out, err := h(msg)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "corr-9", gotCorrelation)
		assert.Equal(t, "pong.c1", out[0].Metadata.Get(eventbus.TopicKey))
		assert.Equal(t, "corr-9", out[0].Metadata.Get(eventbus.CorrelationIDKey))
		assert.Equal(t, "c1", out[0].Metadata.Get("competition_id"))

		var p ping
		require.NoError(t, json.Unmarshal(out[0].Payload, &p))
		assert.Equal(t, 2, p.N)
	})

	t.Run("handler error is returned for redelivery", func(t *testing.T) {
		_, err := h(message.NewMessage("m2", []byte(`{"n":-1}`)))
		assert.Error(t, err)
	})

	t.Run("undecodable payload is acknowledged", func(t *testing.T) {
		out, err := h(message.NewMessage("m3", []byte(`not json`)))
		assert.NoError(t, err)
		assert.Empty(t, out)
	})
}
