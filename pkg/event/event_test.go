package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.Listen("cart.changed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	d.Listen("cart.changed", func(context.Context, any) { panic("listener bug") })
	d.Listen("cart.changed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	d.Listen("theme.changed", func(context.Context, any) { got = append(got, "theme") })

	d.Fire(context.Background(), "cart.changed", "v1")

	assert.Equal(t, []string{"a:v1", "b:v1"}, got)
}
