package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownHooksRunInOrder(t *testing.T) {
	var order []string

	hooks := &ShutdownHooks{}
	hooks.Add("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	hooks.Add("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	hooks.Execute(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestShutdownHooksContinueAfterFailure(t *testing.T) {
	var order []string

	hooks := &ShutdownHooks{}
	hooks.Add("failing", func(context.Context) error {
		order = append(order, "failing")
		return errors.New("boom")
	})
	hooks.Add("after", func(context.Context) error {
		order = append(order, "after")
		return nil
	})

	hooks.Execute(context.Background())

	assert.Equal(t, []string{"failing", "after"}, order)
}

func TestShutdownHooksIgnoreNil(t *testing.T) {
	hooks := &ShutdownHooks{}
	hooks.Add("nil", nil)

	// executing must not panic
	hooks.Execute(context.Background())
	assert.Empty(t, hooks.hooks)
}
