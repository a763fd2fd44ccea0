package output

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests run without a terminal, so the action executes inline.
func TestRunWithSpinner_NoTTYRunsAction(t *testing.T) {
	called := false
	err := RunWithSpinner(context.Background(), func() error {
		called = true
		return nil
	}, WithTitle("Installing"))

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestRunWithSpinner_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := RunWithSpinner(context.Background(), func() error { return want })
	assert.ErrorIs(t, err, want)
}
