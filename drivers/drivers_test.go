package drivers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nuln/lfsdfs/drivers"
)

func TestList(t *testing.T) {
	assert.Equal(t, []string{"absfs", "billy", "local", "rclone"}, drivers.List())
}
