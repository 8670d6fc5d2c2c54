// internal/api/types/response_test.go
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	t.Run("EmptyPageRendersArray", func(t *testing.T) {
		page := NewPage[int](nil, 20, 0, 0)
		raw, err := json.Marshal(page)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":[],"limit":20,"offset":0,"total_count":0,"has_more":false}`, string(raw))
	})

	t.Run("HasMore", func(t *testing.T) {
		assert.True(t, NewPage([]int{1, 2}, 2, 0, 3).HasMore)
		assert.False(t, NewPage([]int{3}, 2, 2, 3).HasMore)
	})
}
