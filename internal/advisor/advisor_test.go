package advisor

import (
	"context"
	"testing"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOp_AlwaysSucceedsWithEmptyCommentary(t *testing.T) {
	var a Advisor = NoOp{}
	text, err := a.Annotate(context.Background(), domain.Evaluation{}, domain.ReviewReport{})
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
