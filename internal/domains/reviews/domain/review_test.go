package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	assert.Equal(t, Stats{Average: 4.0, Count: 3}, Aggregate([]int{5, 3, 4}))
	assert.Equal(t, Stats{Average: 4.5, Count: 2}, Aggregate([]int{5, 4}))
	assert.Equal(t, Stats{Average: 3.7, Count: 3}, Aggregate([]int{5, 5, 1}))
	assert.Equal(t, Stats{}, Aggregate(nil))
}

func TestNewReview_Validation(t *testing.T) {
	_, err := NewReview("r", "p", "u", "Ama", 6, "t", "c", false)
	require.ErrorIs(t, err, ErrInvalidRating)
	_, err = NewReview("r", "p", "u", "Ama", 4, " ", "c", false)
	require.ErrorIs(t, err, ErrTitleRequired)
	_, err = NewReview("r", "p", "u", "Ama", 4, "t", "", false)
	require.ErrorIs(t, err, ErrCommentRequired)

	r, err := NewReview("r", "p", "u", "Ama", 4, "Great", "Fits well", true)
	require.NoError(t, err)
	assert.True(t, r.IsApproved)
	assert.True(t, r.VerifiedPurchase)
}

func TestMarkHelpful_OncePerUser(t *testing.T) {
	r := &Review{}
	require.NoError(t, r.MarkHelpful("u-1"))
	require.ErrorIs(t, r.MarkHelpful("u-1"), ErrAlreadyHelpful)
	require.NoError(t, r.MarkHelpful("u-2"))
	assert.Equal(t, 2, r.HelpfulCount)
}
