package model_test

import (
	"strings"
	"testing"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestAlert_Message(t *testing.T) {
	item := model.CandidateItem{Text: "Massive protest breaks out downtown"}
	alert := model.NewAlert(item, model.ClassificationResult{Category: "News", Summary: "Downtown protest"})

	msg := alert.Message()
	assert.Contains(t, msg, "Summary: Downtown protest")
	assert.Contains(t, msg, "Category: News")
	assert.True(t, strings.HasSuffix(msg, "Original: Massive protest breaks out downtown"))
}

func TestClassificationResult_Degraded(t *testing.T) {
	assert.False(t, model.ClassificationResult{Category: "Event", Summary: "A concert"}.Degraded())
	assert.True(t, model.ClassificationResult{Category: model.UnknownCategory, Summary: "A concert"}.Degraded())
	assert.True(t, model.ClassificationResult{Category: "Event", Summary: model.NoSummary}.Degraded())
}

func TestDeliveryOutcome_Dispatched(t *testing.T) {
	tests := []struct {
		status model.DeliveryStatus
		want   bool
	}{
		{model.DeliverySent, true},
		{model.DeliveryFailed, true},
		{model.DeliverySkipped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, model.DeliveryOutcome{Status: tt.status}.Dispatched())
		})
	}
}

func TestCandidateItem_Normalized(t *testing.T) {
	item := model.CandidateItem{
		Text:                "caption",
		AuthorFollowerCount: -5,
		PlayCount:           -1,
		LikeCount:           40,
		ShareCount:          -10,
		CommentCount:        2,
	}

	got := item.Normalized()
	assert.Equal(t, model.CandidateItem{Text: "caption", LikeCount: 40, CommentCount: 2}, got)
	assert.Equal(t, int64(-5), item.AuthorFollowerCount, "receiver is not modified")
}
