package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/llm/llmtest"
	"github.com/jonathan/advision/internal/types"
)

func TestGuideFor(t *testing.T) {
	assert.Equal(t, "Images", GuideFor(types.PlatformTwitter).PrimaryFormat())
	assert.Equal(t, "Square or vertical images", GuideFor(types.PlatformInstagram).PrimaryFormat())
	assert.Equal(t, GuideFor(types.PlatformGoogleAds), GuideFor("Snapchat"))
	assert.Equal(t, "Professional images", GuideFor(types.PlatformLinkedIn).PrimaryFormat())
}

func TestGuidanceFor(t *testing.T) {
	assert.Contains(t, GuidanceFor(types.GoalEngagement), "interactive content")
	assert.Equal(t, GuidanceFor(types.GoalBrandAwareness), GuidanceFor("World Domination"))
}

func TestDesignSuggestion_Success(t *testing.T) {
	fake := &llmtest.Fake{Reply: "  ### Ad Design Suggestion\n\nUse teal.  "}
	got, err := New(fake, nil).DesignSuggestion(context.Background(), "Eco water bottle", types.PlatformInstagram, types.GoalEngagement)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "### Ad Design Suggestion\n\nUse teal.\n\n🎨 **Generate Your Ad Image**"))
	assert.Contains(t, got, `"Create a Instagram ad with a square or vertical images,`)
	assert.Contains(t, got, "aligns with engagement and feels create interactive content to encourage likes, comments, and shares.\"")
	assert.Contains(t, got, "[MidJourney](https://www.midjourney.com)")
	assert.Contains(t, got, "⚠️ **Note**")

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.TierLite, calls[0].Tier)
	prompt := calls[0].Prompt()
	assert.Contains(t, prompt, "User Input: Eco water bottle")
	assert.Contains(t, prompt, "Preferred Format: Square or vertical images, Stories, Reels")
	assert.Contains(t, prompt, "📱 **Instagram Best Practices**")
}

func TestDesignSuggestion_Fallback(t *testing.T) {
	tests := []struct {
		name     string
		fake     *llmtest.Fake
		platform string
		goal     string
		motion   string
		format   string
	}{
		{
			name:     "provider error on google ads",
			fake:     &llmtest.Fake{Err: &llm.APIError{StatusCode: http.StatusTooManyRequests}},
			platform: types.PlatformGoogleAds,
			goal:     types.GoalConversion,
			motion:   "**Google Ads Banner (Optional)**",
			format:   "- Text ads\n",
		},
		{
			name:     "transport error on facebook",
			fake:     &llmtest.Fake{Err: errors.New("connection reset")},
			platform: types.PlatformFacebook,
			goal:     types.GoalLeadGeneration,
			motion:   "**Facebook Reel (Optional)**",
			format:   "- Square images\n",
		},
		{
			name:     "empty reply on twitter",
			fake:     &llmtest.Fake{Reply: "   "},
			platform: types.PlatformTwitter,
			goal:     types.GoalEngagement,
			motion:   "**Twitter Reel (Optional)**",
			format:   "- Images\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.fake, nil).DesignSuggestion(context.Background(), "Trail shoes", tt.platform, tt.goal)
			require.NoError(t, err)

			guide := GuideFor(tt.platform)
			assert.True(t, strings.HasPrefix(got, "### Ad Design Suggestion"))
			assert.Contains(t, got, tt.motion)
			assert.Contains(t, got, tt.format)
			assert.Contains(t, got, "- **Hashtags (5–10)**: "+guide.Hashtags)
			assert.Contains(t, got, `- **Call-to-Action (CTA)**: "`+guide.CTA+`"`)
			assert.Contains(t, got, "aligns with "+strings.ToLower(tt.goal)+".\"")
		})
	}
}

func TestDesignSuggestion_Defaults(t *testing.T) {
	got, err := New(&llmtest.Fake{Err: errors.New("down")}, nil).DesignSuggestion(context.Background(), "Mug", "", "")
	require.NoError(t, err)
	assert.Contains(t, got, "📱 **Google Ads Best Practices**")
	assert.Contains(t, got, "aligns with brand awareness.")
}

func TestDesignSuggestion_EmptyInput(t *testing.T) {
	fake := &llmtest.Fake{Reply: "unused"}
	_, err := New(fake, nil).DesignSuggestion(context.Background(), " \n", types.PlatformTwitter, types.GoalConversion)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "input", valErr.Field)
	assert.Empty(t, fake.Calls())
}

func TestConverse(t *testing.T) {
	fake := &llmtest.Fake{Reply: "  Teal works well on LinkedIn.  "}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "Eco bottle ad"},
		{Role: llm.RoleAssistant, Content: "### Ad Design Suggestion ..."},
		{Role: llm.RoleSystem, Content: "ignored"},
	}

	got, err := New(fake, nil).Converse(context.Background(), "Which color for LinkedIn?", history)
	require.NoError(t, err)
	assert.Equal(t, "Teal works well on LinkedIn.", got)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "chat", calls[0].Kind)
	msgs := calls[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "general conversation mode")
	assert.Equal(t, history[0], msgs[1])
	assert.Equal(t, history[1], msgs[2])
	assert.Equal(t, llm.UserMessage("Which color for LinkedIn?"), msgs[3])
}

func TestConverse_Failures(t *testing.T) {
	got, err := New(&llmtest.Fake{Err: &llm.APIError{StatusCode: http.StatusServiceUnavailable}}, nil).
		Converse(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, ChatProviderFailureReply, got)

	got, err = New(&llmtest.Fake{Err: context.DeadlineExceeded}, nil).Converse(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, ChatTransportFailureReply, got)

	_, err = New(&llmtest.Fake{}, nil).Converse(context.Background(), "", nil)
	assert.Error(t, err)
}
