package generation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/prompts"
	"github.com/jonathan/advision/internal/types"
)

const (
	designMaxTokens = 400
	chatMaxTokens   = 250
)

// Replies used when a conversation turn cannot be completed.
const (
	ChatProviderFailureReply  = "Sorry, something went wrong. Please try again!"
	ChatTransportFailureReply = "Oops, an error occurred. Please try again later."
)

// PlatformGuide holds the design conventions of one ad platform.
type PlatformGuide struct {
	Format        string
	BestPractices string
	Hashtags      string
	CTA           string
}

// PrimaryFormat is the first format listed for the platform.
func (p PlatformGuide) PrimaryFormat() string {
	first, _, _ := strings.Cut(p.Format, ",")
	return strings.TrimSpace(first)
}

var platformGuides = map[string]PlatformGuide{
	types.PlatformInstagram: {
		Format:        "Square or vertical images, Stories, Reels",
		BestPractices: "Use 5-10 targeted hashtags, engaging captions, vibrant visuals.",
		Hashtags:      "#OutdoorAdventures #FitnessGear #RunningShoes #ActiveLife #ExploreMore #AdventureWear #NatureReady #GearUp #HealthyLiving",
		CTA:           "Shop now and power your next adventure!",
	},
	types.PlatformFacebook: {
		Format:        "Square images, carousel ads, videos",
		BestPractices: "Include a call-to-action, optimize for mobile, use authentic storytelling.",
		Hashtags:      "#FitnessJourney #ShopNow #QualityGear #DiscoverMore #ActiveLifestyle",
		CTA:           "Discover your perfect fit today!",
	},
	types.PlatformTwitter: {
		Format:        "Images, short videos, GIFs",
		BestPractices: "Use 1-2 hashtags, keep tweets concise, engage with replies.",
		Hashtags:      "#RunStrong #NewGear",
		CTA:           "Grab yours now!",
	},
	types.PlatformLinkedIn: {
		Format:        "Professional images, infographics",
		BestPractices: "Focus on professional tone, share industry insights, post in groups.",
		Hashtags:      "#FitnessInnovation #ProfessionalGear #HealthAndWellness",
		CTA:           "Learn more about our fitness solutions!",
	},
	types.PlatformGoogleAds: {
		Format:        "Text ads, display banners, responsive ads",
		BestPractices: "Use strong keywords, clear CTAs, optimize for conversions.",
		Hashtags:      "#ShopFitness #BestDeals #RunningGear #ActiveWear #FitnessEssentials",
		CTA:           "Click to gear up now!",
	},
}

var goalGuidance = map[string]string{
	types.GoalBrandAwareness: "Focus on bold visuals and memorable messaging to increase visibility.",
	types.GoalConversion:     "Emphasize strong CTAs and value propositions to drive purchases.",
	types.GoalLeadGeneration: "Include forms or incentives to capture user information.",
	types.GoalEngagement:     "Create interactive content to encourage likes, comments, and shares.",
}

// GuideFor returns the platform guide, defaulting to Google Ads.
func GuideFor(platform string) PlatformGuide {
	if g, ok := platformGuides[platform]; ok {
		return g
	}
	return platformGuides[types.PlatformGoogleAds]
}

// GuidanceFor returns the goal guidance, defaulting to Brand Awareness.
func GuidanceFor(goal string) string {
	if g, ok := goalGuidance[goal]; ok {
		return g
	}
	return goalGuidance[types.GoalBrandAwareness]
}

type designView struct {
	Platform string
	Goal     string
	Guide    PlatformGuide
	Guidance string
}

func (v designView) PrimaryFormat() string { return v.Guide.PrimaryFormat() }

func (v designView) Motion() string {
	if v.Platform == types.PlatformGoogleAds {
		return "Banner"
	}
	return "Reel"
}

// Feel is the first sentence of the goal guidance, lower-cased.
func (v designView) Feel() string {
	first, _, _ := strings.Cut(strings.ToLower(v.Guidance), ".")
	return first
}

var funcs = template.FuncMap{"lower": strings.ToLower}

var imageFooter = template.Must(template.New("footer").Funcs(funcs).Parse(`🎨 **Generate Your Ad Image**
Use one of the following AI tools with this prompt to bring the design to life:

📌 **Prompt to Use**:
"Create a {{.Platform}} ad with a {{lower .PrimaryFormat}}, using the color scheme, typography, layout, and visuals described above. Ensure the design aligns with {{lower .Goal}} and feels {{.Feel}}."

` + toolsAndNote))

var fallbackSuggestion = template.Must(template.New("fallback").Funcs(funcs).Parse(`### Ad Design Suggestion

🎨 **Color Scheme**
- Bright Blue (#0096FF): Energizing and dynamic, evokes a sense of movement and athleticism.
- White (#FFFFFF): Clean and minimalist, enhances readability and focus on the product.
- Dark Gray (#333333): Provides contrast, ensuring text stands out and is easy to read.

✍️ **Typography**
- **Headline Font**: Montserrat Bold
  Clean and modern, fitting for a sports brand and easy to read.
- **Body Font**: Roboto Regular
  Simple and professional, ensuring key features are clearly communicated.

📐 **Layout Guidelines**
- {{.PrimaryFormat}}
- **Upper Half**: High-resolution image of a fitness enthusiast wearing the product during a run or workout.
- **Lower Half**:
  - Brand logo placement: Bottom left corner.
  - Product Name: [Product Name] in Montserrat Bold.
  - **Key Features**:
    - High Quality
    - Durable
    - User-Friendly
    (in Roboto Regular)
  - **Caption**: A short story highlighting the product's value and appeal.

📸 **Visual Direction**
- **{{.PrimaryFormat}}**:
  High-resolution shot of an athlete in motion, showcasing the product in action.
- **{{.Platform}} {{.Motion}} (Optional)**:
  Short, fast-paced video featuring the product in use, with text overlays like "Durable" and "High Quality".

💡 **Emotional Appeal**
- **Excitement & Trust**:
  Vibrant imagery and dynamic motion evoke a sense of adventure and reliability.
- **Connection**:
  Resonates with fitness enthusiasts through relatable, active scenarios.

📱 **{{.Platform}} Best Practices**
- **Hashtags (5–10)**: {{.Guide.Hashtags}}
- **Call-to-Action (CTA)**: "{{.Guide.CTA}}"

🎨 **Generate Your Ad Image**
Use one of the following AI tools with this prompt to bring the design to life:

📌 **Prompt to Use**:
"Create a {{.Platform}} ad with a {{lower .PrimaryFormat}}, using bright blue (#0096FF), white (#FFFFFF), and dark gray (#333333) for an energetic, modern feel. The top half features a high-quality image of a fitness enthusiast using the product. The bottom half includes the product name in Montserrat Bold, and features like 'High Quality', 'Durable', and 'User-Friendly' in Roboto Regular. Ensure a clean design that grabs attention and aligns with {{lower .Goal}}."

` + toolsAndNote))

const toolsAndNote = `🛠️ **AI Tools to Try**:
- [MidJourney](https://www.midjourney.com)
- [DALL·E 3 (OpenAI)](https://www.openai.com/dall-e)
- [Stable Diffusion](https://stablediffusionweb.com)
- [AdVision Image Generator](/image-generator): use the in-app image tool for brand-specific results

⚠️ **Note**
AI-generated images may need polishing. For professional use:
- Refine using [Canva](https://www.canva.com), [Adobe Photoshop](https://www.adobe.com/products/photoshop.html), or [Figma](https://www.figma.com)
- Add overlays, icons, or CTA buttons for extra engagement`

// DesignSuggestion returns a markdown ad design suggestion. Completion
// failures yield a built-in suggestion instead of an error; only empty input
// is rejected.
func (g *Generator) DesignSuggestion(ctx context.Context, input, platform, goal string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", &ValidationError{Field: "input", Message: "must be a non-empty string"}
	}
	view := newDesignView(platform, goal)

	prompt, err := prompts.Render(prompts.Design, "design-suggestion", map[string]string{
		"Platform":      view.Platform,
		"Goal":          view.Goal,
		"Input":         input,
		"Format":        view.Guide.Format,
		"BestPractices": view.Guide.BestPractices,
		"Hashtags":      view.Guide.Hashtags,
		"CTA":           view.Guide.CTA,
		"GoalGuidance":  view.Guidance,
	})
	if err != nil {
		return "", err
	}

	reply, err := g.client.GenerateContent(ctx, prompt, llm.TierLite,
		llm.WithTemperature(temperature), llm.WithMaxTokens(designMaxTokens), llm.WithCache())
	if err != nil || strings.TrimSpace(reply) == "" {
		g.logger.Warn("design suggestion failed, using fallback",
			zap.String("platform", view.Platform), zap.Error(err))
		return execute(fallbackSuggestion, view), nil
	}
	return strings.TrimSpace(reply) + "\n\n" + execute(imageFooter, view), nil
}

// Converse answers one chat turn given the earlier turns. Completion failures
// produce a canned apology rather than an error.
func (g *Generator) Converse(ctx context.Context, message string, history []llm.Message) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &ValidationError{Field: "message", Message: "must be a non-empty string"}
	}
	system, err := prompts.Get(prompts.Design, "conversation")
	if err != nil {
		return "", err
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range history {
		if m.Role == llm.RoleUser || m.Role == llm.RoleAssistant {
			messages = append(messages, m)
		}
	}
	messages = append(messages, llm.UserMessage(message))

	reply, err := g.client.Chat(ctx, messages, llm.TierLite,
		llm.WithTemperature(temperature), llm.WithMaxTokens(chatMaxTokens))
	if err != nil {
		g.logger.Warn("conversation turn failed", zap.Int("history", len(history)), zap.Error(err))
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			return ChatProviderFailureReply, nil
		}
		return ChatTransportFailureReply, nil
	}
	return strings.TrimSpace(reply), nil
}

func newDesignView(platform, goal string) designView {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = types.PlatformGoogleAds
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		goal = types.GoalBrandAwareness
	}
	return designView{
		Platform: platform,
		Goal:     goal,
		Guide:    GuideFor(platform),
		Guidance: GuidanceFor(goal),
	}
}

func execute(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}
