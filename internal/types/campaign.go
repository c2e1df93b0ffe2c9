package types

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// Target platforms
const (
	PlatformInstagram = "Instagram"
	PlatformFacebook  = "Facebook"
	PlatformTwitter   = "Twitter"
	PlatformLinkedIn  = "LinkedIn"
	PlatformGoogleAds = "Google Ads"
)

// Primary goals
const (
	GoalBrandAwareness = "Brand Awareness"
	GoalConversion     = "Conversion"
	GoalLeadGeneration = "Lead Generation"
	GoalEngagement     = "Engagement"
)

// DefaultTone is used when an ad copy request names no tone.
const DefaultTone = "Professional"

// Platforms lists the supported target platforms.
var Platforms = []string{PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformLinkedIn, PlatformGoogleAds}

// Goals lists the supported primary goals.
var Goals = []string{GoalBrandAwareness, GoalConversion, GoalLeadGeneration, GoalEngagement}

// KeywordTags are the only values allowed in KeywordSuggestion.Suggestions.
var KeywordTags = []string{"Easy to rank", "Trending", "Great for headlines"}

func init() {
	mustRegister("platform", func(fl validator.FieldLevel) bool {
		return slices.Contains(Platforms, fl.Field().String())
	})
	mustRegister("goal", func(fl validator.FieldLevel) bool {
		return slices.Contains(Goals, fl.Field().String())
	})
	mustRegister("keywordtag", func(fl validator.FieldLevel) bool {
		return slices.Contains(KeywordTags, fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ProjectBrief is the product description every generator works from.
type ProjectBrief struct {
	ProductService     string `json:"product_service" validate:"required,max=200"`
	TargetPlatform     string `json:"target_platform" validate:"required,platform"`
	PrimaryGoal        string `json:"primary_goal" validate:"required,goal"`
	ProductDescription string `json:"product_description" validate:"max=5000"`
	ProductFeatures    string `json:"product_features" validate:"max=5000"`
}

// CreateProjectRequest creates a campaign project.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	ProjectBrief
}

// Validate validates the CreateProjectRequest using the validator.
func (r *CreateProjectRequest) Validate() error {
	return validate.Struct(r)
}

// GenerateAdCopiesRequest asks for a fresh batch of ad copies.
type GenerateAdCopiesRequest struct {
	Tone string `json:"tone" validate:"max=50"`
}

// Validate validates the GenerateAdCopiesRequest using the validator.
func (r *GenerateAdCopiesRequest) Validate() error {
	return validate.Struct(r)
}

// CreateAdCopyRequest saves an ad copy.
type CreateAdCopyRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
	Tone    string `json:"tone" validate:"max=50"`
}

// Validate validates the CreateAdCopyRequest using the validator.
func (r *CreateAdCopyRequest) Validate() error {
	return validate.Struct(r)
}

// KeywordSuggestion is one generated or saved keyword with its estimates.
type KeywordSuggestion struct {
	Keyword      string   `json:"keyword" validate:"required,max=200"`
	SearchVolume string   `json:"search_volume" validate:"required,oneof=Low Medium High"`
	Competition  string   `json:"competition" validate:"required,oneof=Low Medium High"`
	Intent       string   `json:"intent" validate:"required,oneof=Informational Transactional Brand-related"`
	Suggestions  []string `json:"suggestions" validate:"max=3,dive,keywordtag"`
}

// Validate validates the KeywordSuggestion using the validator.
func (k *KeywordSuggestion) Validate() error {
	return validate.Struct(k)
}

// AudienceSegment is one generated or saved audience.
type AudienceSegment struct {
	Name           string  `json:"name" validate:"required,max=200"`
	AgeRange       string  `json:"age_range" validate:"required,max=50"`
	Gender         string  `json:"gender" validate:"required,max=50"`
	Interests      string  `json:"interests" validate:"required,max=1000"`
	Platforms      string  `json:"platforms" validate:"required,max=500"`
	PurchaseIntent *string `json:"purchase_intent"`
}

// Validate validates the AudienceSegment using the validator.
func (a *AudienceSegment) Validate() error {
	return validate.Struct(a)
}

// CreateBrandStyleRequest saves a brand style.
type CreateBrandStyleRequest struct {
	BrandName string   `json:"brand_name" validate:"required,max=100"`
	Colors    []string `json:"colors" validate:"required,min=1,max=5,dive,hexcolor"`
	Font      string   `json:"font" validate:"max=100"`
}

// Validate validates the CreateBrandStyleRequest using the validator.
func (r *CreateBrandStyleRequest) Validate() error {
	return validate.Struct(r)
}

// ScoreRequest asks for a readability report of free text.
type ScoreRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

// Validate validates the ScoreRequest using the validator.
func (r *ScoreRequest) Validate() error {
	return validate.Struct(r)
}

// RepairRequest carries raw completion output to be repaired.
type RepairRequest struct {
	Content string `json:"content" validate:"max=200000"`
}

// Validate validates the RepairRequest using the validator.
func (r *RepairRequest) Validate() error {
	return validate.Struct(r)
}

// DesignSuggestionRequest starts a design conversation.
type DesignSuggestionRequest struct {
	Input       string `json:"input" validate:"required,max=5000"`
	Platform    string `json:"platform" validate:"max=50"`
	Goal        string `json:"goal" validate:"max=50"`
	ProductName string `json:"product_name" validate:"max=200"`
}

// Validate validates the DesignSuggestionRequest using the validator.
func (r *DesignSuggestionRequest) Validate() error {
	return validate.Struct(r)
}

// ChatRequest continues a design conversation.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	return validate.Struct(r)
}

// SaveKeywordsRequest saves chosen keyword suggestions to a project.
type SaveKeywordsRequest struct {
	Keywords []KeywordSuggestion `json:"keywords" validate:"required,min=1,max=50,dive"`
}

// Validate validates the SaveKeywordsRequest using the validator.
func (r *SaveKeywordsRequest) Validate() error {
	return validate.Struct(r)
}

// SaveAudiencesRequest saves chosen audience segments to a project.
type SaveAudiencesRequest struct {
	Audiences []AudienceSegment `json:"audiences" validate:"required,min=1,max=50,dive"`
}

// Validate validates the SaveAudiencesRequest using the validator.
func (r *SaveAudiencesRequest) Validate() error {
	return validate.Struct(r)
}
