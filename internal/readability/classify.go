package readability

// Label is the traffic-light rating of a single metric.
type Label string

// Label values
const (
	LabelGood Label = "Good"
	LabelFair Label = "Fair"
	LabelBad  Label = "Bad"
)

// Display colors for each label.
const (
	ColorGood = "#34C759"
	ColorFair = "#FF9500"
	ColorBad  = "#FF3B30"
)

// Color returns the display color for the label, or a neutral gray for an
// unknown label.
func (l Label) Color() string {
	switch l {
	case LabelGood:
		return ColorGood
	case LabelFair:
		return ColorFair
	case LabelBad:
		return ColorBad
	default:
		return "#8E8E93"
	}
}

// Rating is the classification of one metric.
type Rating struct {
	Score       float64 `json:"score"`
	Label       Label   `json:"label"`
	Color       string  `json:"color"`
	Explanation string  `json:"explanation"`
}

// Report is a scored text with a rating per metric.
type Report struct {
	Scores            Scores `json:"scores"`
	Counts            Counts `json:"counts"`
	FleschReadingEase Rating `json:"flesch_reading_ease"`
	FleschGradeLevel  Rating `json:"flesch_grade_level"`
	GunningFog        Rating `json:"gunning_fog"`
}

// Snapshot is the flat form persisted alongside an ad copy.
type Snapshot struct {
	FleschReadingEase      float64 `json:"flesch_reading_ease"`
	FleschGradeLevel       float64 `json:"flesch_grade_level"`
	GunningFog             float64 `json:"gunning_fog"`
	FleschReadingEaseLabel Label   `json:"flesch_reading_ease_label"`
	FleschGradeLevelLabel  Label   `json:"flesch_grade_level_label"`
	GunningFogLabel        Label   `json:"gunning_fog_label"`
}

// Analyze scores text and classifies each metric.
func Analyze(text string) Report {
	s := Score(text)
	return Report{
		Scores:            s,
		Counts:            Count(text),
		FleschReadingEase: RateReadingEase(s.FleschReadingEase),
		FleschGradeLevel:  RateGradeLevel(s.FleschGradeLevel),
		GunningFog:        RateFog(s.GunningFog),
	}
}

// Snapshot flattens the report for storage.
func (r Report) Snapshot() Snapshot {
	return Snapshot{
		FleschReadingEase:      r.Scores.FleschReadingEase,
		FleschGradeLevel:       r.Scores.FleschGradeLevel,
		GunningFog:             r.Scores.GunningFog,
		FleschReadingEaseLabel: r.FleschReadingEase.Label,
		FleschGradeLevelLabel:  r.FleschGradeLevel.Label,
		GunningFogLabel:        r.GunningFog.Label,
	}
}

// RateReadingEase classifies a Flesch Reading Ease score. Higher is easier.
func RateReadingEase(score float64) Rating {
	var label Label
	var detail string
	switch {
	case score >= 60:
		label, detail = LabelGood, "Good: Easy to read (middle school level)."
	case score >= 30:
		label, detail = LabelFair, "Fair: Moderately difficult (high school level)."
	default:
		label, detail = LabelBad, "Bad: Difficult to read (college level)."
	}
	return Rating{
		Score:       score,
		Label:       label,
		Color:       label.Color(),
		Explanation: "Scores 0-100 (higher = easier). " + detail + " Based on sentence length and syllable count.",
	}
}

// RateGradeLevel classifies a Flesch-Kincaid grade level. Lower is easier.
func RateGradeLevel(score float64) Rating {
	var label Label
	var detail string
	switch {
	case score <= 8:
		label, detail = LabelGood, "Good: Suitable for middle school or below."
	case score <= 12:
		label, detail = LabelFair, "Fair: Suitable for high school."
	default:
		label, detail = LabelBad, "Bad: Suitable for college or above."
	}
	return Rating{
		Score:       score,
		Label:       label,
		Color:       label.Color(),
		Explanation: "U.S. grade level needed to understand. " + detail + " Calculated from sentence and word complexity.",
	}
}

// RateFog classifies a Gunning Fog index. Lower is easier.
func RateFog(score float64) Rating {
	var label Label
	var detail string
	switch {
	case score <= 8:
		label, detail = LabelGood, "Good: Easy to read (middle school level)."
	case score <= 12:
		label, detail = LabelFair, "Fair: Moderate difficulty (high school level)."
	default:
		label, detail = LabelBad, "Bad: Difficult to read (college level)."
	}
	return Rating{
		Score:       score,
		Label:       label,
		Color:       label.Color(),
		Explanation: "Years of education needed. " + detail + " Based on sentence length and complex words.",
	}
}
