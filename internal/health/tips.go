package health

// Icon is a presentation hint for a tip.
type Icon string

const (
	IconUtensils Icon = "utensils"
	IconTarget   Icon = "target"
	IconMoon     Icon = "moon"
	IconActivity Icon = "activity"
	IconHeart    Icon = "heart"
)

// Tip is a single piece of canned advice.
type Tip struct {
	Icon Icon   `json:"icon"`
	Text string `json:"text"`
}

var tipsByCategory = map[Category][3]Tip{
	Underweight: {
		{Icon: IconUtensils, Text: "Add healthy fats like nuts and avocados to your diet"},
		{Icon: IconTarget, Text: "Focus on strength training to build muscle mass"},
		{Icon: IconMoon, Text: "Ensure adequate sleep for muscle recovery"},
	},
	Normal: {
		{Icon: IconUtensils, Text: "Fill half your plate with vegetables and fruits"},
		{Icon: IconActivity, Text: "Aim for 150 minutes of moderate exercise weekly"},
		{Icon: IconMoon, Text: "Get 7-9 hours of quality sleep each night"},
	},
	Overweight: {
		{Icon: IconUtensils, Text: "Reduce portion sizes and limit processed foods"},
		{Icon: IconActivity, Text: "Start with 30 minutes of daily walking"},
		{Icon: IconHeart, Text: "Stay hydrated with 8 glasses of water daily"},
	},
	Obese: {
		{Icon: IconUtensils, Text: "Focus on whole foods and lean proteins"},
		{Icon: IconActivity, Text: "Begin with low-impact activities like swimming"},
		{Icon: IconHeart, Text: "Monitor progress and celebrate small wins"},
	},
}

// SelectHealthTips returns the three tips for a BMI category. Unknown
// categories get the tips for Normal.
func SelectHealthTips(category Category) []Tip {
	tips, ok := tipsByCategory[category]
	if !ok {
		tips = tipsByCategory[Normal]
	}
	return tips[:]
}
