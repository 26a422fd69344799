package telegram

import (
	"fmt"
	"strings"

	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const welcomeText = "👋 *Welcome to BMI & Calorie QuickCalc!*\n\n" +
	"I work out your BMI, a daily calorie range and a few health tips.\n\n" +
	"/calculate - start a new calculation\n" +
	"/about - how the numbers are worked out\n" +
	"/reset - clear your details"

var printer = message.NewPrinter(language.English)

var tipIcons = map[health.Icon]string{
	health.IconUtensils: "🍽",
	health.IconTarget:   "🎯",
	health.IconMoon:     "🌙",
	health.IconActivity: "🏃",
	health.IconHeart:    "❤️",
}

func promptText(field form.Field, f *form.Form) string {
	switch field {
	case form.FieldWeight:
		return fmt.Sprintf("⚖️ What is your weight in *%s*?", f.Input.WeightUnit)
	case form.FieldHeight:
		return "📏 What is your height in *cm*?"
	case form.FieldHeightFeet:
		return "📏 What is your height in *feet and inches*? (e.g. 5 9)"
	case form.FieldHeightInches:
		return "📏 Inches cannot be negative. Send your height as *feet and inches* again."
	case form.FieldAge:
		return fmt.Sprintf("🎂 How old are you? (whole years, %d-%d)", health.MinAge, health.MaxAge)
	}
	return ""
}

func formatSummary(f *form.Form) string {
	in := f.Input
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, strings.TrimSpace(s)) }

	height := esc(in.Height) + " cm"
	if in.HeightUnit == health.Feet {
		height = esc(in.HeightFeet) + " ft"
		if strings.TrimSpace(in.HeightInches) != "" {
			height += " " + esc(in.HeightInches) + " in"
		}
	}

	activity := string(in.Activity)
	if act, ok := in.Activity.Info(); ok {
		activity = act.Label
	}
	gender := "Male"
	if in.Gender == health.Female {
		gender = "Female"
	}

	var sb strings.Builder
	sb.WriteString("📝 *Your details*\n\n")
	sb.WriteString(fmt.Sprintf("• Weight: %s %s\n", esc(in.Weight), in.WeightUnit))
	sb.WriteString(fmt.Sprintf("• Height: %s\n", height))
	sb.WriteString(fmt.Sprintf("• Age: %s\n", esc(in.Age)))
	sb.WriteString(fmt.Sprintf("• Gender: %s\n", gender))
	sb.WriteString(fmt.Sprintf("• Activity: %s\n\n", activity))
	sb.WriteString("Pick your gender and activity level, then tap *Calculate*.")
	return sb.String()
}

func formatResults(res *health.Result) string {
	var sb strings.Builder
	sb.WriteString("📊 *Your Health Results*\n\n")

	sb.WriteString(fmt.Sprintf("*BMI:* %.1f (%s)\n", res.BMI.Value, res.BMI.Label))
	sb.WriteString(fmt.Sprintf("_%s_\n\n", res.BMI.Message))

	sb.WriteString(printer.Sprintf("🔥 *Daily Calories:* %d - %d\n", res.Calories.Min, res.Calories.Max))
	sb.WriteString(printer.Sprintf("Based on BMR: %d calories\n\n", res.Calories.BMR))

	sb.WriteString("💡 *Personalized Health Tips*\n")
	for _, tip := range res.Tips {
		sb.WriteString(fmt.Sprintf("%s %s\n", tipIcons[tip.Icon], tip.Text))
	}
	return sb.String()
}

func aboutText() string {
	var sb strings.Builder
	sb.WriteString("ℹ️ *About BMI & Calorie QuickCalc*\n\n")

	sb.WriteString("*BMI Calculation*\n")
	sb.WriteString("BMI = weight (kg) ÷ height (m)². It's a screening tool, not a measure of body fat.\n")
	for _, c := range health.Categories() {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", c.Label, c.Range))
	}

	sb.WriteString("\n*Calorie Calculation*\n")
	sb.WriteString("Your BMR (Mifflin-St Jeor) multiplied by your activity level.\n")
	for _, a := range health.ActivityLevels() {
		sb.WriteString(fmt.Sprintf("• %s: %s (x%g)\n", a.Label, a.Description, a.Multiplier))
	}

	sb.WriteString("\n*Important Notes*\n")
	sb.WriteString("• This is general health information, not medical advice\n")
	sb.WriteString("• BMI may not reflect health status for athletes, pregnant women, or elderly individuals\n")
	sb.WriteString("• Calorie needs vary with genetics and medical conditions\n")
	return sb.String()
}

func formatMetrics(days []metrics.DailyActivity, sys metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(days) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range days {
		sb.WriteString(fmt.Sprintf("• *%s*: %d calcs, %d rejected, %d errors (avg %.2fms)\n", d.Date, d.Calculations, d.Rejected, d.Errors, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", sys.AllocMB, sys.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", sys.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", sys.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", sys.DataDiskSize))
	return sb.String()
}
