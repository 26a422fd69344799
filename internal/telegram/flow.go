package telegram

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback data prefixes carried by the inline keyboards.
const (
	cbUnit     = "unit"
	cbGender   = "gender"
	cbActivity = "activity"
	cbEdit     = "edit"
	cbCalc     = "calc"
	cbRecalc   = "recalc"
)

// handleAnswer stores a typed reply into the field the form is waiting for.
func (b *Bot) handleAnswer(ctx context.Context, chatID int64, text string) {
	f := b.load(ctx, chatID)
	if f.Screen == form.ScreenResults {
		b.send(chatID, "Tap *Recalculate* to change your details, or send /calculate to start over.", nil, 0)
		return
	}

	field := f.NextField()
	if field == form.FieldNone {
		b.sendSummary(chatID, f, 0)
		return
	}

	applyAnswer(f, field, text)
	b.save(ctx, chatID, f)

	hint := ""
	if f.NextField() == field {
		hint = "⚠️ That doesn't look right.\n"
	}
	b.prompt(chatID, f, hint, 0)
}

func applyAnswer(f *form.Form, field form.Field, text string) {
	switch field {
	case form.FieldHeightFeet, form.FieldHeightInches:
		feet, inches := splitFeetInches(text)
		f.SetField(form.FieldHeightFeet, feet)
		f.SetField(form.FieldHeightInches, inches)
	default:
		f.SetField(field, text)
	}
}

// splitFeetInches reads answers such as "5 9", "5'9\"" or "5ft 9in".
func splitFeetInches(text string) (string, string) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\'' || r == '"' || r == ','
	})
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// prompt asks for the next missing field, or shows the summary once every
// number is in.
func (b *Bot) prompt(chatID int64, f *form.Form, hint string, editID int) {
	field := f.NextField()
	if field == form.FieldNone {
		b.sendSummary(chatID, f, editID)
		return
	}

	var markup *tgbotapi.InlineKeyboardMarkup
	switch field {
	case form.FieldWeight:
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Use "+string(f.Input.WeightUnit.Toggle()), cbUnit+":weight"),
		))
		markup = &kb
	case form.FieldHeight, form.FieldHeightFeet, form.FieldHeightInches:
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Use "+string(f.Input.HeightUnit.Toggle()), cbUnit+":height"),
		))
		markup = &kb
	}
	b.send(chatID, hint+promptText(field, f), markup, editID)
}

func (b *Bot) sendSummary(chatID int64, f *form.Form, editID int) {
	kb := summaryKeyboard(f)
	b.send(chatID, formatSummary(f), &kb, editID)
}

func summaryKeyboard(f *form.Form) tgbotapi.InlineKeyboardMarkup {
	mark := func(selected bool, label string) string {
		if selected {
			return "✅ " + label
		}
		return label
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(f.Input.Gender == health.Male, "Male"), cbGender+":"+string(health.Male)),
			tgbotapi.NewInlineKeyboardButtonData(mark(f.Input.Gender == health.Female, "Female"), cbGender+":"+string(health.Female)),
		),
	}

	var row []tgbotapi.InlineKeyboardButton
	for _, act := range health.ActivityLevels() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(mark(f.Input.Activity == act.Level, act.Label), cbActivity+":"+string(act.Level)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Weight", cbEdit+":"+string(form.FieldWeight)),
		tgbotapi.NewInlineKeyboardButtonData("✏️ Height", cbEdit+":"+string(form.FieldHeight)),
		tgbotapi.NewInlineKeyboardButtonData("✏️ Age", cbEdit+":"+string(form.FieldAge)),
	))

	if f.CanCalculate() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧮 Calculate My Results", cbCalc),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	action, value, _ := strings.Cut(query.Data, ":")
	f := b.load(ctx, chatID)

	switch action {
	case cbUnit:
		if value == "weight" {
			f.SetWeightUnit(f.Input.WeightUnit.Toggle())
		} else {
			f.SetHeightUnit(f.Input.HeightUnit.Toggle())
		}
		b.save(ctx, chatID, f)
		b.prompt(chatID, f, "", messageID)
	case cbGender:
		g, err := health.ParseGender(value)
		if err != nil {
			return
		}
		f.SetGender(g)
		b.save(ctx, chatID, f)
		b.sendSummary(chatID, f, messageID)
	case cbActivity:
		a, err := health.ParseActivityLevel(value)
		if err != nil {
			return
		}
		f.SetActivity(a)
		b.save(ctx, chatID, f)
		b.sendSummary(chatID, f, messageID)
	case cbEdit:
		clearField(f, form.Field(value))
		b.save(ctx, chatID, f)
		b.prompt(chatID, f, "", 0)
	case cbCalc:
		b.calculate(ctx, chatID, f)
	case cbRecalc:
		f.Back()
		b.save(ctx, chatID, f)
		b.sendSummary(chatID, f, 0)
	default:
		logger.Debug("ignoring callback", zap.String("data", query.Data))
	}
}

// clearField empties a field so the guided flow asks for it again.
func clearField(f *form.Form, field form.Field) {
	if field == form.FieldHeight && f.Input.HeightUnit == health.Feet {
		f.SetField(form.FieldHeightFeet, "")
		f.SetField(form.FieldHeightInches, "")
		return
	}
	f.SetField(field, "")
}

func (b *Bot) calculate(ctx context.Context, chatID int64, f *form.Form) {
	start := time.Now()
	res, err := f.Calculate()
	if err != nil {
		if errors.Is(err, health.ErrInvalidInput) {
			b.recorder.Rejected(ctx, metrics.SurfaceTelegram)
			b.prompt(chatID, f, "⚠️ Some details are still missing.\n", 0)
			return
		}
		logger.Error("calculation failed", zap.Error(err))
		b.recorder.Failed(ctx, metrics.SurfaceTelegram, "calculate")
		b.send(chatID, "❌ Something went wrong. Please try again.", nil, 0)
		return
	}
	b.recorder.Calculated(ctx, metrics.SurfaceTelegram, string(res.BMI.Category), time.Since(start))
	b.save(ctx, chatID, f)

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Recalculate", cbRecalc),
	))
	b.send(chatID, formatResults(res), &kb, 0)
}
