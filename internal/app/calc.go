package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/metrics"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RunCalc performs one calculation and writes the report to w, as indented
// JSON when asJSON is set. A failed input gate writes nothing.
func RunCalc(ctx context.Context, w io.Writer, raw health.RawInput, asJSON bool, recorder *metrics.Recorder) error {
	start := time.Now()
	res, err := health.Calculate(raw)
	if err != nil {
		if errors.Is(err, health.ErrInvalidInput) {
			recorder.Rejected(ctx, metrics.SurfaceCLI)
		} else {
			recorder.Failed(ctx, metrics.SurfaceCLI, "calculate")
		}
		return err
	}
	recorder.Calculated(ctx, metrics.SurfaceCLI, string(res.BMI.Category), time.Since(start))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return writeReport(w, res)
}

func writeReport(w io.Writer, res *health.Result) error {
	p := message.NewPrinter(language.English)
	if _, err := fmt.Fprintf(w, "BMI:             %.1f (%s)\n", res.BMI.Value, res.BMI.Label); err != nil {
		return err
	}
	fmt.Fprintf(w, "                 %s\n", res.BMI.Message)
	p.Fprintf(w, "Daily calories:  %d - %d\n", res.Calories.Min, res.Calories.Max)
	p.Fprintf(w, "BMR:             %d calories\n", res.Calories.BMR)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Health tips:")
	for _, tip := range res.Tips {
		fmt.Fprintf(w, "  - %s\n", tip.Text)
	}
	return nil
}
