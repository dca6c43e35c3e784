package stretch

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cwbudde/algo-stretch/dsp/period"
)

// Ratio limits.
const (
	MinRatio         = 0.5
	MaxRatio         = 2.0
	MinExtendedRatio = 0.25
	MaxExtendedRatio = 4.0
)

// Defaults.
const (
	DefaultUpperFreqHz    = 333.0
	DefaultLowerFreqHz    = 55.0
	DefaultBufferMs       = 25.0
	DefaultGapThresholdDB = -40.0
)

// NoiseMode selects how segments without a detectable period are stretched.
type NoiseMode int

const (
	// NoiseBlocks splices fixed-size blocks with equal-power crossfades.
	NoiseBlocks NoiseMode = iota
	// NoiseResample resamples the segment to the target length.
	NoiseResample
)

func (m NoiseMode) String() string {
	switch m {
	case NoiseBlocks:
		return "blocks"
	case NoiseResample:
		return "resample"
	default:
		return fmt.Sprintf("noise(%d)", int(m))
	}
}

// ParseNoiseMode converts "blocks" or "resample" to a NoiseMode.
func ParseNoiseMode(s string) (NoiseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blocks":
		return NoiseBlocks, nil
	case "resample":
		return NoiseResample, nil
	default:
		return NoiseBlocks, fmt.Errorf("stretch: %w: unknown noise mode %q", ErrInvalidParameter, s)
	}
}

// Parameters control a stretch. The zero value of Ratio means 1 and the
// zero value of GapRatio means "same as Ratio"; other zero fields are
// invalid, so start from [DefaultParameters].
type Parameters struct {
	// Ratio is output duration divided by input duration.
	Ratio float64 `yaml:"ratio" validate:"gte=0"`
	// GapRatio, when non-zero, replaces Ratio for silent segments.
	GapRatio float64 `yaml:"gap_ratio" validate:"gte=0"`
	// LowerFreqHz is the lowest fundamental searched.
	LowerFreqHz float64 `yaml:"lower_freq" validate:"gte=20"`
	// UpperFreqHz is the highest fundamental searched.
	UpperFreqHz float64 `yaml:"upper_freq" validate:"gtfield=LowerFreqHz"`
	// BufferMs is the classification block length.
	BufferMs float64 `yaml:"buffer_ms" validate:"gt=0,lte=1000"`
	// GapThresholdDB is the RMS level below which a block counts as silence.
	GapThresholdDB float64 `yaml:"threshold_gap_db" validate:"lte=0"`
	// Detection selects the period search strategy.
	Detection period.Mode `yaml:"detection" validate:"gte=0,lte=2"`
	// ExtendedRange widens the ratio limits to [0.25, 4].
	ExtendedRange bool `yaml:"double_range"`
	// Noise selects how aperiodic segments are stretched.
	Noise NoiseMode `yaml:"noise" validate:"gte=0,lte=1"`
}

// DefaultParameters returns unity-ratio parameters with the default
// detection range and silence threshold.
func DefaultParameters() Parameters {
	return Parameters{
		Ratio:          1,
		UpperFreqHz:    DefaultUpperFreqHz,
		LowerFreqHz:    DefaultLowerFreqHz,
		BufferMs:       DefaultBufferMs,
		GapThresholdDB: DefaultGapThresholdDB,
		Detection:      period.ModeAuto,
		Noise:          NoiseBlocks,
	}
}

// RatioRange returns the permitted ratio interval.
func (p Parameters) RatioRange() (lo, hi float64) {
	if p.ExtendedRange {
		return MinExtendedRatio, MaxExtendedRatio
	}

	return MinRatio, MaxRatio
}

// EffectiveRatio returns Ratio with the zero value mapped to 1.
func (p Parameters) EffectiveRatio() float64 {
	if p.Ratio == 0 {
		return 1
	}

	return p.Ratio
}

// EffectiveGapRatio returns the ratio applied to silent segments.
func (p Parameters) EffectiveGapRatio() float64 {
	if p.GapRatio == 0 {
		return p.EffectiveRatio()
	}

	return p.GapRatio
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report preset key names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	v.RegisterStructValidation(validateRatios, Parameters{})

	return v
}

func validateRatios(sl validator.StructLevel) {
	p := sl.Current().Interface().(Parameters)
	lo, hi := p.RatioRange()

	if p.Ratio != 0 && !inRange(p.Ratio, lo, hi) {
		sl.ReportError(p.Ratio, "ratio", "Ratio", "ratiorange", "")
	}

	if p.GapRatio != 0 && !inRange(p.GapRatio, lo, hi) {
		sl.ReportError(p.GapRatio, "gap_ratio", "GapRatio", "ratiorange", "")
	}
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// Validate checks p for a stream at sampleRate. All violations are reported
// in one error wrapping ErrInvalidParameter.
func (p Parameters) Validate(sampleRate int) error {
	var problems []string

	if sampleRate < 1 {
		problems = append(problems, fmt.Sprintf("sample rate must be >= 1, got %d", sampleRate))
	}

	if err := validate.Struct(p); err != nil {
		problems = append(problems, flattenValidation(err, p)...)
	}

	if sampleRate >= 1 && p.UpperFreqHz > float64(sampleRate)/2 {
		problems = append(problems, fmt.Sprintf("upper_freq must be <= %g (half the sample rate), got %g",
			float64(sampleRate)/2, p.UpperFreqHz))
	}

	if len(problems) > 0 {
		return fmt.Errorf("stretch: %w: %s", ErrInvalidParameter, strings.Join(problems, "; "))
	}

	return nil
}

func flattenValidation(err error, p Parameters) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, fmt.Sprintf("%s %s, got %v", e.Field(), formatValidationMessage(e, p), e.Value()))
	}

	return out
}

func formatValidationMessage(e validator.FieldError, p Parameters) string {
	switch e.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "gtfield":
		return "must be greater than lower_freq"
	case "ratiorange":
		lo, hi := p.RatioRange()
		if p.ExtendedRange {
			return fmt.Sprintf("must be in [%g, %g]", lo, hi)
		}
		return fmt.Sprintf("must be in [%g, %g] (set double_range for [%g, %g])",
			lo, hi, MinExtendedRatio, MaxExtendedRatio)
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
