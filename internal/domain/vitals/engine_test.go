package vitals

import (
	"math"
	"reflect"
	"testing"
)

func baseline() Vitals {
	cap := 2.0
	return Vitals{
		HeartRate:        110,
		RespRate:         28,
		BloodPressureSys: 100,
		BloodPressureDia: 65,
		SpO2:             98,
		Temperature:      37.0,
		Consciousness:    ConsciousnessAlert,
		CapillaryRefill:  &cap,
	}
}

func TestApplyEffects_AddsAndClamps(t *testing.T) {
	v := baseline()
	after := ApplyEffects(v, Effect{Deltas: map[Field]float64{
		FieldHeartRate: 25,
		FieldSpO2:      -12,
	}})

	if after.HeartRate != 135 {
		t.Errorf("heartRate = %v, want 135", after.HeartRate)
	}
	if after.SpO2 != 86 {
		t.Errorf("spo2 = %v, want 86", after.SpO2)
	}
	// untouched fields
	if after.RespRate != v.RespRate || after.Temperature != v.Temperature {
		t.Error("fields absent from effect must be unchanged")
	}
	// input snapshot untouched
	if v.HeartRate != 110 {
		t.Error("ApplyEffects mutated its input")
	}
}

func TestApplyEffects_ClampsExtremeDeltas(t *testing.T) {
	v := baseline()
	after := ApplyEffects(v, Effect{Deltas: map[Field]float64{
		FieldSpO2:             1000,
		FieldHeartRate:        -1000,
		FieldTemperature:      100,
		FieldBloodPressureSys: -500,
	}})

	if after.SpO2 != 100 {
		t.Errorf("spo2 = %v, want clamp at 100", after.SpO2)
	}
	if after.HeartRate != 0 {
		t.Errorf("heartRate = %v, want clamp at 0", after.HeartRate)
	}
	if after.Temperature != 45 {
		t.Errorf("temperature = %v, want clamp at 45", after.Temperature)
	}
	if after.BloodPressureSys != 0 {
		t.Errorf("bloodPressureSys = %v, want clamp at 0", after.BloodPressureSys)
	}
}

func TestApplyEffects_ZeroEffectIsNoOp(t *testing.T) {
	v := baseline()
	after := ApplyEffects(v, Effect{})
	if !reflect.DeepEqual(v, after) {
		t.Errorf("empty effect changed vitals: %+v -> %+v", v, after)
	}

	after = ApplyEffects(v, Effect{Deltas: map[Field]float64{
		FieldHeartRate: 0,
		FieldSpO2:      0,
	}})
	if !reflect.DeepEqual(v, after) {
		t.Error("all-zero effect changed vitals")
	}
}

func TestApplyEffects_ConsciousnessReplaced(t *testing.T) {
	v := baseline()
	lethargic := ConsciousnessLethargic
	after := ApplyEffects(v, Effect{Consciousness: &lethargic})
	if after.Consciousness != ConsciousnessLethargic {
		t.Errorf("consciousness = %q, want lethargic", after.Consciousness)
	}
}

func TestApplyEffects_CapillaryRefillFromZeroWhenUntracked(t *testing.T) {
	v := baseline()
	v.CapillaryRefill = nil
	after := ApplyEffects(v, Effect{Deltas: map[Field]float64{FieldCapillaryRefill: 3}})
	if after.CapillaryRefill == nil || *after.CapillaryRefill != 3 {
		t.Errorf("capillaryRefill = %v, want 3 (additive from zero)", after.CapillaryRefill)
	}
}

func TestApplyEffects_CapillaryRefillAdditiveFromCurrent(t *testing.T) {
	v := baseline() // cap refill 2s
	after := ApplyEffects(v, Effect{Deltas: map[Field]float64{FieldCapillaryRefill: 2}})
	if after.CapillaryRefill == nil || *after.CapillaryRefill != 4 {
		t.Errorf("capillaryRefill = %v, want 4 (2 current + 2 delta)", after.CapillaryRefill)
	}
}

func TestApplyEffects_Deterministic(t *testing.T) {
	v := baseline()
	e := Effect{Deltas: map[Field]float64{FieldHeartRate: 7.5, FieldSpO2: -2.25}}
	first := ApplyEffects(v, e)
	for i := 0; i < 50; i++ {
		if got := ApplyEffects(v, e); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestTick_ScalesRateToElapsedTime(t *testing.T) {
	v := baseline()
	curve := Curve{Name: "respiratory decline", Rates: map[Field]float64{
		FieldSpO2:      -2, // per minute
		FieldHeartRate: 6,
	}}

	after, rates := Tick(v, curve, 30) // half a minute

	if after.SpO2 != 97 {
		t.Errorf("spo2 = %v, want 97", after.SpO2)
	}
	if after.HeartRate != 113 {
		t.Errorf("heartRate = %v, want 113", after.HeartRate)
	}
	if rates[FieldSpO2] != -1 || rates[FieldHeartRate] != 3 {
		t.Errorf("deterioration rates = %v, want spo2 -1, heartRate 3", rates)
	}
}

func TestTick_ClampDirectionFollowsRateSign(t *testing.T) {
	v := baseline()
	v.SpO2 = 1
	v.HeartRate = 298

	curve := Curve{Rates: map[Field]float64{
		FieldSpO2:      -10,
		FieldHeartRate: 60,
	}}
	after, _ := Tick(v, curve, 60)

	if after.SpO2 != 0 {
		t.Errorf("spo2 = %v, want floor at 0", after.SpO2)
	}
	if after.HeartRate != 300 {
		t.Errorf("heartRate = %v, want ceiling at 300", after.HeartRate)
	}
}

func TestTick_PositiveRateNeverFloors(t *testing.T) {
	// A curve authored to raise HR must not re-clamp at the minimum even
	// when the current value already sits at it.
	v := baseline()
	v.HeartRate = 0
	curve := Curve{Rates: map[Field]float64{FieldHeartRate: 12}}
	after, _ := Tick(v, curve, 60)
	if after.HeartRate != 12 {
		t.Errorf("heartRate = %v, want 12", after.HeartRate)
	}
}

func TestTick_FieldsAbsentFromCurveUntouched(t *testing.T) {
	v := baseline()
	curve := Curve{Rates: map[Field]float64{FieldSpO2: -1}}
	after, rates := Tick(v, curve, 60)
	if after.HeartRate != v.HeartRate || after.Temperature != v.Temperature {
		t.Error("fields without a curve rate must not move")
	}
	if _, ok := rates[FieldHeartRate]; ok {
		t.Error("rate map must only contain curve fields")
	}
}

func TestTick_Deterministic(t *testing.T) {
	v := baseline()
	curve := Curve{Rates: map[Field]float64{FieldSpO2: -1.5, FieldRespRate: 2.5}}
	firstV, firstR := Tick(v, curve, 45)
	for i := 0; i < 50; i++ {
		gotV, gotR := Tick(v, curve, 45)
		if !reflect.DeepEqual(gotV, firstV) || !reflect.DeepEqual(gotR, firstR) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestSeverityScore_NormalVitalsScoreZero(t *testing.T) {
	if got := SeverityScore(baseline()); got != 0 {
		t.Errorf("score = %d, want 0 for normal pediatric vitals", got)
	}
}

func TestSeverityScore_Breakpoints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Vitals)
		want   int
	}{
		{"bradycardia", func(v *Vitals) { v.HeartRate = 50 }, 2},
		{"severe tachycardia", func(v *Vitals) { v.HeartRate = 185 }, 3},
		{"moderate tachycardia", func(v *Vitals) { v.HeartRate = 165 }, 2},
		{"mild tachycardia", func(v *Vitals) { v.HeartRate = 145 }, 1},
		{"bradypnea", func(v *Vitals) { v.RespRate = 15 }, 2},
		{"severe tachypnea", func(v *Vitals) { v.RespRate = 65 }, 3},
		{"hypotension", func(v *Vitals) { v.BloodPressureSys = 85 }, 3},
		{"borderline bp", func(v *Vitals) { v.BloodPressureSys = 105 }, 1},
		{"severe hypoxia", func(v *Vitals) { v.SpO2 = 88 }, 3},
		{"mild hypoxia", func(v *Vitals) { v.SpO2 = 93 }, 1},
		{"hyperpyrexia", func(v *Vitals) { v.Temperature = 40.5 }, 2},
		{"fever", func(v *Vitals) { v.Temperature = 39.5 }, 1},
		{"hypothermia", func(v *Vitals) { v.Temperature = 35 }, 1},
		{"delayed cap refill", func(v *Vitals) { c := 4.0; v.CapillaryRefill = &c }, 2},
		{"unresponsive", func(v *Vitals) { v.Consciousness = ConsciousnessUnresponsive }, 4},
		{"lethargic", func(v *Vitals) { v.Consciousness = ConsciousnessLethargic }, 2},
		{"confused", func(v *Vitals) { v.Consciousness = ConsciousnessConfused }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseline()
			tt.mutate(&v)
			if got := SeverityScore(v); got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeverityScore_SumsAcrossFieldsAndCaps(t *testing.T) {
	cap := 6.0
	v := Vitals{
		HeartRate:        200, // 3
		RespRate:         70,  // 3
		BloodPressureSys: 60,  // 3
		SpO2:             80,  // 3
		Temperature:      41,  // 2
		Consciousness:    ConsciousnessUnresponsive, // 4
		CapillaryRefill:  &cap, // 2
	}
	if got := SeverityScore(v); got != 20 {
		t.Errorf("score = %d, want cap at 20", got)
	}
}

func TestSeverityScore_MonotonicInHeartRate(t *testing.T) {
	v := baseline()
	prev := -1
	for hr := 150.0; hr <= 190; hr += 5 {
		v.HeartRate = hr
		score := SeverityScore(v)
		if score < prev {
			t.Fatalf("score decreased from %d to %d at heartRate %v", prev, score, hr)
		}
		prev = score
	}
}

func TestClassify_StatusBands(t *testing.T) {
	v := baseline()
	if c := Classify(v); c.Status != StatusStable || c.Priority != 4 {
		t.Errorf("normal vitals: got %s/%d, want stable/4", c.Status, c.Priority)
	}

	v.HeartRate = 165 // 2
	v.SpO2 = 93       // 1 -> total 3, still stable
	if c := Classify(v); c.Status != StatusStable {
		t.Errorf("score 3: got %s, want stable", c.Status)
	}

	v.Temperature = 39.5 // +1 -> 4, concerning
	if c := Classify(v); c.Status != StatusConcerning || c.Priority != 3 {
		t.Errorf("score 4: got %s/%d, want concerning/3", c.Status, c.Priority)
	}

	v.BloodPressureSys = 85 // +3 -> 7, critical
	if c := Classify(v); c.Status != StatusCritical || c.Priority != 2 {
		t.Errorf("score 7: got %s/%d, want critical/2", c.Status, c.Priority)
	}

	v.Consciousness = ConsciousnessUnresponsive // +4 -> 11, emergent
	if c := Classify(v); c.Status != StatusEmergent || c.Priority != 1 {
		t.Errorf("score 11: got %s/%d, want emergent/1", c.Status, c.Priority)
	}
}

func TestClassify_FieldSpecificRecommendations(t *testing.T) {
	v := baseline()
	v.SpO2 = 85
	v.BloodPressureSys = 80
	v.HeartRate = 190

	c := Classify(v)
	wantSuffixes := []string{
		"Administer supplemental oxygen",
		"Establish vascular access and consider fluid resuscitation",
		"Initiate continuous cardiac monitoring",
	}
	for _, want := range wantSuffixes {
		found := false
		for _, rec := range c.Recommendations {
			if rec == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing recommendation %q in %v", want, c.Recommendations)
		}
	}
	if len(c.Recommendations) < 4 {
		t.Error("band base recommendations must be retained")
	}
}

func TestTimeToCritical(t *testing.T) {
	v := baseline()
	v.SpO2 = 95
	curve := Curve{Rates: map[Field]float64{
		FieldSpO2:      -1, // per minute
		FieldHeartRate: 0,
	}}
	thresholds := map[Field]float64{
		FieldSpO2:      90,
		FieldHeartRate: 180,
		FieldTemperature: 40, // no curve rate: omitted
	}

	out := TimeToCritical(v, curve, thresholds)

	if got := out[FieldSpO2]; got != 300 {
		t.Errorf("spo2 time-to-critical = %v s, want 300", got)
	}
	if got := out[FieldHeartRate]; !math.IsInf(got, 1) {
		t.Errorf("heartRate time-to-critical = %v, want +Inf for zero rate", got)
	}
	if _, ok := out[FieldTemperature]; ok {
		t.Error("fields without a curve rate must be omitted")
	}
}

func TestValidateRanges(t *testing.T) {
	v := baseline()
	if report := ValidateRanges(v); !report.Valid || len(report.Warnings) != 0 {
		t.Errorf("normal vitals flagged: %+v", report)
	}

	v.SpO2 = 105
	v.Temperature = 25
	report := ValidateRanges(v)
	if report.Valid {
		t.Error("out-of-range vitals reported valid")
	}
	if len(report.Warnings) != 2 {
		t.Errorf("warnings = %v, want 2", report.Warnings)
	}
	// diagnostic only: the snapshot is untouched
	if v.SpO2 != 105 {
		t.Error("ValidateRanges must not clamp")
	}
}

// Scenario from the anaphylaxis courseware: IM epinephrine during
// decompensation.
func TestApplyEffects_EpinephrineScenario(t *testing.T) {
	cap := 4.0
	before := Vitals{
		HeartRate:        130,
		RespRate:         41,
		BloodPressureSys: 85,
		BloodPressureDia: 50,
		SpO2:             93,
		Temperature:      38.5,
		Consciousness:    ConsciousnessLethargic,
		CapillaryRefill:  &cap,
	}
	effect := Effect{Deltas: map[Field]float64{
		FieldHeartRate:        -19,
		FieldRespRate:         -10,
		FieldBloodPressureSys: 20,
		FieldSpO2:             4,
	}}

	after := ApplyEffects(before, effect)

	if after.HeartRate != 111 {
		t.Errorf("heartRate = %v, want 111", after.HeartRate)
	}
	if after.RespRate != 31 {
		t.Errorf("respRate = %v, want 31", after.RespRate)
	}
	if after.BloodPressureSys != 105 {
		t.Errorf("bloodPressureSys = %v, want 105", after.BloodPressureSys)
	}
	if after.BloodPressureDia != 50 {
		t.Errorf("bloodPressureDia = %v, want 50 (unchanged)", after.BloodPressureDia)
	}
	if after.SpO2 != 97 {
		t.Errorf("spo2 = %v, want 97", after.SpO2)
	}
	if after.Temperature != 38.5 || after.Consciousness != ConsciousnessLethargic {
		t.Error("temperature and consciousness must be unchanged")
	}
	if after.CapillaryRefill == nil || *after.CapillaryRefill != 4 {
		t.Error("capillaryRefill must be unchanged")
	}

	if SeverityScore(before) < SeverityScore(after) {
		t.Errorf("severity before (%d) must be >= after (%d)",
			SeverityScore(before), SeverityScore(after))
	}
}
