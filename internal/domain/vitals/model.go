// Package vitals models a simulated pediatric patient's vital signs and the
// deterministic engine that mutates them: intervention effects, deterioration
// curves, severity scoring and clinical status classification.
package vitals

// ConsciousnessLevel is a named level of consciousness. Unlike the numeric
// vitals it is replaced outright by an effect, never adjusted by a delta.
type ConsciousnessLevel string

const (
	ConsciousnessAlert        ConsciousnessLevel = "alert"
	ConsciousnessIrritable    ConsciousnessLevel = "irritable"
	ConsciousnessConfused     ConsciousnessLevel = "confused"
	ConsciousnessLethargic    ConsciousnessLevel = "lethargic"
	ConsciousnessPostIctal    ConsciousnessLevel = "post-ictal"
	ConsciousnessUnresponsive ConsciousnessLevel = "unresponsive"
)

// Field identifies one numeric vital sign. The set is closed: every engine
// operation dispatches over this enum, so an authored effect or curve can
// never reach a field the engine does not know about.
type Field int

const (
	FieldHeartRate Field = iota
	FieldRespRate
	FieldBloodPressureSys
	FieldBloodPressureDia
	FieldSpO2
	FieldTemperature
	FieldCapillaryRefill
)

var fieldNames = map[Field]string{
	FieldHeartRate:        "heartRate",
	FieldRespRate:         "respRate",
	FieldBloodPressureSys: "bloodPressureSys",
	FieldBloodPressureDia: "bloodPressureDia",
	FieldSpO2:             "spo2",
	FieldTemperature:      "temperature",
	FieldCapillaryRefill:  "capillaryRefill",
}

var fieldsByName = map[string]Field{
	"heartRate":        FieldHeartRate,
	"respRate":         FieldRespRate,
	"bloodPressureSys": FieldBloodPressureSys,
	"bloodPressureDia": FieldBloodPressureDia,
	"spo2":             FieldSpO2,
	"temperature":      FieldTemperature,
	"capillaryRefill":  FieldCapillaryRefill,
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseField resolves an authored field name (the JSON key used in case
// content) to its Field. ok is false for names the engine does not track.
func ParseField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Fields returns every numeric vital field in declaration order.
func Fields() []Field {
	return []Field{
		FieldHeartRate, FieldRespRate,
		FieldBloodPressureSys, FieldBloodPressureDia,
		FieldSpO2, FieldTemperature, FieldCapillaryRefill,
	}
}

// Bound is the absolute clinical range a vital may occupy. Values outside
// the bound are clamped, never persisted.
type Bound struct {
	Min float64
	Max float64
}

var fieldBounds = map[Field]Bound{
	FieldHeartRate:        {Min: 0, Max: 300},
	FieldRespRate:         {Min: 0, Max: 150},
	FieldBloodPressureSys: {Min: 0, Max: 300},
	FieldBloodPressureDia: {Min: 0, Max: 200},
	FieldSpO2:             {Min: 0, Max: 100},
	FieldTemperature:      {Min: 30, Max: 45},
	FieldCapillaryRefill:  {Min: 0, Max: 30},
}

// BoundFor returns the clamp range for a field.
func BoundFor(f Field) Bound {
	return fieldBounds[f]
}

// Vitals is an immutable snapshot of a patient's vital signs. Engine
// operations return new snapshots rather than mutating in place.
// CapillaryRefill is optional: not every authored case records it.
type Vitals struct {
	HeartRate        float64            `json:"heartRate"`
	RespRate         float64            `json:"respRate"`
	BloodPressureSys float64            `json:"bloodPressureSys"`
	BloodPressureDia float64            `json:"bloodPressureDia"`
	SpO2             float64            `json:"spo2"`
	Temperature      float64            `json:"temperature"`
	Consciousness    ConsciousnessLevel `json:"consciousness"`
	CapillaryRefill  *float64           `json:"capillaryRefill,omitempty"` // seconds
}

// Get returns the current value of a numeric field. For CapillaryRefill ok
// is false when the case does not track it; every other field always reads.
func (v Vitals) Get(f Field) (float64, bool) {
	switch f {
	case FieldHeartRate:
		return v.HeartRate, true
	case FieldRespRate:
		return v.RespRate, true
	case FieldBloodPressureSys:
		return v.BloodPressureSys, true
	case FieldBloodPressureDia:
		return v.BloodPressureDia, true
	case FieldSpO2:
		return v.SpO2, true
	case FieldTemperature:
		return v.Temperature, true
	case FieldCapillaryRefill:
		if v.CapillaryRefill == nil {
			return 0, false
		}
		return *v.CapillaryRefill, true
	}
	return 0, false
}

// withField returns a copy of v with field f set to val. The caller is
// responsible for clamping; this is a plain write.
func (v Vitals) withField(f Field, val float64) Vitals {
	switch f {
	case FieldHeartRate:
		v.HeartRate = val
	case FieldRespRate:
		v.RespRate = val
	case FieldBloodPressureSys:
		v.BloodPressureSys = val
	case FieldBloodPressureDia:
		v.BloodPressureDia = val
	case FieldSpO2:
		v.SpO2 = val
	case FieldTemperature:
		v.Temperature = val
	case FieldCapillaryRefill:
		v.CapillaryRefill = &val
	}
	return v
}

// Effect is a partial vitals diff authored on an intervention or carried by
// a deterioration curve. Numeric deltas are additive; Consciousness, when
// present, replaces the current level.
type Effect struct {
	Deltas        map[Field]float64
	Consciousness *ConsciousnessLevel
}

// IsZero reports whether applying the effect can change nothing.
func (e Effect) IsZero() bool {
	if e.Consciousness != nil {
		return false
	}
	for _, d := range e.Deltas {
		if d != 0 {
			return false
		}
	}
	return true
}

// Curve is a named deterioration profile: a per-minute signed rate of change
// per vital field, reapplied on every tick until an intervention alters the
// trajectory.
type Curve struct {
	Name  string
	Rates map[Field]float64 // units per minute, signed
}
