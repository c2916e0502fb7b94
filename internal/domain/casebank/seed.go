package casebank

import (
	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/vitals"
)

func floatPtr(f float64) *float64 { return &f }

func levelPtr(l vitals.ConsciousnessLevel) *vitals.ConsciousnessLevel { return &l }

// SeedCases returns the built-in authored content, used when the service
// runs without an external content source and as a realistic fixture in
// tests. Effects and curves come from the pediatric emergency courseware.
func SeedCases() []*CaseVariant {
	return []*CaseVariant{anaphylaxisVariantA(), febrileSeizureVariantA()}
}

func anaphylaxisVariantA() *CaseVariant {
	return &CaseVariant{
		ID:       "anaphylaxis-a",
		Name:     "Anaphylaxis following peanut exposure",
		Category: "anaphylaxis",
		AgeYears: 6,
		WeightKg: 20,
		InitialVitals: vitals.Vitals{
			HeartRate:        130,
			RespRate:         41,
			BloodPressureSys: 85,
			BloodPressureDia: 50,
			SpO2:             93,
			Temperature:      38.5,
			Consciousness:    vitals.ConsciousnessLethargic,
			CapillaryRefill:  floatPtr(4),
		},
		Stages: []Stage{
			{
				Number:             1,
				Name:               "Decompensation",
				Severity:           SeveritySevere,
				TimeToInterveneSec: 120,
				Required:           []string{"IM epinephrine"},
				Helpful:            []string{"Supplemental oxygen", "IV fluid bolus"},
				Harmful:            []string{"Oral antihistamine only"},
				Neutral:            []string{"Obtain allergy history"},
				Synonyms: map[string]string{
					"Epinephrine IM":              "IM epinephrine",
					"Intramuscular epinephrine":   "IM epinephrine",
					"Oxygen":                      "Supplemental oxygen",
					"Normal saline bolus":         "IV fluid bolus",
				},
				VitalEffects: map[string]vitals.Effect{
					"IM epinephrine": {Deltas: map[vitals.Field]float64{
						vitals.FieldHeartRate:        -19,
						vitals.FieldRespRate:         -10,
						vitals.FieldBloodPressureSys: 20,
						vitals.FieldSpO2:             4,
					}},
					"Supplemental oxygen": {Deltas: map[vitals.Field]float64{
						vitals.FieldSpO2: 3,
					}},
					"IV fluid bolus": {Deltas: map[vitals.Field]float64{
						vitals.FieldBloodPressureSys: 10,
						vitals.FieldBloodPressureDia: 5,
						vitals.FieldCapillaryRefill:  -1,
					}},
					"Oral antihistamine only": {Deltas: map[vitals.Field]float64{
						vitals.FieldBloodPressureSys: -5,
						vitals.FieldSpO2:             -2,
					}},
				},
				Curve: &vitals.Curve{
					Name: "airway compromise",
					Rates: map[vitals.Field]float64{
						vitals.FieldSpO2:             -2,
						vitals.FieldBloodPressureSys: -3,
						vitals.FieldHeartRate:        4,
					},
				},
				CriticalThresholds: map[vitals.Field]float64{
					vitals.FieldSpO2:             85,
					vitals.FieldBloodPressureSys: 70,
				},
			},
			{
				Number:             2,
				Name:               "Stabilization",
				Severity:           SeverityModerate,
				TimeToInterveneSec: 300,
				Required:           []string{"IV fluid bolus", "Continuous monitoring"},
				Helpful:            []string{"H1 antihistamine", "Corticosteroid"},
				Harmful:            []string{"Discharge home"},
				Neutral:            []string{"Notify family"},
				Synonyms: map[string]string{
					"Normal saline bolus": "IV fluid bolus",
					"Diphenhydramine":     "H1 antihistamine",
					"Methylprednisolone":  "Corticosteroid",
				},
				VitalEffects: map[string]vitals.Effect{
					"IV fluid bolus": {Deltas: map[vitals.Field]float64{
						vitals.FieldBloodPressureSys: 12,
						vitals.FieldCapillaryRefill:  -1,
					}},
					"Continuous monitoring": {},
					"H1 antihistamine": {Deltas: map[vitals.Field]float64{
						vitals.FieldRespRate: -3,
					}},
					"Corticosteroid": {},
					"Discharge home": {Deltas: map[vitals.Field]float64{
						vitals.FieldSpO2: -4,
					}},
				},
				Curve: &vitals.Curve{
					Name: "biphasic risk",
					Rates: map[vitals.Field]float64{
						vitals.FieldSpO2: -0.5,
					},
				},
				CriticalThresholds: map[vitals.Field]float64{
					vitals.FieldSpO2: 90,
				},
			},
		},
	}
}

func febrileSeizureVariantA() *CaseVariant {
	return &CaseVariant{
		ID:       "febrile-seizure-a",
		Name:     "Complex febrile seizure",
		Category: "febrile seizure",
		AgeYears: 2,
		WeightKg: 12,
		InitialVitals: vitals.Vitals{
			HeartRate:        155,
			RespRate:         32,
			BloodPressureSys: 95,
			BloodPressureDia: 60,
			SpO2:             94,
			Temperature:      39.8,
			Consciousness:    vitals.ConsciousnessPostIctal,
			CapillaryRefill:  floatPtr(2),
		},
		Stages: []Stage{
			{
				Number:             1,
				Name:               "Active seizure",
				Severity:           SeveritySevere,
				TimeToInterveneSec: 180,
				Ordered:            true,
				Required:           []string{"Position airway", "IV benzodiazepine"},
				Helpful:            []string{"Supplemental oxygen", "Check glucose"},
				Harmful:            []string{"Restrain patient"},
				Neutral:            []string{"Obtain seizure history"},
				Synonyms: map[string]string{
					"Lorazepam IV": "IV benzodiazepine",
					"Midazolam IV": "IV benzodiazepine",
					"Oxygen":       "Supplemental oxygen",
				},
				VitalEffects: map[string]vitals.Effect{
					"Position airway": {Deltas: map[vitals.Field]float64{
						vitals.FieldSpO2: 3,
					}},
					"IV benzodiazepine": {
						Deltas: map[vitals.Field]float64{
							vitals.FieldHeartRate: -20,
							vitals.FieldRespRate:  -6,
						},
						Consciousness: levelPtr(vitals.ConsciousnessLethargic),
					},
					"Supplemental oxygen": {Deltas: map[vitals.Field]float64{
						vitals.FieldSpO2: 4,
					}},
					"Check glucose":          {},
					"Obtain seizure history": {},
					"Restrain patient": {Deltas: map[vitals.Field]float64{
						vitals.FieldHeartRate: 10,
						vitals.FieldSpO2:      -2,
					}},
				},
				Curve: &vitals.Curve{
					Name: "ongoing seizure",
					Rates: map[vitals.Field]float64{
						vitals.FieldSpO2:      -3,
						vitals.FieldHeartRate: 5,
					},
				},
				CriticalThresholds: map[vitals.Field]float64{
					vitals.FieldSpO2: 88,
				},
			},
			{
				Number:             2,
				Name:               "Post-ictal management",
				Severity:           SeverityModerate,
				TimeToInterveneSec: 600,
				Required:           []string{"Antipyretic", "Continuous monitoring"},
				Helpful:            []string{"Fluid assessment"},
				Neutral:            []string{"Parent education"},
				Synonyms: map[string]string{
					"Acetaminophen": "Antipyretic",
					"Ibuprofen":     "Antipyretic",
				},
				VitalEffects: map[string]vitals.Effect{
					"Antipyretic": {Deltas: map[vitals.Field]float64{
						vitals.FieldTemperature: -1.2,
						vitals.FieldHeartRate:   -10,
					}},
					"Continuous monitoring": {},
					"Fluid assessment":      {},
					"Parent education":      {},
				},
				Curve: &vitals.Curve{
					Name: "post-ictal recovery",
					Rates: map[vitals.Field]float64{
						vitals.FieldHeartRate: -1,
					},
				},
			},
		},
	}
}
