package knowledge

// Capabilities lists the boundaries of the automated consultation.
type Capabilities struct {
	CanDo            []string `json:"can_do"`
	CannotDo         []string `json:"cannot_do"`
	MustEscalateWhen []string `json:"must_escalate_when"`
}

// Disclaimer accompanies every consultation result.
const Disclaimer = `IMPORTANT MEDICAL DISCLAIMER

This service provides health education, NOT care from a licensed medical professional.

What it provides:
- Health education and information
- Nutritional guidance and lifestyle suggestions
- Help identifying potential nutrient deficiencies
- Recommendations for which specialist to consult

What it CANNOT provide:
- Medical diagnosis (only doctors can diagnose)
- Prescription medications
- Emergency medical care
- Replacement for professional medical advice

When in doubt, always consult a licensed healthcare professional.
If you have emergency symptoms, call 911 immediately.`

func capabilitiesTable() Capabilities {
	return Capabilities{
		CanDo: []string{
			"Identify patterns in symptoms and lifestyle",
			"Explain biochemical mechanisms in simple language",
			"Suggest nutrient deficiencies based on symptoms",
			"Recommend lifestyle changes (diet, sleep, exercise)",
			"Suggest supplements with dosages (educational only)",
			"Guide physical self-examination (non-invasive)",
			"Recommend which medical specialist to consult",
			"Track symptom changes over time",
		},
		CannotDo: []string{
			"Diagnose medical conditions (only licensed doctors can diagnose)",
			"Prescribe medications (only medical doctors can prescribe)",
			"Replace medical care or professional diagnosis",
			"Interpret lab results definitively (guide to specialist instead)",
			"Provide emergency medical advice (call 911)",
			"Treat acute medical emergencies",
			"Override doctor's recommendations",
			"Guarantee outcomes or results",
			"Practice medicine or act as doctor",
		},
		MustEscalateWhen: []string{
			"Red flag symptoms detected (chest pain, severe headache, etc.)",
			"Symptoms suggest serious condition (cancer, heart disease, etc.)",
			"Patient has emergency symptoms",
			"Symptoms worsen despite interventions",
			"Lab results show abnormal values outside reference range",
			"Patient is pregnant or breastfeeding (different protocols)",
			"Patient has serious medical conditions (kidney disease, etc.)",
			"Symptoms persist beyond 8-12 weeks without improvement",
			"Confidence in assessment is low (<60%)",
			"Patient needs prescription medication",
			"Surgical evaluation may be needed",
		},
	}
}
