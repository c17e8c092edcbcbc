package knowledge

// RedFlag is a symptom presentation that warrants escalation at a given tier.
type RedFlag struct {
	ID         string  `json:"id"`
	Symptom    string  `json:"symptom"`
	Urgency    Urgency `json:"urgency"`
	Reason     string  `json:"reason"`
	Action     string  `json:"action"`
	Specialist string  `json:"specialist,omitempty"`
	// Keywords are curated multi-word phrases. The identifying single words
	// of Symptom always trigger as well.
	Keywords []string `json:"keywords,omitempty"`
}

// TriggerPhrases returns the curated phrases followed by the identifying
// tokens of Symptom, normalized and without duplicates.
func (f RedFlag) TriggerPhrases() []string {
	out := make([]string, 0, len(f.Keywords)+4)
	seen := make(map[string]struct{}, cap(out))
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, k := range f.Keywords {
		add(NormalizeText(k))
	}
	for _, t := range Tokenize(f.Symptom) {
		add(t)
	}
	return out
}

func redFlagTable() []RedFlag {
	return []RedFlag{
		{
			ID:         "cardiac_chest_pain",
			Symptom:    "Chest pain or pressure, especially radiating to arm/jaw",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible heart attack (myocardial infarction)",
			Action:     "CALL 911 IMMEDIATELY. Do not drive yourself. This could be life-threatening.",
			Specialist: "Emergency Department -> Cardiologist",
			Keywords: []string{
				"chest pain", "chest pressure", "chest tightness", "radiating to arm",
				"radiating to jaw", "radiating to the arm", "radiating to the jaw", "jaw pain",
			},
		},
		{
			ID:         "thunderclap_headache",
			Symptom:    "Sudden severe headache (worst of your life)",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible brain aneurysm, stroke, or hemorrhage",
			Action:     "CALL 911 IMMEDIATELY. This could be a stroke or aneurysm.",
			Specialist: "Emergency Department -> Neurologist",
			Keywords: []string{
				"worst headache", "severe headache", "sudden headache", "thunderclap headache",
				"worst of my life", "worst of your life",
			},
		},
		{
			ID:         "breathing_difficulty",
			Symptom:    "Difficulty breathing or shortness of breath at rest",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible heart failure, pulmonary embolism, or severe respiratory issue",
			Action:     "CALL 911 IMMEDIATELY. Breathing difficulty is life-threatening.",
			Specialist: "Emergency Department -> Pulmonologist or Cardiologist",
			Keywords: []string{
				"difficulty breathing", "shortness of breath", "short of breath",
				"can't breathe", "cannot breathe", "trouble breathing",
			},
		},
		{
			ID:         "stroke_signs",
			Symptom:    "Sudden weakness, numbness, or paralysis on one side of body",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible stroke (cerebrovascular accident)",
			Action:     "CALL 911 IMMEDIATELY. Time is critical in stroke treatment (tPA window is 3-4.5 hours).",
			Specialist: "Emergency Department -> Neurologist",
			Keywords: []string{
				"weakness on one side", "numbness on one side", "one sided weakness",
				"sudden weakness", "sudden numbness", "paralysis", "face drooping", "slurred speech",
				"drooping", "slurred",
			},
		},
		{
			ID:         "altered_mental_status",
			Symptom:    "Confusion, disorientation, loss of consciousness",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible stroke, brain injury, severe metabolic issue, or infection",
			Action:     "CALL 911 IMMEDIATELY. Altered mental status is a medical emergency.",
			Specialist: "Emergency Department",
			Keywords: []string{
				"confusion", "confused", "disoriented", "disorientation",
				"loss of consciousness", "unconscious", "passed out", "fainted",
			},
		},
		{
			ID:         "acute_abdomen",
			Symptom:    "Severe abdominal pain (sudden, intense, or with vomiting blood)",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible appendicitis, ruptured organ, internal bleeding, or perforation",
			Action:     "GO TO EMERGENCY ROOM IMMEDIATELY. Do not eat or drink.",
			Specialist: "Emergency Department -> General Surgeon or Gastroenterologist",
			Keywords: []string{
				"severe abdominal pain", "sudden abdominal pain", "intense abdominal pain",
				"vomiting blood", "severe stomach pain", "sudden stomach pain",
			},
		},
		{
			ID:         "hemoptysis_hematemesis",
			Symptom:    "Coughing up blood or blood in vomit",
			Urgency:    UrgencyEmergency911,
			Reason:     "Possible GI bleed, lung issue, or vascular problem",
			Action:     "GO TO EMERGENCY ROOM IMMEDIATELY.",
			Specialist: "Emergency Department -> Gastroenterologist or Pulmonologist",
			Keywords: []string{
				"coughing up blood", "coughing blood", "coughed up blood", "blood in vomit",
				"vomited blood", "vomit blood", "threw up blood", "throwing up blood",
				"hemoptysis", "hematemesis",
			},
		},
		{
			ID:         "suicidal_ideation",
			Symptom:    "Suicidal thoughts or intent to harm self/others",
			Urgency:    UrgencyEmergency911,
			Reason:     "Psychiatric emergency requiring immediate intervention",
			Action:     "CALL 911 or National Suicide Prevention Lifeline: 988. You are not alone.",
			Specialist: "Emergency Department -> Psychiatrist",
			Keywords: []string{
				"suicidal", "suicide", "kill myself", "harm myself", "hurt myself",
				"self harm", "harm others", "end my life",
			},
		},
		{
			ID:         "unexplained_weight_loss",
			Symptom:    "Unexplained weight loss (>10 lbs in month without trying)",
			Urgency:    UrgencyUrgent24Hr,
			Reason:     "Possible cancer, thyroid disorder, diabetes, or serious metabolic issue",
			Action:     "See doctor within 24 hours. This requires immediate evaluation.",
			Specialist: "Primary Care -> Endocrinologist or Oncologist",
			Keywords: []string{
				"unexplained weight loss", "weight loss without trying", "losing weight without trying",
				"lost weight without trying", "pounds without trying",
			},
		},
		{
			ID:         "high_fever",
			Symptom:    "Persistent high fever (>103°F or lasting >3 days)",
			Urgency:    UrgencyUrgent24Hr,
			Reason:     "Possible serious infection requiring antibiotics or hospitalization",
			Action:     "See doctor within 24 hours. Fever this high/long needs evaluation.",
			Specialist: "Primary Care -> Infectious Disease (if complicated)",
			Keywords:   []string{"high fever", "persistent fever", "fever lasting"},
		},
		{
			ID:         "vision_loss",
			Symptom:    "Sudden vision changes or loss",
			Urgency:    UrgencyUrgent24Hr,
			Reason:     "Possible retinal detachment, stroke, or serious eye condition",
			Action:     "See ophthalmologist or go to ER within 24 hours.",
			Specialist: "Ophthalmologist",
			Keywords: []string{
				"sudden vision", "vision loss", "loss of vision", "sudden blindness", "lost vision",
				"blind",
			},
		},
		{
			ID:         "new_lump",
			Symptom:    "New lump or mass, especially if growing or painful",
			Urgency:    UrgencyUrgent24Hr,
			Reason:     "Needs evaluation to rule out cancer",
			Action:     "See doctor within 24-48 hours for evaluation and possible biopsy.",
			Specialist: "Primary Care -> Oncologist or Surgeon",
			Keywords:   []string{"lump", "new mass", "growing mass", "painful mass"},
		},
		{
			ID:         "gi_bleeding",
			Symptom:    "Black or bloody stools (melena or hematochezia)",
			Urgency:    UrgencyUrgent24Hr,
			Reason:     "Possible GI bleeding from ulcer, polyp, or cancer",
			Action:     "See doctor within 24 hours. GI bleeding requires urgent evaluation.",
			Specialist: "Gastroenterologist",
			Keywords: []string{
				"black stool", "black stools", "bloody stool", "bloody stools", "blood in stool",
				"blood in stools", "blood in my stool", "blood in my stools", "tarry stool",
				"tarry stools", "melena", "hematochezia", "rectal bleeding",
			},
		},
		{
			ID:         "persistent_pain",
			Symptom:    "Persistent pain lasting >2 weeks without improvement",
			Urgency:    UrgencySoon1Week,
			Reason:     "Chronic pain may indicate underlying condition needing treatment",
			Action:     "Schedule appointment within 1 week for evaluation.",
			Specialist: "Primary Care -> Pain Specialist (depending on location)",
			Keywords: []string{
				"persistent pain", "chronic pain", "pain lasting", "pain that won't go away",
				"pain that will not go away",
			},
		},
		{
			ID:         "changing_mole",
			Symptom:    "New or changing mole (irregular border, color changes, growing)",
			Urgency:    UrgencySoon1Week,
			Reason:     "Possible melanoma or skin cancer",
			Action:     "See dermatologist within 1 week. Skin cancer is highly treatable if caught early.",
			Specialist: "Dermatologist",
			Keywords: []string{
				"changing mole", "new mole", "mole changes", "mole changing", "growing mole",
				"irregular mole",
			},
		},
		{
			ID:         "persistent_cough",
			Symptom:    "Persistent cough >3 weeks or worsening",
			Urgency:    UrgencySoon1Week,
			Reason:     "Could be infection, asthma, COPD, or rarely lung cancer",
			Action:     "See doctor within 1 week, especially if smoker or former smoker.",
			Specialist: "Primary Care -> Pulmonologist",
			Keywords:   []string{"persistent cough", "chronic cough", "worsening cough"},
		},
	}
}
