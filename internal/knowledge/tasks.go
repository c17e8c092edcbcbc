package knowledge

// TaskType identifies one step of a consultation.
type TaskType string

const (
	TaskIntake         TaskType = "intake"
	TaskDiagnostic     TaskType = "diagnostic"
	TaskAnalysis       TaskType = "analysis"
	TaskRootCause      TaskType = "root_cause"
	TaskRecommendation TaskType = "recommendation"
	TaskRouting        TaskType = "routing"
	TaskFollowUp       TaskType = "follow_up"
)

// TaskDefinition declares what a consultation step consumes and produces and
// which stage owns it.
type TaskDefinition struct {
	Type            TaskType `json:"type"`
	Description     string   `json:"description"`
	InputsNeeded    []string `json:"inputs_needed"`
	OutputsExpected []string `json:"outputs_expected"`
	SuccessCriteria []string `json:"success_criteria"`
	Stage           string   `json:"stage"`
	Limitations     []string `json:"limitations"`
}

func taskTable() []TaskDefinition {
	return []TaskDefinition{
		{
			Type:        TaskIntake,
			Description: "Gather comprehensive health information through conversation",
			InputsNeeded: []string{
				"User's initial complaint or concern",
				"Conversation history (if returning user)",
			},
			OutputsExpected: []string{
				"Detailed symptom description",
				"Duration and severity of symptoms",
				"Diet, sleep, exercise, stress patterns",
				"Sun exposure and lifestyle factors",
				"Current medications/supplements",
				"Medical history",
				"What patient wants to achieve",
			},
			SuccessCriteria: []string{
				"Collected enough information to identify patterns",
				"Understood patient's primary concern",
				"Identified any red flag symptoms",
				"Gathered lifestyle context (diet, sleep, stress)",
				"Patient feels heard and understood",
			},
			Stage: "intake",
			Limitations: []string{
				"Cannot diagnose medical conditions",
				"Cannot prescribe medications",
				"Must escalate if red flags detected",
				"Cannot interpret lab results definitively",
				"Cannot provide emergency medical advice",
			},
		},
		{
			Type:        TaskDiagnostic,
			Description: "Guide patient through physical self-examination to gather objective data",
			InputsNeeded: []string{
				"Health profile from intake",
				"Specific symptoms to investigate",
				"Patient's ability to perform self-exams",
			},
			OutputsExpected: []string{
				"Tongue examination findings",
				"Nail examination findings",
				"Skin condition observations",
				"Capillary refill time",
				"Orthostatic test results",
				"Other visible signs (dark circles, bruising, etc.)",
			},
			SuccessCriteria: []string{
				"Patient successfully performed examinations",
				"Gathered objective physical findings",
				"Findings documented clearly",
				"Patient understands what findings mean",
				"Identified any red flag signs requiring medical attention",
			},
			Stage: "diagnostic",
			Limitations: []string{
				"Cannot perform medical examinations (only guide self-exam)",
				"Cannot replace professional physical exam",
				"Cannot diagnose from photos alone",
				"Must recommend doctor visit if findings are concerning",
				"Cannot assess internal organs or systems",
			},
		},
		{
			Type:        TaskAnalysis,
			Description: "Analyze symptoms and findings using medical knowledge to identify patterns",
			InputsNeeded: []string{
				"Health profile (symptoms, lifestyle)",
				"Diagnostic findings (physical exam)",
				"Patient context (age, sex, duration)",
				"Medical knowledge database",
			},
			OutputsExpected: []string{
				"Likely nutrient deficiencies identified",
				"Metabolic issues identified (insulin resistance, etc.)",
				"Body systems affected (gut, hormones, etc.)",
				"Confidence score for assessment",
				"Differential considerations",
				"Which specialists might be needed",
			},
			SuccessCriteria: []string{
				"Identified 2-4 most likely issues",
				"Analysis is evidence-based",
				"Confidence score calculated",
				"Clear reasoning provided",
				"Red flags assessed and escalated if present",
			},
			Stage: "knowledge",
			Limitations: []string{
				"Cannot make medical diagnosis (only identify patterns)",
				"Cannot replace bloodwork or medical tests",
				"Confidence varies based on symptom clarity",
				"May miss rare conditions",
				"Cannot account for all individual variations",
			},
		},
		{
			Type:        TaskRootCause,
			Description: "Explain underlying mechanisms and root causes in accessible language",
			InputsNeeded: []string{
				"Analysis results (deficiencies, issues identified)",
				"Patient's symptoms",
				"Lifestyle factors contributing",
			},
			OutputsExpected: []string{
				"Explanation of root causes (not just proximal causes)",
				"Biochemical mechanisms in simple language",
				"How symptoms connect to root causes",
				"Cascade effects and vicious cycles",
				"Why generic advice hasn't worked",
			},
			SuccessCriteria: []string{
				"Patient understands WHY symptoms are happening",
				"Root causes clearly identified (not just symptoms)",
				"Mechanisms explained at appropriate level",
				"Shows interconnections between issues",
				"Patient empowered with knowledge",
			},
			Stage: "root_cause",
			Limitations: []string{
				"Explanations are educational, not diagnostic",
				"May not capture all complexity of individual case",
				"Cannot account for genetic factors without testing",
				"Cannot determine causation definitively without medical workup",
			},
		},
		{
			Type:        TaskRecommendation,
			Description: "Provide specific, actionable recommendations (supplements, diet, lifestyle)",
			InputsNeeded: []string{
				"Root causes identified",
				"Deficiencies identified",
				"Patient's goals and constraints",
				"Safety information (medications, allergies, conditions)",
				"Confidence score from analysis",
			},
			OutputsExpected: []string{
				"Specific supplements with forms, dosages, timing",
				"Diet recommendations with food sources and amounts",
				"Lifestyle interventions (sleep, exercise, stress)",
				"What to avoid and why",
				"Timeline with weekly expectations",
				"Safety considerations and interactions",
				"When to see doctor",
			},
			SuccessCriteria: []string{
				"Recommendations are specific and actionable",
				"Dosages, forms, timing all specified",
				"Safety checked (interactions, contraindications)",
				"Patient understands WHY each recommendation",
				"Timeline set for follow-up",
				"Clear guidance on when to see doctor",
			},
			Stage: "recommender",
			Limitations: []string{
				"Recommendations are educational, not prescriptions",
				"Cannot account for all individual health factors",
				"Cannot guarantee results",
				"Must defer to doctor if patient has serious conditions",
				"Cannot provide recommendations for pregnant/breastfeeding without medical supervision",
				"Low confidence = recommend seeing doctor instead",
			},
		},
		{
			Type:        TaskRouting,
			Description: "Recommend which medical specialist patient should consult",
			InputsNeeded: []string{
				"Symptoms and their severity",
				"Body system affected",
				"Duration of symptoms",
				"Red flags present or not",
			},
			OutputsExpected: []string{
				"Primary specialist recommendation",
				"Secondary/alternative specialists",
				"Reasoning for recommendation",
				"What tests specialist might do",
				"Urgency level (routine, soon, urgent, emergency)",
			},
			SuccessCriteria: []string{
				"Patient knows which type of doctor to see",
				"Understands why this specialist is appropriate",
				"Knows what to expect from appointment",
				"Urgency clearly communicated",
				"Alternative options provided if needed",
			},
			Stage: "router",
			Limitations: []string{
				"Recommendations based on symptom patterns only",
				"Cannot replace doctor's referral process",
				"May not account for regional healthcare availability",
				"Cannot guarantee specialist will agree with routing",
				"Emergency symptoms = call 911, not routing agent",
			},
		},
		{
			Type:        TaskFollowUp,
			Description: "Track progress, assess intervention effectiveness, adjust plan",
			InputsNeeded: []string{
				"Baseline symptoms and severity",
				"Interventions implemented",
				"Current symptoms and severity",
				"Compliance with recommendations",
				"Time since baseline",
			},
			OutputsExpected: []string{
				"Progress assessment (% improvement)",
				"Which interventions are working",
				"Which interventions need adjustment",
				"New recommendations based on response",
				"When to follow up again",
				"When to see doctor if not improving",
			},
			SuccessCriteria: []string{
				"Clear assessment of progress",
				"Specific adjustments if needed",
				"Patient knows what's working",
				"Timeline for next check-in established",
				"Escalation to doctor if no improvement",
			},
			Stage: "follow_up",
			Limitations: []string{
				"Cannot assess internal changes without medical tests",
				"Relies on patient self-reporting",
				"Cannot determine if underlying disease is progressing",
				"Must recommend doctor visit if no improvement by 8 weeks",
			},
		},
	}
}
