package knowledge

// SpecialtyID is the stable key of a medical specialty.
type SpecialtyID string

const (
	Endocrinologist    SpecialtyID = "endocrinologist"
	Gastroenterologist SpecialtyID = "gastroenterologist"
	Cardiologist       SpecialtyID = "cardiologist"
	Dermatologist      SpecialtyID = "dermatologist"
	Neurologist        SpecialtyID = "neurologist"
	Rheumatologist     SpecialtyID = "rheumatologist"
	Psychiatrist       SpecialtyID = "psychiatrist"
	Hematologist       SpecialtyID = "hematologist"
	PrimaryCare        SpecialtyID = "primary_care"
)

// Specialty describes a category of practitioner.
//
// CommonSymptoms is patient-facing prose. SymptomTags holds the normalized
// symptom tags used for overlap scoring against a caller's symptom list.
type Specialty struct {
	ID                SpecialtyID `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	TreatsConditions  []string    `json:"treats_conditions"`
	CommonSymptoms    []string    `json:"common_symptoms"`
	SymptomTags       []string    `json:"symptom_tags"`
	WhenToSee         string      `json:"when_to_see"`
	TypicalTests      []string    `json:"typical_tests"`
}

func specialtyTable() []Specialty {
	return []Specialty{
		{
			ID:          Endocrinologist,
			Name:        "Endocrinologist",
			Description: "Hormone and metabolic disorders specialist",
			TreatsConditions: []string{
				"Thyroid disorders (hypothyroidism, hyperthyroidism, Hashimoto's, Graves')",
				"Diabetes (Type 1, Type 2, prediabetes)",
				"Adrenal disorders (Addison's, Cushing's)",
				"Pituitary disorders",
				"Metabolic syndrome",
				"PCOS (Polycystic Ovary Syndrome)",
				"Hormone imbalances",
				"Osteoporosis",
				"Growth disorders",
			},
			CommonSymptoms: []string{
				"Unexplained weight gain or loss",
				"Extreme fatigue despite rest",
				"Heat or cold intolerance",
				"Hair loss (especially outer eyebrows)",
				"Irregular periods or fertility issues",
				"Excessive thirst or urination",
				"Mood swings or depression linked to hormones",
				"Low libido",
				"Brain fog and poor concentration",
				"Brittle bones or frequent fractures",
			},
			SymptomTags: []string{
				"weight_gain", "weight_loss", "fatigue", "cold_intolerance", "heat_intolerance",
				"hair_loss", "irregular_periods", "infertility", "excessive_thirst",
				"frequent_urination", "mood_swings", "low_libido", "brain_fog",
				"poor_concentration", "brittle_bones", "frequent_fractures",
			},
			WhenToSee:    "If you suspect hormone imbalance, thyroid issues, diabetes, or metabolic problems. Especially if basic blood tests show abnormalities in TSH, glucose, or hormones.",
			TypicalTests: []string{"TSH, T3, T4, Thyroid antibodies", "Fasting glucose, HbA1c, insulin", "Cortisol", "Sex hormones (estrogen, testosterone, progesterone)", "DHEA, IGF-1"},
		},
		{
			ID:          Gastroenterologist,
			Name:        "Gastroenterologist (GI Doctor)",
			Description: "Digestive system and gut health specialist",
			TreatsConditions: []string{
				"IBS (Irritable Bowel Syndrome)",
				"IBD (Crohn's, Ulcerative Colitis)",
				"GERD (Acid Reflux)",
				"Celiac disease",
				"Food intolerances",
				"Liver disease (fatty liver, cirrhosis, hepatitis)",
				"Gallbladder disease",
				"Pancreatitis",
				"Ulcers",
				"Colon polyps or cancer screening",
			},
			CommonSymptoms: []string{
				"Chronic bloating or gas",
				"Abdominal pain or cramping",
				"Diarrhea or constipation (especially alternating)",
				"Blood in stool",
				"Severe acid reflux or heartburn",
				"Nausea or vomiting",
				"Unexplained weight loss with digestive issues",
				"Food sensitivities or reactions",
				"Yellowing of skin (jaundice)",
				"Difficulty swallowing",
			},
			SymptomTags: []string{
				"bloating", "gas", "abdominal_pain", "cramping", "diarrhea", "constipation",
				"blood_in_stool", "acid_reflux", "heartburn", "nausea", "vomiting",
				"weight_loss", "food_sensitivities", "jaundice", "difficulty_swallowing",
			},
			WhenToSee:    "If digestive issues persist >2-4 weeks, interfere with daily life, or if you have blood in stool, severe pain, or jaundice.",
			TypicalTests: []string{"Colonoscopy", "Endoscopy", "Stool tests", "Breath tests (SIBO, lactose)", "Liver function tests", "H. pylori test", "Celiac panel"},
		},
		{
			ID:          Cardiologist,
			Name:        "Cardiologist",
			Description: "Heart and cardiovascular system specialist",
			TreatsConditions: []string{
				"High blood pressure (hypertension)",
				"Coronary artery disease",
				"Heart failure",
				"Arrhythmias (irregular heartbeat)",
				"Heart valve problems",
				"Peripheral artery disease",
				"High cholesterol",
				"Cardiomyopathy",
			},
			CommonSymptoms: []string{
				"Chest pain or pressure",
				"Shortness of breath",
				"Irregular or racing heartbeat (palpitations)",
				"Swelling in legs or feet",
				"Dizziness or fainting",
				"Fatigue with exertion",
				"High blood pressure readings",
			},
			SymptomTags: []string{
				"chest_pain", "chest_pressure", "shortness_of_breath", "palpitations",
				"racing_heart", "irregular_heartbeat", "leg_swelling", "swollen_feet",
				"dizziness", "fainting", "fatigue_with_exertion", "high_blood_pressure",
			},
			WhenToSee:    "If you have chest pain, irregular heartbeat, family history of heart disease, or high blood pressure/cholesterol that's hard to control.",
			TypicalTests: []string{"EKG", "Echocardiogram", "Stress test", "Holter monitor", "Cardiac catheterization", "Lipid panel", "BNP"},
		},
		{
			ID:          Dermatologist,
			Name:        "Dermatologist",
			Description: "Skin, hair, and nail specialist",
			TreatsConditions: []string{
				"Acne",
				"Eczema and psoriasis",
				"Rosacea",
				"Skin cancer (melanoma, basal cell, squamous cell)",
				"Hair loss (alopecia)",
				"Nail disorders",
				"Fungal infections",
				"Warts and moles",
				"Aging skin concerns",
			},
			CommonSymptoms: []string{
				"New or changing moles",
				"Persistent rash or itching",
				"Severe or cystic acne",
				"Hair loss or thinning",
				"Nail changes (discoloration, thickening)",
				"Suspicious skin lesions",
				"Chronic skin dryness or flaking",
				"Red, inflamed skin",
			},
			SymptomTags: []string{
				"mole_changes", "rash", "itching", "acne", "hair_loss", "hair_thinning",
				"nail_changes", "skin_lesions", "skin_changes", "dry_skin", "flaking", "red_skin",
			},
			WhenToSee:    "For skin concerns that don't improve with over-the-counter treatments, any suspicious moles, severe acne, or hair loss.",
			TypicalTests: []string{"Skin biopsy", "Patch testing (allergies)", "Dermoscopy", "Fungal cultures"},
		},
		{
			ID:          Neurologist,
			Name:        "Neurologist",
			Description: "Brain, spinal cord, and nervous system specialist",
			TreatsConditions: []string{
				"Migraines and headaches",
				"Epilepsy and seizures",
				"Multiple sclerosis (MS)",
				"Parkinson's disease",
				"Neuropathy",
				"Stroke and TIA",
				"Dementia and Alzheimer's",
				"Brain tumors",
				"Movement disorders",
			},
			CommonSymptoms: []string{
				"Severe or frequent headaches",
				"Numbness or tingling in extremities",
				"Weakness or paralysis",
				"Tremors or involuntary movements",
				"Seizures",
				"Memory problems or confusion",
				"Dizziness or vertigo",
				"Vision problems (double vision, etc.)",
			},
			SymptomTags: []string{
				"headache", "headaches", "numbness", "tingling", "weakness", "tremors",
				"seizures", "memory_problems", "dizziness", "vertigo", "vision_problems",
				"double_vision",
			},
			WhenToSee:    "For severe headaches, numbness/tingling, seizures, memory issues, or any neurological symptoms.",
			TypicalTests: []string{"MRI or CT scan", "EEG", "EMG (nerve conduction)", "Lumbar puncture", "Neuropsych testing"},
		},
		{
			ID:          Rheumatologist,
			Name:        "Rheumatologist",
			Description: "Autoimmune and joint disease specialist",
			TreatsConditions: []string{
				"Rheumatoid arthritis",
				"Lupus (SLE)",
				"Fibromyalgia",
				"Sjogren's syndrome",
				"Ankylosing spondylitis",
				"Psoriatic arthritis",
				"Gout",
				"Vasculitis",
				"Polymyalgia rheumatica",
			},
			CommonSymptoms: []string{
				"Joint pain and swelling (especially multiple joints)",
				"Morning stiffness >30 minutes",
				"Fatigue with joint pain",
				"Autoimmune symptoms (rashes, mouth sores)",
				"Muscle pain and weakness",
				"Unexplained fevers",
				"Raynaud's phenomenon (fingers turn white/blue in cold)",
			},
			SymptomTags: []string{
				"joint_pain", "joint_swelling", "multiple_joint_swelling", "morning_stiffness",
				"fatigue", "rash", "mouth_sores", "muscle_pain", "muscle_weakness",
				"unexplained_fevers", "raynauds",
			},
			WhenToSee:    "If joint pain persists >6 weeks, affects multiple joints, or if you suspect autoimmune disease.",
			TypicalTests: []string{"ANA (antinuclear antibody)", "Rheumatoid factor", "Anti-CCP", "ESR and CRP (inflammation)", "Joint X-rays or ultrasound"},
		},
		{
			ID:          Psychiatrist,
			Name:        "Psychiatrist",
			Description: "Mental health and psychiatric medication specialist (MD)",
			TreatsConditions: []string{
				"Depression (major depressive disorder)",
				"Anxiety disorders (GAD, panic, social anxiety)",
				"Bipolar disorder",
				"Schizophrenia",
				"PTSD",
				"OCD",
				"ADHD",
				"Eating disorders",
				"Substance use disorders",
			},
			CommonSymptoms: []string{
				"Persistent sadness or hopelessness",
				"Anxiety or panic attacks",
				"Mood swings",
				"Difficulty concentrating",
				"Insomnia or hypersomnia",
				"Loss of interest in activities",
				"Suicidal thoughts",
				"Hallucinations or delusions",
				"Substance abuse",
			},
			SymptomTags: []string{
				"depression", "sadness", "hopelessness", "anxiety", "panic_attacks",
				"mood_swings", "difficulty_concentrating", "insomnia", "hypersomnia",
				"loss_of_interest", "hallucinations", "delusions", "substance_abuse",
			},
			WhenToSee:    "If mental health symptoms interfere with daily life, or if you need psychiatric medication management. For therapy without medication, see a psychologist or therapist.",
			TypicalTests: []string{"Psychiatric evaluation", "Mental status exam", "Screening questionnaires (PHQ-9, GAD-7)", "Sometimes: thyroid tests, vitamin B12, other labs to rule out medical causes"},
		},
		{
			ID:          Hematologist,
			Name:        "Hematologist",
			Description: "Blood disorder specialist",
			TreatsConditions: []string{
				"Anemia (iron deficiency, B12 deficiency, etc.)",
				"Clotting disorders (hemophilia, Factor V Leiden)",
				"Blood cancers (leukemia, lymphoma, myeloma)",
				"Thrombocytopenia (low platelets)",
				"Polycythemia (high red blood cells)",
				"Sickle cell disease",
				"Thalassemia",
			},
			CommonSymptoms: []string{
				"Severe or persistent anemia",
				"Easy bruising or bleeding",
				"Frequent infections",
				"Swollen lymph nodes",
				"Bone pain",
				"Unexplained blood clots",
				"Fatigue with abnormal blood counts",
			},
			SymptomTags: []string{
				"anemia", "easy_bruising", "bleeding", "frequent_infections",
				"swollen_lymph_nodes", "bone_pain", "blood_clots", "fatigue", "pale_skin",
			},
			WhenToSee:    "If blood tests show significant abnormalities (very low hemoglobin, abnormal white cell count, etc.) or bleeding/clotting issues.",
			TypicalTests: []string{"CBC", "Iron panel", "B12 and folate", "Coagulation studies", "Bone marrow biopsy", "Flow cytometry"},
		},
		{
			ID:          PrimaryCare,
			Name:        "Primary Care Physician (PCP)",
			Description: "Your first point of contact for general health concerns",
			TreatsConditions: []string{
				"General health checkups",
				"Acute illnesses (colds, flu, infections)",
				"Chronic disease management (diabetes, hypertension)",
				"Preventive care (vaccines, screenings)",
				"Minor injuries",
				"Common skin issues",
				"Referrals to specialists",
			},
			CommonSymptoms: []string{
				"General unwellness",
				"Fever or infection",
				"New health concern (unclear cause)",
				"Routine checkup needed",
				"Multiple symptoms (unclear which specialist)",
			},
			SymptomTags: []string{
				"general_unwellness", "unwell", "fever", "infection", "cold", "flu",
				"new_health_concern", "checkup", "multiple_symptoms",
			},
			WhenToSee:    "Start here for most health concerns. Your PCP can evaluate and refer to specialists if needed.",
			TypicalTests: []string{"Basic blood work (CBC, CMP)", "Urinalysis", "Blood pressure", "Physical exam"},
		},
	}
}
