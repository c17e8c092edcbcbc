// Package patterns scores a health profile against the health-pattern table.
package patterns

// Profile is a user's self-reported health record for one request. Every
// field is optional; a nil field never satisfies a predicate.
//
// Enumerated string fields use these values:
//
//	energy_level            low | moderate | high
//	energy_pattern          steady | crash_afternoon
//	diet_type               processed | whole_food | vegetarian | mixed
//	sun_exposure            low | moderate | high
//	digestion               normal | bloated | irregular | ...
//	recent_weight_change    stable | gained | lost
//	intake levels           low | moderate | high (none where noted)
type Profile struct {
	SleepHours       *float64 `json:"sleep_hours,omitempty"`
	SleepConsistency *string  `json:"sleep_consistency,omitempty"`
	ScreenBeforeBed  *bool    `json:"screen_before_bed,omitempty"`
	DailyRoutine     *string  `json:"daily_routine,omitempty"`

	MoodScore     *int `json:"mood_score,omitempty"`
	MoodStability *int `json:"mood_stability,omitempty"`
	StressLevel   *int `json:"stress_level,omitempty"`
	WorkStress    *int `json:"work_stress,omitempty"`
	AnxietyLevel  *int `json:"anxiety_level,omitempty"`
	MentalClarity *int `json:"mental_clarity,omitempty"`

	EnergyLevel   *string `json:"energy_level,omitempty"`
	EnergyPattern *string `json:"energy_pattern,omitempty"`

	ExerciseMinsPerWeek *int    `json:"exercise_mins_per_week,omitempty"`
	ExerciseRecovery    *string `json:"exercise_recovery,omitempty"`
	ExerciseHydration   *string `json:"exercise_hydration,omitempty"`

	DietType                *string  `json:"diet_type,omitempty"`
	CaffeineCupsPerDay      *float64 `json:"caffeine_cups_per_day,omitempty"`
	CaffeineAfter2PM        *bool    `json:"caffeine_after_2pm,omitempty"`
	FishIntake              *string  `json:"fish_intake,omitempty"`
	OmegaRatio              *string  `json:"omega_ratio,omitempty"`
	ProteinIntake           *string  `json:"protein_intake,omitempty"`
	CarbRatio               *string  `json:"carb_ratio,omitempty"`
	SugarIntake             *string  `json:"sugar_intake,omitempty"`
	FatIntake               *string  `json:"fat_intake,omitempty"`
	FiberIntake             *string  `json:"fiber_intake,omitempty"`
	DairyIntake             *string  `json:"dairy_intake,omitempty"`
	SeaVegetableIntake      *string  `json:"sea_vegetable_intake,omitempty"`
	BrazilNutIntake         *string  `json:"brazil_nut_intake,omitempty"`
	WaterGlassesPerDay      *int     `json:"water_glasses_per_day,omitempty"`
	VegetableServingsPerDay *int     `json:"vegetable_servings_per_day,omitempty"`
	ProcessedFoodPercentage *int     `json:"processed_food_percentage,omitempty"`
	AlcoholDrinksPerWeek    *int     `json:"alcohol_drinks_per_week,omitempty"`
	SugarCravings           *bool    `json:"sugar_cravings,omitempty"`

	SunExposure      *string  `json:"sun_exposure,omitempty"`
	LifestyleType    *string  `json:"lifestyle_type,omitempty"`
	JobType          *string  `json:"job_type,omitempty"`
	ScreenHoursDaily *float64 `json:"screen_hours_per_day,omitempty"`
	RelaxationMins   *int     `json:"relaxation_minutes_per_day,omitempty"`
	SocialConnection *string  `json:"social_connection,omitempty"`
	Climate          *string  `json:"climate,omitempty"`

	Age    *int    `json:"age,omitempty"`
	Gender *string `json:"gender,omitempty"`

	SkinTone               *string `json:"skin_tone,omitempty"`
	SkinCondition          *string `json:"skin_condition,omitempty"`
	NailHealth             *string `json:"nail_health,omitempty"`
	ToothHealth            *string `json:"tooth_health,omitempty"`
	HairLoss               *bool   `json:"hair_loss,omitempty"`
	JointPain              *bool   `json:"joint_pain,omitempty"`
	MuscleTension          *bool   `json:"muscle_tension,omitempty"`
	Digestion              *string `json:"digestion,omitempty"`
	Bloating               *bool   `json:"bloating,omitempty"`
	FoodSensitivities      *bool   `json:"food_sensitivities,omitempty"`
	Breathlessness         *bool   `json:"breathlessness,omitempty"`
	Dizziness              *bool   `json:"dizziness,omitempty"`
	HeartPalpitations      *bool   `json:"heart_palpitations,omitempty"`
	HeartIrregularities    *bool   `json:"heart_irregularities,omitempty"`
	Jittery                *bool   `json:"jittery,omitempty"`
	WoundHealing           *string `json:"wound_healing,omitempty"`
	InfectionsPerYear      *int    `json:"infections_per_year,omitempty"`
	RecentAntibiotics      *bool   `json:"recent_antibiotics,omitempty"`
	RecentWeightChange     *string `json:"recent_weight_change,omitempty"`
	HeadachesPerWeek       *int    `json:"headaches,omitempty"`
	TemperatureSensitivity *string `json:"temperature_sensitivity,omitempty"`
	MenstrualRegularity    *string `json:"menstrual_regularity,omitempty"`
	MenstrualFlow          *string `json:"menstrual_flow,omitempty"`
	Libido                 *string `json:"libido,omitempty"`
}

// Float, Int, String and Bool build optional profile values.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func String(v string) *string  { return &v }
func Bool(v bool) *bool        { return &v }
