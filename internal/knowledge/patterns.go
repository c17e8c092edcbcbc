package knowledge

// Indicator names a symptom signal a health pattern looks for in a profile.
type Indicator string

const (
	IndicatorFatigue            Indicator = "fatigue"
	IndicatorLowMood            Indicator = "low_mood"
	IndicatorDepression         Indicator = "depression"
	IndicatorWeakBones          Indicator = "weak_bones"
	IndicatorMuscleWeakness     Indicator = "muscle_weakness"
	IndicatorPoorSleep          Indicator = "poor_sleep"
	IndicatorAnxiety            Indicator = "anxiety"
	IndicatorMuscleTension      Indicator = "muscle_tension"
	IndicatorIrritability       Indicator = "irritability"
	IndicatorBrainFog           Indicator = "brain_fog"
	IndicatorLowEnergy          Indicator = "low_energy"
	IndicatorMoodIssues         Indicator = "mood_issues"
	IndicatorWeakImmune         Indicator = "weak_immune"
	IndicatorShortnessOfBreath  Indicator = "shortness_of_breath"
	IndicatorDizziness          Indicator = "dizziness"
	IndicatorWeakNails          Indicator = "weak_nails"
	IndicatorPaleSkin           Indicator = "pale_skin"
	IndicatorFrequentInfections Indicator = "frequent_infections"
	IndicatorSlowWoundHealing   Indicator = "slow_wound_healing"
	IndicatorHairLoss           Indicator = "hair_loss"
	IndicatorRacingHeart        Indicator = "racing_heart"
	IndicatorSleepDisruption    Indicator = "sleep_disruption"
	IndicatorJittery            Indicator = "jittery"
	IndicatorDigestiveIssues    Indicator = "digestive_issues"
	IndicatorAfternoonFatigue   Indicator = "afternoon_fatigue"
	IndicatorEnergyCrashes      Indicator = "energy_crashes"
	IndicatorMoodSwings         Indicator = "mood_swings"
	IndicatorCravings           Indicator = "cravings"
	IndicatorWeightGain         Indicator = "weight_gain"
	IndicatorPoorMemory         Indicator = "poor_memory"
	IndicatorJointPain          Indicator = "joint_pain"
	IndicatorDrySkin            Indicator = "dry_skin"
	IndicatorInsomnia           Indicator = "insomnia"
	IndicatorPoorMood           Indicator = "poor_mood"
	IndicatorEarlyAging         Indicator = "early_aging"
	IndicatorSlowRecovery       Indicator = "slow_recovery"
	IndicatorHeadaches          Indicator = "headaches"
	IndicatorDarkUrine          Indicator = "dark_urine"
	IndicatorBloating           Indicator = "bloating"
	IndicatorFoodSensitivities  Indicator = "food_sensitivities"
	IndicatorMuscleCramps       Indicator = "muscle_cramps"
	IndicatorBoneWeakness       Indicator = "bone_weakness"
	IndicatorToothIssues        Indicator = "tooth_issues"
	IndicatorIrregularHeartbeat Indicator = "irregular_heartbeat"
	IndicatorColdSensitivity    Indicator = "cold_sensitivity"
	IndicatorMuscleSoreness     Indicator = "muscle_soreness"
	IndicatorPeriodIssues       Indicator = "period_issues"
	IndicatorLowLibido          Indicator = "low_libido"
	IndicatorLowMotivation      Indicator = "low_motivation"
	IndicatorPoorFocus          Indicator = "poor_focus"
)

// Factor names a lifestyle or demographic condition that amplifies a pattern.
type Factor string

const (
	FactorSunExposureLow           Factor = "sun_exposure_low"
	FactorIndoorLifestyle          Factor = "indoor_lifestyle"
	FactorDarkSkinTone             Factor = "dark_skin_tone"
	FactorDietLowFish              Factor = "diet_low_fish"
	FactorSleepHoursLow            Factor = "sleep_hours_low"
	FactorStressHigh               Factor = "stress_high"
	FactorCaffeineHigh             Factor = "caffeine_high"
	FactorProcessedDiet            Factor = "processed_diet"
	FactorVegetarianDiet           Factor = "vegetarian_diet"
	FactorHighStress               Factor = "high_stress"
	FactorNoExercise               Factor = "no_exercise"
	FactorFemale                   Factor = "female"
	FactorHeavyPeriods             Factor = "heavy_periods"
	FactorLowProteinDiet           Factor = "low_protein_diet"
	FactorHighCarbDiet             Factor = "high_carb_diet"
	FactorAlcoholUse               Factor = "alcohol_use"
	FactorCaffeineIntakeHigh       Factor = "caffeine_intake_high"
	FactorCaffeineAfter2PM         Factor = "caffeine_after_2pm"
	FactorBaselineAnxiety          Factor = "baseline_anxiety"
	FactorInsufficientProtein      Factor = "insufficient_protein"
	FactorIrregularSleep           Factor = "irregular_sleep"
	FactorScreenBeforeBed          Factor = "screen_before_bed"
	FactorNoRoutine                Factor = "no_routine"
	FactorNoFishIntake             Factor = "no_fish_intake"
	FactorHighOmega6Diet           Factor = "high_omega6_diet"
	FactorWorkStressHigh           Factor = "work_stress_high"
	FactorPoorSleep                Factor = "poor_sleep"
	FactorNoRelaxation             Factor = "no_relaxation"
	FactorDeskJob                  Factor = "desk_job"
	FactorSleepIssues              Factor = "sleep_issues"
	FactorHighScreenTime           Factor = "high_screen_time"
	FactorProcessedDietHigh        Factor = "processed_diet_high"
	FactorVegetableIntakeLow       Factor = "vegetable_intake_low"
	FactorWholeFoodIntakeLow       Factor = "whole_food_intake_low"
	FactorSugarIntakeHigh          Factor = "sugar_intake_high"
	FactorLowProteinIntake         Factor = "low_protein_intake"
	FactorWaterIntakeLow           Factor = "water_intake_low"
	FactorHighCaffeine             Factor = "high_caffeine"
	FactorExerciseWithoutHydration Factor = "exercise_without_hydration"
	FactorDryClimate               Factor = "dry_climate"
	FactorAntibioticHistory        Factor = "antibiotic_history"
	FactorLowFiber                 Factor = "low_fiber"
	FactorDairyFreeDiet            Factor = "dairy_free_diet"
	FactorVitaminDDeficiency       Factor = "vitamin_d_deficiency"
	FactorAgeOver50                Factor = "age_over_50"
	FactorIodineDeficiency         Factor = "iodine_deficiency"
	FactorSeleniumDeficiency       Factor = "selenium_deficiency"
	FactorSedentaryLifestyle       Factor = "sedentary_lifestyle"
	FactorHighSugarIntake          Factor = "high_sugar_intake"
	FactorLowFatDiet               Factor = "low_fat_diet"
	FactorSedentary                Factor = "sedentary"
	FactorIsolation                Factor = "isolation"
)

// WeightedFactor is an additive severity weight. Weights are not normalized.
type WeightedFactor struct {
	Factor Factor  `json:"factor"`
	Weight float64 `json:"weight"`
}

type Recommendation struct {
	Supplement string `json:"supplement"`
	Dose       string `json:"dose"`
	Timing     string `json:"timing"`
	Lifestyle  string `json:"lifestyle"`
}

// HealthPattern is a named cluster of indicators with amplifying factors and a
// canned recommendation.
type HealthPattern struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Indicators      []Indicator      `json:"indicators"`
	SeverityFactors []WeightedFactor `json:"severity_factors"`
	Explanation     string           `json:"explanation"`
	Recommendation  Recommendation   `json:"recommendation"`
	Timeline        string           `json:"timeline"`
}

func patternTable() []HealthPattern {
	return []HealthPattern{
		{
			ID:         1,
			Name:       "Vitamin D Deficiency",
			Indicators: []Indicator{IndicatorFatigue, IndicatorLowMood, IndicatorDepression, IndicatorWeakBones, IndicatorMuscleWeakness},
			SeverityFactors: []WeightedFactor{
				{FactorSunExposureLow, 2.0},
				{FactorIndoorLifestyle, 1.5},
				{FactorDarkSkinTone, 1.5},
				{FactorDietLowFish, 1.0},
			},
			Explanation: "You spend most time indoors, limiting sun exposure. Vitamin D is synthesized from " +
				"sunlight UV-B rays. Without sufficient sun exposure, vitamin D levels drop. " +
				"Low vitamin D causes: fatigue, mood issues, weak immune function, poor bone health.",
			Recommendation: Recommendation{
				Supplement: "Vitamin D3",
				Dose:       "2000-4000 IU",
				Timing:     "With breakfast",
				Lifestyle:  "Get 15-20 minutes of sunlight daily, preferably in morning",
			},
			Timeline: "3-4 weeks to feel improvement",
		},
		{
			ID:         2,
			Name:       "Magnesium Deficiency",
			Indicators: []Indicator{IndicatorPoorSleep, IndicatorAnxiety, IndicatorMuscleTension, IndicatorLowMood, IndicatorIrritability},
			SeverityFactors: []WeightedFactor{
				{FactorSleepHoursLow, 2.0},
				{FactorStressHigh, 1.5},
				{FactorCaffeineHigh, 1.5},
				{FactorProcessedDiet, 1.0},
			},
			Explanation: "Poor sleep combined with high stress depletes magnesium, your body's relaxation mineral. " +
				"High caffeine intake blocks magnesium absorption. Without enough magnesium, your nervous " +
				"system stays activated, making sleep difficult and anxiety worse.",
			Recommendation: Recommendation{
				Supplement: "Magnesium Glycinate",
				Dose:       "300-400mg",
				Timing:     "At bedtime, away from calcium-rich foods",
				Lifestyle:  "Reduce caffeine after 2pm, practice relaxation 30 mins before bed",
			},
			Timeline: "1-2 weeks for sleep improvement",
		},
		{
			ID:         3,
			Name:       "B Vitamin Deficiency (Energy)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorBrainFog, IndicatorLowEnergy, IndicatorMoodIssues, IndicatorWeakImmune},
			SeverityFactors: []WeightedFactor{
				{FactorProcessedDiet, 2.0},
				{FactorVegetarianDiet, 1.5},
				{FactorHighStress, 1.5},
				{FactorNoExercise, 1.0},
			},
			Explanation: "Your diet is high in processed foods which are stripped of B vitamins during manufacturing. " +
				"B vitamins are essential for converting food into energy. Without enough B vitamins, your " +
				"mitochondria (energy factories) can't produce ATP efficiently, leading to constant fatigue.",
			Recommendation: Recommendation{
				Supplement: "B-Complex or B12 Methylcobalamin (if vegetarian)",
				Dose:       "500-1000 mcg B12, or complete B-complex daily",
				Timing:     "Morning with breakfast",
				Lifestyle:  "Add whole grains, leafy greens, eggs to diet",
			},
			Timeline: "2-3 weeks for energy boost",
		},
		{
			ID:         4,
			Name:       "Iron Deficiency (Low Energy)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorShortnessOfBreath, IndicatorDizziness, IndicatorWeakNails, IndicatorPaleSkin},
			SeverityFactors: []WeightedFactor{
				{FactorVegetarianDiet, 2.0},
				{FactorFemale, 1.5},
				{FactorHeavyPeriods, 2.0},
				{FactorLowProteinDiet, 1.5},
			},
			Explanation: "Iron is essential for carrying oxygen in your blood. Low iron means your cells don't get " +
				"enough oxygen, causing fatigue. This is especially common in vegetarians (plant iron is " +
				"less absorbable) and women with heavy periods.",
			Recommendation: Recommendation{
				Supplement: "Iron (Ferrous Bisglycinate or Heme Iron)",
				Dose:       "15-25mg daily",
				Timing:     "Morning on empty stomach, 2 hours before food",
				Lifestyle:  "Eat iron-rich foods: red meat, spinach, beans. Take with Vitamin C for better absorption",
			},
			Timeline: "4-6 weeks for energy improvement",
		},
		{
			ID:         5,
			Name:       "Zinc Deficiency (Weak Immunity)",
			Indicators: []Indicator{IndicatorFrequentInfections, IndicatorSlowWoundHealing, IndicatorWeakImmune, IndicatorHairLoss, IndicatorBrainFog},
			SeverityFactors: []WeightedFactor{
				{FactorHighStress, 2.0},
				{FactorVegetarianDiet, 1.5},
				{FactorHighCarbDiet, 1.0},
				{FactorAlcoholUse, 1.5},
			},
			Explanation: "Zinc is critical for immune function, wound healing, and brain function. Stress increases " +
				"zinc excretion. Plant-based diets have less available zinc. Without enough zinc, your immune " +
				"system weakens and you get sick more often.",
			Recommendation: Recommendation{
				Supplement: "Zinc Glycinate",
				Dose:       "15-30mg daily",
				Timing:     "With a meal",
				Lifestyle:  "Reduce stress with meditation, eat shellfish/red meat for natural zinc",
			},
			Timeline: "2-3 weeks for immune improvement",
		},
		{
			ID:         6,
			Name:       "Caffeine Sensitivity",
			Indicators: []Indicator{IndicatorAnxiety, IndicatorRacingHeart, IndicatorSleepDisruption, IndicatorJittery, IndicatorDigestiveIssues},
			SeverityFactors: []WeightedFactor{
				{FactorCaffeineIntakeHigh, 2.0},
				{FactorCaffeineAfter2PM, 2.0},
				{FactorSleepHoursLow, 1.5},
				{FactorBaselineAnxiety, 1.0},
			},
			Explanation: "Caffeine blocks adenosine receptors in your brain, which normally signal tiredness. " +
				"Even small amounts of caffeine after 2pm can disrupt sleep 8+ hours later. Poor sleep " +
				"makes you dependent on more caffeine, creating a vicious cycle.",
			Recommendation: Recommendation{
				Supplement: "L-Theanine (optional, calms caffeine)",
				Dose:       "100-200mg with coffee if needed",
				Timing:     "N/A",
				Lifestyle:  "Cut off all caffeine by 2pm. Gradually reduce total caffeine intake over 1 week",
			},
			Timeline: "3-5 days to feel effects",
		},
		{
			ID:         7,
			Name:       "Blood Sugar Dysregulation (Energy Crashes)",
			Indicators: []Indicator{IndicatorAfternoonFatigue, IndicatorEnergyCrashes, IndicatorMoodSwings, IndicatorCravings, IndicatorBrainFog},
			SeverityFactors: []WeightedFactor{
				{FactorHighCarbDiet, 2.0},
				{FactorNoExercise, 1.5},
				{FactorHighStress, 1.0},
				{FactorInsufficientProtein, 1.5},
			},
			Explanation: "High-carb meals without protein cause blood sugar spikes and crashes. When blood sugar " +
				"crashes, your body releases stress hormones (adrenaline, cortisol) causing fatigue and " +
				"mood swings. This creates cravings for more sugar to boost energy again.",
			Recommendation: Recommendation{
				Supplement: "Chromium (optional, aids glucose control)",
				Dose:       "200-400 mcg daily",
				Timing:     "Before meals",
				Lifestyle:  "Add protein to every meal, reduce refined carbs, eat slowly, move after meals",
			},
			Timeline: "3-5 days for stabilized energy",
		},
		{
			ID:         8,
			Name:       "Sleep Deprivation (Systemic Impact)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorLowMood, IndicatorWeakImmune, IndicatorWeightGain, IndicatorPoorMemory},
			SeverityFactors: []WeightedFactor{
				{FactorSleepHoursLow, 2.0},
				{FactorIrregularSleep, 1.5},
				{FactorScreenBeforeBed, 1.0},
				{FactorNoRoutine, 1.0},
			},
			Explanation: "When you sleep less than 7 hours, your entire body suffers: immune system weakens, " +
				"metabolism slows, mood tanks, memory suffers. Sleep is when your brain detoxifies and " +
				"hormones regulate. Chronic sleep deprivation is linked to every major disease.",
			Recommendation: Recommendation{
				Supplement: "Magnesium (see pattern 2), Melatonin (if extremely sleep deprived)",
				Dose:       "0.5-3mg melatonin 30 mins before bed",
				Timing:     "30 minutes before target sleep time",
				Lifestyle:  "Set consistent bedtime, dim lights 2 hours before bed, no screens 1 hour before",
			},
			Timeline: "1-2 weeks for noticeable sleep improvement",
		},
		{
			ID:         9,
			Name:       "Omega-3 Deficiency (Mood & Inflammation)",
			Indicators: []Indicator{IndicatorDepression, IndicatorLowMood, IndicatorJointPain, IndicatorDrySkin, IndicatorBrainFog},
			SeverityFactors: []WeightedFactor{
				{FactorProcessedDiet, 2.0},
				{FactorVegetarianDiet, 1.5},
				{FactorNoFishIntake, 1.5},
				{FactorHighOmega6Diet, 1.0},
			},
			Explanation: "Omega-3 fats are building blocks for your brain and reduce inflammation. Modern diets are " +
				"high in omega-6 (vegetable oils) and low in omega-3, causing systemic inflammation. This " +
				"manifests as joint pain, brain fog, and depression.",
			Recommendation: Recommendation{
				Supplement: "Omega-3 (Fish Oil or Algae for vegetarians)",
				Dose:       "1000-2000mg EPA+DHA daily",
				Timing:     "With meals (fat-soluble)",
				Lifestyle:  "Eat fatty fish 2-3x/week (salmon, sardines, mackerel) or add flaxseeds",
			},
			Timeline: "3-4 weeks for mood improvement",
		},
		{
			ID:         10,
			Name:       "Chronic Stress (Cortisol Dysregulation)",
			Indicators: []Indicator{IndicatorAnxiety, IndicatorWeightGain, IndicatorInsomnia, IndicatorWeakImmune, IndicatorMoodSwings},
			SeverityFactors: []WeightedFactor{
				{FactorWorkStressHigh, 2.0},
				{FactorNoExercise, 1.5},
				{FactorPoorSleep, 1.5},
				{FactorNoRelaxation, 1.0},
			},
			Explanation: "Chronic stress keeps cortisol elevated 24/7. High cortisol causes: belly fat storage, " +
				"muscle loss, poor sleep, weak immunity, anxiety. Unlike acute stress (which is survivable), " +
				"chronic stress damages your health without recovery time.",
			Recommendation: Recommendation{
				Supplement: "Magnesium (pattern 2), Ashwagandha (stress adaptogen)",
				Dose:       "300-500mg Ashwagandha daily",
				Timing:     "With meals",
				Lifestyle:  "Exercise 30 mins daily, meditate 10 mins daily, set work boundaries, take breaks",
			},
			Timeline: "2-3 weeks for stress reduction",
		},
		{
			ID:         11,
			Name:       "Sedentary Lifestyle (Deconditioning)",
			Indicators: []Indicator{IndicatorLowEnergy, IndicatorWeightGain, IndicatorPoorMood, IndicatorWeakImmune, IndicatorEarlyAging},
			SeverityFactors: []WeightedFactor{
				{FactorNoExercise, 3.0},
				{FactorDeskJob, 1.5},
				{FactorSleepIssues, 1.0},
				{FactorHighScreenTime, 1.0},
			},
			Explanation: "Movement is medicine. Without exercise, your muscles atrophy, cardiovascular system weakens, " +
				"mood plummets, and aging accelerates. Exercise improves every health marker: energy, sleep, " +
				"mood, immunity, metabolism.",
			Recommendation: Recommendation{
				Supplement: "None required (exercise is the medicine)",
				Dose:       "N/A",
				Timing:     "N/A",
				Lifestyle:  "Start with 20-30 mins walking daily, progress to strength training 2-3x/week",
			},
			Timeline: "1-2 weeks for energy boost, 8 weeks for visible changes",
		},
		{
			ID:         12,
			Name:       "Processed Food Diet (Nutrient Deficiency)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorBrainFog, IndicatorWeakImmune, IndicatorDigestiveIssues, IndicatorMoodIssues},
			SeverityFactors: []WeightedFactor{
				{FactorProcessedDietHigh, 2.0},
				{FactorVegetableIntakeLow, 1.5},
				{FactorWholeFoodIntakeLow, 1.5},
				{FactorSugarIntakeHigh, 1.0},
			},
			Explanation: "Processed foods are stripped of nutrients and filled with additives. Your body doesn't " +
				"recognize these as food, so nutrition is poor and inflammation is high. This creates " +
				"deficiency in multiple micronutrients simultaneously.",
			Recommendation: Recommendation{
				Supplement: "High-quality multivitamin as temporary bridge",
				Dose:       "Daily quality multivitamin",
				Timing:     "With breakfast",
				Lifestyle:  "Progressively replace processed foods with whole foods: vegetables, fruits, meat, fish",
			},
			Timeline: "2-3 weeks for noticeable improvement",
		},
		{
			ID:         13,
			Name:       "Protein Deficiency (Low Energy & Muscle Loss)",
			Indicators: []Indicator{IndicatorLowEnergy, IndicatorMuscleWeakness, IndicatorHairLoss, IndicatorWeakImmune, IndicatorSlowRecovery},
			SeverityFactors: []WeightedFactor{
				{FactorLowProteinIntake, 2.0},
				{FactorVegetarianDiet, 1.0},
				{FactorNoExercise, 1.0},
				{FactorHighCarbDiet, 1.0},
			},
			Explanation: "Protein is needed to build and maintain muscle, which is your metabolic engine. Low protein " +
				"causes muscle loss, slower metabolism, weak immunity, and poor recovery. Your body needs " +
				"0.8-1g protein per pound of goal body weight.",
			Recommendation: Recommendation{
				Supplement: "Whey or Plant-Based Protein Powder (if struggling to hit targets)",
				Dose:       "20-40g per serving, 1-2 servings daily",
				Timing:     "After workouts or with meals",
				Lifestyle:  "Add protein to every meal: eggs, fish, meat, legumes, dairy",
			},
			Timeline: "2-4 weeks for energy improvement",
		},
		{
			ID:         14,
			Name:       "Dehydration (Fatigue & Brain Fog)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorHeadaches, IndicatorBrainFog, IndicatorDrySkin, IndicatorDarkUrine},
			SeverityFactors: []WeightedFactor{
				{FactorWaterIntakeLow, 2.0},
				{FactorHighCaffeine, 1.0},
				{FactorExerciseWithoutHydration, 1.5},
				{FactorDryClimate, 1.0},
			},
			Explanation: "70% of your body is water. Even 2% dehydration impairs cognitive function and energy. " +
				"Many people mistake dehydration for hunger or fatigue. Caffeine accelerates dehydration.",
			Recommendation: Recommendation{
				Supplement: "Electrolyte powder (optional, if exercising heavily)",
				Dose:       "Follow package instructions",
				Timing:     "During/after workouts",
				Lifestyle:  "Drink 8-10 glasses of water daily. Drink before you're thirsty. Add electrolytes if sweating",
			},
			Timeline: "1-2 days to feel improvement",
		},
		{
			ID:         15,
			Name:       "Gut Health Issues (Inflammation & Poor Absorption)",
			Indicators: []Indicator{IndicatorDigestiveIssues, IndicatorBloating, IndicatorLowEnergy, IndicatorWeakImmune, IndicatorFoodSensitivities},
			SeverityFactors: []WeightedFactor{
				{FactorProcessedDiet, 2.0},
				{FactorAntibioticHistory, 1.5},
				{FactorHighStress, 1.0},
				{FactorLowFiber, 1.5},
			},
			Explanation: "Your gut is your second brain and immune system. Poor diet and stress damage the gut lining, " +
				"allowing bacteria to leak (leaky gut). This causes inflammation, poor nutrient absorption, " +
				"and immune dysfunction.",
			Recommendation: Recommendation{
				Supplement: "Probiotics + Prebiotic Fiber",
				Dose:       "10-50 billion CFU probiotics daily",
				Timing:     "Morning on empty stomach or evening",
				Lifestyle:  "Add fermented foods (yogurt, sauerkraut, kombucha), eat fiber (vegetables, fruits, whole grains)",
			},
			Timeline: "3-4 weeks for digestive improvement",
		},
		{
			ID:         16,
			Name:       "Calcium Deficiency (Bones & Nerves)",
			Indicators: []Indicator{IndicatorMuscleCramps, IndicatorBoneWeakness, IndicatorToothIssues, IndicatorAnxiety, IndicatorIrregularHeartbeat},
			SeverityFactors: []WeightedFactor{
				{FactorDairyFreeDiet, 1.5},
				{FactorVitaminDDeficiency, 2.0},
				{FactorHighCaffeine, 1.0},
				{FactorAgeOver50, 1.5},
			},
			Explanation: "Calcium is essential for strong bones, muscle function, and nerve transmission. Without " +
				"vitamin D, calcium isn't absorbed well. If calcium is low, your body pulls it from bones, " +
				"leading to osteoporosis.",
			Recommendation: Recommendation{
				Supplement: "Calcium Citrate + Vitamin D3 together",
				Dose:       "800-1000mg Calcium, 2000 IU Vitamin D daily",
				Timing:     "With meals, separate from iron/zinc by 2 hours",
				Lifestyle:  "Eat dairy (milk, yogurt, cheese) or leafy greens, get weight-bearing exercise",
			},
			Timeline: "4-8 weeks for bone strengthening",
		},
		{
			ID:         17,
			Name:       "Thyroid Issues (Slow Metabolism)",
			Indicators: []Indicator{IndicatorFatigue, IndicatorWeightGain, IndicatorColdSensitivity, IndicatorDrySkin, IndicatorLowMood},
			SeverityFactors: []WeightedFactor{
				{FactorIodineDeficiency, 2.0},
				{FactorSeleniumDeficiency, 1.5},
				{FactorHighStress, 1.0},
				{FactorFemale, 1.0},
			},
			Explanation: "Your thyroid regulates metabolism, energy, and temperature. It needs iodine and selenium. " +
				"Without these, your metabolism slows, you gain weight even with diet, and feel perpetually " +
				"tired. This is especially common in women.",
			Recommendation: Recommendation{
				Supplement: "Iodine (kelp) + Selenium",
				Dose:       "100-150 mcg Iodine, 200 mcg Selenium daily",
				Timing:     "With meals",
				Lifestyle:  "Eat fish, shellfish, seaweed. Get thyroid function tested (TSH, Free T3, Free T4)",
			},
			Timeline: "4-6 weeks for metabolism boost",
		},
		{
			ID:         18,
			Name:       "Inflammation (Joint Pain & General Malaise)",
			Indicators: []Indicator{IndicatorJointPain, IndicatorMuscleSoreness, IndicatorLowEnergy, IndicatorBrainFog, IndicatorMoodIssues},
			SeverityFactors: []WeightedFactor{
				{FactorProcessedDiet, 2.0},
				{FactorSedentaryLifestyle, 1.5},
				{FactorHighStress, 1.5},
				{FactorHighSugarIntake, 1.0},
			},
			Explanation: "Chronic inflammation is the root of most modern diseases. It's caused by poor diet (seed oils, " +
				"sugar), sedentary lifestyle, and stress. This manifests as joint pain, brain fog, and fatigue.",
			Recommendation: Recommendation{
				Supplement: "Omega-3 (pattern 9), Turmeric (Curcumin)",
				Dose:       "500-1000mg Curcumin with black pepper (enhances absorption)",
				Timing:     "With meals (fat-soluble)",
				Lifestyle:  "Eliminate seed oils, reduce sugar, add anti-inflammatory foods (fatty fish, berries, greens), exercise",
			},
			Timeline: "2-3 weeks for pain reduction",
		},
		{
			ID:         19,
			Name:       "Hormonal Imbalance (Women)",
			Indicators: []Indicator{IndicatorMoodSwings, IndicatorPeriodIssues, IndicatorFatigue, IndicatorWeightGain, IndicatorLowLibido},
			SeverityFactors: []WeightedFactor{
				{FactorHighStress, 2.0},
				{FactorPoorSleep, 1.5},
				{FactorLowFatDiet, 1.0},
				{FactorSedentary, 1.0},
			},
			Explanation: "Hormones regulate mood, energy, metabolism, and reproduction. Chronic stress and poor sleep " +
				"dysregulate cortisol, which throws off estrogen and progesterone balance. This manifests as " +
				"mood swings, irregular periods, and weight gain.",
			Recommendation: Recommendation{
				Supplement: "Magnesium (pattern 2), Vitamin B6 (supports progesterone)",
				Dose:       "400mg Magnesium, 50-100mg B6 daily",
				Timing:     "Morning and evening",
				Lifestyle:  "Reduce stress (meditation, yoga), improve sleep (7-9 hours), eat healthy fats",
			},
			Timeline: "1-3 menstrual cycles for normalization",
		},
		{
			ID:         20,
			Name:       "Mental Health Challenges (Mood & Anxiety)",
			Indicators: []Indicator{IndicatorDepression, IndicatorAnxiety, IndicatorLowMotivation, IndicatorBrainFog, IndicatorPoorFocus},
			SeverityFactors: []WeightedFactor{
				{FactorHighStress, 2.0},
				{FactorPoorSleep, 2.0},
				{FactorNoExercise, 1.5},
				{FactorIsolation, 1.5},
			},
			Explanation: "Mental health is tied to physical health. Poor sleep, stress, lack of exercise, isolation, " +
				"and nutritional deficiencies all contribute to depression and anxiety. This is not just " +
				"'mental' - it's biochemical.",
			Recommendation: Recommendation{
				Supplement: "Omega-3 (pattern 9), Magnesium (pattern 2), Vitamin D (pattern 1)",
				Dose:       "See individual patterns",
				Timing:     "See individual patterns",
				Lifestyle:  "Exercise 30 mins daily, meditate 10 mins daily, connect with people, get sunlight, improve sleep, consider therapy",
			},
			Timeline: "2-4 weeks for mood improvement",
		},
	}
}
