package patterns

import (
	"fmt"

	"github.com/dorost/consult-engine/internal/knowledge"
)

// Predicate is a named boolean test over a profile. Predicates must treat a
// nil field as "not satisfied".
type Predicate func(p *Profile) bool

// Registry maps indicator and factor constants to their predicates.
type Registry struct {
	indicators map[knowledge.Indicator]Predicate
	factors    map[knowledge.Factor]Predicate
}

// Indicator evaluates ind against p. Unregistered indicators and a nil
// profile evaluate to false.
func (r *Registry) Indicator(ind knowledge.Indicator, p *Profile) bool {
	return eval(r.indicators[ind], p)
}

// Factor evaluates f against p with the same fail-closed rules as Indicator.
func (r *Registry) Factor(f knowledge.Factor, p *Profile) bool {
	return eval(r.factors[f], p)
}

// Check reports every indicator or factor referenced by patterns that has no
// registered predicate.
func (r *Registry) Check(patterns []knowledge.HealthPattern) error {
	var missing []string
	for _, hp := range patterns {
		for _, ind := range hp.Indicators {
			if _, ok := r.indicators[ind]; !ok {
				missing = append(missing, fmt.Sprintf("pattern %d indicator %q", hp.ID, ind))
			}
		}
		for _, wf := range hp.SeverityFactors {
			if _, ok := r.factors[wf.Factor]; !ok {
				missing = append(missing, fmt.Sprintf("pattern %d factor %q", hp.ID, wf.Factor))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unregistered predicates: %v", knowledge.ErrInvalidTable, missing)
	}
	return nil
}

func eval(fn Predicate, p *Profile) (ok bool) {
	if fn == nil || p == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return fn(p)
}

type number interface {
	~int | ~float64
}

func lt[T number](v *T, x T) bool { return v != nil && *v < x }
func gt[T number](v *T, x T) bool { return v != nil && *v > x }
func eq[T comparable](v *T, x T) bool {
	return v != nil && *v == x
}
func ne[T comparable](v *T, x T) bool {
	return v != nil && *v != x
}
func is(v *bool) bool { return v != nil && *v }

// DefaultRegistry returns the predicates for every built-in indicator and
// factor. Several indicators share a test; they are listed separately so each
// constant stays independently registered.
func DefaultRegistry() *Registry {
	lowMood := func(p *Profile) bool { return lt(p.MoodScore, 5) }
	sleepShort := func(p *Profile) bool { return lt(p.SleepHours, 7) }
	lowEnergy := func(p *Profile) bool { return eq(p.EnergyLevel, "low") }
	brainFog := func(p *Profile) bool { return lt(p.MentalClarity, 4) }
	highStress := func(p *Profile) bool { return gt(p.StressLevel, 6) }
	highCaffeine := func(p *Profile) bool { return gt(p.CaffeineCupsPerDay, 3) }
	processed := func(p *Profile) bool { return eq(p.DietType, "processed") }
	lowProtein := func(p *Profile) bool { return eq(p.ProteinIntake, "low") }
	noExercise := func(p *Profile) bool { return eq(p.ExerciseMinsPerWeek, 0) }
	sedentary := func(p *Profile) bool { return lt(p.ExerciseMinsPerWeek, 150) }
	over50 := func(p *Profile) bool { return gt(p.Age, 50) }
	lowSun := func(p *Profile) bool { return eq(p.SunExposure, "low") }
	afternoonCrash := func(p *Profile) bool { return eq(p.EnergyPattern, "crash_afternoon") }

	return &Registry{
		indicators: map[knowledge.Indicator]Predicate{
			knowledge.IndicatorFatigue:           func(p *Profile) bool { return lowEnergy(p) || gt(p.SleepHours, 7) },
			knowledge.IndicatorLowMood:           lowMood,
			knowledge.IndicatorDepression:        func(p *Profile) bool { return lt(p.MoodScore, 3) },
			knowledge.IndicatorAnxiety:           func(p *Profile) bool { return gt(p.AnxietyLevel, 5) },
			knowledge.IndicatorPoorSleep:         sleepShort,
			knowledge.IndicatorBrainFog:          brainFog,
			knowledge.IndicatorWeakImmune:        func(p *Profile) bool { return gt(p.InfectionsPerYear, 2) },
			knowledge.IndicatorMuscleWeakness:    noExercise,
			knowledge.IndicatorWeakBones:         over50,
			knowledge.IndicatorHairLoss:          func(p *Profile) bool { return is(p.HairLoss) },
			knowledge.IndicatorDrySkin:           func(p *Profile) bool { return eq(p.SkinCondition, "dry") },
			knowledge.IndicatorJointPain:         func(p *Profile) bool { return is(p.JointPain) },
			knowledge.IndicatorMuscleTension:     func(p *Profile) bool { return is(p.MuscleTension) },
			knowledge.IndicatorIrritability:      func(p *Profile) bool { return lt(p.MoodScore, 4) },
			knowledge.IndicatorMoodSwings:        func(p *Profile) bool { return lt(p.MoodStability, 3) },
			knowledge.IndicatorDigestiveIssues:   func(p *Profile) bool { return ne(p.Digestion, "normal") },
			knowledge.IndicatorBloating:          func(p *Profile) bool { return is(p.Bloating) },
			knowledge.IndicatorLowEnergy:         lowEnergy,
			knowledge.IndicatorShortnessOfBreath: func(p *Profile) bool { return is(p.Breathlessness) },
			knowledge.IndicatorDizziness:         func(p *Profile) bool { return is(p.Dizziness) },
			knowledge.IndicatorWeakNails:         func(p *Profile) bool { return eq(p.NailHealth, "poor") },
			knowledge.IndicatorPaleSkin:          func(p *Profile) bool { return eq(p.SkinTone, "pale") },
			knowledge.IndicatorRacingHeart:       func(p *Profile) bool { return is(p.HeartPalpitations) },
			knowledge.IndicatorJittery:           func(p *Profile) bool { return is(p.Jittery) },
			knowledge.IndicatorSlowWoundHealing:  func(p *Profile) bool { return eq(p.WoundHealing, "slow") },
			knowledge.IndicatorFrequentInfections: func(p *Profile) bool {
				return gt(p.InfectionsPerYear, 3)
			},
			knowledge.IndicatorAfternoonFatigue:   afternoonCrash,
			knowledge.IndicatorEnergyCrashes:      afternoonCrash,
			knowledge.IndicatorCravings:           func(p *Profile) bool { return is(p.SugarCravings) },
			knowledge.IndicatorWeightGain:         func(p *Profile) bool { return eq(p.RecentWeightChange, "gained") },
			knowledge.IndicatorSlowRecovery:       func(p *Profile) bool { return eq(p.ExerciseRecovery, "slow") },
			knowledge.IndicatorHeadaches:          func(p *Profile) bool { return gt(p.HeadachesPerWeek, 2) },
			knowledge.IndicatorFoodSensitivities:  func(p *Profile) bool { return is(p.FoodSensitivities) },
			knowledge.IndicatorIrregularHeartbeat: func(p *Profile) bool { return is(p.HeartIrregularities) },
			knowledge.IndicatorColdSensitivity:    func(p *Profile) bool { return eq(p.TemperatureSensitivity, "cold") },
			knowledge.IndicatorPeriodIssues:       func(p *Profile) bool { return ne(p.MenstrualRegularity, "regular") },
			knowledge.IndicatorLowLibido:          func(p *Profile) bool { return eq(p.Libido, "low") },
			knowledge.IndicatorToothIssues:        func(p *Profile) bool { return eq(p.ToothHealth, "poor") },

			// Derived from neighbouring signals.
			knowledge.IndicatorMoodIssues:      lowMood,
			knowledge.IndicatorPoorMood:        lowMood,
			knowledge.IndicatorSleepDisruption: func(p *Profile) bool { return sleepShort(p) || is(p.CaffeineAfter2PM) },
			knowledge.IndicatorInsomnia:        func(p *Profile) bool { return lt(p.SleepHours, 6) },
			knowledge.IndicatorPoorMemory:      brainFog,
			knowledge.IndicatorPoorFocus:       brainFog,
			knowledge.IndicatorLowMotivation:   func(p *Profile) bool { return lt(p.MoodScore, 4) || lowEnergy(p) },
			knowledge.IndicatorEarlyAging:      over50,
			knowledge.IndicatorBoneWeakness:    over50,
			knowledge.IndicatorMuscleSoreness:  func(p *Profile) bool { return is(p.MuscleTension) || is(p.JointPain) },
			knowledge.IndicatorMuscleCramps:    func(p *Profile) bool { return is(p.MuscleTension) },
			knowledge.IndicatorDarkUrine:       func(p *Profile) bool { return lt(p.WaterGlassesPerDay, 6) },
		},
		factors: map[knowledge.Factor]Predicate{
			knowledge.FactorSunExposureLow:           lowSun,
			knowledge.FactorIndoorLifestyle:          func(p *Profile) bool { return eq(p.LifestyleType, "indoor") },
			knowledge.FactorDarkSkinTone:             func(p *Profile) bool { return eq(p.SkinTone, "dark") },
			knowledge.FactorDietLowFish:              func(p *Profile) bool { return eq(p.FishIntake, "low") },
			knowledge.FactorSleepHoursLow:            sleepShort,
			knowledge.FactorStressHigh:               highStress,
			knowledge.FactorCaffeineHigh:             highCaffeine,
			knowledge.FactorCaffeineAfter2PM:         func(p *Profile) bool { return is(p.CaffeineAfter2PM) },
			knowledge.FactorProcessedDiet:            processed,
			knowledge.FactorVegetarianDiet:           func(p *Profile) bool { return eq(p.DietType, "vegetarian") },
			knowledge.FactorNoExercise:               noExercise,
			knowledge.FactorIrregularSleep:           func(p *Profile) bool { return eq(p.SleepConsistency, "irregular") },
			knowledge.FactorScreenBeforeBed:          func(p *Profile) bool { return is(p.ScreenBeforeBed) },
			knowledge.FactorNoRoutine:                func(p *Profile) bool { return eq(p.DailyRoutine, "unstructured") },
			knowledge.FactorHighOmega6Diet:           func(p *Profile) bool { return eq(p.OmegaRatio, "high_omega6") },
			knowledge.FactorNoFishIntake:             func(p *Profile) bool { return eq(p.FishIntake, "none") },
			knowledge.FactorLowProteinDiet:           lowProtein,
			knowledge.FactorHighCarbDiet:             func(p *Profile) bool { return eq(p.CarbRatio, "high") },
			knowledge.FactorInsufficientProtein:      lowProtein,
			knowledge.FactorHighSugarIntake:          func(p *Profile) bool { return eq(p.SugarIntake, "high") },
			knowledge.FactorWaterIntakeLow:           func(p *Profile) bool { return lt(p.WaterGlassesPerDay, 6) },
			knowledge.FactorExerciseWithoutHydration: func(p *Profile) bool { return eq(p.ExerciseHydration, "poor") },
			knowledge.FactorDryClimate:               func(p *Profile) bool { return eq(p.Climate, "dry") },
			knowledge.FactorAntibioticHistory:        func(p *Profile) bool { return is(p.RecentAntibiotics) },
			knowledge.FactorLowFiber:                 func(p *Profile) bool { return eq(p.FiberIntake, "low") },
			knowledge.FactorHighCaffeine:             highCaffeine,
			knowledge.FactorVitaminDDeficiency:       lowSun,
			knowledge.FactorIodineDeficiency:         func(p *Profile) bool { return eq(p.SeaVegetableIntake, "low") },
			knowledge.FactorSeleniumDeficiency:       func(p *Profile) bool { return eq(p.BrazilNutIntake, "low") },
			knowledge.FactorFemale:                   func(p *Profile) bool { return eq(p.Gender, "female") },
			knowledge.FactorAgeOver50:                over50,
			knowledge.FactorHeavyPeriods:             func(p *Profile) bool { return eq(p.MenstrualFlow, "heavy") },
			knowledge.FactorAlcoholUse:               func(p *Profile) bool { return gt(p.AlcoholDrinksPerWeek, 2) },
			knowledge.FactorDeskJob:                  func(p *Profile) bool { return eq(p.JobType, "desk") },
			knowledge.FactorHighScreenTime:           func(p *Profile) bool { return gt(p.ScreenHoursDaily, 8) },
			knowledge.FactorLowFatDiet:               func(p *Profile) bool { return eq(p.FatIntake, "low") },
			knowledge.FactorSedentary:                sedentary,
			knowledge.FactorVegetableIntakeLow:       func(p *Profile) bool { return lt(p.VegetableServingsPerDay, 3) },
			knowledge.FactorWholeFoodIntakeLow:       func(p *Profile) bool { return gt(p.ProcessedFoodPercentage, 70) },
			knowledge.FactorWorkStressHigh:           func(p *Profile) bool { return gt(p.WorkStress, 7) },
			knowledge.FactorNoRelaxation:             func(p *Profile) bool { return lt(p.RelaxationMins, 10) },
			knowledge.FactorIsolation:                func(p *Profile) bool { return eq(p.SocialConnection, "poor") },
			knowledge.FactorDairyFreeDiet:            func(p *Profile) bool { return eq(p.DairyIntake, "none") },

			// Aliases of the factors above.
			knowledge.FactorHighStress:         highStress,
			knowledge.FactorCaffeineIntakeHigh: highCaffeine,
			knowledge.FactorBaselineAnxiety:    func(p *Profile) bool { return gt(p.AnxietyLevel, 5) },
			knowledge.FactorProcessedDietHigh:  processed,
			knowledge.FactorLowProteinIntake:   lowProtein,
			knowledge.FactorSedentaryLifestyle: sedentary,
			knowledge.FactorPoorSleep:          sleepShort,
			knowledge.FactorSleepIssues:        sleepShort,
			knowledge.FactorSugarIntakeHigh:    func(p *Profile) bool { return eq(p.SugarIntake, "high") },
		},
	}
}
