package domain

import "maps"

// WeightParams bundles every coefficient used by importance scoring,
// fatigue scoring and chain judgement.
type WeightParams struct {
	WFocus    float64              `json:"w_focus" yaml:"w_focus" mapstructure:"w_focus"`
	WUrgent   float64              `json:"w_urgent" yaml:"w_urgent" mapstructure:"w_urgent"`
	WCategory map[Category]float64 `json:"w_category" yaml:"w_category" mapstructure:"w_category"`

	WCarryTask     float64 `json:"w_carry_task" yaml:"w_carry_task" mapstructure:"w_carry_task"`
	WCarryGroup    float64 `json:"w_carry_group" yaml:"w_carry_group" mapstructure:"w_carry_group"`
	WRejectPenalty float64 `json:"w_reject_penalty" yaml:"w_reject_penalty" mapstructure:"w_reject_penalty"`

	AlphaDuration float64 `json:"alpha_duration" yaml:"alpha_duration" mapstructure:"alpha_duration"`
	BetaLoad      float64 `json:"beta_load" yaml:"beta_load" mapstructure:"beta_load"`

	WIncluded    float64 `json:"w_included" yaml:"w_included" mapstructure:"w_included"`
	WExcluded    float64 `json:"w_excluded" yaml:"w_excluded" mapstructure:"w_excluded"`
	WOverflow    float64 `json:"w_overflow" yaml:"w_overflow" mapstructure:"w_overflow"`
	WFocusAlign  float64 `json:"w_focus_align" yaml:"w_focus_align" mapstructure:"w_focus_align"`
	WSwitch      float64 `json:"w_switch" yaml:"w_switch" mapstructure:"w_switch"`
	WFatigueRisk float64 `json:"w_fatigue_risk" yaml:"w_fatigue_risk" mapstructure:"w_fatigue_risk"`

	WInstruction   float64 `json:"w_instruction" yaml:"w_instruction" mapstructure:"w_instruction"`
	InstructionCap float64 `json:"instruction_cap" yaml:"instruction_cap" mapstructure:"instruction_cap"`
	ClipMin        float64 `json:"clip_min" yaml:"clip_min" mapstructure:"clip_min"`
	ClipMax        float64 `json:"clip_max" yaml:"clip_max" mapstructure:"clip_max"`
	EMADecay       float64 `json:"ema_decay" yaml:"ema_decay" mapstructure:"ema_decay"`
}

// DefaultWeights returns the weights used when a request carries none.
func DefaultWeights() WeightParams {
	return WeightParams{
		WFocus:         1.0,
		WUrgent:        5.0,
		WCategory:      map[Category]float64{},
		WCarryTask:     2.0,
		WCarryGroup:    1.0,
		WRejectPenalty: 2.0,
		AlphaDuration:  0.05,
		BetaLoad:       1.0,
		WIncluded:      1.0,
		WExcluded:      1.2,
		WOverflow:      2.0,
		WFocusAlign:    0.8,
		WSwitch:        0.2,
		WFatigueRisk:   0.5,
		WInstruction:   0.3,
		InstructionCap: 0.4,
		ClipMin:        0.1,
		ClipMax:        5.0,
		EMADecay:       0.7,
	}
}

// CategoryWeight returns the bonus for a category, 0 when unset.
func (w WeightParams) CategoryWeight(c Category) float64 {
	return w.WCategory[c]
}

// Clone returns a copy that shares no map with w.
func (w WeightParams) Clone() WeightParams {
	out := w
	out.WCategory = maps.Clone(w.WCategory)
	if out.WCategory == nil {
		out.WCategory = map[Category]float64{}
	}
	return out
}
