package arena

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptFormula evaluates a tengo script for every exchange. The script sees two maps,
// `attacker` and `defender`, with the keys armor, max_armor, weight, speed, accuracy,
// damage, firerate, parts and evasion, and must define the globals `hit` (percent)
// and `damage`:
//
//	hit := 50 + (attacker.accuracy - defender.evasion) / 100
//	damage := attacker.damage
//
// Hit chance is clamped to [0, 100]; negative damage is treated as zero.
type ScriptFormula struct {
	compiled *tengo.Compiled
}

// NewScriptFormula compiles src. The tengo stdlib modules are importable.
func NewScriptFormula(src []byte) (*ScriptFormula, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("attacker", map[string]any{}); err != nil {
		return nil, err
	}
	if err := script.Add("defender", map[string]any{}); err != nil {
		return nil, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("formula: compile: %w", err)
	}
	return &ScriptFormula{compiled: compiled}, nil
}

// LoadScriptFormula reads and compiles a script file.
func LoadScriptFormula(path string) (*ScriptFormula, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formula: read %s: %w", path, err)
	}
	formula, err := NewScriptFormula(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return formula, nil
}

func totalsMap(t Totals) map[string]any {
	return map[string]any{
		"armor":     t.Armor,
		"max_armor": t.MaxArmor,
		"weight":    t.Weight,
		"speed":     t.Speed,
		"accuracy":  t.Accuracy,
		"damage":    t.Damage,
		"firerate":  t.Firerate,
		"parts":     t.Parts,
		"evasion":   t.Evasion(),
	}
}

func (f *ScriptFormula) Resolve(attacker, defender Totals) (Exchange, error) {
	if err := f.compiled.Set("attacker", totalsMap(attacker)); err != nil {
		return Exchange{}, err
	}
	if err := f.compiled.Set("defender", totalsMap(defender)); err != nil {
		return Exchange{}, err
	}
	if err := f.compiled.Run(); err != nil {
		return Exchange{}, fmt.Errorf("formula: run: %w", err)
	}
	for _, name := range []string{"hit", "damage"} {
		if !f.compiled.IsDefined(name) {
			return Exchange{}, fmt.Errorf("formula: script does not define %q", name)
		}
	}

	return Exchange{
		HitChance: min(max(f.compiled.Get("hit").Int(), 0), 100),
		Damage:    max(f.compiled.Get("damage").Int(), 0),
	}, nil
}
