package arena

// Totals is the sum of a pilot's part attributes.
type Totals struct {
	Armor    int
	MaxArmor int
	Weight   int
	Speed    int
	Accuracy int
	Damage   int
	Firerate int
	Parts    int
}

// Evasion is speed scaled down by weight: a heavier AC of the same speed is easier to hit.
func (t Totals) Evasion() int {
	if t.Weight <= 0 {
		return t.Speed
	}
	return t.Speed * 1000 / t.Weight
}

// Shots is the number of shots fired per turn.
func (t Totals) Shots() int {
	if t.Damage <= 0 {
		return 0
	}
	return max(1, (t.Firerate+9)/10)
}

// ArmorPermille is the remaining armor share in thousandths.
func (t Totals) ArmorPermille() int {
	if t.MaxArmor <= 0 {
		return 0
	}
	return t.Armor * 1000 / t.MaxArmor
}

// Exchange is the outcome of a formula for one attacker/defender pair.
type Exchange struct {
	HitChance int // percent
	Damage    int // per hit
}

// Formula decides hit chance and damage for one attacker shooting at one defender.
type Formula interface {
	Resolve(attacker, defender Totals) (Exchange, error)
}

const (
	minHitChance = 5
	maxHitChance = 95
)

// DefaultFormula: 50% base, plus one point per 100 accuracy over the defender's
// evasion, clamped to [5, 95]. Damage is the weapon damage.
type DefaultFormula struct{}

func (DefaultFormula) Resolve(attacker, defender Totals) (Exchange, error) {
	hit := 50 + (attacker.Accuracy-defender.Evasion())/100
	return Exchange{
		HitChance: min(max(hit, minHitChance), maxHitChance),
		Damage:    attacker.Damage,
	}, nil
}
